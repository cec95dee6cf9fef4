package msg

import (
	"encoding/binary"
	"time"

	"github.com/google/uuid"
)

// Seconds between 1601-01-01 and 1970-01-01, and FILETIME ticks per second.
const (
	filetimeEpochSeconds = 11644473600
	ticksPerSecond       = 10000000
)

// FiletimeToTime converts a Windows FILETIME tick count (100ns units since
// 1601-01-01 UTC) to a UTC time.
func FiletimeToTime(ticks uint64) time.Time {
	secs := int64(ticks/ticksPerSecond) - filetimeEpochSeconds
	nsec := int64(ticks%ticksPerSecond) * 100
	return time.Unix(secs, nsec).UTC()
}

// TimeToFiletime converts t to a Windows FILETIME tick count.
func TimeToFiletime(t time.Time) uint64 {
	secs := uint64(t.Unix() + filetimeEpochSeconds)
	return secs*ticksPerSecond + uint64(t.Nanosecond()/100)
}

// GUIDSize is the stored size of a GUID.
const GUIDSize = 16

// DecodeGUID reads a GUID in its stored form, where the first three fields
// are little-endian, and returns it in canonical byte order.
func DecodeGUID(b []byte) (uuid.UUID, error) {
	var u uuid.UUID
	if len(b) < GUIDSize {
		return u, newError(ErrCorrupted, "decode guid", "", "short GUID")
	}
	binary.BigEndian.PutUint32(u[0:4], binary.LittleEndian.Uint32(b[0:4]))
	binary.BigEndian.PutUint16(u[4:6], binary.LittleEndian.Uint16(b[4:6]))
	binary.BigEndian.PutUint16(u[6:8], binary.LittleEndian.Uint16(b[6:8]))
	copy(u[8:], b[8:16])
	return u, nil
}

// EncodeGUID writes u in its stored form.
func EncodeGUID(u uuid.UUID) []byte {
	b := make([]byte, GUIDSize)
	binary.LittleEndian.PutUint32(b[0:4], binary.BigEndian.Uint32(u[0:4]))
	binary.LittleEndian.PutUint16(b[4:6], binary.BigEndian.Uint16(u[4:6]))
	binary.LittleEndian.PutUint16(b[6:8], binary.BigEndian.Uint16(u[6:8]))
	copy(b[8:], u[8:])
	return b
}

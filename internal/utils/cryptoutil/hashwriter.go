package cryptoutil

import (
	"hash"
)

// HashWriter implements io.Writer and provides methods to access the underlying hash
type HashWriter struct {
	hash hash.Hash
	n    int64
}

// Write implements io.Writer
func (hw *HashWriter) Write(p []byte) (n int, err error) {
	n, err = hw.hash.Write(p)
	hw.n += int64(n)
	return n, err
}

// SumHex returns the current hash value as a hex-encoded string
func (hw *HashWriter) SumHex() string {
	return Bytes2Hex(hw.hash.Sum(nil))
}

// Written returns the number of bytes hashed so far
func (hw *HashWriter) Written() int64 {
	return hw.n
}

// Reset resets the hash state
func (hw *HashWriter) Reset() {
	hw.hash.Reset()
	hw.n = 0
}

package msg

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSet = uuid.MustParse("11223344-5566-7788-99aa-bbccddeeff00")

func TestNamedPropertyMapping_NumericRoundTrip(t *testing.T) {
	// Arrange
	reminder := NumericProperty(testSet, 0x8501)
	storage := nameidStorage([]uuid.UUID{PSETIDAddress, testSet}, []nameEntry{
		{np: NumericProperty(PSMAPI, 0x0001), guidIndex: 1, index: 0},
		{np: StringProperty(PSPublicStrings, "Keywords"), guidIndex: 2, index: 1},
		{np: NumericProperty(PSETIDAddress, 0x8005), guidIndex: 3, index: 2},
		{np: reminder, guidIndex: 4, index: 3},
	})

	// Act
	m, err := NewNamedPropertyMapping(storage)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 4, m.Len())

	id, ok := m.ID(reminder)
	require.True(t, ok)
	assert.Equal(t, uint16(0x8003), id)

	np, ok := m.Lookup(0x8003)
	require.True(t, ok)
	assert.Equal(t, reminder, np)

	assert.Equal(t, []uint16{0x8000, 0x8001, 0x8002, 0x8003}, m.IDs())
}

func TestNamedPropertyMapping_StringNames(t *testing.T) {
	storage := nameidStorage(nil, []nameEntry{
		{np: StringProperty(PSPublicStrings, "Keywords"), guidIndex: 2, index: 0},
		{np: StringProperty(PSMAPI, "x-custom-header"), guidIndex: 1, index: 1},
	})

	m, err := NewNamedPropertyMapping(storage)
	require.NoError(t, err)

	first, ok := m.Lookup(0x8000)
	require.True(t, ok)
	assert.Equal(t, StringProperty(PSPublicStrings, "Keywords"), first)

	id, ok := m.ID(StringProperty(PSMAPI, "x-custom-header"))
	require.True(t, ok)
	assert.Equal(t, uint16(0x8001), id)
}

func TestNamedPropertyMapping_UsesStoredIndex(t *testing.T) {
	storage := nameidStorage(nil, []nameEntry{
		{np: NumericProperty(PSMAPI, 1), guidIndex: 1, index: 5},
		{np: NumericProperty(PSMAPI, 2), guidIndex: 1, index: 0},
	})

	m, err := NewNamedPropertyMapping(storage)
	require.NoError(t, err)

	id, ok := m.ID(NumericProperty(PSMAPI, 1))
	require.True(t, ok)
	assert.Equal(t, uint16(0x8005), id)
	_, ok = m.Lookup(0x8001)
	assert.False(t, ok)
}

func TestNamedPropertyMapping_EqualityNeedsSameKind(t *testing.T) {
	storage := nameidStorage(nil, []nameEntry{
		{np: NumericProperty(PSMAPI, 0), guidIndex: 1, index: 0},
	})
	m, err := NewNamedPropertyMapping(storage)
	require.NoError(t, err)

	_, ok := m.ID(StringProperty(PSMAPI, ""))
	assert.False(t, ok)
	_, ok = m.ID(NumericProperty(PSPublicStrings, 0))
	assert.False(t, ok)
}

func TestNamedPropertyMapping_GUIDIndexOutOfRange(t *testing.T) {
	storage := nameidStorage([]uuid.UUID{testSet}, []nameEntry{
		{np: NumericProperty(testSet, 1), guidIndex: 4, index: 0},
	})

	_, err := NewNamedPropertyMapping(storage)

	require.Error(t, err)
	assert.True(t, IsCorrupted(err))
	assert.Equal(t, GUIDStreamName, StreamName(err))
}

func TestNamedPropertyMapping_GUIDIndexZeroReadsFirstStreamGUID(t *testing.T) {
	np := NumericProperty(testSet, 0x8510)
	storage := nameidStorage([]uuid.UUID{testSet}, []nameEntry{
		{np: np, guidIndex: 0, index: 0},
	})

	m, err := NewNamedPropertyMapping(storage)

	require.NoError(t, err)
	id, ok := m.ID(np)
	require.True(t, ok)
	assert.Equal(t, uint16(0x8000), id)
}

func TestNamedPropertyMapping_HugeNameLengthIsCorrupted(t *testing.T) {
	rec := make([]byte, 8)
	rec[4] = 1<<1 | 1 // PS_MAPI, string name
	storage := NewStorage(NameIDStorageName,
		NewStream(GUIDStreamName, nil),
		NewStream(EntryStreamName, rec),
		NewStream(StringStreamName, append(u32s(0xFFFFFFFF), 'a', 0)),
	)

	_, err := NewNamedPropertyMapping(storage)

	require.Error(t, err)
	assert.True(t, IsCorrupted(err))
	assert.Equal(t, StringStreamName, StreamName(err))
}

func TestNamedPropertyMapping_MissingStreams(t *testing.T) {
	for _, missing := range []string{GUIDStreamName, EntryStreamName, StringStreamName} {
		t.Run(missing, func(t *testing.T) {
			storage := NewStorage(NameIDStorageName)
			for _, name := range []string{GUIDStreamName, EntryStreamName, StringStreamName} {
				if name != missing {
					storage.Add(NewStream(name, nil))
				}
			}

			_, err := NewNamedPropertyMapping(storage)

			assert.True(t, IsMissingStream(err))
			assert.Equal(t, missing, StreamName(err))
		})
	}
}

func TestNamedPropertyMapping_StringOffsetOutOfRange(t *testing.T) {
	storage := NewStorage(NameIDStorageName,
		NewStream(GUIDStreamName, nil),
		NewStream(EntryStreamName, []byte{0x10, 0, 0, 0, 0x05, 0, 0, 0}),
		NewStream(StringStreamName, u32s(2)),
	)

	_, err := NewNamedPropertyMapping(storage)

	assert.True(t, IsCorrupted(err))
	assert.Equal(t, StringStreamName, StreamName(err))
}

func TestNamedPropertyMapping_NilIsEmpty(t *testing.T) {
	var m *NamedPropertyMapping

	_, ok := m.ID(NumericProperty(PSMAPI, 1))
	assert.False(t, ok)
	_, ok = m.Lookup(0x8000)
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
}

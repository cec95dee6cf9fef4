package msg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPropertyStream_MissingStream(t *testing.T) {
	_, err := NewPropertyStream(NewStorage("root"), HeaderTopLevel, nil)

	require.Error(t, err)
	assert.True(t, IsMissingStream(err))
	assert.Equal(t, "root/__properties_version1.0", StreamName(err))
}

func TestNewPropertyStream_RemainderIsCorrupted(t *testing.T) {
	tests := []struct {
		name string
		kind HeaderKind
		size int
	}{
		{"top-level plus one byte", HeaderTopLevel, 33},
		{"embedded plus half entry", HeaderEmbedded, 24 + 8},
		{"child plus fifteen", HeaderChild, 8 + 15},
		{"short header", HeaderTopLevel, 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := NewStorage("root", NewStream(PropertiesStreamName, make([]byte, tt.size)))

			_, err := NewPropertyStream(node, tt.kind, nil)

			require.Error(t, err)
			assert.True(t, IsCorrupted(err))
		})
	}
}

func TestNewPropertyStream_HeaderSelectedByContext(t *testing.T) {
	// Arrange: the same bytes parse as one entry under an 8-byte header
	// and as a corrupt stream under a 32-byte one.
	data := append(make([]byte, 8), entry(PidTagRowid, PtypInteger32, 5).Encode()...)
	node := NewStorage("r", NewStream(PropertiesStreamName, data))

	// Act
	child, childErr := NewPropertyStream(node, HeaderChild, nil)
	_, topErr := NewPropertyStream(node, HeaderTopLevel, nil)

	// Assert
	require.NoError(t, childErr)
	assert.Equal(t, []uint16{PidTagRowid}, child.IDs())
	assert.True(t, IsCorrupted(topErr))
}

func TestNewPropertyStream_HeaderFields(t *testing.T) {
	h := Header{Kind: HeaderTopLevel, NextRecipientID: 3, NextAttachmentID: 2, RecipientCount: 3, AttachmentCount: 9}
	node := NewStorage("root", NewStream(PropertiesStreamName, h.Encode()))

	s, err := NewPropertyStream(node, HeaderTopLevel, nil)

	require.NoError(t, err)
	assert.Equal(t, h, s.Header())
	assert.Equal(t, 0, s.Len())
}

func TestPropertyStream_ValueByID(t *testing.T) {
	// Arrange
	subject, subjectStream := stringEntry(PidTagSubject, "Hello")
	node := NewStorage("root",
		propertiesStream(HeaderTopLevel, entry(PidTagMessageFlags, PtypInteger32, 42), subject),
		subjectStream,
	)

	// Act
	s, err := NewPropertyStream(node, HeaderTopLevel, nil)
	require.NoError(t, err)
	flags, flagsErr := s.Value(PidTagMessageFlags)
	subj, subjErr := s.Value(PidTagSubject)
	missing, missingErr := s.Value(PidTagBody)

	// Assert
	require.NoError(t, flagsErr)
	require.NoError(t, subjErr)
	require.NoError(t, missingErr)
	assert.Equal(t, Int32(42), flags)
	assert.Equal(t, String("Hello"), subj)
	assert.Equal(t, Absent{}, missing)

	e, ok := s.Entry(PidTagSubject)
	require.True(t, ok)
	assert.Equal(t, FlagReadable|FlagWritable, e.Flags)
}

func TestPropertyStream_LastDuplicateWins(t *testing.T) {
	node := NewStorage("root", propertiesStream(HeaderChild,
		entry(PidTagAttachNumber, PtypInteger32, 1),
		entry(PidTagAttachNumber, PtypInteger32, 2),
	))

	s, err := NewPropertyStream(node, HeaderChild, nil)
	require.NoError(t, err)
	v, err := s.Value(PidTagAttachNumber)

	require.NoError(t, err)
	assert.Equal(t, Int32(2), v)
	assert.Equal(t, 1, s.Len())
}

func TestPropertyStream_AllValuesIsCompleteAndOrdered(t *testing.T) {
	// Arrange: entries out of id order, one with a corrupt value stream
	// and one whose value stream is missing.
	body, bodyStream := stringEntry(PidTagBody, "text")
	node := NewStorage("root",
		propertiesStream(HeaderTopLevel,
			body,
			entry(0x0E07, PtypInteger32, 1),
			entry(0x0FF9, PtypBinary, 4),
			entry(0x0003, PtypGUID, 16),
			entry(0x0006, PtypCurrency, 0),
		),
		bodyStream,
		NewStream(SubstgName(0x0003, PtypGUID), []byte{1, 2}),
	)

	s, err := NewPropertyStream(node, HeaderTopLevel, nil)
	require.NoError(t, err)

	// Act
	values := s.AllValues()

	// Assert
	ids := make([]uint16, len(values))
	for i, pv := range values {
		ids[i] = pv.Tag.ID
	}
	assert.Equal(t, []uint16{0x0003, 0x0006, 0x0E07, 0x0FF9, PidTagBody}, ids)
	assert.Equal(t, s.IDs(), ids)

	assert.Equal(t, Absent{}, values[0].Value)
	assert.True(t, IsCorrupted(values[0].Err))
	assert.Equal(t, Unsupported{Type: PtypCurrency}, values[1].Value)
	assert.Equal(t, Int32(1), values[2].Value)
	assert.Equal(t, Absent{}, values[3].Value)
	assert.NoError(t, values[3].Err)
	assert.Equal(t, String("text"), values[4].Value)
}

func TestPropertyStream_NamedValueWithoutMapping(t *testing.T) {
	node := NewStorage("root", propertiesStream(HeaderChild, entry(0x8000, PtypInteger32, 1)))
	s, err := NewPropertyStream(node, HeaderChild, nil)
	require.NoError(t, err)

	v, err := s.NamedValue(NumericProperty(PSETIDCommon, 0x8501))

	require.NoError(t, err)
	assert.Equal(t, Absent{}, v)
}

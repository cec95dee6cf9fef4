package msg

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_MinimalFile(t *testing.T) {
	// Arrange
	root := NewStorage("Root Entry", propertiesStream(HeaderTopLevel))

	// Act
	m, err := Open(root)

	// Assert
	require.NoError(t, err)
	assert.Empty(t, m.Recipients())
	assert.Empty(t, m.Attachments())
	assert.Empty(t, m.Properties())
	assert.Nil(t, m.Mapping())
	assert.NoError(t, m.MappingError())
}

func TestOpen_MissingRootPropertiesIsFatal(t *testing.T) {
	root := NewStorage("Root Entry", attachmentStorage(0, 0))

	m, err := Open(root)

	assert.Nil(t, m)
	assert.True(t, IsMissingStream(err))
}

func TestOpen_ReadsTopLevelProperties(t *testing.T) {
	subject, subjectStream := stringEntry(PidTagSubject, "Quarterly report")
	class, classStream := stringEntry(PidTagMessageClass, "IPM.Note")
	root := NewStorage("Root Entry",
		propertiesStream(HeaderTopLevel, subject, class, entry(PidTagInternetCodepage, PtypInteger32, 65001)),
		subjectStream,
		classStream,
	)

	m, err := Open(root)

	require.NoError(t, err)
	assert.Equal(t, "Quarterly report", m.Subject())
	assert.Equal(t, "IPM.Note", m.MessageClass())
	assert.True(t, m.IsNote())
	assert.Equal(t, int64(65001), m.InternetCodepage())
	assert.Equal(t, Absent{}, m.Property(PidTagBody))
}

func TestOpen_OrdersAttachmentsAndRecipients(t *testing.T) {
	// Arrange: children are added out of name order and keys disagree
	// with names.
	root := NewStorage("Root Entry",
		propertiesStream(HeaderTopLevel),
		attachmentStorage(2, 0),
		recipientStorage(1, 0),
		attachmentStorage(0, 7),
		recipientStorage(0, 2),
		attachmentStorage(1, 3),
		NewStream("__substg1.0_0037001F", utf16z("ignored")),
	)

	// Act
	m, err := Open(root)

	// Assert
	require.NoError(t, err)
	require.Len(t, m.Attachments(), 3)
	require.Len(t, m.Recipients(), 2)

	var numbers []int64
	var paths []string
	for _, a := range m.Attachments() {
		numbers = append(numbers, a.AttachNumber())
		paths = append(paths, a.Path())
	}
	assert.Equal(t, []int64{0, 3, 7}, numbers)
	assert.Equal(t, []string{
		"Root Entry/__attach_version1.0_00000002",
		"Root Entry/__attach_version1.0_00000001",
		"Root Entry/__attach_version1.0_00000000",
	}, paths)

	assert.Equal(t, int64(0), m.Recipients()[0].RowID())
	assert.Equal(t, int64(2), m.Recipients()[1].RowID())
}

func TestOpen_TiesKeepNameOrder(t *testing.T) {
	root := NewStorage("Root Entry", propertiesStream(HeaderTopLevel))
	for _, i := range []int{3, 0, 2, 1} {
		root.Add(attachmentStorage(i, 1))
	}
	// No PidTagAttachNumber at all sorts as zero.
	root.Add(childStorage(AttachmentStoragePrefix+"00000004", nil))

	m, err := Open(root)
	require.NoError(t, err)

	var names []string
	for _, a := range m.Attachments() {
		names = append(names, a.Storage().Name())
	}
	assert.Equal(t, []string{
		"__attach_version1.0_00000004",
		"__attach_version1.0_00000000",
		"__attach_version1.0_00000001",
		"__attach_version1.0_00000002",
		"__attach_version1.0_00000003",
	}, names)
}

func TestOpen_IsDeterministic(t *testing.T) {
	build := func() *Node {
		subject, subjectStream := stringEntry(PidTagSubject, "same")
		return NewStorage("Root Entry",
			propertiesStream(HeaderTopLevel, subject),
			subjectStream,
			recipientStorage(1, 1),
			recipientStorage(0, 1),
			attachmentStorage(0, 0),
		)
	}

	first, err := Open(build())
	require.NoError(t, err)
	second, err := Open(build())
	require.NoError(t, err)

	assert.Equal(t, first.Properties(), second.Properties())
	require.Len(t, second.Recipients(), len(first.Recipients()))
	for i := range first.Recipients() {
		assert.Equal(t, first.Recipients()[i].Path(), second.Recipients()[i].Path())
		assert.Equal(t, first.Recipients()[i].Properties(), second.Recipients()[i].Properties())
	}
}

func TestOpen_EmbeddedMessageSharesMapping(t *testing.T) {
	// Arrange
	common := NumericProperty(PSMAPI, 0x8580)
	mapping := nameidStorage(nil, []nameEntry{
		{np: NumericProperty(PSMAPI, 1), guidIndex: 1, index: 0},
		{np: common, guidIndex: 1, index: 1},
	})

	innerSubject, innerSubjectStream := stringEntry(PidTagSubject, "inner")
	embedded := NewStorage(AttachDataObjectName,
		propertiesStream(HeaderEmbedded, innerSubject, entry(0x8001, PtypInteger32, 99)),
		innerSubjectStream,
		recipientStorage(0, 0),
	)
	attach := childStorage(AttachmentStoragePrefix+"00000000",
		[]PropertyEntry{
			entry(PidTagAttachNumber, PtypInteger32, 0),
			entry(PidTagAttachMethod, PtypInteger32, uint64(AttachEmbeddedMessage)),
		},
		embedded,
	)
	root := NewStorage("Root Entry", propertiesStream(HeaderTopLevel), mapping, attach)

	// Act
	m, err := Open(root)

	// Assert
	require.NoError(t, err)
	require.Len(t, m.Attachments(), 1)
	a := m.Attachments()[0]
	assert.Equal(t, AttachEmbeddedMessage, a.Method())
	assert.Nil(t, a.CustomStorage())

	em := a.EmbeddedMessage()
	require.NotNil(t, em)
	assert.Equal(t, "inner", em.Subject())
	assert.Equal(t, HeaderEmbedded, em.Stream().Header().Kind)
	assert.Same(t, m.Mapping(), em.Stream().Mapping())
	assert.Equal(t, Int32(99), em.NamedProperty(common))
	require.Len(t, em.Recipients(), 1)
	assert.Same(t, m.Mapping(), em.Recipients()[0].Stream().Mapping())
	assert.Equal(t, "Root Entry/__attach_version1.0_00000000/__substg1.0_3701000D/__recip_version1.0_00000000",
		em.Recipients()[0].Path())
}

func TestOpen_CustomStorageAttachment(t *testing.T) {
	custom := NewStorage(AttachDataObjectName, NewStream("\x01Ole", []byte{1}))
	attach := childStorage(AttachmentStoragePrefix+"00000000",
		[]PropertyEntry{entry(PidTagAttachMethod, PtypInteger32, uint64(AttachOLE))},
		custom,
	)
	root := NewStorage("Root Entry", propertiesStream(HeaderTopLevel), attach)

	m, err := Open(root)

	require.NoError(t, err)
	a := m.Attachments()[0]
	assert.Nil(t, a.EmbeddedMessage())
	assert.Same(t, custom, a.CustomStorage())
}

func TestOpen_EmbeddedMethodWithoutStorageFails(t *testing.T) {
	attach := childStorage(AttachmentStoragePrefix+"00000000",
		[]PropertyEntry{entry(PidTagAttachMethod, PtypInteger32, uint64(AttachEmbeddedMessage))},
	)
	root := NewStorage("Root Entry", propertiesStream(HeaderTopLevel), attach)

	_, err := Open(root)

	assert.True(t, IsMissingStream(err))
}

func TestOpen_ChildFailureAbortsOpen(t *testing.T) {
	tests := []struct {
		name  string
		child *Node
	}{
		{"attachment without properties", NewStorage(AttachmentStoragePrefix + "00000001")},
		{"recipient without properties", NewStorage(RecipientStoragePrefix + "00000000")},
		{"recipient with corrupt directory", NewStorage(RecipientStoragePrefix+"00000000",
			NewStream(PropertiesStreamName, make([]byte, 8+10)))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := NewStorage("Root Entry", propertiesStream(HeaderTopLevel), attachmentStorage(0, 0), tt.child)

			m, err := Open(root)

			require.Error(t, err)
			assert.Nil(t, m)
			assert.Contains(t, err.Error(), tt.child.Name())
		})
	}
}

func TestOpen_MissingValueStreamIsIsolated(t *testing.T) {
	// Arrange: the attachment lists a filename whose stream is gone.
	nameEntry, nameStream := stringEntry(PidTagAttachLongFilename, "report.pdf")
	attach := childStorage(AttachmentStoragePrefix+"00000000",
		[]PropertyEntry{
			entry(PidTagAttachNumber, PtypInteger32, 0),
			nameEntry,
			entry(PidTagDisplayName, PtypString, 10),
			entry(PidTagAttachDataBinary, PtypBinary, 3),
		},
		nameStream,
		NewStream(SubstgName(PidTagAttachDataBinary, PtypBinary), []byte("%PD")),
	)
	root := NewStorage("Root Entry", propertiesStream(HeaderTopLevel), attach)

	// Act
	m, err := Open(root)

	// Assert
	require.NoError(t, err)
	a := m.Attachments()[0]
	assert.Equal(t, Absent{}, a.Property(PidTagDisplayName))
	assert.Equal(t, "report.pdf", a.Name())
	assert.Equal(t, "report.pdf", a.Filename())
	data, ok := a.Data()
	require.True(t, ok)
	assert.Equal(t, []byte("%PD"), data)
	assert.Len(t, a.Properties(), 4)
}

func TestOpen_MappingFailureIsNotFatal(t *testing.T) {
	// Arrange: the mapping lacks its string stream.
	broken := NewStorage(NameIDStorageName,
		NewStream(GUIDStreamName, nil),
		NewStream(EntryStreamName, nil),
	)
	root := NewStorage("Root Entry",
		propertiesStream(HeaderTopLevel, entry(0x8000, PtypInteger32, 1)),
		broken,
	)
	var reported []error

	// Act
	m, err := Open(root, WithDiagnostics(func(object string, tag PropertyTag, err error) {
		reported = append(reported, err)
	}))

	// Assert
	require.NoError(t, err)
	assert.Nil(t, m.Mapping())
	assert.True(t, IsMissingStream(m.MappingError()))
	assert.Equal(t, Absent{}, m.NamedProperty(NumericProperty(PSMAPI, 1)))
	assert.Equal(t, Int32(1), m.Property(0x8000))
	require.Len(t, reported, 1)
	assert.True(t, IsMissingStream(reported[0]))
}

func TestOpen_DiagnosticsReportPropertyFailures(t *testing.T) {
	root := NewStorage("Root Entry",
		propertiesStream(HeaderTopLevel, entry(0x0003, PtypGUID, 16)),
		NewStream(SubstgName(0x0003, PtypGUID), []byte{1}),
	)
	var objects []string
	var tags []PropertyTag

	m, err := Open(root, WithDiagnostics(func(object string, tag PropertyTag, err error) {
		objects = append(objects, object)
		tags = append(tags, tag)
	}))
	require.NoError(t, err)

	v := m.Property(0x0003)

	assert.Equal(t, Absent{}, v)
	assert.Equal(t, []string{"Root Entry"}, objects)
	assert.Equal(t, []PropertyTag{{ID: 0x0003, Type: PtypGUID}}, tags)
}

func TestOpen_RecipientAccessors(t *testing.T) {
	name, nameStream := stringEntry(PidTagDisplayName, "Ada Lovelace")
	smtp, smtpStream := stringEntry(PidTagSMTPAddress, "ada@example.com")
	recip := childStorage(RecipientStoragePrefix+"00000000",
		[]PropertyEntry{name, smtp, entry(PidTagRecipientType, PtypInteger32, 0x10000002)},
		nameStream, smtpStream,
	)
	root := NewStorage("Root Entry", propertiesStream(HeaderTopLevel), recip)

	m, err := Open(root)

	require.NoError(t, err)
	r := m.Recipients()[0]
	assert.Equal(t, "Ada Lovelace", r.DisplayName())
	assert.Equal(t, "ada@example.com", r.Address())
	assert.Equal(t, RecipientCc, r.Type())
}

func TestAttachment_FilenameFallbacks(t *testing.T) {
	display, displayStream := stringEntry(PidTagDisplayName, `C:\tmp\notes.txt`)
	ext, extStream := stringEntry(PidTagAttachExtension, ".bin")
	tests := []struct {
		name    string
		entries []PropertyEntry
		streams []*Node
		want    string
	}{
		{"display name base", []PropertyEntry{display}, []*Node{displayStream}, "notes.txt"},
		{"derived from number", []PropertyEntry{entry(PidTagAttachNumber, PtypInteger32, 4), ext}, []*Node{extStream}, "attachment-4.bin"},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attach := childStorage(fmt.Sprintf("%s%08X", AttachmentStoragePrefix, i), tt.entries, tt.streams...)
			root := NewStorage("Root Entry", propertiesStream(HeaderTopLevel), attach)

			m, err := Open(root)

			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Attachments()[0].Filename())
		})
	}
}

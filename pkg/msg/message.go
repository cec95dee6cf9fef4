package msg

import (
	"fmt"
	"sort"
	"strings"
)

// message holds what top-level and embedded messages have in common.
type message struct {
	object
	recipients  []*Recipient
	attachments []*Attachment
}

// Recipients returns the recipients ordered by PidTagRowid.
func (m *message) Recipients() []*Recipient {
	return m.recipients
}

// Attachments returns the attachments ordered by PidTagAttachNumber.
func (m *message) Attachments() []*Attachment {
	return m.attachments
}

// Message is the top-level object of a .msg file.
type Message struct {
	message
	mapping    *NamedPropertyMapping
	mappingErr error
}

// EmbeddedMessage is a message stored inside an attachment. It shares the
// named property mapping of the file it was read from.
type EmbeddedMessage struct {
	message
}

// Open builds the complete object tree rooted at root. The tree is built
// eagerly; a failure in any recipient, attachment or embedded message
// aborts the whole open. A named property mapping that cannot be read is
// not fatal: the message opens without named property support and
// MappingError reports why.
func Open(root StorageNode, opts ...Option) (*Message, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	obj, err := newObject(root, "", HeaderTopLevel, nil, o)
	if err != nil {
		return nil, err
	}

	m := &Message{}
	if storage, ok := root.Child(NameIDStorageName); ok && !storage.IsStream() {
		mapping, err := NewNamedPropertyMapping(storage)
		if err != nil {
			m.mappingErr = err
			o.report(obj.path, PropertyTag{}, err)
		} else {
			m.mapping = mapping
		}
	}
	obj.props.mapping = m.mapping
	m.object = obj

	if err := m.message.assemble(m.mapping); err != nil {
		return nil, err
	}
	return m, nil
}

// Mapping returns the named property mapping, or nil when the file has
// none or it could not be read.
func (m *Message) Mapping() *NamedPropertyMapping {
	return m.mapping
}

// MappingError returns the error that prevented reading the named
// property mapping, if any.
func (m *Message) MappingError() error {
	return m.mappingErr
}

func newEmbeddedMessage(node StorageNode, parent string, mapping *NamedPropertyMapping, opts *options) (*EmbeddedMessage, error) {
	obj, err := newObject(node, parent, HeaderEmbedded, mapping, opts)
	if err != nil {
		return nil, err
	}
	em := &EmbeddedMessage{message{object: obj}}
	if err := em.assemble(mapping); err != nil {
		return nil, err
	}
	return em, nil
}

// assemble discovers recipients and attachments among the child storages,
// in name order, and sorts them by their row keys.
func (m *message) assemble(mapping *NamedPropertyMapping) error {
	for _, child := range sortedChildren(m.Storage()) {
		if child.IsStream() {
			continue
		}
		name := child.Name()
		switch {
		case strings.HasPrefix(name, RecipientStoragePrefix):
			r, err := newRecipient(child, m.path, mapping, m.opts)
			if err != nil {
				return fmt.Errorf("recipient %s: %w", joinPath(m.path, name), err)
			}
			m.recipients = append(m.recipients, r)
		case strings.HasPrefix(name, AttachmentStoragePrefix):
			a, err := newAttachment(child, m.path, mapping, m.opts)
			if err != nil {
				return fmt.Errorf("attachment %s: %w", joinPath(m.path, name), err)
			}
			m.attachments = append(m.attachments, a)
		}
	}

	sortByKey(m.recipients, func(r *Recipient) int64 { return r.RowID() })
	sortByKey(m.attachments, func(a *Attachment) int64 { return a.AttachNumber() })
	return nil
}

// sortByKey stable-sorts items by key, computing each key once so ties
// keep discovery order.
func sortByKey[T any](items []T, key func(T) int64) {
	keys := make(map[int]int64, len(items))
	idx := make([]int, len(items))
	for i, it := range items {
		idx[i] = i
		keys[i] = key(it)
	}
	sort.SliceStable(idx, func(a, b int) bool { return keys[idx[a]] < keys[idx[b]] })
	sorted := make([]T, len(items))
	for i, j := range idx {
		sorted[i] = items[j]
	}
	copy(items, sorted)
}

package msg

// PropertySource is the query surface shared by messages, embedded
// messages, attachments and recipients.
type PropertySource interface {
	Property(id uint16) Value
	NamedProperty(np NamedProperty) Value
	Properties() []PropertyValue
}

// DiagnosticFunc receives non-fatal decoding failures: a named property
// mapping that could not be read, or a single property that decoded to
// Absent. object is the storage path of the object concerned; tag is the
// zero PropertyTag for a mapping failure.
type DiagnosticFunc func(object string, tag PropertyTag, err error)

// Option configures Open.
type Option func(*options)

type options struct {
	diagnostics DiagnosticFunc
}

// WithDiagnostics installs fn to receive non-fatal decoding failures.
func WithDiagnostics(fn DiagnosticFunc) Option {
	return func(o *options) {
		o.diagnostics = fn
	}
}

func (o *options) report(object string, tag PropertyTag, err error) {
	if o != nil && o.diagnostics != nil && err != nil {
		o.diagnostics(object, tag, err)
	}
}

// object is the common core of every node of the tree: its storage, its
// property directory and a reference to the shared named mapping.
type object struct {
	path  string
	props *PropertyStream
	opts  *options
}

func newObject(node StorageNode, parent string, kind HeaderKind, mapping *NamedPropertyMapping, opts *options) (object, error) {
	props, err := NewPropertyStream(node, kind, mapping)
	if err != nil {
		return object{}, err
	}
	return object{path: joinPath(parent, node.Name()), props: props, opts: opts}, nil
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}

// Path returns the slash-separated storage path of the object.
func (o *object) Path() string {
	return o.path
}

// Stream returns the property directory of the object.
func (o *object) Stream() *PropertyStream {
	return o.props
}

// Storage returns the storage node the object was built from.
func (o *object) Storage() StorageNode {
	return o.props.Node()
}

// Property returns the value of property id, or Absent. Decode failures
// are isolated to the property concerned.
func (o *object) Property(id uint16) Value {
	v, err := o.props.Value(id)
	if err != nil {
		e, _ := o.props.Entry(id)
		o.opts.report(o.path, e.Tag, err)
		return Absent{}
	}
	return v
}

// NamedProperty returns the value of np through the shared mapping, or
// Absent when there is no mapping or np is not mapped.
func (o *object) NamedProperty(np NamedProperty) Value {
	id, ok := o.props.Mapping().ID(np)
	if !ok {
		return Absent{}
	}
	return o.Property(id)
}

// Properties decodes every property in ascending id order.
func (o *object) Properties() []PropertyValue {
	values := o.props.AllValues()
	for _, pv := range values {
		o.opts.report(o.path, pv.Tag, pv.Err)
	}
	return values
}

// Has reports whether the directory has an entry for id.
func (o *object) Has(id uint16) bool {
	_, ok := o.props.Entry(id)
	return ok
}

func (o *object) stringProp(id uint16) string {
	s, _ := AsString(o.Property(id))
	return s
}

func (o *object) intProp(id uint16) (int64, bool) {
	return AsInt(o.Property(id))
}

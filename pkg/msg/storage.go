package msg

import "sort"

// StorageNode is one node of a structured-storage (compound file) tree.
// A storage has named children; a stream carries bytes.
type StorageNode interface {
	Name() string
	IsStream() bool
	Child(name string) (StorageNode, bool)
	Children() []StorageNode
	Bytes() ([]byte, error)
}

// Node is an in-memory StorageNode. Container readers build a tree of
// Nodes once and hand the root to Open.
type Node struct {
	name     string
	stream   bool
	data     []byte
	children []*Node
	index    map[string]*Node
}

// NewStorage returns a storage node holding children in the given order.
func NewStorage(name string, children ...*Node) *Node {
	n := &Node{name: name, index: make(map[string]*Node)}
	for _, c := range children {
		n.Add(c)
	}
	return n
}

// NewStream returns a stream node holding data.
func NewStream(name string, data []byte) *Node {
	return &Node{name: name, stream: true, data: data}
}

// Add appends child to a storage node. A later child with the same name
// replaces the earlier one.
func (n *Node) Add(child *Node) *Node {
	if n.index == nil {
		n.index = make(map[string]*Node)
	}
	if old, ok := n.index[child.name]; ok {
		for i, c := range n.children {
			if c == old {
				n.children[i] = child
				break
			}
		}
	} else {
		n.children = append(n.children, child)
	}
	n.index[child.name] = child
	return child
}

// Name implements StorageNode
func (n *Node) Name() string { return n.name }

// IsStream implements StorageNode
func (n *Node) IsStream() bool { return n.stream }

// Child implements StorageNode
func (n *Node) Child(name string) (StorageNode, bool) {
	c, ok := n.index[name]
	if !ok {
		return nil, false
	}
	return c, true
}

// Children implements StorageNode. Nodes are returned in insertion order.
func (n *Node) Children() []StorageNode {
	out := make([]StorageNode, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

// Bytes implements StorageNode
func (n *Node) Bytes() ([]byte, error) {
	if !n.stream {
		return nil, newError(ErrNotStream, "read stream", n.name, "")
	}
	return n.data, nil
}

// Len returns the stream length in bytes, or 0 for storages.
func (n *Node) Len() int {
	return len(n.data)
}

// sortedChildren returns the children of node ordered by name, so that
// discovery order never depends on the container's internal layout.
func sortedChildren(node StorageNode) []StorageNode {
	children := node.Children()
	sort.SliceStable(children, func(i, j int) bool {
		return children[i].Name() < children[j].Name()
	})
	return children
}

// streamBytes looks up a named child stream. A missing child or a child
// that is a storage reports ok == false.
func streamBytes(node StorageNode, name string) ([]byte, bool, error) {
	child, ok := node.Child(name)
	if !ok || !child.IsStream() {
		return nil, false, nil
	}
	data, err := child.Bytes()
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

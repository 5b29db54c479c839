// Package host defines the adapter contract between the render core and a
// concrete node tree.
//
// The core never touches host nodes directly: every read and mutation goes
// through an Adapter. Any backend that satisfies the contract — a browser
// bridge, a canvas scene graph, the in-memory tree in this package — can host
// the reconciler and scope tree unmodified.
package host

// Kind discriminates the closed set of node variants the core understands.
type Kind int

const (
	// KindContainer is an element-like node that can hold children.
	KindContainer Kind = iota
	// KindText is a leaf holding a string.
	KindText
	// KindGroup is an ordered sequence of nodes with no single host parent.
	// Groups are flattened on insertion and are never tree members.
	KindGroup
	// KindMarker is a zero-width sentinel. Markers are created only by
	// GroupHandle and bracket a region owned by one control-flow primitive.
	KindMarker
)

func (k Kind) String() string {
	switch k {
	case KindContainer:
		return "container"
	case KindText:
		return "text"
	case KindGroup:
		return "group"
	case KindMarker:
		return "marker"
	default:
		return "invalid"
	}
}

// Node is an opaque reference to a host node. The concrete representation
// belongs to the adapter; the core only ever compares nodes by identity and
// asks the adapter about them.
type Node interface {
	Kind() Kind
}

// Handle brackets the half-open region (Start, End) that a control-flow
// primitive owns exclusively. Start and End are markers sharing Token, a
// hidden correlation value that never appears in user content.
type Handle struct {
	Start Node
	End   Node
	Token string
}

// Capabilities reports what the host environment supports.
type Capabilities struct {
	// SupportsSetupEffects is false in non-interactive (render-only)
	// environments. When false, enabling an effect scope is a no-op, so
	// setups never run.
	SupportsSetupEffects bool
}

// Adapter is the complete mutation surface the core requires of a host.
//
// Append must handle any host-specific creation concerns (such as namespaced
// elements) itself; the core treats tags as opaque strings.
type Adapter interface {
	// CreateContainer returns a new detached container node.
	CreateContainer(tag string) Node
	// CreateText returns a new detached text node.
	CreateText(text string) Node
	// SetText replaces the content of a text node.
	SetText(node Node, text string)

	// CreateGroup returns a group holding the given nodes in order.
	CreateGroup(children ...Node) Node
	// UnwrapGroup returns a group's nodes as a flat list, flattening any
	// nested groups. Only meaningful before the group is inserted.
	UnwrapGroup(group Node) []Node
	// GroupHandle replaces a group's contents with [start, contents..., end]
	// and returns the bracket pair.
	GroupHandle(group Node) Handle

	// Write clears everything strictly between the handle's sentinels and
	// inserts nodes in their place. Lifecycle (scope disposal) is the
	// caller's responsibility.
	Write(h Handle, nodes []Node)
	// Append adds nodes (flattening groups) at the end of parent's children.
	Append(parent Node, nodes ...Node)
	// InsertAfter places nodes (flattening groups) immediately after ref,
	// detaching any that are currently attached elsewhere. ref must be
	// attached.
	InsertAfter(ref Node, nodes ...Node)
	// Remove detaches a node from its parent. No-op if already detached.
	Remove(node Node)

	// Parent returns a node's parent, or nil if detached.
	Parent(node Node) Node
	// NextSibling returns the node immediately after the given one under the
	// same parent, or nil.
	NextSibling(node Node) Node
	// IsActive reports whether the node is part of the live, observable
	// tree. Drives the connectivity observer.
	IsActive(node Node) bool

	// Capabilities reports the host environment's capability flags.
	Capabilities() Capabilities
}

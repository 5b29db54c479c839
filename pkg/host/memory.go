package host

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/resuite/retend-sub003/pkg/errors"
)

// memNode is the in-memory node representation. Siblings are doubly linked
// so positional reconciliation is O(1) per link operation. A group is a
// fragment: its members are ordinary children, and inserting the group moves
// them out, leaving the group empty.
type memNode struct {
	kind  Kind
	id    int
	tag   string
	text  string
	token string

	parent     *memNode
	prev, next *memNode
	firstChild *memNode
	lastChild  *memNode
}

func (n *memNode) Kind() Kind { return n.kind }

func (n *memNode) desc() string {
	switch n.kind {
	case KindContainer:
		return fmt.Sprintf("%s#%d", n.tag, n.id)
	case KindText:
		return fmt.Sprintf("text#%d", n.id)
	case KindMarker:
		return fmt.Sprintf("marker#%d", n.id)
	default:
		return fmt.Sprintf("group#%d", n.id)
	}
}

// Memory is the reference in-memory host. It satisfies Adapter and records a
// human-readable trace of every structural mutation, which the scenario CLI
// and the reconciler tests read back.
type Memory struct {
	root   *memNode
	caps   Capabilities
	nextID int
	trace  []string
}

// NewMemory returns an interactive in-memory host (setup effects run).
func NewMemory() *Memory {
	m := &Memory{caps: Capabilities{SupportsSetupEffects: true}}
	m.root = m.newNode(KindContainer)
	m.root.tag = "root"
	return m
}

// NewStatic returns a render-only in-memory host: scopes never enable, so
// setups never run.
func NewStatic() *Memory {
	m := NewMemory()
	m.caps = Capabilities{SupportsSetupEffects: false}
	return m
}

// Root returns the tree root all live nodes descend from.
func (m *Memory) Root() Node { return m.root }

// Trace returns the mutation trace recorded since the last ResetTrace.
func (m *Memory) Trace() []string { return m.trace }

// ResetTrace discards the recorded mutation trace.
func (m *Memory) ResetTrace() { m.trace = nil }

func (m *Memory) newNode(kind Kind) *memNode {
	m.nextID++
	return &memNode{kind: kind, id: m.nextID}
}

func (m *Memory) record(format string, args ...any) {
	m.trace = append(m.trace, fmt.Sprintf(format, args...))
}

func (m *Memory) CreateContainer(tag string) Node {
	n := m.newNode(KindContainer)
	n.tag = tag
	return n
}

func (m *Memory) CreateText(text string) Node {
	n := m.newNode(KindText)
	n.text = text
	return n
}

func (m *Memory) SetText(node Node, text string) {
	n := node.(*memNode)
	if n.kind != KindText {
		errors.Report(&errors.Error{
			Op:   "host.SetText",
			Kind: errors.KindHost,
			Err:  fmt.Errorf("settext on %s node %s", n.kind, n.desc()),
		})
		return
	}
	n.text = text
	m.record("settext %s %q", n.desc(), text)
}

// Text returns a text node's current content.
func (m *Memory) Text(node Node) string {
	return node.(*memNode).text
}

func (m *Memory) CreateGroup(children ...Node) Node {
	g := m.newNode(KindGroup)
	for _, c := range children {
		for _, member := range m.flatten([]Node{c}) {
			m.link(g, g.lastChild, member)
		}
	}
	return g
}

func (m *Memory) UnwrapGroup(group Node) []Node {
	g := group.(*memNode)
	var out []Node
	for c := g.firstChild; c != nil; c = c.next {
		if c.kind == KindGroup {
			out = append(out, m.UnwrapGroup(c)...)
		} else {
			out = append(out, c)
		}
	}
	return out
}

func (m *Memory) GroupHandle(group Node) Handle {
	g := group.(*memNode)
	token := uuid.NewString()
	start := m.newNode(KindMarker)
	end := m.newNode(KindMarker)
	start.token = token
	end.token = token
	m.link(g, nil, start)
	m.link(g, g.lastChild, end)
	return Handle{Start: start, End: end, Token: token}
}

func (m *Memory) Write(h Handle, nodes []Node) {
	start := h.Start.(*memNode)
	end := h.End.(*memNode)
	for cur := start.next; cur != nil && cur != end; {
		doomed := cur
		cur = cur.next
		m.detach(doomed)
		m.record("remove %s", doomed.desc())
	}
	m.InsertAfter(start, nodes...)
}

func (m *Memory) Append(parent Node, nodes ...Node) {
	p := parent.(*memNode)
	for _, n := range m.flatten(nodes) {
		m.detach(n)
		m.link(p, p.lastChild, n)
		m.record("append %s to %s", n.desc(), p.desc())
	}
}

func (m *Memory) InsertAfter(ref Node, nodes ...Node) {
	prev := ref.(*memNode)
	if prev.parent == nil {
		errors.Report(&errors.Error{
			Op:   "host.InsertAfter",
			Kind: errors.KindHost,
			Err:  fmt.Errorf("reference %s is detached", prev.desc()),
		})
		return
	}
	for _, n := range m.flatten(nodes) {
		verb := "insert"
		if n.parent != nil && n.parent.kind != KindGroup {
			verb = "move"
		}
		m.detach(n)
		m.link(prev.parent, prev, n)
		m.record("%s %s after %s", verb, n.desc(), prev.desc())
		prev = n
	}
}

func (m *Memory) Remove(node Node) {
	n := node.(*memNode)
	if n.parent == nil {
		return
	}
	m.detach(n)
	m.record("remove %s", n.desc())
}

func (m *Memory) Parent(node Node) Node {
	n := node.(*memNode)
	if n.parent == nil || n.parent.kind == KindGroup {
		// A group is staging space, not a position in the tree.
		return nil
	}
	return n.parent
}

func (m *Memory) NextSibling(node Node) Node {
	n := node.(*memNode)
	if n.next == nil {
		return nil
	}
	return n.next
}

func (m *Memory) IsActive(node Node) bool {
	for n := node.(*memNode); n != nil; n = n.parent {
		if n == m.root {
			return true
		}
	}
	return false
}

func (m *Memory) Capabilities() Capabilities { return m.caps }

// flatten expands groups into their members, consuming the groups: an
// inserted group is empty afterwards, mirroring fragment semantics.
func (m *Memory) flatten(nodes []Node) []*memNode {
	var out []*memNode
	for _, node := range nodes {
		n := node.(*memNode)
		if n.kind != KindGroup {
			out = append(out, n)
			continue
		}
		for c := n.firstChild; c != nil; {
			member := c
			c = c.next
			m.detach(member)
			if member.kind == KindGroup {
				out = append(out, m.flatten([]Node{member})...)
			} else {
				out = append(out, member)
			}
		}
	}
	return out
}

// link attaches n under parent immediately after prev (or first if prev is
// nil). n must be detached.
func (m *Memory) link(parent, prev, n *memNode) {
	n.parent = parent
	n.prev = prev
	if prev != nil {
		n.next = prev.next
		prev.next = n
	} else if parent != nil {
		n.next = parent.firstChild
		parent.firstChild = n
	}
	if n.next != nil {
		n.next.prev = n
	} else if parent != nil {
		parent.lastChild = n
	}
}

func (m *Memory) detach(n *memNode) {
	if n.parent == nil {
		return
	}
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		n.parent.firstChild = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		n.parent.lastChild = n.prev
	}
	n.parent = nil
	n.prev = nil
	n.next = nil
}

// Dump renders the live tree as indented text. Node ids and marker tokens
// are omitted so the output is stable across runs.
func (m *Memory) Dump() string {
	var sb strings.Builder
	m.dumpNode(&sb, m.root, 0)
	return sb.String()
}

func (m *Memory) dumpNode(sb *strings.Builder, n *memNode, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	switch n.kind {
	case KindContainer:
		sb.WriteString("<" + n.tag + ">")
	case KindText:
		fmt.Fprintf(sb, "%q", n.text)
	case KindMarker:
		sb.WriteString("#marker")
	}
	sb.WriteString("\n")
	for c := n.firstChild; c != nil; c = c.next {
		m.dumpNode(sb, c, depth+1)
	}
}

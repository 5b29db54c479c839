// Package observer implements the connectivity observer: it watches specific
// host nodes for attachment and detachment and delivers each registered
// callback exactly once per attachment, and its returned cleanup exactly
// once per detachment.
//
// There is no cancellation token. The observer sheds stale work on its own:
// a waiter whose node is not live by the end-of-cycle sweep was abandoned
// (its render was discarded before insertion) and is dropped without being
// invoked, and a watched node that has left the live tree has its cleanup
// run and is removed from the watch sets.
package observer

import (
	"github.com/resuite/retend-sub003/pkg/host"
)

// AttachFunc runs when the awaited node becomes live. Its returned cleanup
// (if non-nil) runs when the node later leaves the live tree.
type AttachFunc func() func()

type entry struct {
	node     host.Node
	fn       AttachFunc
	cleanup  func()
	attached bool
}

// Observer tracks attachment waiters against one host adapter.
type Observer struct {
	adapter host.Adapter
	entries []*entry
}

// New returns an observer reading liveness through the given adapter.
func New(adapter host.Adapter) *Observer {
	return &Observer{adapter: adapter}
}

// OnAttached registers fn to run once when node is live. If the node is
// already live, fn runs immediately. Registration is good for one
// attach/detach cycle; the entry is removed once its cleanup has run.
func (o *Observer) OnAttached(node host.Node, fn AttachFunc) {
	if node == nil || fn == nil {
		return
	}
	e := &entry{node: node, fn: fn}
	if o.adapter.IsActive(node) {
		e.attached = true
		e.cleanup = fn()
	}
	o.entries = append(o.entries, e)
}

// Forget drops every waiter and watch for the node without invoking
// anything.
func (o *Observer) Forget(node host.Node) {
	kept := o.entries[:0]
	for _, e := range o.entries {
		if e.node != node {
			kept = append(kept, e)
		}
	}
	o.entries = kept
}

// Pending reports how many registrations are still tracked, for tests.
func (o *Observer) Pending() int { return len(o.entries) }

// Sweep reconciles the watch sets against current liveness. The render
// context calls it at the end of every render and update cycle. A callback
// may register further waiters; those are carried to the next cycle
// unevaluated.
func (o *Observer) Sweep() {
	snapshot := o.entries
	// Re-entrant OnAttached calls land on a fresh slice so the walk below
	// cannot drop them when it rewrites the entry list.
	o.entries = nil
	kept := snapshot[:0]
	for _, e := range snapshot {
		active := o.adapter.IsActive(e.node)
		switch {
		case !e.attached && active:
			e.attached = true
			e.cleanup = e.fn()
			kept = append(kept, e)
		case e.attached && !active:
			if e.cleanup != nil {
				e.cleanup()
			}
			// One cycle done; the registration is spent.
		case !e.attached && !active:
			// Abandoned before ever attaching; drop without invoking.
		default:
			kept = append(kept, e)
		}
	}
	o.entries = append(kept, o.entries...)
}

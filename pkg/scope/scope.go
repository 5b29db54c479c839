// Package scope implements the hierarchical effect-scope tree.
//
// A scope owns setup callbacks and the cleanups they return, plus child
// scopes created by Branch. The tree mirrors the logical rendering structure
// (a conditional arm inside a list item inside another list), not the host
// tree: disposing an outer branch tears down everything created inside it,
// in depth-correct order, without any global bookkeeping.
//
// Scopes live in an Arena and are addressed by generation-counted handles
// rather than pointers, so teardown and detach/reattach are array and map
// operations and a stale handle is always a safe no-op.
package scope

import (
	"github.com/resuite/retend-sub003/pkg/errors"
)

// Setup is a callback run when a scope activates. Its returned Cleanup (if
// non-nil) runs when the scope is disposed.
type Setup func() Cleanup

// Cleanup undoes the work of one Setup.
type Cleanup func()

// Handle addresses a scope in an Arena. The zero Handle is invalid.
type Handle struct {
	index int32
	gen   uint32
}

// None is the invalid handle. All Arena operations on it are no-ops.
var None = Handle{index: -1}

type record struct {
	gen      uint32
	inUse    bool
	enabled  bool
	parent   Handle
	setups   []Setup
	cleanups []Cleanup
	subs     []func()
	children []Handle
}

// Arena owns all scope records for one renderer.
type Arena struct {
	interactive bool
	records     []*record
	free        []int32
}

// New returns an arena. interactive comes from the host adapter's
// SupportsSetupEffects capability; when false, Enable is a no-op everywhere
// and no setup or cleanup ever runs.
func New(interactive bool) *Arena {
	return &Arena{interactive: interactive}
}

// Interactive reports whether setup effects can ever run in this arena.
func (a *Arena) Interactive() bool { return a.interactive }

// Root allocates a top-level scope, enabled in interactive arenas.
func (a *Arena) Root() Handle {
	return a.alloc(None, a.interactive)
}

// Branch allocates a child scope inheriting the parent's enabled state.
func (a *Arena) Branch(parent Handle) Handle {
	r := a.get(parent)
	if r == nil {
		return None
	}
	child := a.alloc(parent, r.enabled)
	r.children = append(r.children, child)
	return child
}

// Add registers a setup callback. It has no immediate effect; the callback
// runs on the next Activate.
func (a *Arena) Add(h Handle, fn Setup) {
	r := a.get(h)
	if r == nil || fn == nil {
		return
	}
	r.setups = append(r.setups, fn)
}

// AddCleanup registers a cleanup that arrived after activation, typically
// from an asynchronous setup. It reports false when the scope is gone or
// disabled: a disposal that happened first will not find the cleanup, so the
// caller must release the resource itself if it cares. This is a best-effort
// gap, not a queue.
func (a *Arena) AddCleanup(h Handle, fn Cleanup) bool {
	r := a.get(h)
	if r == nil || !r.enabled || fn == nil {
		return false
	}
	r.cleanups = append(r.cleanups, fn)
	return true
}

// Watch ties a subscription's release to this scope's disposal. unsubscribe
// runs exactly once, before child disposal, when the scope is disposed.
// This is the explicit replacement for weak subscriptions.
func (a *Arena) Watch(h Handle, unsubscribe func()) {
	r := a.get(h)
	if r == nil || unsubscribe == nil {
		return
	}
	r.subs = append(r.subs, unsubscribe)
}

// Enable marks the scope and its descendants runnable. In non-interactive
// arenas it is a no-op, so setups never run during render-only output.
func (a *Arena) Enable(h Handle) {
	if !a.interactive {
		return
	}
	a.setEnabled(h, true)
}

// Disable marks the scope and its descendants inert: Activate and Dispose on
// them return immediately.
func (a *Arena) Disable(h Handle) {
	a.setEnabled(h, false)
}

// Enabled reports whether the scope currently executes lifecycle callbacks.
// Stale handles report false.
func (a *Arena) Enabled(h Handle) bool {
	r := a.get(h)
	return r != nil && r.enabled
}

// Activate runs the scope's setups in registration order, collecting
// returned cleanups, then activates children in creation order (pre-order:
// parent setups run before any child's). A panicking setup is reported and
// suppressed; its siblings still run.
func (a *Arena) Activate(h Handle) {
	r := a.get(h)
	if r == nil || !r.enabled {
		return
	}
	for _, setup := range r.setups {
		// A setup may synchronously trigger an update that disposes or
		// disables this very scope mid-activation; later setups must not run.
		if a.get(h) != r || !r.enabled {
			return
		}
		cleanup := a.runSetup(setup)
		if cleanup == nil {
			continue
		}
		// If the setup itself tore the scope down, its cleanup runs
		// immediately rather than leaking into a recycled record.
		if a.get(h) == r && r.enabled {
			r.cleanups = append(r.cleanups, cleanup)
		} else {
			a.runCleanup(cleanup)
		}
	}
	if a.get(h) != r || !r.enabled {
		return
	}
	for _, child := range r.children {
		a.Activate(child)
	}
}

// Dispose tears the scope down: its own cleanups run first (registration
// order, panics reported and suppressed), watched subscriptions are
// released, then children are disposed recursively and disabled so a
// late-arriving notification on the orphaned subtree cannot re-trigger
// effects. The record is then recycled; a second Dispose through the same
// handle is a no-op, as is Dispose on a disabled scope.
func (a *Arena) Dispose(h Handle) {
	r := a.get(h)
	if r == nil || !r.enabled {
		return
	}
	for _, cleanup := range r.cleanups {
		a.runCleanup(cleanup)
	}
	for _, unsubscribe := range r.subs {
		a.runCleanup(Cleanup(unsubscribe))
	}
	children := r.children
	r.setups, r.cleanups, r.subs, r.children = nil, nil, nil, nil
	for _, child := range children {
		a.Dispose(child)
		// A disabled child skipped its cleanups above; it must still never
		// see a late notification, so its records are reclaimed regardless.
		a.setEnabled(child, false)
		a.recycle(child)
	}
	a.recycle(h)
}

// Detach snapshots the scope's state and clears it without running any
// cleanup. This is a handoff, not a teardown: pair it with Attach to move a
// live subtree's effects to another scope (e.g. a kept-alive branch moved
// between rendering sites) without re-running setups.
func (a *Arena) Detach(h Handle) State {
	r := a.get(h)
	if r == nil {
		return State{}
	}
	s := State{
		valid:    true,
		enabled:  r.enabled,
		setups:   r.setups,
		cleanups: r.cleanups,
		subs:     r.subs,
		children: r.children,
	}
	r.setups, r.cleanups, r.subs, r.children = nil, nil, nil, nil
	return s
}

// Attach installs a detached snapshot wholesale — state, enabled flag and
// children — without invoking setups. Children are reparented to h.
func (a *Arena) Attach(h Handle, s State) {
	r := a.get(h)
	if r == nil || !s.valid {
		return
	}
	r.enabled = s.enabled
	r.setups = s.setups
	r.cleanups = s.cleanups
	r.subs = s.subs
	r.children = s.children
	for _, child := range s.children {
		if cr := a.get(child); cr != nil {
			cr.parent = h
		}
	}
}

// State is a detached scope snapshot produced by Detach.
type State struct {
	valid    bool
	enabled  bool
	setups   []Setup
	cleanups []Cleanup
	subs     []func()
	children []Handle
}

func (a *Arena) alloc(parent Handle, enabled bool) Handle {
	if n := len(a.free); n > 0 {
		index := a.free[n-1]
		a.free = a.free[:n-1]
		r := a.records[index]
		r.inUse = true
		r.enabled = enabled
		r.parent = parent
		return Handle{index: index, gen: r.gen}
	}
	r := &record{inUse: true, enabled: enabled, parent: parent}
	a.records = append(a.records, r)
	return Handle{index: int32(len(a.records) - 1), gen: 0}
}

func (a *Arena) get(h Handle) *record {
	if h.index < 0 || int(h.index) >= len(a.records) {
		return nil
	}
	r := a.records[h.index]
	if !r.inUse || r.gen != h.gen {
		return nil
	}
	return r
}

// recycle frees a record subtree and unlinks it from its parent's children.
func (a *Arena) recycle(h Handle) {
	r := a.get(h)
	if r == nil {
		return
	}
	for _, child := range r.children {
		a.recycle(child)
	}
	if pr := a.get(r.parent); pr != nil {
		for i, c := range pr.children {
			if c == h {
				pr.children = append(pr.children[:i], pr.children[i+1:]...)
				break
			}
		}
	}
	*r = record{gen: r.gen + 1}
	a.free = append(a.free, h.index)
}

func (a *Arena) setEnabled(h Handle, enabled bool) {
	r := a.get(h)
	if r == nil {
		return
	}
	r.enabled = enabled
	for _, child := range r.children {
		a.setEnabled(child, enabled)
	}
}

func (a *Arena) runSetup(fn Setup) (cleanup Cleanup) {
	defer func() {
		if v := recover(); v != nil {
			errors.ReportLifecycle(&errors.LifecycleError{
				Op:         "scope.Activate",
				Phase:      "setup",
				Value:      v,
				StackTrace: errors.CaptureStack(),
			})
		}
	}()
	return fn()
}

func (a *Arena) runCleanup(fn Cleanup) {
	defer func() {
		if v := recover(); v != nil {
			errors.ReportLifecycle(&errors.LifecycleError{
				Op:         "scope.Dispose",
				Phase:      "cleanup",
				Value:      v,
				StackTrace: errors.CaptureStack(),
			})
		}
	}()
	fn()
}

// Package flow implements the control-flow rendering primitives: If, Match,
// List and Async. Each primitive owns a bracketed host region and an effect
// scope branch, recomputes its content when a reactive cell changes, and
// funnels keyed list updates through the reconciler.
//
// Updates are push-based and synchronous: a cell's setter runs the affected
// primitive's re-render to completion before it returns. There is no
// tree-wide diff and no update queue.
package flow

import (
	"github.com/resuite/retend-sub003/pkg/host"
	"github.com/resuite/retend-sub003/pkg/observer"
	"github.com/resuite/retend-sub003/pkg/scope"
)

// Render computes content for one branch. A nil return renders nothing.
// Errors in render callbacks propagate to the caller that triggered the
// update; they are never swallowed.
type Render func(*Context) host.Node

// Context carries the renderer's collaborators and the effect scope under
// which content is currently being computed. It is passed explicitly —
// there is no process-wide active-renderer slot, so independent renderers
// can coexist.
type Context struct {
	adapter  host.Adapter
	scopes   *scope.Arena
	observer *observer.Observer
	scope    scope.Handle
}

// NewContext returns a root context for the given host. The scope arena's
// interactivity follows the host's SupportsSetupEffects capability: in a
// render-only host no setup ever runs.
func NewContext(adapter host.Adapter) *Context {
	scopes := scope.New(adapter.Capabilities().SupportsSetupEffects)
	return &Context{
		adapter:  adapter,
		scopes:   scopes,
		observer: observer.New(adapter),
		scope:    scopes.Root(),
	}
}

// Adapter returns the host adapter.
func (c *Context) Adapter() host.Adapter { return c.adapter }

// Scopes returns the effect-scope arena.
func (c *Context) Scopes() *scope.Arena { return c.scopes }

// Observer returns the connectivity observer.
func (c *Context) Observer() *observer.Observer { return c.observer }

// Scope returns the effect scope content is currently rendered under.
func (c *Context) Scope() scope.Handle { return c.scope }

// withScope returns a copy of the context rendering under h.
func (c *Context) withScope(h scope.Handle) *Context {
	next := *c
	next.scope = h
	return &next
}

// OnSetup registers a setup callback on the current scope. It runs when the
// subtree activates; its returned cleanup runs on disposal.
func (c *Context) OnSetup(fn scope.Setup) {
	c.scopes.Add(c.scope, fn)
}

// OnAttached asks the connectivity observer to call fn once node is live,
// and fn's returned cleanup once it no longer is.
func (c *Context) OnAttached(node host.Node, fn observer.AttachFunc) {
	c.observer.OnAttached(node, fn)
}

// Mount appends content under parent, activates the whole scope tree
// top-down, and sweeps the observer so ref-bearing nodes see their
// attachment.
func (c *Context) Mount(parent, content host.Node) {
	c.adapter.Append(parent, content)
	c.scopes.Activate(c.scope)
	c.observer.Sweep()
}

// Unmount disposes the scope tree, running every cleanup bottom-reachable
// from the root, and sweeps the observer. Detaching the host nodes is the
// caller's business.
func (c *Context) Unmount() {
	c.scopes.Dispose(c.scope)
	c.observer.Sweep()
}

package flow

import (
	"github.com/resuite/retend-sub003/pkg/host"
	"github.com/resuite/retend-sub003/pkg/scope"
)

// region is the shared bracketing machinery under every control-flow
// primitive: a sentinel pair marking the host range the primitive owns
// exclusively, an owner scope for the primitive itself, and a current scope
// for whichever branch is rendered right now.
type region struct {
	ctx     *Context
	group   host.Node
	handle  host.Handle
	owner   scope.Handle
	current scope.Handle
}

func newRegion(ctx *Context) *region {
	group := ctx.adapter.CreateGroup()
	return &region{
		ctx:     ctx,
		group:   group,
		handle:  ctx.adapter.GroupHandle(group),
		owner:   ctx.scopes.Branch(ctx.scope),
		current: scope.None,
	}
}

// live reports whether the primitive's owner scope is still part of the
// enabled tree. Update callbacks bail out when it is not, so a late
// notification on an orphaned subtree cannot re-render.
func (r *region) live() bool {
	return r.ctx.scopes.Enabled(r.owner)
}

// swap replaces the region's content with fn's output under a freshly
// branched scope. The previous branch is disposed first (cleanups run
// bottom-reachable, before its nodes leave the host). On the initial render
// the new scope is left inactive — activation arrives top-down from
// Context.Mount or from the enclosing primitive's own swap — while reactive
// updates activate immediately and sweep the observer.
//
// A panic or error inside fn propagates to the caller; by then the old
// branch is gone, which is the documented loud-failure mode for render
// errors.
func (r *region) swap(fn Render, initial bool) {
	if !initial {
		r.ctx.scopes.Dispose(r.current)
	}
	r.current = r.ctx.scopes.Branch(r.owner)
	var nodes []host.Node
	if fn != nil {
		if content := fn(r.ctx.withScope(r.current)); content != nil {
			nodes = append(nodes, content)
		}
	}
	r.ctx.adapter.Write(r.handle, nodes)
	if !initial {
		r.ctx.scopes.Activate(r.current)
		r.ctx.observer.Sweep()
	}
}

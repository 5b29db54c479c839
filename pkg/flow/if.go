package flow

import (
	"github.com/resuite/retend-sub003/pkg/cell"
	"github.com/resuite/retend-sub003/pkg/host"
)

// If renders then while cond is true and els (which may be nil) while it is
// false. The returned group carries the bracket pair; content is swapped in
// place on every cond change, tearing down the old branch's effects first.
func If(ctx *Context, cond *cell.Cell[bool], then, els Render) host.Node {
	r := newRegion(ctx)
	pick := func(v bool) Render {
		if v {
			return then
		}
		return els
	}
	r.swap(pick(cond.Get()), true)

	unsubscribe := cond.Listen(func(v bool) {
		if !r.live() {
			return
		}
		r.swap(pick(v), false)
	})
	ctx.scopes.Watch(r.owner, unsubscribe)
	return r.group
}

// Match renders the case matching the cell's value, or fallback (which may
// be nil) when no case matches. One scope per rendered arm; switching values
// disposes the old arm before the new one renders.
func Match[T comparable](ctx *Context, value *cell.Cell[T], cases map[T]Render, fallback Render) host.Node {
	r := newRegion(ctx)
	pick := func(v T) Render {
		if fn, ok := cases[v]; ok {
			return fn
		}
		return fallback
	}
	r.swap(pick(value.Get()), true)

	unsubscribe := value.Listen(func(v T) {
		if !r.live() {
			return
		}
		r.swap(pick(v), false)
	})
	ctx.scopes.Watch(r.owner, unsubscribe)
	return r.group
}

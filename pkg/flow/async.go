package flow

import (
	"github.com/resuite/retend-sub003/pkg/host"
)

// Deferred is the promise-driven placeholder's driver: a single-resolution
// value that delivers its callbacks synchronously on the render goroutine.
// Deferreds resolve independently of one another; there is no ordering
// guarantee between pending placeholders.
type Deferred[T any] struct {
	resolved bool
	value    T
	waiters  []func(T)
}

// NewDeferred returns an unresolved deferred.
func NewDeferred[T any]() *Deferred[T] {
	return &Deferred[T]{}
}

// Resolve delivers the value to every waiter. Later calls are ignored.
// Resolve must run on the render goroutine.
func (d *Deferred[T]) Resolve(value T) {
	if d.resolved {
		return
	}
	d.resolved = true
	d.value = value
	waiters := d.waiters
	d.waiters = nil
	for _, fn := range waiters {
		fn(value)
	}
}

// Value returns the resolved value, if any.
func (d *Deferred[T]) Value() (T, bool) {
	return d.value, d.resolved
}

// Then runs fn with the value once resolved; immediately if already done.
func (d *Deferred[T]) Then(fn func(T)) {
	if d.resolved {
		fn(d.value)
		return
	}
	d.waiters = append(d.waiters, fn)
}

// Async renders pending (which may be nil) until the deferred resolves, then
// swaps in done's content in place. A deferred already resolved at
// construction renders done's content directly as the initial branch.
//
// Disposal of the surrounding branch before resolution simply abandons the
// placeholder: the resolution callback finds the owner scope gone and does
// nothing.
func Async[T any](ctx *Context, d *Deferred[T], pending Render, done func(*Context, T) host.Node) host.Node {
	r := newRegion(ctx)

	if value, ok := d.Value(); ok {
		r.swap(func(c *Context) host.Node { return done(c, value) }, true)
		return r.group
	}

	r.swap(pending, true)
	d.Then(func(value T) {
		if !r.live() {
			return
		}
		r.swap(func(c *Context) host.Node { return done(c, value) }, false)
	})
	return r.group
}

// Package cell provides the reactive value container that drives re-renders.
//
// A Cell holds a value and notifies its listeners synchronously when the
// value changes:
//
//	count := cell.New(0)
//	unsub := count.Listen(func(n int) { fmt.Println("count is", n) })
//	count.Set(5) // listener fires before Set returns
//	unsub()
//
// Multiple updates can be batched so each cell notifies at most once, with
// its latest value, when the outermost batch ends:
//
//	cell.Batch(func() {
//	    a.Set(1)
//	    b.Set(2)
//	})
//
// Cells are not safe for concurrent use. The render core is single-threaded
// and cooperative; all reads and writes must happen on the render goroutine.
package cell

// listener is one registered callback. Unsubscribed listeners are marked
// rather than spliced out so unsubscription is safe mid-notification.
type listener[T any] struct {
	fn      func(T)
	removed bool
}

// Cell holds a value and a set of listeners notified on change.
type Cell[T any] struct {
	value     T
	listeners []*listener[T]
	queued    bool
}

// New returns a cell holding the given initial value.
func New[T any](initial T) *Cell[T] {
	return &Cell[T]{value: initial}
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	return c.value
}

// Set stores a new value and notifies listeners synchronously, unless a
// batch is open, in which case notification is deferred to the end of the
// outermost batch. A listener that calls Set on the same cell re-enters
// notification before the outer Set returns.
func (c *Cell[T]) Set(value T) {
	c.value = value
	if batchDepth > 0 {
		if !c.queued {
			c.queued = true
			pending = append(pending, c)
		}
		return
	}
	c.notify()
}

// Update applies a transformation to the current value and notifies.
func (c *Cell[T]) Update(transform func(T) T) {
	c.Set(transform(c.value))
}

// Listen registers a callback invoked with the new value on every change.
// It returns an unsubscribe function; unsubscribing is idempotent and safe
// to call while a notification is in flight.
func (c *Cell[T]) Listen(fn func(T)) func() {
	l := &listener[T]{fn: fn}
	c.listeners = append(c.listeners, l)
	return func() {
		if l.removed {
			return
		}
		l.removed = true
		for i, cur := range c.listeners {
			if cur == l {
				c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
				break
			}
		}
	}
}

// ListenerCount reports how many listeners are currently subscribed.
func (c *Cell[T]) ListenerCount() int {
	return len(c.listeners)
}

func (c *Cell[T]) notify() {
	// Snapshot so listeners added during notification fire on the next
	// change, and listeners removed during notification are skipped.
	snapshot := make([]*listener[T], len(c.listeners))
	copy(snapshot, c.listeners)
	value := c.value
	for _, l := range snapshot {
		if l.removed {
			continue
		}
		l.fn(value)
	}
}

// flush is called by Batch when the outermost batch ends.
func (c *Cell[T]) flush() {
	c.queued = false
	c.notify()
}

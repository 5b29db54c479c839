// Package reconcile transforms the host-node run between a bracket pair so
// it matches a new ordered item list, preserving node identity for every key
// that survives. There is no tree snapshot and no diff: the previous state
// is the keyed cache from the last run, and mutations are computed with a
// single forward walk.
package reconcile

import (
	"github.com/resuite/retend-sub003/pkg/cell"
	"github.com/resuite/retend-sub003/pkg/host"
	"github.com/resuite/retend-sub003/pkg/scope"
)

// Entry records one rendered list item: the contiguous run of host nodes the
// item produced (owned by this entry, never shared), the item's reactive
// position counter, and the effect scope governing its lifecycle.
type Entry struct {
	Key   any
	Nodes []host.Node
	Index *cell.Cell[int]
	Scope scope.Handle
}

// Cache holds the entries of one rendered list generation, in list order.
type Cache struct {
	entries map[any]*Entry
	order   []any
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[any]*Entry)}
}

// Get returns the entry for key, or nil.
func (c *Cache) Get(key any) *Entry {
	return c.entries[key]
}

// Put appends an entry; the caller supplies entries in list order.
func (c *Cache) Put(e *Entry) {
	if _, exists := c.entries[e.Key]; !exists {
		c.order = append(c.order, e.Key)
	}
	c.entries[e.Key] = e
}

// Keys returns the keys in list order.
func (c *Cache) Keys() []any { return c.order }

// Len returns the number of entries.
func (c *Cache) Len() int { return len(c.order) }

// Options carries the optional reconciliation hooks.
type Options struct {
	// OnBeforeRemove runs for each node of a removed item, before detach.
	OnBeforeRemove func(host.Node)
	// OnBeforeMove runs for each node of a relocated item, before the move.
	OnBeforeMove func(host.Node)
}

// lookaheadEntry tells the reorder pass, in O(1), that the node blocking the
// cursor starts some other item's run, and where that run's settled position
// is (just after the previous item's last node in the new order).
type lookaheadEntry struct {
	key    any
	anchor host.Node
}

// Reconcile mutates the region between h.Start and h.End so that node order
// matches next's key order, each item's run contiguous. Keys present in prev
// but absent from next are disposed and detached first, so a mid-list
// removal never cascades into per-item shifts. Keys new to next must already
// carry freshly rendered (detached) node runs.
func Reconcile(a host.Adapter, scopes *scope.Arena, h host.Handle, prev, next *Cache, opts Options) {
	removeStale(a, scopes, prev, next, opts)

	lookahead := buildLookahead(next)

	// placed is the last correctly positioned attached node; batch holds
	// new or displaced runs awaiting one InsertAfter to amortize host
	// mutations.
	placed := h.Start
	var batch []host.Node
	inBatch := make(map[host.Node]bool)

	flush := func() host.Node {
		if len(batch) == 0 {
			return placed
		}
		a.InsertAfter(placed, batch...)
		last := batch[len(batch)-1]
		batch = batch[:0]
		clear(inBatch)
		return last
	}

	for i, key := range next.order {
		e := next.entries[key]
		if e == nil || len(e.Nodes) == 0 {
			continue
		}
		if e.Index != nil && e.Index.Get() != i {
			e.Index.Set(i)
		}
		first := e.Nodes[0]
		last := e.Nodes[len(e.Nodes)-1]

		if a.NextSibling(placed) == first {
			// Already correct; anything pending slots in just before it.
			flush()
			placed = last
			continue
		}

		if blocking := a.NextSibling(placed); blocking != nil {
			if la, ok := lookahead[blocking]; ok && viableAnchor(a, la.anchor, blocking, first, inBatch) {
				relocate(a, next.entries[la.key], la.anchor, opts)
				if a.NextSibling(placed) == first {
					flush()
					placed = last
					continue
				}
			}
		}

		if a.Parent(first) == nil {
			// Never attached: a brand-new render joins the pending batch.
			for _, n := range e.Nodes {
				batch = append(batch, n)
				inBatch[n] = true
			}
			continue
		}

		// Attached but out of place: move the whole run to the flush point.
		point := flush()
		relocate(a, e, point, opts)
		placed = last
	}

	if len(batch) > 0 {
		a.InsertAfter(placed, batch...)
	}
}

// removeStale is the removal pass: every key leaving the list has its scope
// disposed (cleanups run before its nodes leave the host), then its nodes
// detached. Running removals to completion first collapses the pathological
// mid-list removal into a single detach instead of O(n) shifts.
func removeStale(a host.Adapter, scopes *scope.Arena, prev, next *Cache, opts Options) {
	if prev == nil {
		return
	}
	for _, key := range prev.order {
		if next.Get(key) != nil {
			continue
		}
		e := prev.entries[key]
		scopes.Dispose(e.Scope)
		if opts.OnBeforeRemove != nil {
			for _, n := range e.Nodes {
				opts.OnBeforeRemove(n)
			}
		}
		for _, n := range e.Nodes {
			a.Remove(n)
		}
	}
}

// buildLookahead indexes, for each consecutive pair of items with rendered
// runs in the new order, the later item's first node to its settled anchor.
// The map lives for exactly one Reconcile call.
func buildLookahead(next *Cache) map[host.Node]lookaheadEntry {
	lookahead := make(map[host.Node]lookaheadEntry)
	var prevWithNodes *Entry
	for _, key := range next.order {
		e := next.entries[key]
		if e == nil || len(e.Nodes) == 0 {
			continue
		}
		if prevWithNodes != nil {
			anchor := prevWithNodes.Nodes[len(prevWithNodes.Nodes)-1]
			lookahead[e.Nodes[0]] = lookaheadEntry{key: key, anchor: anchor}
		}
		prevWithNodes = e
	}
	return lookahead
}

// viableAnchor applies the relocation exclusion checks: the anchor must be
// attached, must not be awaiting a batch flush, must not already precede the
// blocking node, and must not be the current item's own first node.
func viableAnchor(a host.Adapter, anchor, blocking, currentFirst host.Node, inBatch map[host.Node]bool) bool {
	if anchor == nil || inBatch[anchor] {
		return false
	}
	if a.Parent(anchor) == nil {
		return false
	}
	if a.NextSibling(anchor) == blocking {
		return false
	}
	return anchor != currentFirst
}

func relocate(a host.Adapter, e *Entry, after host.Node, opts Options) {
	if e == nil || len(e.Nodes) == 0 {
		return
	}
	if opts.OnBeforeMove != nil {
		for _, n := range e.Nodes {
			opts.OnBeforeMove(n)
		}
	}
	a.InsertAfter(after, e.Nodes...)
}

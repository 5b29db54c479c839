package flow

import (
	"fmt"

	"github.com/resuite/retend-sub003/pkg/cell"
	"github.com/resuite/retend-sub003/pkg/errors"
	"github.com/resuite/retend-sub003/pkg/host"
	"github.com/resuite/retend-sub003/pkg/reconcile"
	"github.com/resuite/retend-sub003/pkg/scope"
)

// KeyFunc derives a stable identity for an item. Two occurrences of the same
// key are the same logical item regardless of value changes.
type KeyFunc[T any] func(item T, index int) any

// ItemRender renders one list item. index is the item's live position
// counter; it updates in place when reconciliation moves the item.
type ItemRender[T any] func(ctx *Context, item T, index *cell.Cell[int]) host.Node

// List renders a keyed collection into a bracketed region and keeps the host
// run positionally reconciled with the cell's value. Each key owns one cache
// entry and one effect scope: reorders move the key's node-run wholesale
// (focus and component state survive), removals dispose the key's scope
// before its nodes detach, and insertions render under a fresh scope
// activated after insertion.
//
// A nil keyOf is a configuration error and panics at the call site.
func List[T any](ctx *Context, items *cell.Cell[[]T], keyOf KeyFunc[T], render ItemRender[T]) host.Node {
	if keyOf == nil {
		panic(&errors.Error{
			Op:   "flow.List",
			Kind: errors.KindConfig,
			Err:  fmt.Errorf("nil key function"),
		})
	}

	r := newRegion(ctx)
	cache := reconcile.NewCache()

	sync := func(list []T, initial bool) {
		next := reconcile.NewCache()
		var fresh []scope.Handle
		for i, item := range list {
			key := keyOf(item, i)
			if next.Get(key) != nil {
				// Duplicate key: the first occurrence wins.
				continue
			}
			if e := cache.Get(key); e != nil {
				next.Put(e)
				continue
			}
			index := cell.New(i)
			branch := ctx.scopes.Branch(r.owner)
			var nodes []host.Node
			if content := render(ctx.withScope(branch), item, index); content != nil {
				if content.Kind() == host.KindGroup {
					nodes = ctx.adapter.UnwrapGroup(content)
				} else {
					nodes = []host.Node{content}
				}
			}
			next.Put(&reconcile.Entry{Key: key, Nodes: nodes, Index: index, Scope: branch})
			fresh = append(fresh, branch)
		}

		reconcile.Reconcile(ctx.adapter, ctx.scopes, r.handle, cache, next, reconcile.Options{})
		cache = next

		if !initial {
			for _, branch := range fresh {
				ctx.scopes.Activate(branch)
			}
			ctx.observer.Sweep()
		}
	}

	sync(items.Get(), true)

	unsubscribe := items.Listen(func(list []T) {
		if !r.live() {
			return
		}
		sync(list, false)
	})
	ctx.scopes.Watch(r.owner, unsubscribe)
	return r.group
}

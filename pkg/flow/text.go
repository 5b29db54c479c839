package flow

import (
	"github.com/resuite/retend-sub003/pkg/cell"
	"github.com/resuite/retend-sub003/pkg/host"
)

// Text returns a text node whose content tracks the cell. The subscription
// is released when the scope it was rendered under is disposed.
func Text(ctx *Context, source *cell.Cell[string]) host.Node {
	node := ctx.adapter.CreateText(source.Get())
	unsubscribe := source.Listen(func(s string) {
		ctx.adapter.SetText(node, s)
	})
	ctx.scopes.Watch(ctx.scope, unsubscribe)
	return node
}

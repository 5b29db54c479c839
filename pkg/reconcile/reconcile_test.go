package reconcile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resuite/retend-sub003/pkg/cell"
	"github.com/resuite/retend-sub003/pkg/host"
	"github.com/resuite/retend-sub003/pkg/scope"
)

// fixture owns a bracketed region inside an attached in-memory tree.
type fixture struct {
	m      *host.Memory
	scopes *scope.Arena
	root   scope.Handle
	h      host.Handle
	cache  *Cache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	m := host.NewMemory()
	scopes := scope.New(true)
	group := m.CreateGroup()
	h := m.GroupHandle(group)
	m.Append(m.Root(), group)
	return &fixture{m: m, scopes: scopes, root: scopes.Root(), h: h, cache: NewCache()}
}

// entry renders a run of width nodes for key, reusing the previous
// generation's entry when the key survives.
func (f *fixture) entry(key string, width int) *Entry {
	if e := f.cache.Get(key); e != nil {
		return e
	}
	nodes := make([]host.Node, width)
	for i := range nodes {
		nodes[i] = f.m.CreateText(key)
	}
	return &Entry{Key: key, Nodes: nodes, Index: cell.New(-1), Scope: f.scopes.Branch(f.root)}
}

// apply reconciles the region to the given key order (width nodes per new
// item) and returns the move count observed through OnBeforeMove.
func (f *fixture) apply(keys []string, width int) int {
	next := NewCache()
	for _, key := range keys {
		next.Put(f.entry(key, width))
	}
	moves := 0
	Reconcile(f.m, f.scopes, f.h, f.cache, next, Options{
		OnBeforeMove: func(host.Node) { moves++ },
	})
	f.cache = next
	return moves
}

// region returns the keys of the text nodes currently between the sentinels.
func (f *fixture) region(t *testing.T) []string {
	t.Helper()
	var out []string
	for n := f.m.NextSibling(f.h.Start); n != nil && n != f.h.End; n = f.m.NextSibling(n) {
		require.Equal(t, host.KindText, n.Kind())
		out = append(out, f.m.Text(n))
	}
	return out
}

func expand(keys []string, width int) []string {
	var out []string
	for _, k := range keys {
		for i := 0; i < width; i++ {
			out = append(out, k)
		}
	}
	return out
}

func TestInitialRenderFillsRegionInOrder(t *testing.T) {
	f := newFixture(t)
	moves := f.apply([]string{"A", "B", "C"}, 1)
	assert.Zero(t, moves)
	assert.Equal(t, []string{"A", "B", "C"}, f.region(t))
}

func TestIdentityPreservedAcrossReorder(t *testing.T) {
	f := newFixture(t)
	f.apply([]string{"A", "B", "C"}, 2)
	before := map[string][]host.Node{}
	for _, k := range f.cache.Keys() {
		before[k.(string)] = f.cache.Get(k).Nodes
	}

	f.apply([]string{"C", "A", "B"}, 2)

	for _, k := range []string{"A", "B", "C"} {
		after := f.cache.Get(k).Nodes
		require.Len(t, after, 2)
		for i := range after {
			assert.Same(t, before[k][i], after[i], "node %d of %s must survive the reorder", i, k)
		}
	}
	assert.Equal(t, expand([]string{"C", "A", "B"}, 2), f.region(t))
}

func TestMinimalRemoval(t *testing.T) {
	f := newFixture(t)
	f.apply([]string{"A", "B", "C", "D", "E"}, 1)
	f.m.ResetTrace()

	moves := f.apply([]string{"B", "C", "D", "E"}, 1)

	assert.Zero(t, moves, "removal must not shift surviving items")
	removals := 0
	for _, line := range f.m.Trace() {
		switch {
		case strings.HasPrefix(line, "remove "):
			removals++
		case strings.HasPrefix(line, "move "):
			t.Errorf("unexpected host move: %s", line)
		}
	}
	assert.Equal(t, 1, removals, "exactly the removed item's node detaches")
	assert.Equal(t, []string{"B", "C", "D", "E"}, f.region(t))
}

func TestForwardMoveCollapses(t *testing.T) {
	f := newFixture(t)
	f.apply([]string{"A", "B", "C", "D", "E"}, 1)
	f.m.ResetTrace()

	moves := f.apply([]string{"B", "C", "D", "E", "A"}, 1)

	assert.Equal(t, 1, moves, "only A's single-node run relocates")
	hostMoves := 0
	for _, line := range f.m.Trace() {
		if strings.HasPrefix(line, "move ") {
			hostMoves++
		}
	}
	assert.Equal(t, 1, hostMoves, "no intermediate bubble moves")
	assert.Equal(t, []string{"B", "C", "D", "E", "A"}, f.region(t))
}

func TestForwardMoveCollapsesWideRuns(t *testing.T) {
	f := newFixture(t)
	f.apply([]string{"A", "B", "C", "D", "E"}, 3)
	f.m.ResetTrace()

	moves := f.apply([]string{"B", "C", "D", "E", "A"}, 3)

	assert.Equal(t, 3, moves, "exactly A's run relocates, node by node")
	assert.Equal(t, expand([]string{"B", "C", "D", "E", "A"}, 3), f.region(t))
}

func TestBackwardMoveToFront(t *testing.T) {
	f := newFixture(t)
	f.apply([]string{"A", "B", "C", "D", "E"}, 1)
	moves := f.apply([]string{"E", "A", "B", "C", "D"}, 1)
	assert.Equal(t, 1, moves, "single-node E relocates once")
	assert.Equal(t, []string{"E", "A", "B", "C", "D"}, f.region(t))
}

func TestInsertionInMiddle(t *testing.T) {
	f := newFixture(t)
	f.apply([]string{"A", "C"}, 1)
	moves := f.apply([]string{"A", "B", "C"}, 1)
	assert.Zero(t, moves, "insertion must not move existing items")
	assert.Equal(t, []string{"A", "B", "C"}, f.region(t))
}

func TestRemoveAndReAddDifferentKeys(t *testing.T) {
	f := newFixture(t)
	f.apply([]string{"A", "B", "C"}, 1)
	keptRun := f.cache.Get("C").Nodes

	f.apply([]string{"C"}, 1)

	assert.Same(t, keptRun[0], f.cache.Get("C").Nodes[0], "C's run is unchanged")
	assert.Equal(t, []string{"C"}, f.region(t))
}

func TestIndexCountersTrackPositions(t *testing.T) {
	f := newFixture(t)
	f.apply([]string{"A", "B", "C"}, 1)
	assert.Equal(t, 0, f.cache.Get("A").Index.Get())
	assert.Equal(t, 2, f.cache.Get("C").Index.Get())

	f.apply([]string{"C", "A", "B"}, 1)
	assert.Equal(t, 0, f.cache.Get("C").Index.Get())
	assert.Equal(t, 1, f.cache.Get("A").Index.Get())
	assert.Equal(t, 2, f.cache.Get("B").Index.Get())
}

func TestScopeDisposedBeforeNodesDetach(t *testing.T) {
	f := newFixture(t)
	e := f.entry("A", 1)
	liveAtCleanup := false
	f.scopes.Add(e.Scope, func() scope.Cleanup {
		return func() { liveAtCleanup = f.m.IsActive(e.Nodes[0]) }
	})
	next := NewCache()
	next.Put(e)
	Reconcile(f.m, f.scopes, f.h, f.cache, next, Options{})
	f.cache = next
	f.scopes.Activate(f.root)

	f.apply(nil, 1)

	assert.True(t, liveAtCleanup, "cleanup must run while the item's nodes are still attached")
	assert.Empty(t, f.region(t))
}

func TestEmptyRunsAreSkipped(t *testing.T) {
	f := newFixture(t)
	next := NewCache()
	next.Put(&Entry{Key: "empty", Scope: f.scopes.Branch(f.root)})
	next.Put(f.entry("A", 1))
	Reconcile(f.m, f.scopes, f.h, f.cache, next, Options{})
	f.cache = next
	assert.Equal(t, []string{"A"}, f.region(t))
}

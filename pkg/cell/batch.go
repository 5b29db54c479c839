package cell

// notifier lets the package-level batch queue hold cells of mixed value
// types.
type notifier interface {
	flush()
}

var (
	batchDepth int
	pending    []notifier
)

// Batch runs fn with notifications deferred. Every cell set inside fn
// notifies at most once, with its latest value, when the outermost batch
// returns. Batches nest; only the outermost one flushes.
//
// Cells set by listeners during the flush notify immediately (the batch is
// already closed by then), preserving the synchronous re-entrant model.
func Batch(fn func()) {
	batchDepth++
	defer func() {
		batchDepth--
		if batchDepth == 0 {
			queued := pending
			pending = nil
			for _, c := range queued {
				c.flush()
			}
		}
	}()
	fn()
}

package join

import (
	"context"
	"sync"

	"github.com/colvex/hashjoin/internal/batch"
	"github.com/colvex/hashjoin/internal/hashindex"
)

// BuildSide is the fully materialized build input: one contiguous batch
// (so every build row has a single stable ordinal for the join's
// lifetime) plus the HashIndex computed over its key columns.
type BuildSide struct {
	Batch *batch.RecordBatch
	Index *hashindex.HashIndex
	Keys  []int // build-side key column indices, parallel to Config.Keys
}

// NumRows is the row count of the concatenated build batch.
func (b *BuildSide) NumRows() int {
	if b.Batch == nil {
		return 0
	}
	return b.Batch.NumRows
}

// buildFuture is a broadcast-to-many-waiters result: resolve computes it
// once and closes done, and every call to wait (across goroutines, across
// probe partitions in CollectLeft mode) blocks until then and returns the
// same BuildSide pointer or error. NewSharedBuildSide pairs this with a
// sync.Once to guarantee resolve itself only runs once. This is the
// idiomatic stdlib shape for the "shared-once build" requirement — no
// corpus example or pack library implements this generic a primitive, so
// it is built directly on a channel close.
type buildFuture struct {
	done   chan struct{}
	side   *BuildSide
	err    error
}

func newBuildFuture() *buildFuture {
	return &buildFuture{done: make(chan struct{})}
}

// resolve runs fn and broadcasts the result to every waiter. The caller
// (NewSharedBuildSide) is responsible for ensuring resolve is only ever
// invoked once per buildFuture.
func (f *buildFuture) resolve(fn func() (*BuildSide, error)) {
	f.side, f.err = fn()
	close(f.done)
}

// wait blocks until resolve has completed and returns its result.
func (f *buildFuture) wait() (*BuildSide, error) {
	<-f.done
	return f.side, f.err
}

// NewSharedBuildSide wraps pipeline in a single-initialization, broadcast-
// to-many-waiters build function: the first JoinStream to call the
// returned function drains pipeline's source and computes the BuildSide;
// every other caller — the other probe partitions a CollectLeft join
// shares one build across — blocks on that same resolve and receives the
// identical *BuildSide or error, so the build source is never driven more
// than once. Partitioned mode does not use this: each partition calls its
// own BuildPipeline.Run directly, since each has an independent source.
func NewSharedBuildSide(pipeline *BuildPipeline) func(ctx context.Context) (*BuildSide, error) {
	future := newBuildFuture()
	var once sync.Once
	return func(ctx context.Context) (*BuildSide, error) {
		once.Do(func() {
			future.resolve(func() (*BuildSide, error) { return pipeline.Run(ctx) })
		})
		return future.wait()
	}
}

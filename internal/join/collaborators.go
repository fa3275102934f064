package join

import (
	"context"

	"github.com/colvex/hashjoin/internal/batch"
)

// BatchSource is the pull-based contract a child operator exposes to the
// join: repeated calls to Next return the next RecordBatch until the
// source is exhausted (nil, nil) or fails.
type BatchSource interface {
	Next(ctx context.Context) (*batch.RecordBatch, error)
	Close() error
}

// ResidualPredicate evaluates a post-join filter over the intermediate
// batch Filter.assembleIntermediate builds (Filter.LeftColumns from the
// build side followed by Filter.RightColumns from the probe side),
// returning a boolean selection mask the FilterRewriter applies.
// Evaluation itself (literal comparison, arithmetic, function calls) is
// explicitly out of scope for this operator; only the interface is.
type ResidualPredicate interface {
	Evaluate(intermediate *batch.RecordBatch) ([]bool, error)
}

// Partitioner assigns a build or probe batch to a partition index for
// Partitioned mode, so the caller (not the join operator) owns the
// co-partitioning scheme.
type Partitioner interface {
	Partition(b *batch.RecordBatch) (int, error)
}

package join

import (
	"context"

	"github.com/colvex/hashjoin/internal/array"
	"github.com/colvex/hashjoin/internal/batch"
	"github.com/colvex/hashjoin/internal/hashindex"
	"github.com/colvex/hashjoin/internal/hashutil"
)

// BuildPipeline drains a build-side BatchSource, concatenates its batches,
// hashes the concatenated batch's key columns with a shared RandomState,
// and produces a BuildSide: one concatenated batch plus a HashIndex over it. CollectLeft wraps a single
// BuildPipeline run in a buildFuture shared across every probe partition;
// Partitioned mode runs one BuildPipeline per partition independently.
type BuildPipeline struct {
	source      BatchSource
	keyIndices  []int
	random      hashutil.RandomState
	presizeRows int
}

// NewBuildPipeline constructs a pipeline over source, hashing the columns
// named by keyIndices with the given seed. presizeRows sizes the HashIndex
// up front (§5: the index is never rehashed); pass 0 to presize from the
// actual row count observed once the source is fully drained.
func NewBuildPipeline(source BatchSource, keyIndices []int, seed uint64, presizeRows int) *BuildPipeline {
	return &BuildPipeline{
		source:      source,
		keyIndices:  keyIndices,
		random:      hashutil.NewRandomState(seed),
		presizeRows: presizeRows,
	}
}

// Run drains the source fully and returns the resulting BuildSide. It does
// not return until the source reports exhaustion or an error; there is no
// partial/incremental build.
func (p *BuildPipeline) Run(ctx context.Context) (*BuildSide, error) {
	var batches []*batch.RecordBatch
	var schema *batch.Schema
	rowCount := 0

	for {
		b, err := p.source.Next(ctx)
		if err != nil {
			return nil, ExecutionError("build: reading input batch: %v", err)
		}
		if b == nil {
			break
		}
		if schema == nil {
			schema = b.Schema
		}
		batches = append(batches, b)
		rowCount += b.NumRows
	}

	if schema == nil {
		schema = &batch.Schema{}
	}

	concatenated, err := batch.Concat(schema, batches)
	if err != nil {
		return nil, InternalError("build: concatenating batches: %v", err)
	}

	presize := p.presizeRows
	if presize == 0 {
		presize = rowCount
	}
	index := hashindex.New(presize)

	if err := p.hashAndInsert(concatenated, index); err != nil {
		return nil, err
	}

	return &BuildSide{Batch: concatenated, Index: index, Keys: p.keyIndices}, nil
}

func (p *BuildPipeline) hashAndInsert(b *batch.RecordBatch, index *hashindex.HashIndex) error {
	if b.NumRows == 0 {
		return nil
	}

	cols := make([]array.Array, len(p.keyIndices))
	for i, ci := range p.keyIndices {
		col, err := b.Column(ci)
		if err != nil {
			return PlanError("build: resolving key column %d: %v", ci, err)
		}
		cols[i] = col
	}

	hashes := make([]uint64, b.NumRows)
	if err := hashutil.CreateHashes(cols, p.random, hashes); err != nil {
		return InternalError("build: hashing key columns: %v", err)
	}

	for row := 0; row < b.NumRows; row++ {
		index.Insert(hashes[row], uint64(row))
	}
	return nil
}

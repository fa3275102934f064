package join

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/colvex/hashjoin/internal/array"
	"github.com/colvex/hashjoin/internal/hashutil"
)

func hashFor(seed uint64, v int64) uint64 {
	col := &array.Int64Array{DType: array.Int64, Values: []int64{v}}
	out := make([]uint64, 1)
	_ = hashutil.CreateHashes([]array.Array{col}, hashutil.NewRandomState(seed), out)
	return out[0]
}

func TestBuildPipelineSingleBatch(t *testing.T) {
	b := intBatch([]int64{1, 2, 3})
	p := NewBuildPipeline(newSliceSource(b), []int{0}, 0x1, 0)
	side, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, side.NumRows())

	ords, ok := side.Index.Lookup(hashFor(0x1, 2))
	require.True(t, ok)
	require.Contains(t, ords, uint64(1))
}

// Multi-batch build requires offset correctness: ordinals must address
// into the concatenated batch, not restart per input batch.
func TestBuildPipelineMultiBatchOffsets(t *testing.T) {
	b1 := intBatch([]int64{10, 11})
	b2 := intBatch([]int64{12, 13})
	p := NewBuildPipeline(newSliceSource(b1, b2), []int{0}, 0x1, 0)
	side, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, side.NumRows())

	col, err := side.Batch.Column(0)
	require.NoError(t, err)
	require.Equal(t, []int64{10, 11, 12, 13}, col.(*array.Int64Array).Values)

	ords, ok := side.Index.Lookup(hashFor(0x1, 13))
	require.True(t, ok)
	require.Contains(t, ords, uint64(3))
}

func TestBuildPipelineEmptySource(t *testing.T) {
	p := NewBuildPipeline(newSliceSource(), []int{0}, 0x1, 0)
	side, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, side.NumRows())
}

package hashutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/colvex/hashjoin/internal/array"
)

func TestCreateHashesIsSeedDeterministic(t *testing.T) {
	col := &array.Int64Array{Values: []int64{1, 2, 3}}
	out1 := make([]uint64, 3)
	out2 := make([]uint64, 3)

	require.NoError(t, CreateHashes([]array.Array{col}, NewRandomState(42), out1))
	require.NoError(t, CreateHashes([]array.Array{col}, NewRandomState(42), out2))
	require.Equal(t, out1, out2)
}

func TestCreateHashesDiffersAcrossSeeds(t *testing.T) {
	col := &array.Int64Array{Values: []int64{1, 2, 3}}
	out1 := make([]uint64, 3)
	out2 := make([]uint64, 3)

	require.NoError(t, CreateHashes([]array.Array{col}, NewRandomState(1), out1))
	require.NoError(t, CreateHashes([]array.Array{col}, NewRandomState(2), out2))
	require.NotEqual(t, out1, out2)
}

func TestCreateHashesNullColumnsAllCollide(t *testing.T) {
	col := &array.Int64Array{Values: []int64{0, 0}, Nulls: array.NullBitmap{true, true}}
	out := make([]uint64, 2)
	require.NoError(t, CreateHashes([]array.Array{col}, NewRandomState(7), out))
	require.Equal(t, out[0], out[1])
}

func TestCreateHashesDistinguishesDistinctValues(t *testing.T) {
	col := &array.Int64Array{Values: []int64{1, 2}}
	out := make([]uint64, 2)
	require.NoError(t, CreateHashes([]array.Array{col}, NewRandomState(7), out))
	require.NotEqual(t, out[0], out[1])
}

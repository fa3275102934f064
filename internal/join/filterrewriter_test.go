package join

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/colvex/hashjoin/internal/array"
)

func TestFilterRewriterStraightDropsFailingRows(t *testing.T) {
	fr := NewFilterRewriter()
	res := Result{
		HasLeft:   true,
		LeftOrds:  []uint64{0, 1, 2},
		HasRight:  true,
		RightOrds: []uint32{0, 1, 2},
	}
	out := fr.Apply(Inner, res, []bool{true, false, true})
	require.Equal(t, []uint64{0, 2}, out.LeftOrds)
	require.Equal(t, []uint32{0, 2}, out.RightOrds)
}

func TestFilterRewriterRightRegroupPadsWhollyFilteredGroup(t *testing.T) {
	fr := NewFilterRewriter()
	// probe row 0 has two candidate build matches, both filtered out;
	// probe row 1 has one candidate match that survives.
	res := Result{
		HasLeft:    true,
		LeftOrds:   []uint64{5, 6, 7},
		LeftNulls:  array.NullBitmap{false, false, false},
		HasRight:   true,
		RightOrds:  []uint32{0, 0, 1},
		RightNulls: array.NullBitmap{false, false, false},
	}
	out := fr.Apply(Right, res, []bool{false, false, true})

	require.Len(t, out.LeftOrds, 2)
	require.True(t, out.LeftNulls.IsNull(0))
	require.Equal(t, uint32(0), out.RightOrds[0])
	require.False(t, out.LeftNulls.IsNull(1))
	require.Equal(t, uint64(7), out.LeftOrds[1])
	require.Equal(t, uint32(1), out.RightOrds[1])
}

func TestFilterRewriterRightRegroupKeepsSurvivingPairInGroup(t *testing.T) {
	fr := NewFilterRewriter()
	res := Result{
		HasLeft:    true,
		LeftOrds:   []uint64{5, 6},
		LeftNulls:  array.NullBitmap{false, false},
		HasRight:   true,
		RightOrds:  []uint32{0, 0},
		RightNulls: array.NullBitmap{false, false},
	}
	out := fr.Apply(Full, res, []bool{true, false})
	require.Equal(t, []uint64{5}, out.LeftOrds)
	require.Equal(t, []uint32{0}, out.RightOrds)
	require.False(t, out.LeftNulls.IsNull(0))
}

// Round-trip property: filtering with an all-true mask is a no-op.
func TestFilterRewriterAllTrueMaskIsIdentity(t *testing.T) {
	fr := NewFilterRewriter()
	res := Result{
		HasLeft:   true,
		LeftOrds:  []uint64{0, 1, 2},
		HasRight:  true,
		RightOrds: []uint32{0, 1, 2},
	}
	out := fr.Apply(Inner, res, []bool{true, true, true})
	require.Equal(t, res.LeftOrds, out.LeftOrds)
	require.Equal(t, res.RightOrds, out.RightOrds)
}

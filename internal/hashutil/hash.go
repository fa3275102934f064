// Package hashutil computes deterministic per-row hashes over a set of
// join-key columns, the same seed used on both the build and probe side so
// that equal keys collide into the same HashIndex bucket.
package hashutil

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/colvex/hashjoin/internal/array"
)

// RandomState is the shared seed both sides of a join hash with. Two
// RandomStates built from the same Seed produce identical hashes for
// identical keys; this is the only contract CreateHashes depends on.
type RandomState struct {
	Seed uint64
}

func NewRandomState(seed uint64) RandomState { return RandomState{Seed: seed} }

// CreateHashes computes one combined hash per row across cols, writing into
// out (which must have length rows, and is not reset: a zero entry is
// overwritten with the row's hash, a non-zero entry has the row's hash
// mixed into it). The build pipeline and the probe engine both pass a
// freshly zeroed slice.
func CreateHashes(cols []array.Array, rs RandomState, out []uint64) error {
	if len(cols) == 0 {
		return nil
	}
	rows := cols[0].Len()
	var buf [8]byte
	for row := 0; row < rows; row++ {
		h := xxhash.New()
		binary.LittleEndian.PutUint64(buf[:], rs.Seed)
		h.Write(buf[:])
		for _, col := range cols {
			writeHashInput(h, col, row)
		}
		combined := h.Sum64()
		if out[row] == 0 {
			out[row] = combined
		} else {
			// combine with an existing partial hash (e.g. a prior batch's
			// seed) the same way xxhash recommends mixing independent sums.
			out[row] ^= combined + 0x9e3779b97f4a7c15 + (out[row] << 6) + (out[row] >> 2)
		}
	}
	return nil
}

func writeHashInput(h *xxhash.Digest, col array.Array, row int) {
	if col.IsNull(row) {
		h.Write([]byte{0})
		return
	}
	var buf [8]byte
	switch a := col.(type) {
	case *array.Int64Array:
		binary.LittleEndian.PutUint64(buf[:], uint64(a.Values[row]))
		h.Write(buf[:])
	case *array.Uint64Array:
		binary.LittleEndian.PutUint64(buf[:], a.Values[row])
		h.Write(buf[:])
	case *array.Float64Array:
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(a.Values[row]))
		h.Write(buf[:])
	case *array.BooleanArray:
		if a.Values[row] {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
	case *array.DateTimeArray:
		binary.LittleEndian.PutUint64(buf[:], uint64(a.Values[row]))
		h.Write(buf[:])
	case *array.StringArray:
		h.Write([]byte(a.Values[row]))
	case *array.LargeStringArray:
		h.Write([]byte(a.Values[row]))
	case *array.Decimal128Array:
		binary.LittleEndian.PutUint64(buf[:], uint64(a.High[row]))
		h.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], a.Low[row])
		h.Write(buf[:])
	case *array.DictionaryArray:
		key := a.Keys[row]
		if key >= 0 {
			writeHashInput(h, a.Values, int(key))
		} else {
			h.Write([]byte{0})
		}
	case *array.NullArray:
		h.Write([]byte{0})
	}
}

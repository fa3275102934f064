package batch

import (
	"fmt"

	"github.com/colvex/hashjoin/internal/array"
)

// TakeUint64 gathers rows from src at the given ordinals. A nulls bitmap
// (nil means no nulls) marks positions whose output row must be null
// regardless of the ordinal value — the Materializer's path for outer-join
// pad rows.
func TakeUint64(src array.Array, ordinals []uint64, nulls array.NullBitmap) (array.Array, error) {
	return takeIndexed(src, len(ordinals), nulls, func(i int) int { return int(ordinals[i]) })
}

// TakeUint32 is TakeUint64's 32-bit counterpart, used for right-side
// (probe) ordinals.
func TakeUint32(src array.Array, ordinals []uint32, nulls array.NullBitmap) (array.Array, error) {
	return takeIndexed(src, len(ordinals), nulls, func(i int) int { return int(ordinals[i]) })
}

func takeIndexed(src array.Array, n int, nulls array.NullBitmap, at func(i int) int) (array.Array, error) {
	switch t := src.(type) {
	case *array.Int64Array:
		out := &array.Int64Array{DType: t.DType, Values: make([]int64, n)}
		for i := 0; i < n; i++ {
			if nulls.IsNull(i) {
				out.Nulls = setNull(out.Nulls, n, i)
				continue
			}
			r := at(i)
			out.Values[i] = t.Values[r]
			if t.Nulls.IsNull(r) {
				out.Nulls = setNull(out.Nulls, n, i)
			}
		}
		return out, nil
	case *array.Uint64Array:
		out := &array.Uint64Array{DType: t.DType, Values: make([]uint64, n)}
		for i := 0; i < n; i++ {
			if nulls.IsNull(i) {
				out.Nulls = setNull(out.Nulls, n, i)
				continue
			}
			r := at(i)
			out.Values[i] = t.Values[r]
			if t.Nulls.IsNull(r) {
				out.Nulls = setNull(out.Nulls, n, i)
			}
		}
		return out, nil
	case *array.Float64Array:
		out := &array.Float64Array{DType: t.DType, Values: make([]float64, n)}
		for i := 0; i < n; i++ {
			if nulls.IsNull(i) {
				out.Nulls = setNull(out.Nulls, n, i)
				continue
			}
			r := at(i)
			out.Values[i] = t.Values[r]
			if t.Nulls.IsNull(r) {
				out.Nulls = setNull(out.Nulls, n, i)
			}
		}
		return out, nil
	case *array.BooleanArray:
		out := &array.BooleanArray{Values: make([]bool, n)}
		for i := 0; i < n; i++ {
			if nulls.IsNull(i) {
				out.Nulls = setNull(out.Nulls, n, i)
				continue
			}
			r := at(i)
			out.Values[i] = t.Values[r]
			if t.Nulls.IsNull(r) {
				out.Nulls = setNull(out.Nulls, n, i)
			}
		}
		return out, nil
	case *array.DateTimeArray:
		out := &array.DateTimeArray{DType: t.DType, Values: make([]int64, n)}
		for i := 0; i < n; i++ {
			if nulls.IsNull(i) {
				out.Nulls = setNull(out.Nulls, n, i)
				continue
			}
			r := at(i)
			out.Values[i] = t.Values[r]
			if t.Nulls.IsNull(r) {
				out.Nulls = setNull(out.Nulls, n, i)
			}
		}
		return out, nil
	case *array.StringArray:
		out := &array.StringArray{Values: make([]string, n)}
		for i := 0; i < n; i++ {
			if nulls.IsNull(i) {
				out.Nulls = setNull(out.Nulls, n, i)
				continue
			}
			r := at(i)
			out.Values[i] = t.Values[r]
			if t.Nulls.IsNull(r) {
				out.Nulls = setNull(out.Nulls, n, i)
			}
		}
		return out, nil
	case *array.LargeStringArray:
		out := &array.LargeStringArray{Values: make([]string, n)}
		for i := 0; i < n; i++ {
			if nulls.IsNull(i) {
				out.Nulls = setNull(out.Nulls, n, i)
				continue
			}
			r := at(i)
			out.Values[i] = t.Values[r]
			if t.Nulls.IsNull(r) {
				out.Nulls = setNull(out.Nulls, n, i)
			}
		}
		return out, nil
	case *array.Decimal128Array:
		out := &array.Decimal128Array{Precision: t.Precision, Scale: t.Scale, High: make([]int64, n), Low: make([]uint64, n)}
		for i := 0; i < n; i++ {
			if nulls.IsNull(i) {
				out.Nulls = setNull(out.Nulls, n, i)
				continue
			}
			r := at(i)
			out.High[i], out.Low[i] = t.High[r], t.Low[r]
			if t.Nulls.IsNull(r) {
				out.Nulls = setNull(out.Nulls, n, i)
			}
		}
		return out, nil
	case *array.DictionaryArray:
		out := &array.DictionaryArray{Values: t.Values, Keys: make([]int32, n)}
		for i := 0; i < n; i++ {
			if nulls.IsNull(i) {
				out.Nulls = setNull(out.Nulls, n, i)
				continue
			}
			r := at(i)
			out.Keys[i] = t.Keys[r]
			if t.Nulls.IsNull(r) {
				out.Nulls = setNull(out.Nulls, n, i)
			}
		}
		return out, nil
	case *array.NullArray:
		return &array.NullArray{N: n}, nil
	default:
		return nil, fmt.Errorf("batch: take unsupported array type %T", src)
	}
}

func setNull(bm array.NullBitmap, n, i int) array.NullBitmap {
	if bm == nil {
		bm = make(array.NullBitmap, n)
	}
	bm[i] = true
	return bm
}

// FilterRows gathers rows at the given selection (a subset of [0,NumRows)
// in order), used by FilterRewriter's straight-filter path.
func FilterRows(b *RecordBatch, selection []int) (*RecordBatch, error) {
	cols := make([]array.Array, len(b.Columns))
	for i, col := range b.Columns {
		out, err := takeIndexed(col, len(selection), nil, func(j int) int { return selection[j] })
		if err != nil {
			return nil, fmt.Errorf("batch: filter column %d: %w", i, err)
		}
		cols[i] = out
	}
	return New(b.Schema, cols)
}

package batch

import (
	"fmt"

	"github.com/colvex/hashjoin/internal/array"
)

// Concat stacks a sequence of same-schema batches into one contiguous
// batch, giving every build-side row a single, stable ordinal for the
// lifetime of the join — the BuildPipeline's contract with HashIndex.
func Concat(schema *Schema, batches []*RecordBatch) (*RecordBatch, error) {
	if len(batches) == 0 {
		return New(schema, emptyColumns(schema))
	}
	if len(batches) == 1 {
		return batches[0], nil
	}
	numCols := len(schema.Fields)
	cols := make([]array.Array, numCols)
	for c := 0; c < numCols; c++ {
		parts := make([]array.Array, len(batches))
		for i, b := range batches {
			col, err := b.Column(c)
			if err != nil {
				return nil, fmt.Errorf("batch: concat column %d: %w", c, err)
			}
			parts[i] = col
		}
		merged, err := concatColumn(parts)
		if err != nil {
			return nil, fmt.Errorf("batch: concat column %d (%s): %w", c, schema.Fields[c].Name, err)
		}
		cols[c] = merged
	}
	return New(schema, cols)
}

func emptyColumns(schema *Schema) []array.Array {
	cols := make([]array.Array, len(schema.Fields))
	for i, f := range schema.Fields {
		cols[i] = array.NullArrayOf(zeroValueOf(f.Type), 0)
	}
	return cols
}

func zeroValueOf(t array.Type) array.Array {
	switch t {
	case array.Boolean:
		return &array.BooleanArray{}
	case array.Int8, array.Int16, array.Int32, array.Int64:
		return &array.Int64Array{DType: t}
	case array.Uint8, array.Uint16, array.Uint32, array.Uint64:
		return &array.Uint64Array{DType: t}
	case array.Float32, array.Float64:
		return &array.Float64Array{DType: t}
	case array.Date32, array.Date64, array.TimestampSecond, array.TimestampMillisecond, array.TimestampMicrosecond, array.TimestampNanosecond:
		return &array.DateTimeArray{DType: t}
	case array.Utf8:
		return &array.StringArray{}
	case array.LargeUtf8:
		return &array.LargeStringArray{}
	case array.Decimal128:
		return &array.Decimal128Array{}
	default:
		return &array.NullArray{}
	}
}

func concatColumn(parts []array.Array) (array.Array, error) {
	switch parts[0].(type) {
	case *array.Int64Array:
		out := &array.Int64Array{DType: parts[0].DataType()}
		for _, p := range parts {
			t := p.(*array.Int64Array)
			out.Values = append(out.Values, t.Values...)
			out.Nulls = appendNulls(out.Nulls, t.Nulls, t.Len())
		}
		return out, nil
	case *array.Uint64Array:
		out := &array.Uint64Array{DType: parts[0].DataType()}
		for _, p := range parts {
			t := p.(*array.Uint64Array)
			out.Values = append(out.Values, t.Values...)
			out.Nulls = appendNulls(out.Nulls, t.Nulls, t.Len())
		}
		return out, nil
	case *array.Float64Array:
		out := &array.Float64Array{DType: parts[0].DataType()}
		for _, p := range parts {
			t := p.(*array.Float64Array)
			out.Values = append(out.Values, t.Values...)
			out.Nulls = appendNulls(out.Nulls, t.Nulls, t.Len())
		}
		return out, nil
	case *array.BooleanArray:
		out := &array.BooleanArray{}
		for _, p := range parts {
			t := p.(*array.BooleanArray)
			out.Values = append(out.Values, t.Values...)
			out.Nulls = appendNulls(out.Nulls, t.Nulls, t.Len())
		}
		return out, nil
	case *array.DateTimeArray:
		out := &array.DateTimeArray{DType: parts[0].DataType()}
		for _, p := range parts {
			t := p.(*array.DateTimeArray)
			out.Values = append(out.Values, t.Values...)
			out.Nulls = appendNulls(out.Nulls, t.Nulls, t.Len())
		}
		return out, nil
	case *array.StringArray:
		out := &array.StringArray{}
		for _, p := range parts {
			t := p.(*array.StringArray)
			out.Values = append(out.Values, t.Values...)
			out.Nulls = appendNulls(out.Nulls, t.Nulls, t.Len())
		}
		return out, nil
	case *array.LargeStringArray:
		out := &array.LargeStringArray{}
		for _, p := range parts {
			t := p.(*array.LargeStringArray)
			out.Values = append(out.Values, t.Values...)
			out.Nulls = appendNulls(out.Nulls, t.Nulls, t.Len())
		}
		return out, nil
	case *array.Decimal128Array:
		first := parts[0].(*array.Decimal128Array)
		out := &array.Decimal128Array{Precision: first.Precision, Scale: first.Scale}
		for _, p := range parts {
			t := p.(*array.Decimal128Array)
			if t.Scale != out.Scale {
				return nil, fmt.Errorf("array: decimal128 scale mismatch across batches: %d vs %d", t.Scale, out.Scale)
			}
			out.High = append(out.High, t.High...)
			out.Low = append(out.Low, t.Low...)
			out.Nulls = appendNulls(out.Nulls, t.Nulls, t.Len())
		}
		return out, nil
	case *array.DictionaryArray:
		first := parts[0].(*array.DictionaryArray)
		out := &array.DictionaryArray{Values: first.Values}
		for _, p := range parts {
			t := p.(*array.DictionaryArray)
			out.Keys = append(out.Keys, t.Keys...)
			out.Nulls = appendNulls(out.Nulls, t.Nulls, t.Len())
		}
		return out, nil
	case *array.NullArray:
		n := 0
		for _, p := range parts {
			n += p.Len()
		}
		return &array.NullArray{N: n}, nil
	default:
		return nil, fmt.Errorf("batch: concat unsupported array type %T", parts[0])
	}
}

func appendNulls(acc, src array.NullBitmap, n int) array.NullBitmap {
	if acc == nil && src == nil {
		return nil
	}
	if acc == nil {
		acc = make(array.NullBitmap, 0, n)
	}
	if src == nil {
		for i := 0; i < n; i++ {
			acc = append(acc, false)
		}
		return acc
	}
	return append(acc, src...)
}

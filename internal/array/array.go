// Package array defines the columnar value model the join operator reads
// and writes: typed, nullable arrays and the index-array builders used to
// materialize join output.
package array

import "fmt"

// Type enumerates the supported column types, mirroring the scalar types a
// join key or output column may carry.
type Type int

const (
	Null Type = iota
	Boolean
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
	Date32
	Date64
	TimestampSecond
	TimestampMillisecond
	TimestampMicrosecond
	TimestampNanosecond
	Utf8
	LargeUtf8
	Decimal128
	Dictionary
)

func (t Type) String() string {
	switch t {
	case Null:
		return "null"
	case Boolean:
		return "bool"
	case Int8, Int16, Int32, Int64:
		return "int"
	case Uint8, Uint16, Uint32, Uint64:
		return "uint"
	case Float32, Float64:
		return "float"
	case Date32, Date64:
		return "date"
	case TimestampSecond, TimestampMillisecond, TimestampMicrosecond, TimestampNanosecond:
		return "timestamp"
	case Utf8, LargeUtf8:
		return "utf8"
	case Decimal128:
		return "decimal128"
	case Dictionary:
		return "dictionary"
	default:
		return "unknown"
	}
}

// Array is a single typed, nullable column of values. Row i is null when
// IsNull(i) is true; readers must not interpret the raw backing value at a
// null index.
type Array interface {
	DataType() Type
	Len() int
	IsNull(i int) bool
}

// NullBitmap tracks null positions for arrays whose values are otherwise
// densely packed. A nil bitmap means "no nulls present".
type NullBitmap []bool

func (b NullBitmap) IsNull(i int) bool {
	if b == nil {
		return false
	}
	return b[i]
}

// Int64Array backs Int8/Int16/Int32/Int64 columns; narrower widths are
// widened into Values on construction, DType records the logical width.
type Int64Array struct {
	DType Type
	Nulls NullBitmap
	Values []int64
}

func (a *Int64Array) DataType() Type  { return a.DType }
func (a *Int64Array) Len() int        { return len(a.Values) }
func (a *Int64Array) IsNull(i int) bool { return a.Nulls.IsNull(i) }

// Uint64Array backs Uint8/Uint16/Uint32/Uint64 columns.
type Uint64Array struct {
	DType Type
	Nulls NullBitmap
	Values []uint64
}

func (a *Uint64Array) DataType() Type  { return a.DType }
func (a *Uint64Array) Len() int        { return len(a.Values) }
func (a *Uint64Array) IsNull(i int) bool { return a.Nulls.IsNull(i) }

// Float64Array backs Float32/Float64 columns (Float32 values are widened).
type Float64Array struct {
	DType Type
	Nulls NullBitmap
	Values []float64
}

func (a *Float64Array) DataType() Type  { return a.DType }
func (a *Float64Array) Len() int        { return len(a.Values) }
func (a *Float64Array) IsNull(i int) bool { return a.Nulls.IsNull(i) }

// BooleanArray backs Boolean columns.
type BooleanArray struct {
	Nulls NullBitmap
	Values []bool
}

func (a *BooleanArray) DataType() Type  { return Boolean }
func (a *BooleanArray) Len() int        { return len(a.Values) }
func (a *BooleanArray) IsNull(i int) bool { return a.Nulls.IsNull(i) }

// DateTimeArray backs Date32/Date64 and all Timestamp precisions; the raw
// integer representation (days or time-units since epoch) lives in Values.
type DateTimeArray struct {
	DType Type
	Nulls NullBitmap
	Values []int64
}

func (a *DateTimeArray) DataType() Type  { return a.DType }
func (a *DateTimeArray) Len() int        { return len(a.Values) }
func (a *DateTimeArray) IsNull(i int) bool { return a.Nulls.IsNull(i) }

// StringArray backs Utf8 columns.
type StringArray struct {
	Nulls NullBitmap
	Values []string
}

func (a *StringArray) DataType() Type  { return Utf8 }
func (a *StringArray) Len() int        { return len(a.Values) }
func (a *StringArray) IsNull(i int) bool { return a.Nulls.IsNull(i) }

// LargeStringArray backs LargeUtf8 columns. The offset width difference
// from StringArray is an on-wire concern this in-memory model does not
// need to track separately, but the distinct type matters for equality
// (spec requires string comparisons not cross utf8/large-utf8 widths).
type LargeStringArray struct {
	Nulls NullBitmap
	Values []string
}

func (a *LargeStringArray) DataType() Type  { return LargeUtf8 }
func (a *LargeStringArray) Len() int        { return len(a.Values) }
func (a *LargeStringArray) IsNull(i int) bool { return a.Nulls.IsNull(i) }

// Decimal128Array backs Decimal128 columns. Scale must match between two
// arrays being compared; a mismatch is an internal error, not a value
// inequality (see RowEquality).
type Decimal128Array struct {
	Precision int
	Scale     int
	Nulls     NullBitmap
	High      []int64 // high 64 bits of the 128-bit value
	Low       []uint64
}

func (a *Decimal128Array) DataType() Type  { return Decimal128 }
func (a *Decimal128Array) Len() int        { return len(a.High) }
func (a *Decimal128Array) IsNull(i int) bool { return a.Nulls.IsNull(i) }

// DictionaryArray backs dictionary-encoded columns: Keys index into Values.
// Only Values of type *StringArray or *LargeStringArray are supported by
// RowEquality (see §13 open-question decision).
type DictionaryArray struct {
	Nulls  NullBitmap
	Keys   []int32
	Values Array
}

func (a *DictionaryArray) DataType() Type  { return Dictionary }
func (a *DictionaryArray) Len() int        { return len(a.Keys) }
func (a *DictionaryArray) IsNull(i int) bool { return a.Nulls.IsNull(i) }

// NullArray is an entirely-null column of a given length.
type NullArray struct {
	N int
}

func (a *NullArray) DataType() Type    { return Null }
func (a *NullArray) Len() int          { return a.N }
func (a *NullArray) IsNull(i int) bool { return true }

// NullArrayOf builds an all-null array shaped like the source array's type,
// used by the Materializer when an index array entry is absent.
func NullArrayOf(src Array, n int) Array {
	switch src.DataType() {
	case Null:
		return &NullArray{N: n}
	case Boolean:
		return &BooleanArray{Nulls: allNull(n), Values: make([]bool, n)}
	case Int8, Int16, Int32, Int64, Uint8, Uint16, Uint32, Uint64:
		if t, ok := src.(*Int64Array); ok {
			return &Int64Array{DType: t.DType, Nulls: allNull(n), Values: make([]int64, n)}
		}
		if t, ok := src.(*Uint64Array); ok {
			return &Uint64Array{DType: t.DType, Nulls: allNull(n), Values: make([]uint64, n)}
		}
	case Float32, Float64:
		t := src.(*Float64Array)
		return &Float64Array{DType: t.DType, Nulls: allNull(n), Values: make([]float64, n)}
	case Date32, Date64, TimestampSecond, TimestampMillisecond, TimestampMicrosecond, TimestampNanosecond:
		t := src.(*DateTimeArray)
		return &DateTimeArray{DType: t.DType, Nulls: allNull(n), Values: make([]int64, n)}
	case Utf8:
		return &StringArray{Nulls: allNull(n), Values: make([]string, n)}
	case LargeUtf8:
		return &LargeStringArray{Nulls: allNull(n), Values: make([]string, n)}
	case Decimal128:
		t := src.(*Decimal128Array)
		return &Decimal128Array{Precision: t.Precision, Scale: t.Scale, Nulls: allNull(n), High: make([]int64, n), Low: make([]uint64, n)}
	case Dictionary:
		t := src.(*DictionaryArray)
		return &DictionaryArray{Nulls: allNull(n), Keys: make([]int32, n), Values: t.Values}
	}
	panic(fmt.Sprintf("array: unsupported type for NullArrayOf: %v", src.DataType()))
}

func allNull(n int) NullBitmap {
	b := make(NullBitmap, n)
	for i := range b {
		b[i] = true
	}
	return b
}

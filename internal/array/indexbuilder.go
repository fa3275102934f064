package array

// TightUint64Builder accumulates left-row ordinals for join types that never
// emit an unmatched pad row (Inner, LeftSemi, LeftAnti, RightSemi,
// RightAnti): every slot is a real row ordinal, no null ever appears.
type TightUint64Builder struct {
	values []uint64
}

func (b *TightUint64Builder) Append(v uint64) { b.values = append(b.values, v) }
func (b *TightUint64Builder) Len() int         { return len(b.values) }
func (b *TightUint64Builder) Values() []uint64 { return b.values }

// TightUint32Builder is TightUint64Builder's 32-bit counterpart, used for
// probe-side (right) ordinals.
type TightUint32Builder struct {
	values []uint32
}

func (b *TightUint32Builder) Append(v uint32) { b.values = append(b.values, v) }
func (b *TightUint32Builder) Len() int         { return len(b.values) }
func (b *TightUint32Builder) Values() []uint32 { return b.values }

// NullableUint64Builder accumulates ordinals for join types that may pad
// with a null entry (Left, Right, Full): a null slot means "no build row
// matched this probe row" (or vice versa) and must materialize as a null
// column, not as ordinal 0.
type NullableUint64Builder struct {
	values []uint64
	nulls  NullBitmap
}

func (b *NullableUint64Builder) Append(v uint64) {
	b.values = append(b.values, v)
	b.nulls = append(b.nulls, false)
}

func (b *NullableUint64Builder) AppendNull() {
	b.values = append(b.values, 0)
	b.nulls = append(b.nulls, true)
}

func (b *NullableUint64Builder) Len() int          { return len(b.values) }
func (b *NullableUint64Builder) Values() []uint64  { return b.values }
func (b *NullableUint64Builder) Nulls() NullBitmap { return b.nulls }

// NullableUint32Builder is NullableUint64Builder's 32-bit counterpart.
type NullableUint32Builder struct {
	values []uint32
	nulls  NullBitmap
}

func (b *NullableUint32Builder) Append(v uint32) {
	b.values = append(b.values, v)
	b.nulls = append(b.nulls, false)
}

func (b *NullableUint32Builder) AppendNull() {
	b.values = append(b.values, 0)
	b.nulls = append(b.nulls, true)
}

func (b *NullableUint32Builder) Len() int          { return len(b.values) }
func (b *NullableUint32Builder) Values() []uint32  { return b.values }
func (b *NullableUint32Builder) Nulls() NullBitmap { return b.nulls }

package join

import (
	"context"

	"github.com/colvex/hashjoin/internal/array"
	"github.com/colvex/hashjoin/internal/batch"
	"github.com/colvex/hashjoin/internal/config"
)

// intBatch builds a RecordBatch whose columns are all Int64, named
// col0..colN-1, from row-major int64 data.
func intBatch(cols ...[]int64) *batch.RecordBatch {
	fields := make([]batch.Field, len(cols))
	arrs := make([]array.Array, len(cols))
	for i, c := range cols {
		fields[i] = batch.Field{Name: colName(i), Type: array.Int64}
		arrs[i] = &array.Int64Array{DType: array.Int64, Values: append([]int64(nil), c...)}
	}
	b, err := batch.New(&batch.Schema{Fields: fields}, arrs)
	if err != nil {
		panic(err)
	}
	return b
}

func colName(i int) string {
	return []string{"col0", "col1", "col2", "col3", "col4"}[i]
}

// sliceSource is a BatchSource over a fixed slice, used by every test that
// needs to feed pre-built batches through the pull-based BatchSource
// contract.
type sliceSource struct {
	batches []*batch.RecordBatch
	pos     int
}

func newSliceSource(batches ...*batch.RecordBatch) *sliceSource {
	return &sliceSource{batches: batches}
}

func (s *sliceSource) Next(ctx context.Context) (*batch.RecordBatch, error) {
	if s.pos >= len(s.batches) {
		return nil, nil
	}
	b := s.batches[s.pos]
	s.pos++
	return b, nil
}

func (s *sliceSource) Close() error { return nil }

// buildSideFrom runs a BuildPipeline over a single batch keyed by
// keyIndices and returns the resulting BuildSide, panicking on error (test
// helper, not production code).
func buildSideFrom(b *batch.RecordBatch, keyIndices []int) *BuildSide {
	p := NewBuildPipeline(newSliceSource(b), keyIndices, 0x9e3779b97f4a7c15, b.NumRows)
	side, err := p.Run(context.Background())
	if err != nil {
		panic(err)
	}
	return side
}

// comparePredicate implements ResidualPredicate: a row passes when op holds
// for intermediate columns leftCol and rightCol, and fails when either is
// null (S6 uses it with op l > r for l.c > r.c).
type comparePredicate struct {
	leftCol, rightCol int
	op                func(l, r int64) bool
}

func (p comparePredicate) Evaluate(intermediate *batch.RecordBatch) ([]bool, error) {
	lc, err := intermediate.Column(p.leftCol)
	if err != nil {
		return nil, err
	}
	rc, err := intermediate.Column(p.rightCol)
	if err != nil {
		return nil, err
	}
	li := lc.(*array.Int64Array)
	ri := rc.(*array.Int64Array)
	mask := make([]bool, intermediate.NumRows)
	for i := range mask {
		if li.IsNull(i) || ri.IsNull(i) {
			mask[i] = false
			continue
		}
		mask[i] = p.op(li.Values[i], ri.Values[i])
	}
	return mask, nil
}

// nullInt64Column builds an all-null Int64Array of length n, for testing
// the null_equals_null policy.
func nullInt64Column(n int) *array.Int64Array {
	nulls := make(array.NullBitmap, n)
	for i := range nulls {
		nulls[i] = true
	}
	return &array.Int64Array{DType: array.Int64, Nulls: nulls, Values: make([]int64, n)}
}

func defaultOptions() config.Options {
	return config.Options{}.WithDefaults()
}

// rowsOf reads every column of b as Int64Array (using -1 for nulls) into a
// row-major [][]int64, for asserting against literal scenario tables.
func rowsOf(b *batch.RecordBatch) [][]int64 {
	rows := make([][]int64, b.NumRows)
	for r := range rows {
		row := make([]int64, len(b.Columns))
		for c, col := range b.Columns {
			if col.IsNull(r) {
				row[c] = -1
				continue
			}
			row[c] = col.(*array.Int64Array).Values[r]
		}
		rows[r] = row
	}
	return rows
}

func outputMaterializer(left, right *batch.RecordBatch) *Materializer {
	leftCols := make([]int, len(left.Columns))
	for i := range leftCols {
		leftCols[i] = i
	}
	rightCols := make([]int, len(right.Columns))
	for i := range rightCols {
		rightCols[i] = i
	}
	fields := append(append([]batch.Field{}, left.Schema.Fields...), right.Schema.Fields...)
	return NewMaterializer(&batch.Schema{Fields: fields}, leftCols, rightCols, right)
}

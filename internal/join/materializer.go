package join

import (
	"github.com/colvex/hashjoin/internal/array"
	"github.com/colvex/hashjoin/internal/batch"
)

// Materializer gathers a Result's index pairs into an output RecordBatch.
// rightTemplate is a zero-row batch carrying the probe side's schema and
// column *types* (not data) — needed because the terminal unmatched-build
// pass (ProbeEngine.Finish for Left/Full) produces an all-null right side
// with no actual probe batch behind it.
type Materializer struct {
	outputSchema  *batch.Schema
	leftColumns   []int // build-batch column indices contributing to output, in output order
	rightColumns  []int // probe-batch column indices contributing to output, in output order
	rightTemplate *batch.RecordBatch
}

// NewMaterializer builds a materializer projecting leftColumns from the
// build batch and rightColumns from each probe batch, in that order, into
// outputSchema. rightTemplate is only consulted when a Result has no probe
// batch to gather from.
func NewMaterializer(outputSchema *batch.Schema, leftColumns, rightColumns []int, rightTemplate *batch.RecordBatch) *Materializer {
	return &Materializer{
		outputSchema:  outputSchema,
		leftColumns:   leftColumns,
		rightColumns:  rightColumns,
		rightTemplate: rightTemplate,
	}
}

// Materialize gathers res into one output batch. probe is the batch the
// Result's RightOrds index into; pass nil for a terminal Result that has
// no real probe batch (the right side is then synthesized as all-null).
// A Result that populates only one side (the semi/anti variants) yields a
// batch of only that side's output fields, and a Result that populates
// neither side yields a zero-row batch with no columns.
func (m *Materializer) Materialize(build, probe *batch.RecordBatch, res Result) (*batch.RecordBatch, error) {
	schema := m.outputSchema
	if !res.HasLeft || !res.HasRight {
		nLeft := len(m.leftColumns)
		fields := []batch.Field(nil)
		if len(schema.Fields) == nLeft+len(m.rightColumns) {
			if res.HasLeft {
				fields = schema.Fields[:nLeft]
			} else if res.HasRight {
				fields = schema.Fields[nLeft:]
			}
		}
		schema = &batch.Schema{Fields: fields}
	}

	var cols []array.Array

	if res.HasLeft {
		for _, ci := range m.leftColumns {
			col, err := build.Column(ci)
			if err != nil {
				return nil, InternalError("materialize: left column %d: %v", ci, err)
			}
			out, err := batch.TakeUint64(col, res.LeftOrds, res.LeftNulls)
			if err != nil {
				return nil, InternalError("materialize: gathering left column %d: %v", ci, err)
			}
			cols = append(cols, out)
		}
	}

	if res.HasRight {
		n := len(res.RightOrds)
		for _, ci := range m.rightColumns {
			if probe != nil {
				col, err := probe.Column(ci)
				if err != nil {
					return nil, InternalError("materialize: right column %d: %v", ci, err)
				}
				out, err := batch.TakeUint32(col, res.RightOrds, res.RightNulls)
				if err != nil {
					return nil, InternalError("materialize: gathering right column %d: %v", ci, err)
				}
				cols = append(cols, out)
				continue
			}
			tmplCol, err := m.rightTemplate.Column(ci)
			if err != nil {
				return nil, InternalError("materialize: right template column %d: %v", ci, err)
			}
			cols = append(cols, array.NullArrayOf(tmplCol, n))
		}
	}

	return batch.New(schema, cols)
}

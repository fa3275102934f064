package join

import (
	"github.com/colvex/hashjoin/internal/array"
	"github.com/colvex/hashjoin/internal/batch"
)

// FilterRewriter applies a residual predicate's boolean mask to a
// ProbeEngine Result. For every join type except Right and Full, a failed
// predicate simply drops that row (straight filtering). Right and Full
// must instead preserve outer-join semantics: if every pair belonging to
// one probe row is filtered out, that probe row must still appear exactly
// once, now with a null build side, rather than vanishing — so those two
// types regroup by consecutive probe ordinal and resynthesize a pad row
// per dropped-entirely group.
type FilterRewriter struct{}

func NewFilterRewriter() *FilterRewriter { return &FilterRewriter{} }

// assembleIntermediate gathers res into the filter's own intermediate
// batch: f.LeftColumns from build followed by f.RightColumns from probe,
// entirely independent of whatever projection the output Materializer
// uses. This is the batch f.Predicate.Evaluate receives.
func (f *Filter) assembleIntermediate(build, probe *batch.RecordBatch, res Result) (*batch.RecordBatch, error) {
	var fields []batch.Field
	var cols []array.Array

	if res.HasLeft {
		for _, ci := range f.LeftColumns {
			col, err := build.Column(ci)
			if err != nil {
				return nil, InternalError("filter: left column %d: %v", ci, err)
			}
			out, err := batch.TakeUint64(col, res.LeftOrds, res.LeftNulls)
			if err != nil {
				return nil, InternalError("filter: gathering left column %d: %v", ci, err)
			}
			fields = append(fields, build.Schema.Fields[ci])
			cols = append(cols, out)
		}
	}

	if res.HasRight {
		for _, ci := range f.RightColumns {
			col, err := probe.Column(ci)
			if err != nil {
				return nil, InternalError("filter: right column %d: %v", ci, err)
			}
			out, err := batch.TakeUint32(col, res.RightOrds, res.RightNulls)
			if err != nil {
				return nil, InternalError("filter: gathering right column %d: %v", ci, err)
			}
			fields = append(fields, probe.Schema.Fields[ci])
			cols = append(cols, out)
		}
	}

	return batch.New(&batch.Schema{Fields: fields}, cols)
}

// Apply filters res according to mask (len(mask) must equal the number of
// rows res carries on whichever side(s) are populated).
func (fr *FilterRewriter) Apply(t Type, res Result, mask []bool) Result {
	if t == Right || t == Full {
		return fr.applyRightFullRegroup(res, mask)
	}
	return fr.applyStraight(res, mask)
}

func (fr *FilterRewriter) applyStraight(res Result, mask []bool) Result {
	out := Result{HasLeft: res.HasLeft, HasRight: res.HasRight}
	var leftB *array.NullableUint64Builder
	var rightB *array.NullableUint32Builder
	leftTight := res.LeftNulls == nil
	rightTight := res.RightNulls == nil
	if res.HasLeft {
		leftB = &array.NullableUint64Builder{}
	}
	if res.HasRight {
		rightB = &array.NullableUint32Builder{}
	}

	for i, keep := range mask {
		if !keep {
			continue
		}
		if res.HasLeft {
			if res.LeftNulls.IsNull(i) {
				leftB.AppendNull()
			} else {
				leftB.Append(res.LeftOrds[i])
			}
		}
		if res.HasRight {
			if res.RightNulls.IsNull(i) {
				rightB.AppendNull()
			} else {
				rightB.Append(res.RightOrds[i])
			}
		}
	}

	if res.HasLeft {
		out.LeftOrds = leftB.Values()
		if !leftTight {
			out.LeftNulls = leftB.Nulls()
		}
	}
	if res.HasRight {
		out.RightOrds = rightB.Values()
		if !rightTight {
			out.RightNulls = rightB.Nulls()
		}
	}
	return out
}

// applyRightFullRegroup walks res grouping consecutive rows that share the
// same RightOrds value (ProbeEngine always emits a probe row's candidate
// matches contiguously), and for each group either keeps its surviving
// pairs, or — if the whole group was filtered out — emits one
// (null, probe_ord) pad row so the probe row is still represented once.
func (fr *FilterRewriter) applyRightFullRegroup(res Result, mask []bool) Result {
	leftB := &array.NullableUint64Builder{}
	rightB := &array.NullableUint32Builder{}

	n := len(mask)
	i := 0
	for i < n {
		j := i
		groupProbeOrd := res.RightOrds[i]
		anySurvived := false
		for j < n && res.RightOrds[j] == groupProbeOrd {
			if mask[j] {
				anySurvived = true
				if res.LeftNulls.IsNull(j) {
					leftB.AppendNull()
				} else {
					leftB.Append(res.LeftOrds[j])
				}
				rightB.Append(res.RightOrds[j])
			}
			j++
		}
		if !anySurvived {
			leftB.AppendNull()
			rightB.Append(groupProbeOrd)
		}
		i = j
	}

	return Result{
		HasLeft:    true,
		LeftOrds:   leftB.Values(),
		LeftNulls:  leftB.Nulls(),
		HasRight:   true,
		RightOrds:  rightB.Values(),
		RightNulls: rightB.Nulls(),
	}
}

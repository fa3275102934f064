package join

import (
	"github.com/colvex/hashjoin/internal/array"
	"github.com/colvex/hashjoin/internal/batch"
	"github.com/colvex/hashjoin/internal/hashutil"
)

// Result carries one probe batch's index pairs. Which of LeftOrds/RightOrds
// is meaningful depends on the join type: LeftSemi/LeftAnti results
// populate only LeftOrds, RightSemi/RightAnti results populate only
// RightOrds, and every other type populates both in lockstep (LeftOrds[i]
// pairs with RightOrds[i]). When a residual filter is configured,
// ProbeBatch returns two-sided pairs for the semi/anti types too; the
// caller filters them and then reduces them with MarkVisitationFromPairs or
// ReduceFilteredRightPairs.
type Result struct {
	HasLeft    bool
	LeftOrds   []uint64
	LeftNulls  array.NullBitmap
	HasRight   bool
	RightOrds  []uint32
	RightNulls array.NullBitmap
}

// ProbeEngine probes a BuildSide with successive probe batches, applying
// the emission rule for cfg.Type, and tracks the build-row visitation
// bitmap for join types whose complete answer depends on the whole probe
// stream (Left, Full, LeftSemi, LeftAnti).
type ProbeEngine struct {
	build   *BuildSide
	cfg     Config
	random  hashutil.RandomState
	visited []bool // only allocated when cfg.Type.tracksVisitation()
}

// NewProbeEngine builds a probe engine against an already-materialized
// build side. seed must be the same RandomState seed used to hash the
// build side, or probe hashes will never collide with build hashes.
func NewProbeEngine(build *BuildSide, cfg Config, seed uint64) *ProbeEngine {
	e := &ProbeEngine{build: build, cfg: cfg, random: hashutil.NewRandomState(seed)}
	if cfg.Type.tracksVisitation() {
		e.visited = make([]bool, build.NumRows())
	}
	return e
}

// ProbeBatch processes one probe batch and returns the index pairs it
// produces. The output of terminal-only join types (LeftSemi, LeftAnti, and
// the unmatched-build half of Left/Full) does not appear here; call Finish
// once the probe stream is exhausted to get it. (With a residual filter,
// LeftSemi/LeftAnti return their raw equi-match pairs here for filtering.)
func (e *ProbeEngine) ProbeBatch(probe *batch.RecordBatch) (Result, error) {
	probeKeys := make([]int, len(e.cfg.Keys))
	for i, k := range e.cfg.Keys {
		probeKeys[i] = k.RightIndex
	}
	probeCols, err := resolveKeyColumns(probe, probeKeys)
	if err != nil {
		return Result{}, PlanError("probe: resolving key columns: %v", err)
	}
	buildCols, err := resolveKeyColumns(e.build.Batch, e.build.Keys)
	if err != nil {
		return Result{}, PlanError("probe: resolving build key columns: %v", err)
	}

	eqs := make([]*array.RowEquality, len(e.cfg.Keys))
	for i := range e.cfg.Keys {
		eq, err := array.NewRowEquality(buildCols[i], probeCols[i], e.cfg.Options.NullEqualsNull)
		if err != nil {
			return Result{}, PlanError("probe: key pair %d: %v", i, err)
		}
		eqs[i] = eq
	}

	hashes := make([]uint64, probe.NumRows)
	if err := hashutil.CreateHashes(probeCols, e.random, hashes); err != nil {
		return Result{}, InternalError("probe: hashing key columns: %v", err)
	}

	return e.emit(probe, hashes, eqs)
}

func (e *ProbeEngine) candidateMatches(ord uint64, row int, eqs []*array.RowEquality) bool {
	for _, eq := range eqs {
		if !eq.Equal(int(ord), row) {
			return false
		}
	}
	return true
}

func (e *ProbeEngine) emit(probe *batch.RecordBatch, hashes []uint64, eqs []*array.RowEquality) (Result, error) {
	switch e.cfg.Type {
	case Inner:
		return e.emitPairs(probe, hashes, eqs, false, false)
	case Left:
		return e.emitPairs(probe, hashes, eqs, true, false)
	case Right:
		return e.emitPairs(probe, hashes, eqs, false, true)
	case Full:
		return e.emitPairs(probe, hashes, eqs, true, true)
	case LeftSemi, LeftAnti:
		if e.cfg.Filter != nil {
			// A residual predicate can disqualify an equi-match, so the
			// visitation decision must wait on the filtered pairs rather
			// than the raw equi-match (the caller, seeing cfg.Filter set,
			// runs the filter and then MarkVisitationFromPairs).
			return e.emitPairs(probe, hashes, eqs, false, false)
		}
		e.markVisitation(probe, hashes, eqs)
		return Result{}, nil
	case RightSemi:
		if e.cfg.Filter != nil {
			return e.emitPairs(probe, hashes, eqs, false, false)
		}
		return e.emitRightSingleSided(probe, hashes, eqs, true)
	case RightAnti:
		if e.cfg.Filter != nil {
			return e.emitPairs(probe, hashes, eqs, false, false)
		}
		return e.emitRightSingleSided(probe, hashes, eqs, false)
	default:
		return Result{}, InternalError("probe: unknown join type %v", e.cfg.Type)
	}
}

// emitPairs implements Inner/Left/Right/Full: markBuildVisited is set for
// Left/Full (so Finish can emit unmatched build rows); padProbeOnMiss is
// set for Right/Full (so an unmatched probe row gets an immediate null
// pad, since Right/Full's complete answer about a *probe* row is known as
// soon as its bucket is checked). Left/Right/Full collect into nullable
// builders; every other type collects into tight, non-nullable builders.
func (e *ProbeEngine) emitPairs(probe *batch.RecordBatch, hashes []uint64, eqs []*array.RowEquality, markBuildVisited, padProbeOnMiss bool) (Result, error) {
	nullable := e.cfg.Type.needsNullableBuilder()
	leftB := &array.NullableUint64Builder{}
	rightB := &array.NullableUint32Builder{}
	tightLeft := &array.TightUint64Builder{}
	tightRight := &array.TightUint32Builder{}

	for row := 0; row < probe.NumRows; row++ {
		candidates, ok := e.build.Index.Lookup(hashes[row])
		matched := false
		if ok {
			for _, ord := range candidates {
				if e.candidateMatches(ord, row, eqs) {
					matched = true
					if markBuildVisited {
						e.visited[ord] = true
					}
					if nullable {
						leftB.Append(ord)
						rightB.Append(uint32(row))
					} else {
						tightLeft.Append(ord)
						tightRight.Append(uint32(row))
					}
				}
			}
		}
		if !matched && padProbeOnMiss {
			leftB.AppendNull()
			rightB.Append(uint32(row))
		}
	}

	if !nullable {
		return Result{HasLeft: true, LeftOrds: tightLeft.Values(), HasRight: true, RightOrds: tightRight.Values()}, nil
	}
	return Result{
		HasLeft:    true,
		LeftOrds:   leftB.Values(),
		LeftNulls:  leftB.Nulls(),
		HasRight:   true,
		RightOrds:  rightB.Values(),
		RightNulls: rightB.Nulls(),
	}, nil
}

func (e *ProbeEngine) markVisitation(probe *batch.RecordBatch, hashes []uint64, eqs []*array.RowEquality) {
	for row := 0; row < probe.NumRows; row++ {
		candidates, ok := e.build.Index.Lookup(hashes[row])
		if !ok {
			continue
		}
		for _, ord := range candidates {
			if e.candidateMatches(ord, row, eqs) {
				e.visited[ord] = true
			}
		}
	}
}

// emitRightSingleSided implements RightSemi (wantMatch=true: emit a probe
// row once it has at least one match, then stop checking further
// candidates) and RightAnti (wantMatch=false: emit a probe row only if it
// has zero matches).
func (e *ProbeEngine) emitRightSingleSided(probe *batch.RecordBatch, hashes []uint64, eqs []*array.RowEquality, wantMatch bool) (Result, error) {
	rightB := &array.TightUint32Builder{}

	for row := 0; row < probe.NumRows; row++ {
		matched := false
		if candidates, ok := e.build.Index.Lookup(hashes[row]); ok {
			for _, ord := range candidates {
				if e.candidateMatches(ord, row, eqs) {
					matched = true
					break
				}
			}
		}
		if matched == wantMatch {
			rightB.Append(uint32(row))
		}
	}

	return Result{HasRight: true, RightOrds: rightB.Values()}, nil
}

// Finish produces the terminal batch of index pairs for join types whose
// answer depends on having seen the entire probe stream: unmatched build
// rows (Left, Full), visited build rows (LeftSemi), or unvisited build
// rows (LeftAnti). For every other join type it returns a zero Result.
func (e *ProbeEngine) Finish() Result {
	switch e.cfg.Type {
	case Left, Full:
		leftB := &array.TightUint64Builder{}
		rightNulls := array.NullBitmap{}
		for ord, v := range e.visited {
			if !v {
				leftB.Append(uint64(ord))
				rightNulls = append(rightNulls, true)
			}
		}
		return Result{
			HasLeft:    true,
			LeftOrds:   leftB.Values(),
			HasRight:   true,
			RightOrds:  make([]uint32, leftB.Len()),
			RightNulls: rightNulls,
		}
	case LeftSemi:
		leftB := &array.TightUint64Builder{}
		for ord, v := range e.visited {
			if v {
				leftB.Append(uint64(ord))
			}
		}
		return Result{HasLeft: true, LeftOrds: leftB.Values()}
	case LeftAnti:
		leftB := &array.TightUint64Builder{}
		for ord, v := range e.visited {
			if !v {
				leftB.Append(uint64(ord))
			}
		}
		return Result{HasLeft: true, LeftOrds: leftB.Values()}
	default:
		return Result{}
	}
}

// MarkVisitationFromPairs marks every build row referenced by filtered's
// LeftOrds as visited. Used by LeftSemi/LeftAnti when a residual filter is
// present: the raw equi-match pairs have already been narrowed to the ones
// that also satisfy the filter, so marking visitation from them (instead
// of from markVisitation's raw equi-match pass) folds the filter into the
// terminal Finish() decision for free.
func (e *ProbeEngine) MarkVisitationFromPairs(filtered Result) {
	for _, ord := range filtered.LeftOrds {
		e.visited[ord] = true
	}
}

// ReduceFilteredRightPairs turns a filtered pairs Result into RightSemi's
// (wantMatch=true) or RightAnti's (wantMatch=false) single-sided output
// for one probe batch of numRows rows, given the batch's equi-match pairs
// after a residual filter has already dropped the ones that fail it.
func ReduceFilteredRightPairs(numRows int, filtered Result, wantMatch bool) Result {
	survived := make([]bool, numRows)
	for _, ord := range filtered.RightOrds {
		survived[ord] = true
	}
	rightB := &array.TightUint32Builder{}
	for row := 0; row < numRows; row++ {
		if survived[row] == wantMatch {
			rightB.Append(uint32(row))
		}
	}
	return Result{HasRight: true, RightOrds: rightB.Values()}
}

func resolveKeyColumns(b *batch.RecordBatch, indices []int) ([]array.Array, error) {
	cols := make([]array.Array, len(indices))
	for i, idx := range indices {
		col, err := b.Column(idx)
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}
	return cols, nil
}

package join

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/colvex/hashjoin/internal/batch"
	"github.com/colvex/hashjoin/internal/hashindex"
)

// driveProbe runs one probe batch through a fresh ProbeEngine, applies the
// configured filter (if any) with the same reduction rules stream.go uses,
// calls Finish, and returns every produced row concatenated in probe-then-
// terminal order.
func driveProbe(t *testing.T, cfg Config, build *BuildSide, probe *batch.RecordBatch, mat *Materializer) [][]int64 {
	t.Helper()
	eng := NewProbeEngine(build, cfg, 0x9e3779b97f4a7c15)
	rewriter := NewFilterRewriter()

	res, err := eng.ProbeBatch(probe)
	require.NoError(t, err)

	if cfg.Filter != nil && (res.HasLeft || res.HasRight) {
		intermediate, err := cfg.Filter.assembleIntermediate(build.Batch, probe, res)
		require.NoError(t, err)
		mask, err := cfg.Filter.Predicate.Evaluate(intermediate)
		require.NoError(t, err)
		res = rewriter.Apply(cfg.Type, res, mask)

		switch cfg.Type {
		case LeftSemi, LeftAnti:
			eng.MarkVisitationFromPairs(res)
			res = Result{}
		case RightSemi:
			res = ReduceFilteredRightPairs(probe.NumRows, res, true)
		case RightAnti:
			res = ReduceFilteredRightPairs(probe.NumRows, res, false)
		}
	}

	var rows [][]int64
	if res.HasLeft || res.HasRight {
		out, err := mat.Materialize(build.Batch, probe, res)
		require.NoError(t, err)
		rows = append(rows, rowsOf(out)...)
	}

	term := eng.Finish()
	if term.HasLeft || term.HasRight {
		out, err := mat.Materialize(build.Batch, nil, term)
		require.NoError(t, err)
		rows = append(rows, rowsOf(out)...)
	}
	return rows
}

func requireRowSetEqual(t *testing.T, want, got [][]int64) {
	t.Helper()
	require.ElementsMatch(t, want, got)
}

// S1: inner join on b1=b1.
func TestScenarioS1Inner(t *testing.T) {
	left := intBatch([]int64{1, 2, 3}, []int64{4, 5, 5}, []int64{7, 8, 9})
	right := intBatch([]int64{10, 20, 30}, []int64{4, 5, 6}, []int64{70, 80, 90})
	build := buildSideFrom(left, []int{1})
	cfg := Config{Type: Inner, Mode: CollectLeft, Keys: []KeyPair{{LeftIndex: 1, RightIndex: 1}}, Options: defaultOptions()}
	mat := outputMaterializer(left, right)

	got := driveProbe(t, cfg, build, right, mat)
	want := [][]int64{
		{1, 4, 7, 10, 4, 70},
		{2, 5, 8, 20, 5, 80},
		{3, 5, 9, 20, 5, 80},
	}
	requireRowSetEqual(t, want, got)
}

// S2: left join, build row (3,7,9) has no matching probe key and is padded.
func TestScenarioS2Left(t *testing.T) {
	left := intBatch([]int64{1, 2, 3}, []int64{4, 5, 7}, []int64{7, 8, 9})
	right := intBatch([]int64{10, 20, 30}, []int64{4, 5, 6}, []int64{70, 80, 90})
	build := buildSideFrom(left, []int{1})
	cfg := Config{Type: Left, Mode: CollectLeft, Keys: []KeyPair{{LeftIndex: 1, RightIndex: 1}}, Options: defaultOptions()}
	mat := outputMaterializer(left, right)

	got := driveProbe(t, cfg, build, right, mat)
	want := [][]int64{
		{1, 4, 7, 10, 4, 70},
		{2, 5, 8, 20, 5, 80},
		{3, 7, 9, -1, -1, -1},
	}
	requireRowSetEqual(t, want, got)
}

// S3: full join adds the probe's unmatched 6-keyed row, padded on the left.
func TestScenarioS3Full(t *testing.T) {
	left := intBatch([]int64{1, 2, 3}, []int64{4, 5, 7}, []int64{7, 8, 9})
	right := intBatch([]int64{10, 20, 30}, []int64{4, 5, 6}, []int64{70, 80, 90})
	build := buildSideFrom(left, []int{1})
	cfg := Config{Type: Full, Mode: CollectLeft, Keys: []KeyPair{{LeftIndex: 1, RightIndex: 1}}, Options: defaultOptions()}
	mat := outputMaterializer(left, right)

	got := driveProbe(t, cfg, build, right, mat)
	want := [][]int64{
		{1, 4, 7, 10, 4, 70},
		{2, 5, 8, 20, 5, 80},
		{3, 7, 9, -1, -1, -1},
		{-1, -1, -1, 30, 6, 90},
	}
	requireRowSetEqual(t, want, got)
}

// S4: left semi — build rows whose key has at least one probe match.
func TestScenarioS4LeftSemi(t *testing.T) {
	left := intBatch([]int64{1, 2, 3, 4}, []int64{4, 5, 5, 7})
	right := intBatch([]int64{0, 0, 0, 0}, []int64{4, 5, 6, 5})
	build := buildSideFrom(left, []int{1})
	cfg := Config{Type: LeftSemi, Mode: CollectLeft, Keys: []KeyPair{{LeftIndex: 1, RightIndex: 1}}, Options: defaultOptions()}
	mat := outputMaterializer(left, right)

	got := driveProbe(t, cfg, build, right, mat)
	require.Len(t, got, 3)
	for _, row := range got {
		require.Contains(t, []int64{4, 5}, row[1])
	}
}

// S5: left anti with a residual filter that never passes — output equals
// the full left side, since the predicate disqualifies every equi-match.
func TestScenarioS5LeftAntiNeverMatchingFilter(t *testing.T) {
	left := intBatch([]int64{1, 2, 3}, []int64{10, 20, 30})
	right := intBatch([]int64{1, 2, 3}, []int64{99, 98, 97})
	build := buildSideFrom(left, []int{0})
	filter := &Filter{
		Predicate:    comparePredicate{leftCol: 1, rightCol: 3, op: func(int64, int64) bool { return false }},
		LeftColumns:  []int{0, 1},
		RightColumns: []int{0, 1},
	}
	cfg := Config{Type: LeftAnti, Mode: CollectLeft, Keys: []KeyPair{{LeftIndex: 0, RightIndex: 0}}, Options: defaultOptions(), Filter: filter}
	mat := outputMaterializer(left, right)

	got := driveProbe(t, cfg, build, right, mat)
	require.Len(t, got, 3)
}

// S6: right join with residual filter l.c > r.c.
func TestScenarioS6RightWithFilter(t *testing.T) {
	left := intBatch([]int64{0, 1, 2, 2}, []int64{4, 5, 7, 8}, []int64{7, 8, 9, 1})
	right := intBatch([]int64{10, 20, 30, 40}, []int64{2, 2, 3, 4}, []int64{7, 5, 6, 4})
	build := buildSideFrom(left, []int{0})
	// join on l.a = r.b (build col0 vs probe col1)
	filter := &Filter{
		Predicate:    comparePredicate{leftCol: 2, rightCol: 5, op: func(l, r int64) bool { return l > r }},
		LeftColumns:  []int{0, 1, 2},
		RightColumns: []int{0, 1, 2},
	}
	cfg := Config{Type: Right, Mode: CollectLeft, Keys: []KeyPair{{LeftIndex: 0, RightIndex: 1}}, Options: defaultOptions(), Filter: filter}
	mat := outputMaterializer(left, right)

	got := driveProbe(t, cfg, build, right, mat)
	want := [][]int64{
		{2, 7, 9, 10, 2, 7},
		{2, 7, 9, 20, 2, 5},
		{-1, -1, -1, 30, 3, 6},
		{-1, -1, -1, 40, 4, 4},
	}
	requireRowSetEqual(t, want, got)
}

// S7: hash-collision stress — many build rows with distinct key values are
// all forced into the single bucket the probe key hashes to; a probe row
// matching only one of them must return exactly one joined row, confirming
// RowEquality rejects every false candidate the shared bucket surfaces.
func TestScenarioS7HashCollisionStress(t *testing.T) {
	const n = 500
	keys := make([]int64, n)
	vals := make([]int64, n)
	for i := range keys {
		keys[i] = int64(i)
		vals[i] = int64(i * 10)
	}
	left := intBatch(keys, vals)
	right := intBatch([]int64{250}, []int64{0})

	build := buildSideFrom(left, []int{0})
	collided := hashindex.New(n)
	probeHash := hashFor(buildSeed, 250)
	for i := 0; i < n; i++ {
		collided.Insert(probeHash, uint64(i))
	}
	build.Index = collided

	cfg := Config{Type: Inner, Mode: CollectLeft, Keys: []KeyPair{{LeftIndex: 0, RightIndex: 0}}, Options: defaultOptions()}
	mat := outputMaterializer(left, right)
	got := driveProbe(t, cfg, build, right, mat)
	require.Equal(t, [][]int64{{250, 2500, 250, 0}}, got)
}

// Invariant 4: with null_equals_null=false, two all-null keys never match;
// with it true, they do.
func TestInvariantNullEqualsNullPolicy(t *testing.T) {
	left := intBatch([]int64{1})
	leftNull := left
	leftNull.Columns[0] = nullInt64Column(1)
	right := intBatch([]int64{2})
	right.Columns[0] = nullInt64Column(1)

	build := buildSideFrom(leftNull, []int{0})
	mat := outputMaterializer(leftNull, right)

	strict := Config{Type: Inner, Mode: CollectLeft, Keys: []KeyPair{{LeftIndex: 0, RightIndex: 0}}, Options: defaultOptions()}
	got := driveProbe(t, strict, build, right, mat)
	require.Empty(t, got)

	lenient := strict
	lenient.Options.NullEqualsNull = true
	build2 := buildSideFrom(leftNull, []int{0})
	got2 := driveProbe(t, lenient, build2, right, mat)
	require.Len(t, got2, 1)
}

// Invariant 7: the visitation bitmap has a 1-bit iff the build row appears
// in at least one emitted row, for a left-tracking join type.
func TestInvariantVisitationMatchesEmission(t *testing.T) {
	left := intBatch([]int64{1, 2, 3})
	right := intBatch([]int64{1, 1})
	build := buildSideFrom(left, []int{0})
	cfg := Config{Type: Left, Mode: CollectLeft, Keys: []KeyPair{{LeftIndex: 0, RightIndex: 0}}, Options: defaultOptions()}

	eng := NewProbeEngine(build, cfg, 0x9e3779b97f4a7c15)
	_, err := eng.ProbeBatch(right)
	require.NoError(t, err)

	require.True(t, eng.visited[0])
	require.False(t, eng.visited[1])
	require.False(t, eng.visited[2])
}

// The filter's intermediate projection is independent of the output
// projection: here the predicate references a column on each side that
// the output Materializer never selects (the output only projects the
// join key), and the filter must still see it.
func TestFilterProjectionIndependentOfOutputProjection(t *testing.T) {
	left := intBatch([]int64{1, 2, 3}, []int64{100, 5, 100})
	right := intBatch([]int64{1, 2, 3}, []int64{50, 5, 999})
	build := buildSideFrom(left, []int{0})

	outputSchema := &batch.Schema{Fields: []batch.Field{left.Schema.Fields[0], right.Schema.Fields[0]}}
	mat := NewMaterializer(outputSchema, []int{0}, []int{0}, right)

	filter := &Filter{
		Predicate:    comparePredicate{leftCol: 0, rightCol: 1, op: func(l, r int64) bool { return l > r }},
		LeftColumns:  []int{1},
		RightColumns: []int{1},
	}
	cfg := Config{Type: Inner, Mode: CollectLeft, Keys: []KeyPair{{LeftIndex: 0, RightIndex: 0}}, Options: defaultOptions(), Filter: filter}

	got := driveProbe(t, cfg, build, right, mat)
	require.Equal(t, [][]int64{{1, 1}}, got)
}

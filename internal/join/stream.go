package join

import (
	"context"
	"sync"
	"time"

	"github.com/colvex/hashjoin/internal/batch"
)

// streamState is JoinStream's pull-based lifecycle.
type streamState int

const (
	awaitingBuild streamState = iota
	probing
	draining
	exhausted
)

// JoinStream is the operator's public, pull-based output: repeated calls
// to Next return the next output RecordBatch until the join is exhausted.
// It moves through four states: AwaitingBuild (blocked on the build side),
// Probing (consuming probe batches, emitting matched output), Draining
// (emitting the terminal unmatched/visitation batch, if this join type has
// one), Exhausted (Next always returns nil, nil).
type JoinStream struct {
	cfg          Config
	probeSource  BatchSource
	materializer *Materializer
	filter       *FilterRewriter
	collector    *Collector
	recorder     Recorder

	buildOnce func(ctx context.Context) (*BuildSide, error)

	mu         sync.Mutex
	state      streamState
	build      *BuildSide
	eng        *ProbeEngine
	buildStart time.Time
	rowsOut    int
	batchesOut int
}

// NewJoinStream constructs a stream that probes probeSource against a
// build side obtained by calling buildSide (which CollectLeft callers
// satisfy with a shared buildFuture's wait, and Partitioned callers
// satisfy with a fresh per-partition BuildPipeline.Run). A nil collector
// or recorder disables event/metrics tracking for this stream.
func NewJoinStream(cfg Config, probeSource BatchSource, materializer *Materializer, buildSide func(ctx context.Context) (*BuildSide, error), collector *Collector, recorder Recorder) *JoinStream {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &JoinStream{
		cfg:          cfg,
		probeSource:  probeSource,
		materializer: materializer,
		filter:       NewFilterRewriter(),
		collector:    collector,
		recorder:     recorder,
		buildOnce:    buildSide,
		state:        awaitingBuild,
	}
}

// Next returns the next output batch, or (nil, nil) once the stream is
// exhausted. It is not safe to call Next concurrently from multiple
// goroutines on the same JoinStream.
func (s *JoinStream) Next(ctx context.Context) (*batch.RecordBatch, error) {
	for {
		switch s.state {
		case awaitingBuild:
			s.buildStart = time.Now()
			s.emit(EventBuildBegin, s.buildStart, nil)
			build, err := s.buildOnce(ctx)
			if err != nil {
				s.emit(EventErrorExecute, s.buildStart, map[string]interface{}{"error": err.Error()})
				s.state = exhausted
				return nil, err
			}
			s.build = build
			s.eng = NewProbeEngine(build, s.cfg, buildSeed)
			s.recorder.RecordBuild(time.Since(s.buildStart), 1, build.NumRows())
			s.emit(EventBuildComplete, s.buildStart, map[string]interface{}{"rows": build.NumRows()})
			s.state = probing

		case probing:
			out, done, err := s.stepProbe(ctx)
			if err != nil {
				s.state = exhausted
				return nil, err
			}
			if done {
				s.state = draining
				continue
			}
			if out != nil {
				s.rowsOut += out.NumRows
				s.batchesOut++
				return out, nil
			}
			// No output this round (e.g. a terminal-only join type
			// consuming a probe batch); keep pulling.

		case draining:
			s.state = exhausted
			term := s.eng.Finish()
			s.recorder.RecordComplete(time.Since(s.buildStart), s.batchesOut, s.rowsOut)
			s.emit(EventComplete, s.buildStart, map[string]interface{}{"output_batches": s.batchesOut, "output_rows": s.rowsOut})
			if !term.HasLeft && !term.HasRight {
				continue
			}
			mb, err := s.materializer.Materialize(s.build.Batch, nil, term)
			if err == nil && mb != nil {
				s.rowsOut += mb.NumRows
				s.batchesOut++
			}
			return mb, err

		case exhausted:
			return nil, nil
		}
	}
}

// buildSeed is the RandomState seed shared by every BuildPipeline/ProbeEngine
// pair in this process; both sides must hash with the same seed or equal
// keys will never land in the same HashIndex bucket.
const buildSeed uint64 = 0x9e3779b97f4a7c15

// stepProbe pulls one probe batch and returns its materialized output (nil
// when the round leaves no index pairs to materialize, as for LeftSemi and
// LeftAnti; a zero-row batch when the pairs are empty), or done=true once
// the probe source is exhausted.
func (s *JoinStream) stepProbe(ctx context.Context) (out *batch.RecordBatch, done bool, err error) {
	probeBatch, err := s.probeSource.Next(ctx)
	if err != nil {
		return nil, false, ExecutionError("probe: reading input batch: %v", err)
	}
	if probeBatch == nil {
		return nil, true, nil
	}

	res, err := s.eng.ProbeBatch(probeBatch)
	if err != nil {
		return nil, false, err
	}

	if s.cfg.Filter != nil && (res.HasLeft || res.HasRight) {
		res, err = s.applyFilter(probeBatch, res)
		if err != nil {
			return nil, false, err
		}
	}

	switch s.cfg.Type {
	case LeftSemi, LeftAnti:
		if s.cfg.Filter != nil {
			s.eng.MarkVisitationFromPairs(res)
		}
		return nil, false, nil
	case RightSemi:
		if s.cfg.Filter != nil {
			res = ReduceFilteredRightPairs(probeBatch.NumRows, res, true)
		}
	case RightAnti:
		if s.cfg.Filter != nil {
			res = ReduceFilteredRightPairs(probeBatch.NumRows, res, false)
		}
	}

	if !res.HasLeft && !res.HasRight {
		return nil, false, nil
	}

	mb, err := s.materializer.Materialize(s.build.Batch, probeBatch, res)
	if err != nil {
		return nil, false, err
	}
	s.recorder.RecordProbeBatch(probeBatch.NumRows, mb.NumRows)
	return mb, false, nil
}

func (s *JoinStream) emit(name string, start time.Time, data map[string]interface{}) {
	if s.collector == nil {
		return
	}
	s.collector.AddTiming(name, start, data)
}

func (s *JoinStream) applyFilter(probeBatch *batch.RecordBatch, res Result) (Result, error) {
	intermediate, err := s.cfg.Filter.assembleIntermediate(s.build.Batch, probeBatch, res)
	if err != nil {
		return Result{}, err
	}
	mask, err := s.cfg.Filter.Predicate.Evaluate(intermediate)
	if err != nil {
		return Result{}, ExecutionError("filter: evaluating residual predicate: %v", err)
	}
	return s.filter.Apply(s.cfg.Type, res, mask), nil
}

package join

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/colvex/hashjoin/internal/batch"
)

// PartitionPool runs one JoinStream per partition to exhaustion,
// concurrently, collecting every partition's output batches. This is how
// Partitioned mode realizes §5's "multiple JoinStreams progressing in
// parallel across partitions": each partition already has its own
// co-partitioned build and probe source, so partitions share nothing and
// can run on independent goroutines.
type PartitionPool struct {
	workerCount int
}

// NewPartitionPool creates a pool with the given worker count; 0 means
// runtime.NumCPU().
func NewPartitionPool(workerCount int) *PartitionPool {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	return &PartitionPool{workerCount: workerCount}
}

// DrainAll runs every stream to exhaustion and returns each partition's
// batches in partition order. A failure in any partition is reported once
// every in-flight partition has finished; it does not cancel its siblings
// (ctx cancellation is the caller's tool for that).
func (p *PartitionPool) DrainAll(ctx context.Context, streams []*JoinStream) ([][]*batch.RecordBatch, error) {
	if len(streams) == 0 {
		return nil, nil
	}

	results := make([][]*batch.RecordBatch, len(streams))
	errs := make([]error, len(streams))

	jobs := make(chan int, len(streams))
	var wg sync.WaitGroup
	for w := 0; w < p.workerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx], errs[idx] = drainOne(ctx, streams[idx])
			}
		}()
	}

	for i := range streams {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("join: partition %d failed: %w", i, err)
		}
	}
	return results, nil
}

func drainOne(ctx context.Context, s *JoinStream) ([]*batch.RecordBatch, error) {
	var out []*batch.RecordBatch
	for {
		b, err := s.Next(ctx)
		if err != nil {
			return nil, err
		}
		if b == nil {
			return out, nil
		}
		out = append(out, b)
	}
}

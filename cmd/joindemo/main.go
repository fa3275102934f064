// Command joindemo runs the hash-join operator over two small in-memory
// tables and prints the result, for manual inspection and as a runnable
// example of wiring the pieces in internal/join together.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/colvex/hashjoin/internal/array"
	"github.com/colvex/hashjoin/internal/batch"
	"github.com/colvex/hashjoin/internal/config"
	"github.com/colvex/hashjoin/internal/join"
	"github.com/colvex/hashjoin/internal/logging"
)

func main() {
	var joinType string
	var verbose bool
	var configPath string

	flag.StringVar(&joinType, "type", "inner", "join type: inner, left, right, full, leftsemi, leftanti, rightsemi, rightanti")
	flag.BoolVar(&verbose, "verbose", false, "print join lifecycle events as they occur")
	flag.StringVar(&configPath, "config", "", "path to a YAML options file (optional)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Runs a demo hash join between two in-memory tables.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -type left -verbose\n", os.Args[0])
	}
	flag.Parse()

	jt, err := parseJoinType(joinType)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	opts := config.Options{}.WithDefaults()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
			os.Exit(1)
		}
		opts = loaded.WithDefaults()
	}

	left, right, outputSchema := demoTables()

	var collector *join.Collector
	if verbose {
		collector = join.NewCollector(logging.ConsoleHandler())
	}

	cfg := join.Config{
		Type:    jt,
		Mode:    join.CollectLeft,
		Keys:    []join.KeyPair{{LeftIndex: 0, RightIndex: 0}},
		Options: opts,
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	leftColumns := []int{0, 1}
	rightColumns := []int{1}
	materializer := join.NewMaterializer(outputSchema, leftColumns, rightColumns, right)

	pipeline := join.NewBuildPipeline(newSliceSource([]*batch.RecordBatch{left}), []int{0}, 0x9e3779b97f4a7c15, left.NumRows)

	ctx := context.Background()
	buildOnce := join.NewSharedBuildSide(pipeline)

	recorder := join.Recorder(join.NopRecorder{})
	if ocRecorder, err := join.NewOpenCensusRecorder(ctx, jt); err == nil {
		recorder = ocRecorder
	}

	stream := join.NewJoinStream(cfg, newSliceSource([]*batch.RecordBatch{right}), materializer, buildOnce, collector, recorder)

	for {
		out, err := stream.Next(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if out == nil {
			break
		}
		fmt.Print(batch.PrintBatch(out))
	}
}

func parseJoinType(s string) (join.Type, error) {
	switch s {
	case "inner":
		return join.Inner, nil
	case "left":
		return join.Left, nil
	case "right":
		return join.Right, nil
	case "full":
		return join.Full, nil
	case "leftsemi":
		return join.LeftSemi, nil
	case "leftanti":
		return join.LeftAnti, nil
	case "rightsemi":
		return join.RightSemi, nil
	case "rightanti":
		return join.RightAnti, nil
	default:
		return 0, fmt.Errorf("joindemo: unknown join type %q", s)
	}
}

// demoTables builds a tiny "orders" (left/build) and "customers"
// (right/probe) pair, joined on a customer id, plus the schema of their
// concatenated output.
func demoTables() (left, right *batch.RecordBatch, outputSchema *batch.Schema) {
	leftSchema := &batch.Schema{Fields: []batch.Field{
		{Name: "customer_id", Type: array.Int64},
		{Name: "order_total", Type: array.Int64},
	}}
	left, _ = batch.New(leftSchema, []array.Array{
		&array.Int64Array{DType: array.Int64, Values: []int64{1, 1, 2, 3}},
		&array.Int64Array{DType: array.Int64, Values: []int64{100, 250, 75, 40}},
	})

	rightSchema := &batch.Schema{Fields: []batch.Field{
		{Name: "customer_id", Type: array.Int64},
		{Name: "customer_name", Type: array.Utf8},
	}}
	right, _ = batch.New(rightSchema, []array.Array{
		&array.Int64Array{DType: array.Int64, Values: []int64{1, 2, 4}},
		&array.StringArray{Values: []string{"Alice", "Bob", "Carol"}},
	})

	outputSchema = &batch.Schema{Fields: []batch.Field{
		{Name: "customer_id", Type: array.Int64},
		{Name: "order_total", Type: array.Int64},
		{Name: "customer_name", Type: array.Utf8},
	}}
	return left, right, outputSchema
}

// sliceSource is a BatchSource over a fixed slice of batches, for feeding
// the demo's in-memory tables through the pull-based operator interface.
type sliceSource struct {
	batches []*batch.RecordBatch
	pos     int
}

func newSliceSource(batches []*batch.RecordBatch) *sliceSource {
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

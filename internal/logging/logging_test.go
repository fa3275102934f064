package logging

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/colvex/hashjoin/internal/join"
)

// A bytes.Buffer is not an *os.File, so NewOutputFormatter disables color,
// keeping these assertions independent of terminal detection.

func TestFormatBuildEvents(t *testing.T) {
	var buf bytes.Buffer
	f := NewOutputFormatter(&buf)

	begin := f.Format(join.Event{Name: join.EventBuildBegin, Latency: 500 * time.Microsecond})
	require.Contains(t, begin, "build phase starting")
	require.Contains(t, begin, "[500µs]")

	complete := f.Format(join.Event{
		Name:    join.EventBuildComplete,
		Latency: 2 * time.Millisecond,
		Data:    map[string]interface{}{"rows": 1234},
	})
	require.Contains(t, complete, "build complete")
	require.Contains(t, complete, "1,234 rows")
}

func TestFormatCompleteEvent(t *testing.T) {
	var buf bytes.Buffer
	f := NewOutputFormatter(&buf)

	out := f.Format(join.Event{
		Name:    join.EventComplete,
		Latency: 10 * time.Millisecond,
		Data:    map[string]interface{}{"output_rows": 42, "output_batches": 3},
	})
	require.Contains(t, out, "join done")
	require.Contains(t, out, "42 rows")
	require.Contains(t, out, "3 batches")
}

func TestFormatErrorEvents(t *testing.T) {
	var buf bytes.Buffer
	f := NewOutputFormatter(&buf)

	out := f.Format(join.Event{
		Name: join.EventErrorExecute,
		Data: map[string]interface{}{"error": "boom"},
	})
	require.Contains(t, out, "boom")
}

func TestFormatUnknownEventFallsBackToGenericLine(t *testing.T) {
	var buf bytes.Buffer
	f := NewOutputFormatter(&buf)

	out := f.Format(join.Event{Name: "join/custom.thing", Data: map[string]interface{}{"k": "v"}})
	require.Contains(t, out, "join/custom.thing")
}

func TestFormatLatencyBucketsMicrosAndMillis(t *testing.T) {
	var buf bytes.Buffer
	f := NewOutputFormatter(&buf)

	require.Equal(t, "[250µs]", f.formatLatency(250*time.Microsecond))
	require.Equal(t, "[1.5ms]", f.formatLatency(1500*time.Microsecond))
}

func TestHandlePrintsFormattedLineToWriter(t *testing.T) {
	var buf bytes.Buffer
	f := NewOutputFormatter(&buf)

	f.Handle(join.Event{Name: join.EventFilterApplied, Latency: time.Microsecond})
	require.True(t, strings.Contains(buf.String(), "residual filter applied"))
}

func TestIsTerminalOnlyStdoutAndStderr(t *testing.T) {
	require.True(t, isTerminal(1))
	require.True(t, isTerminal(2))
	require.False(t, isTerminal(3))
}

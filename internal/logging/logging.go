// Package logging formats join.Event occurrences for human-readable
// display, the way the corpus's annotation output formatter turns query
// execution events into colorized console lines.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/colvex/hashjoin/internal/join"
)

// OutputFormatter formats join.Events for human-readable display,
// auto-detecting color support the way a terminal-aware CLI tool should.
type OutputFormatter struct {
	useColor bool
	writer   io.Writer
}

// NewOutputFormatter creates a formatter writing to w (os.Stdout if nil),
// with color enabled only when w is a terminal.
func NewOutputFormatter(w io.Writer) *OutputFormatter {
	if w == nil {
		w = os.Stdout
	}
	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = isTerminal(f.Fd())
	}
	return &OutputFormatter{useColor: useColor, writer: w}
}

// Handle implements join.Handler: format and print the event.
func (f *OutputFormatter) Handle(event join.Event) {
	if out := f.Format(event); out != "" {
		fmt.Fprintln(f.writer, out)
	}
}

// Format converts a join.Event into a human-readable line.
func (f *OutputFormatter) Format(event join.Event) string {
	latency := f.formatLatency(event.Latency)

	switch event.Name {
	case join.EventBuildBegin:
		return fmt.Sprintf("%s %s build phase starting", latency, f.colorize("===", color.FgYellow))

	case join.EventBuildComplete:
		rows, _ := event.Data["rows"].(int)
		return fmt.Sprintf("%s %s build complete with %s",
			latency, f.colorize("===", color.FgYellow), f.colorizeCount("rows", rows))

	case join.EventFilterApplied:
		return fmt.Sprintf("%s residual filter applied", latency)

	case join.EventComplete:
		batches, _ := event.Data["output_batches"].(int)
		rows, _ := event.Data["output_rows"].(int)
		return fmt.Sprintf("%s %s join done with %s across %s",
			latency, f.colorize("===", color.FgGreen),
			f.colorizeCount("rows", rows), f.colorizeCount("batches", batches))

	case join.EventErrorPlan, join.EventErrorExecute:
		return fmt.Sprintf("%s %s %v", latency, f.colorize("✗", color.FgRed), event.Data["error"])

	default:
		return fmt.Sprintf("%s %s %v", latency, event.Name, event.Data)
	}
}

// formatLatency renders a duration as [XXXµs]/[XXX.Xms], color-coded green
// (fast), yellow, or red (slow) the way the corpus's formatter does.
func (f *OutputFormatter) formatLatency(d time.Duration) string {
	if d < time.Millisecond {
		s := fmt.Sprintf("[%dµs]", d.Microseconds())
		if !f.useColor {
			return s
		}
		return color.GreenString(s)
	}

	ms := float64(d.Microseconds()) / 1000.0
	s := fmt.Sprintf("[%.1fms]", ms)
	if !f.useColor {
		return s
	}
	switch {
	case ms < 50:
		return color.GreenString(s)
	case ms < 200:
		return color.YellowString(s)
	default:
		return color.RedString(s)
	}
}

// colorizeCount renders a comma-grouped count ("1,234 rows") with a
// label-appropriate color.
func (f *OutputFormatter) colorizeCount(label string, count int) string {
	text := fmt.Sprintf("%s %s", humanize.Comma(int64(count)), label)
	if !f.useColor {
		return text
	}
	switch strings.ToLower(label) {
	case "rows":
		return color.MagentaString(text)
	case "batches":
		return color.CyanString(text)
	default:
		return text
	}
}

func (f *OutputFormatter) colorize(text string, attrs ...color.Attribute) string {
	if !f.useColor {
		return text
	}
	return color.New(attrs...).Sprint(text)
}

// ConsoleHandler returns a join.Handler that prints formatted events to
// stdout; pass it to join.NewCollector to wire up console logging.
func ConsoleHandler() join.Handler {
	formatter := NewOutputFormatter(os.Stdout)
	return formatter.Handle
}

// isTerminal reports whether fd is stdout or stderr. The corpus's own
// formatter uses the same simplified check rather than pulling in a
// terminal-detection library just for this.
func isTerminal(fd uintptr) bool {
	return fd == uintptr(1) || fd == uintptr(2)
}

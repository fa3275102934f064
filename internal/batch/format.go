package batch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/colvex/hashjoin/internal/array"
)

// TableFormatter renders a RecordBatch as a markdown table, for the CLI
// demo and for debugging join output by eye.
type TableFormatter struct {
	MaxWidth       int
	TruncateString string
}

// NewTableFormatter creates a formatter with sensible defaults.
func NewTableFormatter() *TableFormatter {
	return &TableFormatter{MaxWidth: 50, TruncateString: "..."}
}

// FormatBatch renders b as a markdown table with a trailing row count.
func (tf *TableFormatter) FormatBatch(b *RecordBatch) string {
	if b == nil || b.NumRows == 0 {
		return tf.formatEmpty(b)
	}

	out := &strings.Builder{}

	alignment := make([]tw.Align, len(b.Schema.Fields))
	for i := range alignment {
		alignment[i] = tw.AlignNone
	}

	table := tablewriter.NewTable(out,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment(alignment),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)

	headers := make([]string, len(b.Schema.Fields))
	for i, f := range b.Schema.Fields {
		headers[i] = f.Name
	}
	table.Header(headers)

	for row := 0; row < b.NumRows; row++ {
		rendered := make([]string, len(b.Columns))
		for col, arr := range b.Columns {
			rendered[col] = tf.formatCell(arr, row)
		}
		table.Append(rendered)
	}

	table.Render()
	fmt.Fprintf(out, "\n_%d rows_\n", b.NumRows)
	return out.String()
}

func (tf *TableFormatter) formatEmpty(b *RecordBatch) string {
	if b == nil {
		return "_Empty batch_"
	}
	names := make([]string, len(b.Schema.Fields))
	for i, f := range b.Schema.Fields {
		names[i] = f.Name
	}
	return fmt.Sprintf("_Columns: %v_\n\n_No rows_", names)
}

func (tf *TableFormatter) formatCell(a array.Array, row int) string {
	if a.IsNull(row) {
		return "null"
	}
	s := tf.renderValue(a, row)
	if tf.MaxWidth > 0 && len(s) > tf.MaxWidth {
		return s[:tf.MaxWidth] + tf.TruncateString
	}
	return s
}

func (tf *TableFormatter) renderValue(a array.Array, row int) string {
	switch v := a.(type) {
	case *array.Int64Array:
		return strconv.FormatInt(v.Values[row], 10)
	case *array.Uint64Array:
		return strconv.FormatUint(v.Values[row], 10)
	case *array.Float64Array:
		return strconv.FormatFloat(v.Values[row], 'f', -1, 64)
	case *array.BooleanArray:
		return strconv.FormatBool(v.Values[row])
	case *array.StringArray:
		return v.Values[row]
	case *array.LargeStringArray:
		return v.Values[row]
	case *array.DateTimeArray:
		return strconv.FormatInt(v.Values[row], 10)
	case *array.Decimal128Array:
		return fmt.Sprintf("%d.%d", v.High[row], v.Low[row])
	case *array.DictionaryArray:
		key := v.Keys[row]
		if key < 0 {
			return "null"
		}
		return tf.renderValue(v.Values, int(key))
	case *array.NullArray:
		return "null"
	default:
		return fmt.Sprintf("%v", a)
	}
}

// PrintBatch renders a batch as a markdown table using default formatter
// settings; the CLI demo writes the result to stdout.
func PrintBatch(b *RecordBatch) string {
	return NewTableFormatter().FormatBatch(b)
}

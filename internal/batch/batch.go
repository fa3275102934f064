// Package batch defines the columnar RecordBatch the join operator reads
// from its two children and writes to its consumer, plus the gather/concat
// helpers the operator's stages share.
package batch

import (
	"fmt"

	"github.com/colvex/hashjoin/internal/array"
)

// Field names and types one column of a Schema.
type Field struct {
	Name string
	Type array.Type
}

// Schema is an ordered list of fields. Two schemas are join-compatible when
// the caller has already resolved which columns are key columns; Schema
// itself carries no key metadata (that is a join.Config concern).
type Schema struct {
	Fields []Field
}

func (s *Schema) IndexOf(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// RecordBatch is a fixed-size, column-oriented slice of rows.
type RecordBatch struct {
	Schema  *Schema
	Columns []array.Array
	NumRows int
}

func New(schema *Schema, cols []array.Array) (*RecordBatch, error) {
	if len(cols) != len(schema.Fields) {
		return nil, fmt.Errorf("batch: schema has %d fields, got %d columns", len(schema.Fields), len(cols))
	}
	rows := 0
	if len(cols) > 0 {
		rows = cols[0].Len()
		for i, c := range cols {
			if c.Len() != rows {
				return nil, fmt.Errorf("batch: column %d (%s) has %d rows, want %d", i, schema.Fields[i].Name, c.Len(), rows)
			}
		}
	}
	return &RecordBatch{Schema: schema, Columns: cols, NumRows: rows}, nil
}

// Column returns the i-th column, or an error if out of range.
func (b *RecordBatch) Column(i int) (array.Array, error) {
	if i < 0 || i >= len(b.Columns) {
		return nil, fmt.Errorf("batch: column index %d out of range [0,%d)", i, len(b.Columns))
	}
	return b.Columns[i], nil
}

// Side identifies which join input a batch or ordinal came from.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

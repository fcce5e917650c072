// Package datatable models the tabular results produced by the visualization
// engine and the field formats used to render their cells for display.
//
// A Datatable is read-only to everything downstream: exporters walk its
// columns in order and look values up in each row by column id.
package datatable

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// TypeDatatable is the value of the "type" discriminator on datatable payloads.
const TypeDatatable = "datatable"

// ErrInvalidDatatable is returned when a payload cannot be used as a datatable.
var ErrInvalidDatatable = errors.New("invalid datatable")

// utf8BOM is commonly prepended by Windows tools that save JSON files.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Datatable is an ordered set of columns and rows.
type Datatable struct {
	Type    string   `json:"type,omitempty"`
	Columns []Column `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Column describes a single column. ID is the key used in rows, Name is the
// display label and Meta.Type selects the field format.
type Column struct {
	ID   string     `json:"id"`
	Name string     `json:"name"`
	Meta ColumnMeta `json:"meta"`
}

// ColumnMeta carries the semantic type of a column and optional format params.
type ColumnMeta struct {
	Type   string         `json:"type"`
	Params map[string]any `json:"params,omitempty"`
}

// Row maps column ids to raw values.
type Row map[string]any

// Label returns the display name of the column, falling back to its id.
func (c Column) Label() string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}

// Validate checks that every column has a unique, non-empty id.
func (d *Datatable) Validate() error {
	if d == nil {
		return nil
	}
	if d.Type != "" && d.Type != TypeDatatable {
		return fmt.Errorf("%w: unexpected type %q", ErrInvalidDatatable, d.Type)
	}
	seen := make(map[string]bool, len(d.Columns))
	for i, col := range d.Columns {
		if col.ID == "" {
			return fmt.Errorf("%w: column %d has no id", ErrInvalidDatatable, i)
		}
		if seen[col.ID] {
			return fmt.Errorf("%w: duplicate column id %q", ErrInvalidDatatable, col.ID)
		}
		seen[col.ID] = true
	}
	return nil
}

// TableSet is the set of datatables behind a single export action.
// Exporters and the formula detector receive the same *TableSet so that
// repeated inspection of an unchanged set can be skipped.
type TableSet struct {
	Title      string
	Datatables []*Datatable
}

// NewTableSet wraps datatables with the export title.
func NewTableSet(title string, tables []*Datatable) *TableSet {
	return &TableSet{Title: title, Datatables: tables}
}

// Decode reads a single datatable. Numbers are kept as json.Number so raw
// exports reproduce them exactly.
func Decode(r io.Reader) (*Datatable, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var dt Datatable
	if err := dec.Decode(&dt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDatatable, err)
	}
	if err := dt.Validate(); err != nil {
		return nil, err
	}
	return &dt, nil
}

// DecodeSet reads either one datatable object or an array of datatables.
// A leading UTF-8 BOM is skipped. Null array entries are kept so file naming
// can account for their position.
func DecodeSet(r io.Reader) ([]*Datatable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read datatables: %w", err)
	}

	trimmed := bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] != '[' {
		dt, err := Decode(bytes.NewReader(trimmed))
		if err != nil {
			return nil, err
		}
		return []*Datatable{dt}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	var tables []*Datatable
	if err := dec.Decode(&tables); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDatatable, err)
	}
	for _, dt := range tables {
		if err := dt.Validate(); err != nil {
			return nil, err
		}
	}
	return tables, nil
}

package datatable

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestDecode(t *testing.T) {
	input := `{
		"type": "datatable",
		"columns": [
			{"id": "col-0", "name": "Timestamp", "meta": {"type": "date"}},
			{"id": "col-1", "name": "Count", "meta": {"type": "number"}}
		],
		"rows": [
			{"col-0": 1700000000000, "col-1": 42}
		]
	}`

	dt, err := Decode(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(dt.Columns) != 2 {
		t.Fatalf("len(Columns) = %d, want 2", len(dt.Columns))
	}
	if len(dt.Rows) != 1 {
		t.Fatalf("len(Rows) = %d, want 1", len(dt.Rows))
	}

	// Numbers stay exact decimal text
	ts, ok := dt.Rows[0]["col-0"].(json.Number)
	if !ok {
		t.Fatalf("timestamp decoded as %T, want json.Number", dt.Rows[0]["col-0"])
	}
	if ts.String() != "1700000000000" {
		t.Errorf("timestamp = %s, want 1700000000000", ts)
	}
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "not json", input: `{columns:`},
		{name: "missing column id", input: `{"columns":[{"name":"A"}],"rows":[]}`},
		{name: "duplicate column id", input: `{"columns":[{"id":"a"},{"id":"a"}],"rows":[]}`},
		{name: "wrong type", input: `{"type":"table","columns":[],"rows":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input))
			if !errors.Is(err, ErrInvalidDatatable) {
				t.Errorf("Decode error = %v, want ErrInvalidDatatable", err)
			}
		})
	}
}

func TestDecodeSet(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantLen   int
		wantNilAt int
	}{
		{name: "empty body", input: "  ", wantLen: 0, wantNilAt: -1},
		{name: "single object", input: `{"columns":[{"id":"a"}],"rows":[]}`, wantLen: 1, wantNilAt: -1},
		{name: "array", input: `[{"columns":[],"rows":[]},{"columns":[],"rows":[]}]`, wantLen: 2, wantNilAt: -1},
		{name: "array with null", input: `[null,{"columns":[],"rows":[]}]`, wantLen: 2, wantNilAt: 0},
		{name: "leading BOM", input: "\uFEFF" + `{"columns":[],"rows":[]}`, wantLen: 1, wantNilAt: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tables, err := DecodeSet(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("DecodeSet failed: %v", err)
			}
			if len(tables) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(tables), tt.wantLen)
			}
			if tt.wantNilAt >= 0 && tables[tt.wantNilAt] != nil {
				t.Errorf("tables[%d] = %v, want nil", tt.wantNilAt, tables[tt.wantNilAt])
			}
		})
	}
}

func TestColumnLabel(t *testing.T) {
	if got := (Column{ID: "col-0", Name: "Host"}).Label(); got != "Host" {
		t.Errorf("Label() = %q, want %q", got, "Host")
	}
	if got := (Column{ID: "col-0"}).Label(); got != "col-0" {
		t.Errorf("Label() = %q, want %q", got, "col-0")
	}
}

package export

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/JonMunkholm/reportkit/internal/datatable"
)

func TestEncodeCSV(t *testing.T) {
	tests := []struct {
		name string
		dt   *datatable.Datatable
		opts CSVOptions
		want string
	}{
		{
			name: "quoted defaults",
			dt:   salesTable(),
			opts: DefaultCSVOptions(),
			want: "\"Name\",\"Amount\"\r\n\"Alice\",\"10\"\r\n\"Bob\",\"=SUM(A1:A2)\"\r\n",
		},
		{
			name: "unquoted semicolon",
			dt:   salesTable(),
			opts: CSVOptions{Separator: ";"},
			want: "Name;Amount\r\nAlice;10\r\nBob;=SUM(A1:A2)\r\n",
		},
		{
			name: "escape formulas",
			dt:   salesTable(),
			opts: CSVOptions{Separator: ",", QuoteValues: true, EscapeFormulaValues: true},
			want: "\"Name\",\"Amount\"\r\n\"Alice\",\"10\"\r\n\"Bob\",\"'=SUM(A1:A2)\"\r\n",
		},
		{
			name: "multi character separator",
			dt:   salesTable(),
			opts: CSVOptions{Separator: " | "},
			want: "Name | Amount\r\nAlice | 10\r\nBob | =SUM(A1:A2)\r\n",
		},
		{
			name: "empty separator falls back to comma",
			dt:   numericTable(),
			opts: CSVOptions{},
			want: "Delta\r\n-5\r\n3\r\n1,234\r\n",
		},
		{
			name: "header only",
			dt: &datatable.Datatable{
				Columns: []datatable.Column{{ID: "a", Name: "A"}, {ID: "b"}},
			},
			opts: DefaultCSVOptions(),
			want: "\"A\",\"b\"\r\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(EncodeCSV(tt.dt, tt.opts, datatable.DefaultLookup))
			if got != tt.want {
				t.Errorf("EncodeCSV() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestEncodeCSV_EmbeddedQuotes(t *testing.T) {
	dt := &datatable.Datatable{
		Columns: []datatable.Column{{ID: "q", Name: `Say "hi"`}},
		Rows:    []datatable.Row{{"q": `she said "yes"`}},
	}

	got := string(EncodeCSV(dt, DefaultCSVOptions(), nil))
	want := "\"Say \"\"hi\"\"\"\r\n\"she said \"\"yes\"\"\"\r\n"
	if got != want {
		t.Errorf("EncodeCSV() = %q, want %q", got, want)
	}
}

func TestEncodeCSV_RawValues(t *testing.T) {
	dt := &datatable.Datatable{
		Columns: []datatable.Column{
			{ID: "ts", Name: "Timestamp", Meta: datatable.ColumnMeta{Type: datatable.TypeDate}},
			{ID: "n", Name: "Bytes", Meta: datatable.ColumnMeta{Type: datatable.TypeNumber}},
		},
		Rows: []datatable.Row{
			{"ts": json.Number("1700000000000"), "n": json.Number("1234567")},
		},
	}

	formatted := string(EncodeCSV(dt, CSVOptions{Separator: ","}, nil))
	if !strings.Contains(formatted, "Nov 14, 2023 @ 22:13:20.000") {
		t.Errorf("formatted export missing display date: %q", formatted)
	}

	raw := string(EncodeCSV(dt, CSVOptions{Separator: ",", Raw: true}, nil))
	want := "Timestamp,Bytes\r\n1700000000000,1234567\r\n"
	if raw != want {
		t.Errorf("raw export = %q, want %q", raw, want)
	}
}

func TestEncodeCSV_MissingValues(t *testing.T) {
	dt := &datatable.Datatable{
		Columns: []datatable.Column{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}},
		Rows:    []datatable.Row{{"b": "x"}, {"a": nil}},
	}

	got := string(EncodeCSV(dt, DefaultCSVOptions(), nil))
	want := "\"A\",\"B\"\r\n\"\",\"x\"\r\n\"\",\"\"\r\n"
	if got != want {
		t.Errorf("EncodeCSV() = %q, want %q", got, want)
	}
}

func TestEncodeCSV_LineCount(t *testing.T) {
	dt := salesTable()
	out := string(EncodeCSV(dt, DefaultCSVOptions(), nil))

	lines := strings.Split(strings.TrimSuffix(out, LineTerminator), LineTerminator)
	if len(lines) != len(dt.Rows)+1 {
		t.Errorf("got %d lines, want %d", len(lines), len(dt.Rows)+1)
	}
}

func TestEncodeCSV_Nil(t *testing.T) {
	if got := EncodeCSV(nil, DefaultCSVOptions(), nil); got != nil {
		t.Errorf("EncodeCSV(nil) = %q, want nil", got)
	}
}

package datatable

// formats.go provides the field format registry.
//
// Each semantic column type (meta.type) maps to a Formatter that renders a raw
// cell value the way it is displayed to users. Formatted values feed the
// formula detector, formatted CSV exports and spreadsheet rows; raw exports
// bypass the registry entirely.

import (
	"fmt"
	"sort"
	"sync"
)

// Formatter renders a raw value using optional column params.
type Formatter func(value any, params map[string]any) string

// FormatLookup resolves the formatter for a column.
type FormatLookup func(col Column) Formatter

// Semantic column types with a built-in format.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeDate    = "date"
	TypeBoolean = "boolean"
)

var (
	formats   = make(map[string]Formatter)
	formatsMu sync.RWMutex
)

func init() {
	RegisterFormat(TypeString, formatString)
	RegisterFormat(TypeNumber, formatNumber)
	RegisterFormat(TypeDate, formatDate)
	RegisterFormat(TypeBoolean, formatBoolean)
}

// RegisterFormat adds a formatter for a semantic type.
// Panics if the type is already registered.
func RegisterFormat(metaType string, f Formatter) {
	formatsMu.Lock()
	defer formatsMu.Unlock()

	if _, exists := formats[metaType]; exists {
		panic(fmt.Sprintf("format already registered: %s", metaType))
	}
	formats[metaType] = f
}

// LookupFormat returns the formatter registered for a semantic type.
// Returns false if not found.
func LookupFormat(metaType string) (Formatter, bool) {
	formatsMu.RLock()
	defer formatsMu.RUnlock()

	f, ok := formats[metaType]
	return f, ok
}

// FormatTypes returns all registered semantic types, sorted.
func FormatTypes() []string {
	formatsMu.RLock()
	defer formatsMu.RUnlock()

	types := make([]string, 0, len(formats))
	for t := range formats {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// DefaultLookup resolves formatters from the registry. Unknown types render
// as plain strings.
func DefaultLookup(col Column) Formatter {
	if f, ok := LookupFormat(col.Meta.Type); ok {
		return f
	}
	return formatString
}

// FormatCell returns the display value of a row cell. Missing and null values
// render as empty strings.
func FormatCell(col Column, row Row, lookup FormatLookup) string {
	v, ok := row[col.ID]
	if !ok || v == nil {
		return ""
	}
	if lookup == nil {
		lookup = DefaultLookup
	}
	return lookup(col)(v, col.Meta.Params)
}

// RawCell returns the underlying value of a row cell as text.
func RawCell(col Column, row Row) string {
	return RawString(row[col.ID])
}

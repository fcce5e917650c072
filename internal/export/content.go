package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/JonMunkholm/reportkit/internal/datatable"
)

// DefaultTitle names exports whose visualization has no title yet.
const DefaultTitle = "unsaved"

// Exportable is one file produced by an export.
type Exportable struct {
	Content []byte
	Type    string
}

// ExportableContent maps filenames to export files.
type ExportableContent map[string]Exportable

// Filenames returns the entry names in sorted order.
func (c ExportableContent) Filenames() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Size returns the total number of content bytes.
func (c ExportableContent) Size() int {
	n := 0
	for _, e := range c {
		n += len(e.Content)
	}
	return n
}

// BaseFilename derives a file name stem from an export title.
func BaseFilename(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return DefaultTitle
	}
	return strings.NewReplacer("/", "_", `\`, "_").Replace(title)
}

// BuildCSVContent encodes every datatable in set. With more than one datatable
// each file is suffixed with its 1-based position; nil datatables are skipped
// but keep their position.
func BuildCSVContent(set *datatable.TableSet, opts CSVOptions, lookup datatable.FormatLookup) ExportableContent {
	content := make(ExportableContent)
	if set == nil {
		return content
	}

	base := BaseFilename(set.Title)
	multi := len(set.Datatables) > 1

	for i, dt := range set.Datatables {
		if dt == nil {
			continue
		}
		postfix := ""
		if multi {
			postfix = fmt.Sprintf("-%d", i+1)
		}
		content[base+postfix+".csv"] = Exportable{
			Content: EncodeCSV(dt, opts, lookup),
			Type:    CSVMimeType,
		}
	}
	return content
}

// BuildXLSXContent renders the single datatable in set as a workbook.
// Returns ErrMultipleTables for more than one datatable and ErrNoData when
// there is nothing to write.
func BuildXLSXContent(set *datatable.TableSet, opts WorkbookOptions, lookup datatable.FormatLookup) (ExportableContent, error) {
	if set == nil || len(set.Datatables) == 0 {
		return nil, ErrNoData
	}
	if len(set.Datatables) > 1 {
		return nil, ErrMultipleTables
	}

	table, err := ToSheetTable(set.Datatables[0], lookup)
	if err != nil {
		return nil, err
	}

	data, err := WriteXLSX(table, opts)
	if err != nil {
		return nil, fmt.Errorf("build workbook: %w", err)
	}

	return ExportableContent{
		BaseFilename(set.Title) + ".xlsx": {Content: data, Type: XLSXMimeType},
	}, nil
}

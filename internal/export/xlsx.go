package export

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// XLSXMimeType is the content type of spreadsheet downloads.
const XLSXMimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DefaultSheetName names the single worksheet of exported workbooks.
const DefaultSheetName = "report"

const (
	minColumnWidth = 8
	maxColumnWidth = 60
)

// WorkbookOptions controls workbook metadata.
type WorkbookOptions struct {
	Creator   string
	SheetName string
	Now       func() time.Time
}

// WriteXLSX renders table as a workbook with one worksheet: a bold header row
// followed by the data rows.
func WriteXLSX(table SheetTable, opts WorkbookOptions) ([]byte, error) {
	sheet := opts.SheetName
	if sheet == "" {
		sheet = DefaultSheetName
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	stamp := now().UTC().Format(time.RFC3339)
	if err := f.SetDocProps(&excelize.DocProperties{
		Creator:        opts.Creator,
		LastModifiedBy: opts.Creator,
		Created:        stamp,
		Modified:       stamp,
	}); err != nil {
		return nil, fmt.Errorf("set document properties: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return nil, fmt.Errorf("open stream writer: %w", err)
	}

	// Widths must be set before the first row is written.
	for i, w := range columnWidths(table) {
		if err := sw.SetColWidth(i+1, i+1, float64(w)); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	header := make([]any, len(table.Header))
	for i, col := range table.Header {
		header[i] = col.Label
	}
	cell, _ := excelize.CoordinatesToCellName(1, 1)
	if err := sw.SetRow(cell, header, excelize.RowOpts{StyleID: headerStyle}); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for r, row := range table.Rows {
		values := make([]any, len(row))
		for i, v := range row {
			values[i] = v
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := sw.SetRow(cell, values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", r+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return nil, fmt.Errorf("flush sheet: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func columnWidths(table SheetTable) []int {
	widths := make([]int, len(table.Header))
	for i, col := range table.Header {
		widths[i] = utf8.RuneCountInString(col.Label)
	}
	for _, row := range table.Rows {
		for i, v := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], utf8.RuneCountInString(v))
			}
		}
	}
	for i, w := range widths {
		widths[i] = min(max(w+2, minColumnWidth), maxColumnWidth)
	}
	return widths
}

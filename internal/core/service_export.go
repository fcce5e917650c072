package core

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/reportkit/internal/datatable"
	"github.com/JonMunkholm/reportkit/internal/export"
	"github.com/JonMunkholm/reportkit/internal/logging"
)

// ExportOptions overrides the configured CSV settings for one export.
// Nil fields keep the configured value.
type ExportOptions struct {
	Separator           *string `json:"separator,omitempty"`
	QuoteValues         *bool   `json:"quoteValues,omitempty"`
	EscapeFormulaValues *bool   `json:"escapeFormulaValues,omitempty"`
}

// ExportRequest is the body of an export call.
type ExportRequest struct {
	Title      string                 `json:"title"`
	Datatables []*datatable.Datatable `json:"datatables"`
	Options    ExportOptions          `json:"options"`
}

// Validate checks every datatable in the request.
func (r *ExportRequest) Validate() error {
	for i, dt := range r.Datatables {
		if err := dt.Validate(); err != nil {
			return fmt.Errorf("datatable %d: %w", i, err)
		}
	}
	return nil
}

// TableSet returns the request's datatables as a table set.
func (r *ExportRequest) TableSet() *datatable.TableSet {
	return datatable.NewTableSet(r.Title, r.Datatables)
}

// ExportResult is the output of an export.
type ExportResult struct {
	Content     export.ExportableContent
	HasFormulas bool
	ArchiveName string
}

// CSVOptions merges per-request overrides into the configured CSV defaults.
func (s *Service) CSVOptions(opts ExportOptions, raw bool) export.CSVOptions {
	out := s.csvDefaults
	if opts.Separator != nil && *opts.Separator != "" {
		out.Separator = *opts.Separator
	}
	if opts.QuoteValues != nil {
		out.QuoteValues = *opts.QuoteValues
	}
	if opts.EscapeFormulaValues != nil {
		out.EscapeFormulaValues = *opts.EscapeFormulaValues
	}
	out.Raw = raw
	return out
}

// ExportCSV encodes every datatable in set as CSV. Formula detection only
// informs the result; it never blocks the export.
func (s *Service) ExportCSV(ctx context.Context, set *datatable.TableSet, opts ExportOptions, raw bool) (ExportResult, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return ExportResult{}, fmt.Errorf("export csv: %w", err)
	}
	defer s.limiter.Release()

	start := time.Now()
	content := export.BuildCSVContent(set, s.CSVOptions(opts, raw), s.lookup)
	result := ExportResult{
		Content:     content,
		HasFormulas: s.DetectFormulas(set),
		ArchiveName: archiveName(set),
	}

	logging.FromContext(ctx).Info("csv export built",
		"files", len(content),
		"bytes", content.Size(),
		"raw", raw,
		"has_formulas", result.HasFormulas,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// ExportXLSX renders the single datatable in set as a workbook.
func (s *Service) ExportXLSX(ctx context.Context, set *datatable.TableSet) (ExportResult, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return ExportResult{}, fmt.Errorf("export xlsx: %w", err)
	}
	defer s.limiter.Release()

	start := time.Now()
	opts := s.workbook
	opts.Now = s.now

	content, err := export.BuildXLSXContent(set, opts, s.lookup)
	if err != nil {
		return ExportResult{}, fmt.Errorf("export xlsx: %w", err)
	}

	logging.FromContext(ctx).Info("xlsx export built",
		"bytes", content.Size(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return ExportResult{Content: content, ArchiveName: archiveName(set)}, nil
}

// DetectFormulas reports whether any header or formatted cell in set would be
// read as a formula by a spreadsheet application.
func (s *Service) DetectFormulas(set *datatable.TableSet) bool {
	if set == nil {
		return false
	}
	return export.HasFormulas(set.Datatables, s.lookup)
}

func archiveName(set *datatable.TableSet) string {
	title := ""
	if set != nil {
		title = set.Title
	}
	return export.BaseFilename(title) + ".zip"
}

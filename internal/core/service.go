package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/reportkit/internal/config"
	"github.com/JonMunkholm/reportkit/internal/datatable"
	"github.com/JonMunkholm/reportkit/internal/export"
	"github.com/JonMunkholm/reportkit/internal/logging"
)

// Service provides the business logic for exports and scheduled reports.
type Service struct {
	store     ReportStore
	validator *ReportValidator
	limiter   *ExportLimiter
	lookup    datatable.FormatLookup

	csvDefaults export.CSVOptions
	workbook    export.WorkbookOptions

	now   func() time.Time
	newID func() string
}

// NewService creates a new Service instance. A nil cfg uses defaults.
func NewService(store ReportStore, cfg *config.Config) (*Service, error) {
	if store == nil {
		return nil, errors.New("report store is required")
	}
	if cfg == nil {
		cfg = config.Defaults()
	}

	lookup := datatable.FormatLookup(datatable.DefaultLookup)

	return &Service{
		store:     store,
		validator: NewReportValidator(),
		limiter:   NewExportLimiter(cfg.Export.MaxConcurrent, cfg.Export.MaxWaitTime),
		lookup:    lookup,
		csvDefaults: export.CSVOptions{
			Separator:           cfg.Export.CSVSeparator,
			QuoteValues:         cfg.Export.CSVQuoteValues,
			EscapeFormulaValues: cfg.Export.CSVEscapeFormulaValues,
		},
		workbook: export.WorkbookOptions{
			Creator:   cfg.Export.WorkbookCreator,
			SheetName: cfg.Export.SheetName,
		},
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}, nil
}

// CreateScheduledReport validates req and stores a new scheduled report.
// Validation failures are returned as ValidationError and nothing is stored.
func (s *Service) CreateScheduledReport(ctx context.Context, req CreateScheduledReportRequest) (ScheduledReport, error) {
	sched, err := s.validator.Validate(req)
	if err != nil {
		return ScheduledReport{}, err
	}

	report := ScheduledReport{
		ID:              s.newID(),
		Index:           req.Index,
		VisualizationID: req.VisualizationID,
		Title:           req.Title,
		Request:         req.Request,
		Duration:        sched.Duration,
		DurationUnit:    sched.DurationUnit,
		Receiver:        req.Receiver,
		TimeFilter:      sched.TimeFilter,
		TimeFilterUnit:  sched.TimeFilterUnit,
		Columns:         req.Columns,
		CreatedAt:       s.now().UTC().Truncate(time.Millisecond),
	}

	if err := s.store.Create(ctx, report); err != nil {
		return ScheduledReport{}, fmt.Errorf("create scheduled report: %w", err)
	}

	logging.WithFields(ctx, "report_id", report.ID).Info("scheduled report created",
		"visualization_id", report.VisualizationID,
		"every", fmt.Sprintf("%d %s", report.Duration, report.DurationUnit),
	)
	return report, nil
}

// ListScheduledReports returns every scheduled report, oldest first.
func (s *Service) ListScheduledReports(ctx context.Context) ([]ScheduledReport, error) {
	reports, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list scheduled reports: %w", err)
	}
	return reports, nil
}

// GetScheduledReport returns one scheduled report.
func (s *Service) GetScheduledReport(ctx context.Context, id string) (ScheduledReport, error) {
	if err := checkReportID(id); err != nil {
		return ScheduledReport{}, err
	}
	report, err := s.store.Get(ctx, id)
	if err != nil {
		return ScheduledReport{}, fmt.Errorf("get scheduled report: %w", err)
	}
	return report, nil
}

// DeleteScheduledReport removes one scheduled report.
func (s *Service) DeleteScheduledReport(ctx context.Context, id string) error {
	if err := checkReportID(id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete scheduled report: %w", err)
	}
	logging.WithFields(ctx, "report_id", id).Info("scheduled report deleted")
	return nil
}

// Ping checks that the report store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// ExportLimiterStatus returns the export limiter state for monitoring.
func (s *Service) ExportLimiterStatus() ExportLimiterStatus {
	return s.limiter.Status()
}

// WaitForExports blocks until in-flight exports finish or ctx is done.
func (s *Service) WaitForExports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// checkReportID maps malformed ids to ErrReportNotFound.
func checkReportID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", ErrReportNotFound, id)
	}
	return nil
}

// Package store provides ReportStore implementations for scheduled reports.
//
// MemoryStore is the default and keeps records for the life of the process.
// PostgresStore and RedisStore keep them in an external service and are
// selected with REPORT_STORE.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/JonMunkholm/reportkit/internal/core"
)

// MemoryStore keeps scheduled reports in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	reports map[string]core.ScheduledReport
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{reports: make(map[string]core.ScheduledReport)}
}

// Create implements core.ReportStore.
func (s *MemoryStore) Create(ctx context.Context, report core.ScheduledReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reports[report.ID]; exists {
		return fmt.Errorf("duplicate key: scheduled report %s", report.ID)
	}
	s.reports[report.ID] = report
	return nil
}

// Get implements core.ReportStore.
func (s *MemoryStore) Get(ctx context.Context, id string) (core.ScheduledReport, error) {
	if err := ctx.Err(); err != nil {
		return core.ScheduledReport{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	report, ok := s.reports[id]
	if !ok {
		return core.ScheduledReport{}, core.ErrReportNotFound
	}
	return report, nil
}

// List implements core.ReportStore. Reports are ordered by creation time.
func (s *MemoryStore) List(ctx context.Context) ([]core.ScheduledReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	reports := make([]core.ScheduledReport, 0, len(s.reports))
	for _, r := range s.reports {
		reports = append(reports, r)
	}
	s.mu.RUnlock()

	sortReports(reports)
	return reports, nil
}

// Delete implements core.ReportStore.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reports[id]; !ok {
		return core.ErrReportNotFound
	}
	delete(s.reports, id)
	return nil
}

// Ping implements core.ReportStore.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// sortReports orders reports by creation time, then id.
func sortReports(reports []core.ScheduledReport) {
	sort.Slice(reports, func(i, j int) bool {
		if !reports[i].CreatedAt.Equal(reports[j].CreatedAt) {
			return reports[i].CreatedAt.Before(reports[j].CreatedAt)
		}
		return reports[i].ID < reports[j].ID
	})
}

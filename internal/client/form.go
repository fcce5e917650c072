package client

import (
	"context"
	"sync"

	"github.com/JonMunkholm/reportkit/internal/core"
)

// ListingPath is where a successful create navigates to.
const ListingPath = "../scheduledReports/"

// Creator creates scheduled reports. *Client implements it.
type Creator interface {
	CreateScheduledReport(ctx context.Context, req core.CreateScheduledReportRequest) (core.ScheduledReport, error)
}

// CreateForm holds the submit state of a create form.
//
// Submit validates locally first and never sends an invalid request. While a
// request is in flight Saving is true. A failed request resets Saving and
// leaves Redirect empty; a successful one sets Redirect to ListingPath.
type CreateForm struct {
	creator   Creator
	validator *core.ReportValidator

	mu       sync.Mutex
	saving   bool
	redirect string
}

// NewCreateForm creates a form submitting through creator.
func NewCreateForm(creator Creator) *CreateForm {
	return &CreateForm{
		creator:   creator,
		validator: core.NewReportValidator(),
	}
}

// Saving reports whether a submit is in flight or has succeeded.
func (f *CreateForm) Saving() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saving
}

// Redirect returns the navigation target after a successful submit.
func (f *CreateForm) Redirect() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.redirect
}

// Submit validates req and sends it. Validation failures are returned as
// core.ValidationError without touching the saving state.
func (f *CreateForm) Submit(ctx context.Context, req core.CreateScheduledReportRequest) (core.ScheduledReport, error) {
	if _, err := f.validator.Validate(req); err != nil {
		return core.ScheduledReport{}, err
	}

	f.mu.Lock()
	f.saving = true
	f.mu.Unlock()

	report, err := f.creator.CreateScheduledReport(ctx, req)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.saving = false
		return core.ScheduledReport{}, err
	}
	f.redirect = ListingPath
	return report, nil
}

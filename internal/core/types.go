package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DurationUnit is the unit of a repeat duration or time filter.
type DurationUnit string

const (
	UnitSecond DurationUnit = "second"
	UnitHour   DurationUnit = "hour"
	UnitDay    DurationUnit = "day"
	UnitMonth  DurationUnit = "month"
)

var (
	// ErrReportNotFound is returned when a scheduled report does not exist.
	ErrReportNotFound = errors.New("scheduled report not found")

	// ErrMalformedRequest is returned when a request body cannot be decoded.
	ErrMalformedRequest = errors.New("malformed request body")
)

// ScheduledReport is a stored schedule for mailing a visualization report.
type ScheduledReport struct {
	ID              string       `json:"id"`
	Index           string       `json:"index"`
	VisualizationID string       `json:"visualizationId"`
	Title           string       `json:"title"`
	Request         string       `json:"request"`
	Duration        int          `json:"duration"`
	DurationUnit    DurationUnit `json:"durationUnit"`
	Receiver        string       `json:"receiver"`
	TimeFilter      int          `json:"timeFilter"`
	TimeFilterUnit  DurationUnit `json:"timeFilterUnit"`
	Columns         string       `json:"columns"`
	CreatedAt       time.Time    `json:"createdAt"`
}

// CreateScheduledReportRequest is the body of a create call. Duration and
// TimeFilter come from form inputs and may be numbers or numeric strings.
type CreateScheduledReportRequest struct {
	Index           string       `json:"index"`
	VisualizationID string       `json:"visualizationId"`
	Title           string       `json:"title"`
	Request         string       `json:"request"`
	Duration        NumberField  `json:"duration"`
	DurationUnit    DurationUnit `json:"durationUnit"`
	Receiver        string       `json:"receiver"`
	TimeFilter      NumberField  `json:"timeFilter"`
	TimeFilterUnit  DurationUnit `json:"timeFilterUnit"`
	Columns         string       `json:"columns"`
}

var jsonNumberRegex = regexp.MustCompile(`^-?(0|[1-9]\d*)(\.\d+)?([eE][+-]?\d+)?$`)

// NumberField holds the text of a JSON number or string value.
type NumberField string

// UnmarshalJSON accepts a JSON number, string or null.
func (n *NumberField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*n = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumberField(s)
		return nil
	default:
		var num json.Number
		if err := json.Unmarshal(data, &num); err != nil {
			return fmt.Errorf("number field: %w", err)
		}
		*n = NumberField(num.String())
		return nil
	}
}

// MarshalJSON writes numeric values as JSON numbers and anything else as a string.
func (n NumberField) MarshalJSON() ([]byte, error) {
	s := strings.TrimSpace(string(n))
	if jsonNumberRegex.MatchString(s) {
		return []byte(s), nil
	}
	return json.Marshal(string(n))
}

// Int parses the field as a whole number. Fractional values are rejected.
func (n NumberField) Int() (int, bool) {
	s := strings.TrimSpace(string(n))
	if s == "" {
		return 0, false
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i, true
	}
	// ParseFloat also takes hex floats, underscores, Inf and NaN.
	if !jsonNumberRegex.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

// Number returns an integer field value.
func Number(i int) NumberField {
	return NumberField(strconv.Itoa(i))
}

// ReportStore persists scheduled reports. Implementations must be safe for
// concurrent use and return ErrReportNotFound for unknown ids.
type ReportStore interface {
	Create(ctx context.Context, report ScheduledReport) error
	Get(ctx context.Context, id string) (ScheduledReport, error)
	List(ctx context.Context) ([]ScheduledReport, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

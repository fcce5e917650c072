package core

// validation.go checks scheduled report fields before a record is stored.
//
// Checks run in form order: receiver email, repeat duration, time filter.
// The first failure is returned, so a caller sees one problem at a time,
// the same way the create form reports them.

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validation error codes.
const (
	CodeInvalidEmail      = "VAL001"
	CodeInvalidDuration   = "VAL002"
	CodeDurationRange     = "VAL003"
	CodeInvalidTimeFilter = "VAL004"
)

// Messages shown for failed scheduled report checks.
const (
	MsgInvalidEmail      = "Provided receiver email address is either empty or not valid."
	MsgInvalidDuration   = "Repeat duration is either empty or not valid."
	MsgInvalidTimeFilter = "Time Filter Field is either empty or not valid."
)

// DefaultUnit is used when a request leaves a unit empty.
const DefaultUnit = UnitDay

// maxDuration is the upper repeat duration bound per unit.
var maxDuration = map[DurationUnit]int{
	UnitSecond: 60,
	UnitHour:   24,
	UnitDay:    31,
	UnitMonth:  12,
}

// timeFilterUnits are the units accepted for the report time filter.
var timeFilterUnits = map[DurationUnit]bool{
	UnitHour:  true,
	UnitDay:   true,
	UnitMonth: true,
}

// ValidationError represents a single validation error for a field.
type ValidationError struct {
	Field   string // JSON field name
	Value   string // The invalid value
	Message string // Human-readable error message
	Code    string // Error code for support reference
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Schedule holds the normalized numeric fields of a valid request.
type Schedule struct {
	Duration       int
	DurationUnit   DurationUnit
	TimeFilter     int
	TimeFilterUnit DurationUnit
}

// ReportValidator validates create requests.
type ReportValidator struct {
	validate *validator.Validate
}

// NewReportValidator creates a validator.
func NewReportValidator() *ReportValidator {
	return &ReportValidator{validate: validator.New()}
}

// Validate checks req and returns its parsed schedule.
// The returned error is a ValidationError.
func (v *ReportValidator) Validate(req CreateScheduledReportRequest) (Schedule, error) {
	if err := v.ValidateEmail(req.Receiver); err != nil {
		return Schedule{}, err
	}

	unit := normalizeUnit(req.DurationUnit)
	duration, err := ValidateDuration(req.Duration, unit)
	if err != nil {
		return Schedule{}, err
	}

	filterUnit := normalizeUnit(req.TimeFilterUnit)
	filter, err := ValidateTimeFilter(req.TimeFilter, filterUnit)
	if err != nil {
		return Schedule{}, err
	}

	return Schedule{
		Duration:       duration,
		DurationUnit:   unit,
		TimeFilter:     filter,
		TimeFilterUnit: filterUnit,
	}, nil
}

// ValidateEmail checks that the receiver is a non-empty, valid email address.
func (v *ReportValidator) ValidateEmail(receiver string) error {
	if err := v.validate.Var(receiver, "required,email"); err != nil {
		return ValidationError{Field: "receiver", Value: receiver, Message: MsgInvalidEmail, Code: CodeInvalidEmail}
	}
	return nil
}

// ValidateDuration checks that d is a non-zero integer within the bounds of unit.
func ValidateDuration(d NumberField, unit DurationUnit) (int, error) {
	n, ok := d.Int()
	if !ok || n == 0 {
		return 0, ValidationError{Field: "duration", Value: string(d), Message: MsgInvalidDuration, Code: CodeInvalidDuration}
	}

	limit, ok := maxDuration[unit]
	if !ok {
		return 0, ValidationError{
			Field:   "durationUnit",
			Value:   string(unit),
			Message: fmt.Sprintf("Repeat duration unit %q is not supported.", unit),
			Code:    CodeInvalidDuration,
		}
	}
	if n < 1 || n > limit {
		return 0, ValidationError{
			Field:   "duration",
			Value:   string(d),
			Message: fmt.Sprintf("Repeat duration for %ss must be between 1 and %d.", unit, limit),
			Code:    CodeDurationRange,
		}
	}
	return n, nil
}

// ValidateTimeFilter checks that f is a positive integer with a supported unit.
func ValidateTimeFilter(f NumberField, unit DurationUnit) (int, error) {
	n, ok := f.Int()
	if !ok || n <= 0 {
		return 0, ValidationError{Field: "timeFilter", Value: string(f), Message: MsgInvalidTimeFilter, Code: CodeInvalidTimeFilter}
	}
	if !timeFilterUnits[unit] {
		return 0, ValidationError{Field: "timeFilterUnit", Value: string(unit), Message: MsgInvalidTimeFilter, Code: CodeInvalidTimeFilter}
	}
	return n, nil
}

// MaxDuration returns the largest repeat duration allowed for unit.
func MaxDuration(unit DurationUnit) (int, bool) {
	limit, ok := maxDuration[unit]
	return limit, ok
}

func normalizeUnit(u DurationUnit) DurationUnit {
	s := strings.ToLower(strings.TrimSpace(string(u)))
	if s == "" {
		return DefaultUnit
	}
	return DurationUnit(s)
}

package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/reportkit/internal/datatable"
	"github.com/JonMunkholm/reportkit/internal/export"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "validation error keeps its message",
			err:         ValidationError{Field: "receiver", Message: MsgInvalidEmail, Code: CodeInvalidEmail},
			wantCode:    "VAL001",
			wantMessage: MsgInvalidEmail,
		},
		{
			name:        "wrapped no data",
			err:         fmt.Errorf("export xlsx: %w", export.ErrNoData),
			wantCode:    "EXP001",
			wantMessage: "No data found. Please extend the time range!",
		},
		{
			name:        "multiple tables",
			err:         export.ErrMultipleTables,
			wantCode:    "EXP002",
			wantMessage: "Downloading multi-datatable visualizations is not supported yet!",
		},
		{
			name:        "invalid datatable",
			err:         fmt.Errorf("datatable 0: %w", datatable.ErrInvalidDatatable),
			wantCode:    "EXP003",
			wantMessage: "The datatable could not be read",
		},
		{
			name:        "too many exports",
			err:         fmt.Errorf("export csv: %w", ErrTooManyExports),
			wantCode:    "EXP004",
			wantMessage: "System is busy processing other exports",
		},
		{
			name:        "report not found",
			err:         fmt.Errorf("get scheduled report: %w", ErrReportNotFound),
			wantCode:    "RPT001",
			wantMessage: "Scheduled report not found",
		},
		{
			name:        "deadline exceeded is typed before the timeout pattern",
			err:         fmt.Errorf("list: %w", context.DeadlineExceeded),
			wantCode:    "REQ004",
			wantMessage: "Request timed out",
		},
		{
			name:        "duplicate key maps correctly",
			err:         errors.New("ERROR: duplicate key value violates unique constraint"),
			wantCode:    "DB001",
			wantMessage: "A record with this ID already exists",
		},
		{
			name:        "connection refused maps correctly",
			err:         errors.New("dial tcp 127.0.0.1:6379: connect: connection refused"),
			wantCode:    "DB004",
			wantMessage: "Unable to connect to the report store",
		},
		{
			name:        "i/o timeout maps correctly",
			err:         errors.New("read tcp: i/o timeout"),
			wantCode:    "DB006",
			wantMessage: "Operation timed out",
		},
		{
			name:        "rate limit maps correctly",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("DUPLICATE KEY value violates"),
			wantCode:    "DB001",
			wantMessage: "A record with this ID already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(export.ErrNoData)

	expected := "No data found. Please extend the time range! (Code: EXP001). Widen the time filter of the visualization and export again"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error is not user facing",
			err:  nil,
			want: false,
		},
		{
			name: "known error is user facing",
			err:  ErrReportNotFound,
			want: true,
		},
		{
			name: "unknown error is not user facing",
			err:  errors.New("random internal error xyz"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsUserFacing(tt.err)
			if got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := fmt.Errorf("store: %w", ErrReportNotFound)
		userErr := NewUserError(techErr)

		if userErr.Error() != "Scheduled report not found" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}
		if !errors.Is(userErr, ErrReportNotFound) {
			t.Error("Unwrap() should expose the wrapped error")
		}
		if got := MapError(userErr); got.Code != "RPT001" {
			t.Errorf("MapError(UserError) code = %q, want RPT001", got.Code)
		}
	})
}

package core

// error_messages.go maps technical errors to user-facing messages with codes
// for support reference. Users can quote the code when reporting a problem.
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Receiver email is empty or not a valid address
//	VAL002 - Repeat duration is not a whole number or its unit is unknown
//	VAL003 - Repeat duration is outside the range allowed for its unit
//	VAL004 - Time filter is not a positive whole number or its unit is unknown
//
// Validation errors carry their own message; the text above is a summary.
//
// # Export Errors (EXP001-EXP099)
//
//	EXP001 - No data found for the export
//	         Action: Extend the time range and export again
//	EXP002 - More than one datatable sent to a spreadsheet export
//	         Action: Export as CSV instead
//	EXP003 - Datatable payload could not be read
//	         Action: Check the columns and rows of the request
//	EXP004 - Too many exports in progress
//	         Action: Please wait a moment and try again
//
// # Report Errors (RPT001-RPT099)
//
//	RPT001 - Scheduled report not found
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request body is not valid JSON
//	REQ002 - Request was cancelled
//	REQ003 - Missing kbn-xsrf header (raised by the web middleware)
//	REQ004 - Request timed out
//
// # Store Errors (DB001-DB099)
//
//	DB001 - Duplicate key
//	DB004 - Connection refused
//	DB005 - Connection reset
//	DB006 - Timeout
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check application logs for the technical error.
//
// # Matching
//
// Typed errors are checked first with errors.As / errors.Is. Remaining errors
// are matched case-insensitively against substring patterns; the first match wins.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/reportkit/internal/datatable"
	"github.com/JonMunkholm/reportkit/internal/export"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// typedError maps a sentinel error to its user message.
type typedError struct {
	err error
	msg UserMessage
}

var typedErrors = []typedError{
	{
		err: export.ErrNoData,
		msg: UserMessage{
			Message: "No data found. Please extend the time range!",
			Action:  "Widen the time filter of the visualization and export again",
			Code:    "EXP001",
		},
	},
	{
		err: export.ErrMultipleTables,
		msg: UserMessage{
			Message: "Downloading multi-datatable visualizations is not supported yet!",
			Action:  "Export the visualization as CSV instead",
			Code:    "EXP002",
		},
	},
	{
		err: datatable.ErrInvalidDatatable,
		msg: UserMessage{
			Message: "The datatable could not be read",
			Action:  "Check that every column has a unique id",
			Code:    "EXP003",
		},
	},
	{
		err: ErrTooManyExports,
		msg: UserMessage{
			Message: "System is busy processing other exports",
			Action:  "Please wait a moment and try again",
			Code:    "EXP004",
		},
	},
	{
		err: ErrReportNotFound,
		msg: UserMessage{
			Message: "Scheduled report not found",
			Action:  "The report may have been deleted. Refresh the list",
			Code:    "RPT001",
		},
	},
	{
		err: ErrMalformedRequest,
		msg: UserMessage{
			Message: "The request body is not valid",
			Action:  "Send a JSON body with the documented fields",
			Code:    "REQ001",
		},
	},
	{
		err: context.Canceled,
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ002",
		},
	},
	{
		err: context.DeadlineExceeded,
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller export or try again later",
			Code:    "REQ004",
		},
	},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// More specific patterns come before general ones.
var errorPatterns = []errorPattern{
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A record with this ID already exists",
			Action:  "Please try again",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to the report store",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Report store connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
// Example:
//
//	msg := MapError(fmt.Errorf("export: %w", export.ErrNoData))
//	// msg.Code == "EXP001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var ve ValidationError
	if errors.As(err, &ve) {
		return UserMessage{
			Message: ve.Message,
			Action:  "Correct the field and submit again",
			Code:    ve.Code,
		}
	}

	var ue *UserError
	if errors.As(err, &ue) {
		return ue.User
	}

	for _, te := range typedErrors {
		if errors.Is(err, te.err) {
			return te.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with the message shown to users.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}

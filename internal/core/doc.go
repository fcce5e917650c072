// Package core provides the business logic for report exports and scheduled
// reports.
//
// The package is independent of any transport. The web handlers and the
// reportctl CLI both drive it through [Service].
//
// # Exports
//
// An export takes a [datatable.TableSet] and produces files:
//
//   - [Service.ExportCSV] encodes every datatable, one file each, using the
//     configured separator and quoting unless the request overrides them.
//   - [Service.ExportXLSX] writes the single datatable to a workbook. More than
//     one datatable, or no rows, aborts the export.
//   - [Service.DetectFormulas] reports headers or cells that a spreadsheet
//     would run as formulas. The result only drives a warning.
//
// Exports share an [ExportLimiter], so at most EXPORT_MAX_CONCURRENT run at
// once. Callers over the limit wait up to EXPORT_MAX_WAIT_TIME and then get
// [ErrTooManyExports].
//
// # Scheduled Reports
//
// [Service.CreateScheduledReport] validates the receiver, the repeat duration
// and the time filter (in that order, stopping at the first failure) and
// stores the record through a [ReportStore]. Stores live in the store package.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - VAL001-VAL004: Validation errors (email, duration, time filter)
//   - EXP001-EXP004: Export errors (no data, multiple tables, busy)
//   - RPT001: Scheduled report not found
//   - REQ001-REQ004: Request errors (malformed body, cancelled, timed out)
//   - DB001-DB006: Store errors
package core

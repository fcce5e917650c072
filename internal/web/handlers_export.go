package web

import (
	"net/http"

	"github.com/JonMunkholm/reportkit/internal/core"
	"github.com/JonMunkholm/reportkit/internal/export"
	"github.com/JonMunkholm/reportkit/internal/logging"
)

// FormulaWarningHeader carries export.FormulaWarning on CSV downloads that
// contain formula cells.
const FormulaWarningHeader = "X-Export-Formula-Warning"

// FormulaResponse is the body of POST /api/export/formulas.
type FormulaResponse struct {
	HasFormulas bool   `json:"hasFormulas"`
	Warning     string `json:"warning,omitempty"`
}

// decodeExport reads and validates an export request body.
func (s *Server) decodeExport(w http.ResponseWriter, r *http.Request) (*core.ExportRequest, error) {
	var req core.ExportRequest
	if err := decodeJSON(w, r, s.cfg.Export.MaxBodyBytes, &req); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &req, nil
}

// handleExportCSV downloads every datatable as CSV. Several datatables are
// bundled into a zip archive; none gives 204.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	raw, err := parseBoolParam(r, "raw", false)
	if err != nil {
		respondError(w, r, err)
		return
	}

	req, err := s.decodeExport(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	result, err := s.service.ExportCSV(r.Context(), req.TableSet(), req.Options, raw)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if result.HasFormulas {
		w.Header().Set(FormulaWarningHeader, export.FormulaWarning)
	}
	s.dispatch(w, r, result)
}

// handleExportXLSX downloads the single datatable as a workbook.
func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeExport(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	result, err := s.service.ExportXLSX(r.Context(), req.TableSet())
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.dispatch(w, r, result)
}

// handleDetectFormulas reports whether a CSV export of the body would carry
// the formula warning.
func (s *Server) handleDetectFormulas(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeExport(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp := FormulaResponse{HasFormulas: s.service.DetectFormulas(req.TableSet())}
	if resp.HasFormulas {
		resp.Warning = export.FormulaWarning
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, result core.ExportResult) {
	d := &export.HTTPDispatcher{W: w, ArchiveName: result.ArchiveName}
	if err := d.Dispatch(r.Context(), result.Content); err != nil {
		// Headers may already be sent
		logging.FromContext(r.Context()).Error("dispatch export",
			"error", err,
			"files", len(result.Content),
		)
	}
}

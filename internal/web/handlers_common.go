package web

// handlers_common.go contains shared helpers and the operational endpoints.

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/JonMunkholm/reportkit/internal/core"
	"github.com/JonMunkholm/reportkit/internal/logging"
)

// MaxReportBodyBytes caps scheduled report request bodies (1MB).
const MaxReportBodyBytes = 1 << 20

// healthTimeout bounds the store ping of /healthz.
const healthTimeout = 2 * time.Second

// parseBoolParam parses a boolean query parameter. A missing value returns
// defaultVal; an unparsable one is a malformed request.
func parseBoolParam(r *http.Request, name string, defaultVal bool) (bool, error) {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("%w: query parameter %s=%q", core.ErrMalformedRequest, name, val)
	}
	return b, nil
}

// handleHealth reports whether the report store is reachable.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := s.service.Ping(ctx); err != nil {
		logging.FromContext(r.Context()).Error("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleExportStatus returns the current state of the export limiter.
func (s *Server) handleExportStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.ExportLimiterStatus())
}

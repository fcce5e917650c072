package middleware

import (
	"log/slog"
	"net/http"
)

// XSRFHeader must accompany every state-changing request.
const XSRFHeader = "kbn-xsrf"

// RequireXSRF rejects requests with an unsafe method that lack the kbn-xsrf
// header. Any value is accepted.
func RequireXSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		if r.Header.Get(XSRFHeader) == "" {
			slog.Warn("xsrf: missing header",
				"path", r.URL.Path,
				"method", r.Method,
				"remote_addr", r.RemoteAddr,
			)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"Request must contain a kbn-xsrf header.","message":"Request must contain a kbn-xsrf header.","code":"REQ003"}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}

package middleware

import (
	"encoding/json"
	"net/http"
)

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// WriteError answers with JSON for htmx requests and plain text otherwise.
func WriteError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	writeError(w, r, code, msg)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	if IsHTMX(r.Context()) {
		rid, _ := RequestID(r.Context())
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(errorResponse{Error: msg, RequestID: rid})
		return
	}
	http.Error(w, msg, code)
}

package handlers

import (
	"net/http"
)

// Health responds to liveness-style probes with a static payload.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Livez reports process liveness.
func (h *Handlers) Livez(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// Readyz reports readiness. The service is ready when the database answers.
func (h *Handlers) Readyz(w http.ResponseWriter, r *http.Request) {
	if _, err := h.db.CountDocuments(r.Context()); err != nil {
		writeJSONError(w, http.StatusServiceUnavailable, "database not ready")
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

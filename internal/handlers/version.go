package handlers

import (
	"net/http"

	"pdf-workbench/internal/startup"
)

// Version returns build information as JSON.
func (h *Handlers) Version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, startup.GetBuildInfo())
}

package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Router registers every API route. Middleware is layered on by the caller.
func (h *Handlers) Router() *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/documents", h.UploadDocument).Methods(http.MethodPost)
	api.HandleFunc("/documents", h.ListDocuments).Methods(http.MethodGet)
	api.HandleFunc("/documents/{id}", h.GetDocument).Methods(http.MethodGet)
	api.HandleFunc("/documents/{id}", h.DeleteDocument).Methods(http.MethodDelete)
	api.HandleFunc("/documents/{id}/thumbnail", h.GetThumbnail).Methods(http.MethodGet)
	api.HandleFunc("/documents/{id}/pagecount", h.GetPageCount).Methods(http.MethodGet)
	api.HandleFunc("/validate", h.ValidateDocument).Methods(http.MethodPost)
	api.HandleFunc("/merge", h.MergeDocuments).Methods(http.MethodPost)
	api.HandleFunc("/merge/stream", h.MergeDocumentsStream).Methods(http.MethodPost)
	api.HandleFunc("/extract", h.ExtractPages).Methods(http.MethodPost)

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/livez", h.Livez).Methods(http.MethodGet)
	r.HandleFunc("/readyz", h.Readyz).Methods(http.MethodGet)
	r.HandleFunc("/version", h.Version).Methods(http.MethodGet)

	return r
}

package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"pdf-workbench/internal/database"
	"pdf-workbench/internal/logging"
	"pdf-workbench/internal/media"
)

// GetThumbnail renders one page of a stored document as JPEG. Query
// parameters: page (1-based, default 1), width, height, quality (0..1).
func (h *Handlers) GetThumbnail(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	doc, err := h.db.GetDocument(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		writeJSONError(w, http.StatusNotFound, "document not found")
		return
	}
	if err != nil {
		logging.Error("failed to load document %s: %v", id, err)
		writeJSONError(w, http.StatusInternalServerError, "failed to load document")
		return
	}

	page := queryInt(r, "page", 1)
	opts := media.Options{
		Width:   queryInt(r, "width", 0),
		Height:  queryInt(r, "height", 0),
		Quality: queryFloat(r, "quality", 0),
	}

	thumb, err := h.media.GetThumbnail(doc.Data, page, opts)
	if err != nil {
		var formatErr *media.FormatError
		var rangeErr *media.RangeError
		switch {
		case errors.As(err, &formatErr):
			writeJSONError(w, http.StatusUnprocessableEntity, formatErr.Error())
		case errors.As(err, &rangeErr):
			writeJSONError(w, http.StatusBadRequest, rangeErr.Error())
		default:
			logging.Error("thumbnail render failed for %s page %d: %v", id, page, err)
			writeJSONError(w, http.StatusInternalServerError, "failed to render thumbnail")
		}
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.Write(thumb)
}

// GetPageCount returns the page count of a stored document.
func (h *Handlers) GetPageCount(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	doc, err := h.db.GetDocument(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		writeJSONError(w, http.StatusNotFound, "document not found")
		return
	}
	if err != nil {
		logging.Error("failed to load document %s: %v", id, err)
		writeJSONError(w, http.StatusInternalServerError, "failed to load document")
		return
	}

	count, err := h.media.GetPageCount(doc.Data)
	if err != nil {
		var formatErr *media.FormatError
		if errors.As(err, &formatErr) {
			writeJSONError(w, http.StatusUnprocessableEntity, formatErr.Error())
			return
		}
		logging.Error("page count failed for %s: %v", id, err)
		writeJSONError(w, http.StatusInternalServerError, "failed to count pages")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"pageCount": count})
}

// ValidateDocument probes the request body as a PDF without storing it.
// Validation failures are part of the 200 response, not HTTP errors.
func (h *Handlers) ValidateDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadBytes)

	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSONError(w, http.StatusRequestEntityTooLarge, "body exceeds the configured size limit")
		return
	}

	writeJSON(w, http.StatusOK, h.media.Validate(data))
}

func queryInt(r *http.Request, key string, fallback int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}

func queryFloat(r *http.Request, key string, fallback float64) float64 {
	value := r.URL.Query().Get(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

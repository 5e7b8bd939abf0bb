package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"pdf-workbench/internal/database"
	"pdf-workbench/internal/logging"
	"pdf-workbench/internal/media"
)

// finalizeTimeout bounds the background work done after an upload returns.
const finalizeTimeout = 30 * time.Second

// UploadDocument accepts a multipart PDF upload. The document is stored in
// loading state immediately; validation, page counting and thumbnail warmup
// happen in the background and flip it to ready or error.
func (h *Handlers) UploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "missing file field in multipart form")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSONError(w, http.StatusRequestEntityTooLarge, "upload exceeds the configured size limit")
		return
	}

	name := sanitizeName(header.Filename)
	id, err := h.db.InsertDocument(r.Context(), name, data)
	if err != nil {
		logging.Error("failed to store upload %q: %v", name, err)
		writeJSONError(w, http.StatusInternalServerError, "failed to store document")
		return
	}

	go h.finalizeDocument(id, name, data)

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"id":     id,
		"name":   name,
		"size":   len(data),
		"status": database.StatusLoading,
	})
}

// finalizeDocument validates a stored upload and resolves its page count,
// then warms the first-page thumbnail so the UI's first request is a hit.
func (h *Handlers) finalizeDocument(id, name string, data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), finalizeTimeout)
	defer cancel()

	if result := h.media.Validate(data); !result.IsValid {
		logging.Warn("upload %s (%s) failed validation: %s", id, name, result.Error)
		if err := h.db.MarkDocumentError(ctx, id, result.Error); err != nil {
			logging.Error("failed to mark document %s errored: %v", id, err)
		}
		return
	}

	count, err := h.media.GetPageCount(data)
	if err != nil {
		logging.Warn("upload %s (%s) page count failed: %v", id, name, err)
		if err := h.db.MarkDocumentError(ctx, id, err.Error()); err != nil {
			logging.Error("failed to mark document %s errored: %v", id, err)
		}
		return
	}

	if err := h.db.MarkDocumentReady(ctx, id, count); err != nil {
		logging.Error("failed to mark document %s ready: %v", id, err)
		return
	}
	logging.Info("document %s (%s) ready: %d pages", id, name, count)

	if _, err := h.media.GetThumbnail(data, 1, media.Options{}); err != nil {
		logging.Debug("thumbnail warmup for %s failed: %v", id, err)
	}
}

// ListDocuments returns all stored documents without content.
func (h *Handlers) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.db.ListDocuments(r.Context())
	if err != nil {
		logging.Error("failed to list documents: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}
	if docs == nil {
		docs = []database.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

// GetDocument returns the document metadata as JSON, or the raw PDF bytes
// when the request asks for them with ?download=1.
func (h *Handlers) GetDocument(w http.ResponseWriter, r *http.Request) {
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

	if r.URL.Query().Get("download") == "" {
		writeJSON(w, http.StatusOK, doc)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Name))
	w.Write(doc.Data)
}

// DeleteDocument removes a stored document.
func (h *Handlers) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	err := h.db.DeleteDocument(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		writeJSONError(w, http.StatusNotFound, "document not found")
		return
	}
	if err != nil {
		logging.Error("failed to delete document %s: %v", id, err)
		writeJSONError(w, http.StatusInternalServerError, "failed to delete document")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// sanitizeName strips any path components from an uploaded filename.
func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexAny(name, "/\\"); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return "document.pdf"
	}
	return name
}

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"pdf-workbench/internal/bridge"
	"pdf-workbench/internal/database"
	"pdf-workbench/internal/logging"
	"pdf-workbench/internal/processor"
)

type mergeRequest struct {
	DocumentIDs []string `json:"documentIds"`
}

type extractRequest struct {
	DocumentID string `json:"documentId"`
	Pages      []int  `json:"pages"` // 0-based page indexes
}

// MergeDocuments merges stored documents in request order and returns the
// combined PDF. The merged name is exposed in the X-Merge-Name header.
func (h *Handlers) MergeDocuments(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.DocumentIDs) == 0 {
		writeJSONError(w, http.StatusBadRequest, "documentIds must not be empty")
		return
	}

	docs, err := h.loadDocuments(r, req.DocumentIDs)
	if err != nil {
		h.writeLoadError(w, err)
		return
	}

	op, err := h.bridge.Dispatch(bridge.Request{Type: bridge.OpMerge, Documents: docs})
	if err != nil {
		h.writeDispatchError(w, err)
		return
	}

	outcome, ok := h.await(r, op)
	if !ok {
		return
	}
	if outcome.Err != nil {
		h.writeOutcomeError(w, outcome.Err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("X-Merge-Name", outcome.Merge.Name)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", outcome.Merge.Name))
	w.Write(outcome.Merge.Data)
}

// MergeDocumentsStream merges stored documents while streaming progress as
// server-sent events. On success the merged PDF is stored as a new document
// and its metadata is sent in the final event.
func (h *Handlers) MergeDocumentsStream(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.DocumentIDs) == 0 {
		writeJSONError(w, http.StatusBadRequest, "documentIds must not be empty")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSONError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	docs, err := h.loadDocuments(r, req.DocumentIDs)
	if err != nil {
		h.writeLoadError(w, err)
		return
	}

	op, err := h.bridge.Dispatch(bridge.Request{Type: bridge.OpMerge, Documents: docs})
	if err != nil {
		h.writeDispatchError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	sendEvent := func(event string, data interface{}) {
		payload, err := json.Marshal(data)
		if err != nil {
			logging.Error("failed to marshal SSE payload: %v", err)
			return
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
		flusher.Flush()
	}

	progress := op.Progress()
	for {
		select {
		case <-r.Context().Done():
			op.Cancel()
			<-op.Done()
			return
		case pct, open := <-progress:
			if !open {
				progress = nil
				continue
			}
			sendEvent("progress", map[string]int{"percent": pct})
		case outcome := <-op.Done():
			if outcome.Err != nil {
				sendEvent("error", map[string]string{"error": outcome.Err.Error()})
				return
			}
			id, err := h.db.InsertDocument(r.Context(), outcome.Merge.Name, outcome.Merge.Data)
			if err != nil {
				logging.Error("failed to store merged document: %v", err)
				sendEvent("error", map[string]string{"error": "failed to store merged document"})
				return
			}
			go h.finalizeDocument(id, outcome.Merge.Name, outcome.Merge.Data)
			sendEvent("done", map[string]interface{}{
				"id":   id,
				"name": outcome.Merge.Name,
				"size": outcome.Merge.Size,
			})
			return
		}
	}
}

// ExtractPages builds a new PDF from a 0-based page selection of one stored
// document, preserving the requested order and duplicates.
func (h *Handlers) ExtractPages(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.DocumentID == "" {
		writeJSONError(w, http.StatusBadRequest, "documentId is required")
		return
	}
	if len(req.Pages) == 0 {
		writeJSONError(w, http.StatusBadRequest, "pages must not be empty")
		return
	}

	doc, err := h.db.GetDocument(r.Context(), req.DocumentID)
	if errors.Is(err, database.ErrNotFound) {
		writeJSONError(w, http.StatusNotFound, "document not found")
		return
	}
	if err != nil {
		logging.Error("failed to load document %s: %v", req.DocumentID, err)
		writeJSONError(w, http.StatusInternalServerError, "failed to load document")
		return
	}

	op, err := h.bridge.Dispatch(bridge.Request{
		Type:        bridge.OpExtract,
		Data:        doc.Data,
		PageIndexes: req.Pages,
	})
	if err != nil {
		h.writeDispatchError(w, err)
		return
	}

	outcome, ok := h.await(r, op)
	if !ok {
		return
	}
	if outcome.Err != nil {
		h.writeOutcomeError(w, outcome.Err)
		return
	}

	name := "extracted-" + doc.Name
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Write(outcome.Data)
}

// loadDocuments resolves ids to named documents, preserving request order.
func (h *Handlers) loadDocuments(r *http.Request, ids []string) ([]processor.NamedDocument, error) {
	docs := make([]processor.NamedDocument, 0, len(ids))
	for _, id := range ids {
		doc, err := h.db.GetDocument(r.Context(), id)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return nil, fmt.Errorf("document %s: %w", id, database.ErrNotFound)
			}
			return nil, err
		}
		docs = append(docs, processor.NamedDocument{Name: doc.Name, Data: doc.Data})
	}
	return docs, nil
}

// await drains progress and waits for the terminal outcome, cancelling the
// operation if the client goes away first.
func (h *Handlers) await(r *http.Request, op *bridge.Operation) (bridge.Outcome, bool) {
	progress := op.Progress()
	for {
		select {
		case <-r.Context().Done():
			op.Cancel()
			<-op.Done()
			return bridge.Outcome{}, false
		case pct, open := <-progress:
			if !open {
				progress = nil
				continue
			}
			logging.Debug("operation progress: %d%%", pct)
		case outcome := <-op.Done():
			return outcome, true
		}
	}
}

func (h *Handlers) writeLoadError(w http.ResponseWriter, err error) {
	if errors.Is(err, database.ErrNotFound) {
		writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}
	logging.Error("failed to load documents: %v", err)
	writeJSONError(w, http.StatusInternalServerError, "failed to load documents")
}

func (h *Handlers) writeDispatchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, bridge.ErrBusy):
		writeJSONError(w, http.StatusConflict, "another operation is already in progress")
	case errors.Is(err, bridge.ErrClosed):
		writeJSONError(w, http.StatusServiceUnavailable, "processing worker is shut down")
	default:
		logging.Error("dispatch failed: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to dispatch operation")
	}
}

func (h *Handlers) writeOutcomeError(w http.ResponseWriter, err error) {
	var workerErr *bridge.WorkerError
	if errors.As(err, &workerErr) {
		writeJSONError(w, http.StatusUnprocessableEntity, workerErr.Message)
		return
	}
	if errors.Is(err, bridge.ErrCancelled) {
		writeJSONError(w, http.StatusServiceUnavailable, "operation was cancelled")
		return
	}
	logging.Error("operation failed: %v", err)
	writeJSONError(w, http.StatusInternalServerError, "operation failed")
}

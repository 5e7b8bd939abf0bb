package database

import "time"

// DocumentStatus tracks a document through its upload lifecycle.
type DocumentStatus string

const (
	// StatusLoading means the upload is stored but page count and the
	// first-page thumbnail have not been resolved yet.
	StatusLoading DocumentStatus = "loading"
	// StatusReady means the document is fully usable.
	StatusReady DocumentStatus = "ready"
	// StatusError means the upload could not be processed.
	StatusError DocumentStatus = "error"
)

// Document is a stored PDF upload. Data is only populated by Get; listing
// queries skip the blob.
type Document struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Size      int64          `json:"size"`
	Data      []byte         `json:"-"`
	PageCount int            `json:"pageCount"`
	Status    DocumentStatus `json:"status"`
	Error     string         `json:"error,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

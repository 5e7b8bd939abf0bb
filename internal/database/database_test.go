package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func newTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := New(context.Background(), filepath.Join(t.TempDir(), "workbench.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	})
	return db
}

func TestInsertAndGetDocument(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	data := []byte("%PDF-1.4 content")
	id, err := db.InsertDocument(ctx, "report.pdf", data)
	if err != nil {
		t.Fatalf("InsertDocument failed: %v", err)
	}
	if id == "" {
		t.Fatal("InsertDocument returned empty id")
	}

	doc, err := db.GetDocument(ctx, id)
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	if doc.Name != "report.pdf" {
		t.Errorf("Name = %q, want %q", doc.Name, "report.pdf")
	}
	if doc.Size != int64(len(data)) {
		t.Errorf("Size = %d, want %d", doc.Size, len(data))
	}
	if string(doc.Data) != string(data) {
		t.Error("stored data does not round-trip")
	}
	if doc.Status != StatusLoading {
		t.Errorf("Status = %q, want %q", doc.Status, StatusLoading)
	}
	if doc.CreatedAt.IsZero() {
		t.Error("CreatedAt not populated")
	}
}

func TestGetDocumentNotFound(t *testing.T) {
	db := newTestDB(t)

	if _, err := db.GetDocument(context.Background(), "no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetDocument for missing id = %v, want ErrNotFound", err)
	}
}

func TestDocumentLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	id, err := db.InsertDocument(ctx, "doc.pdf", []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("InsertDocument failed: %v", err)
	}

	if err := db.MarkDocumentReady(ctx, id, 12); err != nil {
		t.Fatalf("MarkDocumentReady failed: %v", err)
	}
	doc, err := db.GetDocument(ctx, id)
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	if doc.Status != StatusReady || doc.PageCount != 12 {
		t.Errorf("after ready: status=%q pageCount=%d", doc.Status, doc.PageCount)
	}

	if err := db.MarkDocumentError(ctx, id, "open failed"); err != nil {
		t.Fatalf("MarkDocumentError failed: %v", err)
	}
	doc, err = db.GetDocument(ctx, id)
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	if doc.Status != StatusError || doc.Error != "open failed" {
		t.Errorf("after error: status=%q error=%q", doc.Status, doc.Error)
	}
}

func TestMarkUnknownDocument(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.MarkDocumentReady(ctx, "missing", 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkDocumentReady on missing id = %v, want ErrNotFound", err)
	}
	if err := db.MarkDocumentError(ctx, "missing", "boom"); !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkDocumentError on missing id = %v, want ErrNotFound", err)
	}
}

func TestListDocumentsSkipsBlob(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		if _, err := db.InsertDocument(ctx, name, []byte("%PDF-1.4 "+name)); err != nil {
			t.Fatalf("InsertDocument(%s) failed: %v", name, err)
		}
	}

	docs, err := db.ListDocuments(ctx)
	if err != nil {
		t.Fatalf("ListDocuments failed: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("ListDocuments returned %d documents, want 3", len(docs))
	}
	for _, doc := range docs {
		if doc.Data != nil {
			t.Errorf("listing for %s includes the data blob", doc.Name)
		}
		if doc.Size == 0 {
			t.Errorf("listing for %s has zero size", doc.Name)
		}
	}
}

func TestDeleteDocument(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	id, err := db.InsertDocument(ctx, "doc.pdf", []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("InsertDocument failed: %v", err)
	}

	if err := db.DeleteDocument(ctx, id); err != nil {
		t.Fatalf("DeleteDocument failed: %v", err)
	}
	if _, err := db.GetDocument(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetDocument after delete = %v, want ErrNotFound", err)
	}
	if err := db.DeleteDocument(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteDocument = %v, want ErrNotFound", err)
	}
}

func TestCountDocuments(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	count, err := db.CountDocuments(ctx)
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 0 {
		t.Errorf("initial count = %d, want 0", count)
	}

	if _, err := db.InsertDocument(ctx, "doc.pdf", []byte("%PDF-1.4")); err != nil {
		t.Fatalf("InsertDocument failed: %v", err)
	}
	count, err = db.CountDocuments(ctx)
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 1 {
		t.Errorf("count after insert = %d, want 1", count)
	}
}

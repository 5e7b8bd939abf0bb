package media

import (
	"bytes"
	"errors"
	"image/jpeg"
	"testing"

	"pdf-workbench/internal/pdftest"
)

func TestRenderProducesJPEG(t *testing.T) {
	gen := NewGenerator()

	out, err := gen.Render(pdftest.MinimalPDF(2), 1, Options{})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if len(out) < 2 || out[0] != 0xFF || out[1] != 0xD8 {
		t.Error("output does not start with the JPEG SOI marker")
	}
	if _, err := jpeg.DecodeConfig(bytes.NewReader(out)); err != nil {
		t.Errorf("output is not decodable JPEG: %v", err)
	}
}

func TestRenderWidthDrivesDimensions(t *testing.T) {
	gen := NewGenerator()

	out, err := gen.Render(pdftest.MinimalPDF(1), 1, Options{Width: 100})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("DecodeConfig failed: %v", err)
	}
	if cfg.Width != 100 {
		t.Errorf("thumbnail width = %d, want 100", cfg.Width)
	}
	// Letter pages are taller than wide; aspect must be preserved.
	if cfg.Height <= cfg.Width {
		t.Errorf("aspect ratio not preserved: %dx%d", cfg.Width, cfg.Height)
	}
}

func TestRenderHeightDrivesDimensions(t *testing.T) {
	gen := NewGenerator()

	out, err := gen.Render(pdftest.MinimalPDF(1), 1, Options{Height: 80})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("DecodeConfig failed: %v", err)
	}
	if cfg.Height != 80 {
		t.Errorf("thumbnail height = %d, want 80", cfg.Height)
	}
}

func TestRenderWidthWinsOverHeight(t *testing.T) {
	gen := NewGenerator()

	out, err := gen.Render(pdftest.MinimalPDF(1), 1, Options{Width: 100, Height: 9999})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("DecodeConfig failed: %v", err)
	}
	if cfg.Width != 100 {
		t.Errorf("thumbnail width = %d, want 100 (width takes precedence)", cfg.Width)
	}
}

func TestRenderPageOutOfRange(t *testing.T) {
	gen := NewGenerator()
	doc := pdftest.MinimalPDF(3)

	for _, page := range []int{0, -1, 4, 99} {
		_, err := gen.Render(doc, page, Options{})
		var rangeErr *RangeError
		if !errors.As(err, &rangeErr) {
			t.Errorf("Render(page=%d) error = %v, want RangeError", page, err)
			continue
		}
		if rangeErr.PageCount != 3 {
			t.Errorf("RangeError cites %d pages, want 3", rangeErr.PageCount)
		}
	}
}

func TestRenderCorruptDocument(t *testing.T) {
	gen := NewGenerator()
	if _, err := gen.Render(pdftest.CorruptPDF(), 1, Options{}); err == nil {
		t.Error("Render on corrupt input succeeded")
	}
}

func TestPageCount(t *testing.T) {
	gen := NewGenerator()

	count, err := gen.PageCount(pdftest.MinimalPDF(5))
	if err != nil {
		t.Fatalf("PageCount failed: %v", err)
	}
	if count != 5 {
		t.Errorf("PageCount = %d, want 5", count)
	}
}

func TestRenderDoesNotMutateInput(t *testing.T) {
	gen := NewGenerator()
	doc := pdftest.MinimalPDF(1)
	before := append([]byte(nil), doc...)

	if _, err := gen.Render(doc, 1, Options{}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !bytes.Equal(doc, before) {
		t.Error("Render mutated the caller's buffer")
	}
}

package media

import (
	"bytes"
	"fmt"
	"image/jpeg"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"

	"pdf-workbench/internal/logging"
)

// baseDPI is the resolution a scale of 1.0 corresponds to.
const baseDPI = 72

// Generator rasterizes single PDF pages to JPEG thumbnails via MuPDF.
//
// It never retains or mutates the buffers it is given; the document handle
// opened per call is released on every path.
type Generator struct{}

// NewGenerator returns a page rasterizer.
func NewGenerator() *Generator {
	return &Generator{}
}

// Render rasterizes the given 1-based page to a JPEG. The returned bytes
// are the only observable output; no handle or buffer survives the call.
func (g *Generator) Render(data []byte, page int, opts Options) ([]byte, error) {
	opts = opts.withDefaults()

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("render page %d: failed to open document: %w", page, err)
	}
	defer func() {
		if err := doc.Close(); err != nil {
			logging.Warn("generator: failed to close document handle: %v", err)
		}
	}()

	total := doc.NumPage()
	if page < 1 || page > total {
		return nil, &RangeError{Page: page, PageCount: total}
	}

	bounds, err := doc.Bound(page - 1)
	if err != nil {
		return nil, fmt.Errorf("render page %d: failed to read page bounds: %w", page, err)
	}

	scale := opts.Scale
	switch {
	case opts.Width > 0 && bounds.Dx() > 0:
		scale = float64(opts.Width) / float64(bounds.Dx())
	case opts.Height > 0 && bounds.Dy() > 0:
		scale = float64(opts.Height) / float64(bounds.Dy())
	}

	img, err := doc.ImageDPI(page-1, baseDPI*scale)
	if err != nil {
		return nil, fmt.Errorf("render page %d: rasterization failed: %w", page, err)
	}

	// Rasterization rounds to whole pixels; snap to the exact requested
	// dimension so cache keys and client layout agree.
	out := imaging.Clone(img)
	if opts.Width > 0 && out.Bounds().Dx() != opts.Width {
		out = imaging.Resize(out, opts.Width, 0, imaging.Lanczos)
	} else if opts.Width == 0 && opts.Height > 0 && out.Bounds().Dy() != opts.Height {
		out = imaging.Resize(out, 0, opts.Height, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: int(opts.Quality * 100)}); err != nil {
		return nil, fmt.Errorf("render page %d: failed to encode thumbnail: %w", page, err)
	}

	return buf.Bytes(), nil
}

// PageCount opens the document, reads its page count and releases the
// handle.
func (g *Generator) PageCount(data []byte) (int, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return 0, fmt.Errorf("failed to open document: %w", err)
	}
	defer func() {
		if err := doc.Close(); err != nil {
			logging.Warn("generator: failed to close document handle: %v", err)
		}
	}()

	return doc.NumPage(), nil
}

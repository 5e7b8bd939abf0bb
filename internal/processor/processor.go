// Package processor implements the CPU-heavy document operations that run
// behind the processing bridge: merging whole documents and extracting page
// subsets. All work happens on in-memory buffers; nothing touches disk.
package processor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/sync/errgroup"

	"pdf-workbench/internal/logging"
)

// NamedDocument pairs a document's raw bytes with a display name used in
// error reporting.
type NamedDocument struct {
	Name string
	Data []byte
}

// MergeResult is the outcome of a successful merge.
type MergeResult struct {
	Data []byte
	Name string
	Size int64
}

// Processor performs merge and page-extraction operations.
type Processor struct {
	conf *model.Configuration
	now  func() time.Time
}

// New returns a Processor with relaxed validation, matching what real-world
// documents need.
func New() *Processor {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Processor{conf: conf, now: time.Now}
}

// Merge combines the given documents, in order, into a single PDF. Progress
// is reported as processed/total*100 after each appended document. Any
// per-document failure aborts the whole merge: partial output never escapes.
func (p *Processor) Merge(ctx context.Context, docs []NamedDocument, report func(percent int)) (*MergeResult, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("merge: no documents given")
	}
	if report == nil {
		report = func(int) {}
	}

	// Validate every input up front so a corrupt document is caught with
	// its name before any page copying has happened.
	g, _ := errgroup.WithContext(ctx)
	for _, doc := range docs {
		doc := doc
		g.Go(func() error {
			if err := api.Validate(bytes.NewReader(doc.Data), p.conf); err != nil {
				return fmt.Errorf("merge: document %q is not a valid PDF: %w", doc.Name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := len(docs)
	out := append([]byte(nil), docs[0].Data...)
	report(100 / total)

	for i := 1; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}

		var buf bytes.Buffer
		readers := []io.ReadSeeker{bytes.NewReader(out), bytes.NewReader(docs[i].Data)}
		if err := api.MergeRaw(readers, &buf, false, p.conf); err != nil {
			return nil, fmt.Errorf("merge: failed to append document %q: %w", docs[i].Name, err)
		}
		out = buf.Bytes()
		report((i + 1) * 100 / total)
	}

	name := fmt.Sprintf("merged-%s.pdf", p.now().Format("20060102-150405"))
	logging.Debug("processor: merged %d documents into %s (%d bytes)", total, name, len(out))

	return &MergeResult{Data: out, Name: name, Size: int64(len(out))}, nil
}

// ExtractPages builds a new PDF from the given 0-based page indexes of the
// source document. Caller order is preserved and indexes may repeat, so the
// output can reorder or duplicate pages. Out-of-range indexes are silently
// skipped; that asymmetry with the thumbnail path's loud range error is the
// current, intentional behavior.
func (p *Processor) ExtractPages(ctx context.Context, data []byte, pageIndexes []int, report func(percent int)) ([]byte, error) {
	if report == nil {
		report = func(int) {}
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	pageCount, err := api.PageCount(bytes.NewReader(data), p.conf)
	if err != nil {
		return nil, fmt.Errorf("extract: failed to open document: %w", err)
	}

	selected := make([]string, 0, len(pageIndexes))
	for _, idx := range pageIndexes {
		if idx < 0 || idx >= pageCount {
			logging.Warn("processor: skipping out-of-range page index %d (document has %d pages)", idx, pageCount)
			continue
		}
		selected = append(selected, fmt.Sprintf("%d", idx+1))
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("extract: no pages in range (document has %d pages)", pageCount)
	}
	report(50)

	var buf bytes.Buffer
	if err := api.Collect(bytes.NewReader(data), &buf, selected, p.conf); err != nil {
		return nil, fmt.Errorf("extract: failed to collect pages: %w", err)
	}
	report(100)

	logging.Debug("processor: extracted %d of %d pages (%d bytes)", len(selected), pageCount, buf.Len())
	return buf.Bytes(), nil
}

// PageCount returns the number of pages in the document.
func (p *Processor) PageCount(data []byte) (int, error) {
	return api.PageCount(bytes.NewReader(data), p.conf)
}

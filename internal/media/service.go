package media

import (
	"bytes"
	"fmt"
	"time"

	"pdf-workbench/internal/docid"
	"pdf-workbench/internal/logging"
	"pdf-workbench/internal/metrics"
	"pdf-workbench/internal/thumbcache"
	"pdf-workbench/internal/workers"
)

// pdfSignature is the literal file header every PDF starts with.
var pdfSignature = []byte("%PDF")

// renderer is what the service needs from a thumbnail generator.
type renderer interface {
	Render(data []byte, page int, opts Options) ([]byte, error)
	PageCount(data []byte) (int, error)
}

// Service orchestrates thumbnail generation, caching and input validation.
// It hides cache key construction from callers and bounds how many renders
// run concurrently.
type Service struct {
	gen   renderer
	cache *thumbcache.Cache
	sem   chan struct{}
}

// maxRenderWorkers caps the render semaphore regardless of CPU count.
const maxRenderWorkers = 8

// NewService returns a thumbnail service backed by the given generator and
// cache. Rasterization is CPU-bound, so concurrency is bounded at one
// render per CPU (capped).
func NewService(gen *Generator, cache *thumbcache.Cache) *Service {
	return newService(gen, cache)
}

func newService(gen renderer, cache *thumbcache.Cache) *Service {
	return &Service{
		gen:   gen,
		cache: cache,
		sem:   make(chan struct{}, workers.ForCPU(maxRenderWorkers)),
	}
}

// checkInput rejects empty buffers and anything without the PDF signature.
func checkInput(data []byte) error {
	if len(data) == 0 {
		return &FormatError{Reason: "empty input"}
	}
	if len(data) < len(pdfSignature) || !bytes.Equal(data[:len(pdfSignature)], pdfSignature) {
		return &FormatError{Reason: "missing %PDF signature"}
	}
	return nil
}

// cacheKey builds the deterministic cache key for one rendered thumbnail.
// Equal inputs always produce equal keys.
func cacheKey(id string, page int, opts Options) string {
	return fmt.Sprintf("%s-p%d-w%d-h%d-q%.2f", id, page, opts.Width, opts.Height, opts.Quality)
}

// GetThumbnail returns the JPEG thumbnail for the given 1-based page,
// rendering on a cache miss. The caller keeps ownership of data: the
// service works from its own copy, so mutating or reusing the buffer after
// the call cannot corrupt an in-flight render.
func (s *Service) GetThumbnail(data []byte, page int, opts Options) ([]byte, error) {
	if err := checkInput(data); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	key := cacheKey(docid.FromBytes(data), page, opts)
	if value, ok := s.cache.Get(key); ok {
		logging.Debug("thumbnail cache hit: %s", key)
		return []byte(value), nil
	}

	s.sem <- struct{}{}
	defer func() { <-s.sem }()

	owned := append([]byte(nil), data...)

	start := time.Now()
	rendered, err := s.gen.Render(owned, page, opts)
	metrics.ThumbnailRenderDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ThumbnailsRendered.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.ThumbnailsRendered.WithLabelValues("success").Inc()

	s.cache.Set(key, string(rendered))
	logging.Debug("thumbnail rendered and cached: %s (%d bytes)", key, len(rendered))
	return rendered, nil
}

// GetPageCount validates the input and returns the document's page count.
func (s *Service) GetPageCount(data []byte) (int, error) {
	if err := checkInput(data); err != nil {
		return 0, err
	}
	return s.gen.PageCount(append([]byte(nil), data...))
}

// Validate attempts a full document open. Failures are reported in the
// result instead of propagating, so callers can probe untrusted uploads.
func (s *Service) Validate(data []byte) ValidationResult {
	if err := checkInput(data); err != nil {
		return ValidationResult{IsValid: false, Error: err.Error()}
	}

	count, err := s.gen.PageCount(append([]byte(nil), data...))
	if err != nil {
		return ValidationResult{IsValid: false, Error: err.Error()}
	}
	if count < 1 {
		return ValidationResult{IsValid: false, Error: "document has no pages"}
	}
	return ValidationResult{IsValid: true}
}

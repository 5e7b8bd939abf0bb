package media

import "fmt"

// Default rendering parameters.
const (
	DefaultQuality = 0.7
	DefaultScale   = 0.5
)

// Options controls thumbnail rendering. When Width is set it drives an
// aspect-preserving scale; otherwise Height does; otherwise Scale applies.
// If both Width and Height are set, Width wins.
type Options struct {
	Width   int
	Height  int
	Quality float64 // JPEG quality in (0,1], default 0.7
	Scale   float64 // render scale, default 0.5
}

// withDefaults fills in zero-value fields.
func (o Options) withDefaults() Options {
	if o.Quality <= 0 || o.Quality > 1 {
		o.Quality = DefaultQuality
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	return o
}

// FormatError reports input that is empty or does not look like a PDF.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "invalid PDF input: " + e.Reason
}

// RangeError reports a page number outside the document's valid range.
type RangeError struct {
	Page      int
	PageCount int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("page %d out of range [1, %d]", e.Page, e.PageCount)
}

// ValidationResult is the outcome of a full document open attempt.
type ValidationResult struct {
	IsValid bool   `json:"isValid"`
	Error   string `json:"error,omitempty"`
}

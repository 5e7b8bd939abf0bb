// Package media renders PDF page thumbnails and orchestrates caching and
// input validation around them. The Generator wraps MuPDF page
// rasterization; the Service adds the cache, document identity and the
// public validation surface.
package media

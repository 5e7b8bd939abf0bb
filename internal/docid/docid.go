// Package docid derives short, stable identifiers from document content.
//
// The identifier is computed from a bounded prefix of the document so that
// identifying a large file never requires reading all of it. It is a cache
// partitioning key, not an integrity check: collisions are possible and only
// cost a (harmless) cache miss or a stale thumbnail for colliding inputs.
package docid

import "strconv"

// prefixLen bounds how much of the document participates in the hash.
const prefixLen = 1024

// FromBytes returns the identifier for the given document content.
//
// The hash is a 32-bit rolling accumulator over the first 1024 bytes
// (hash = hash*31 + byte, wrapping), rendered as a signed base-16 string.
// Identical prefixes always produce identical identifiers; the rendering
// must stay bit-exact because cache keys embed it.
func FromBytes(data []byte) string {
	prefix := data
	if len(prefix) > prefixLen {
		prefix = prefix[:prefixLen]
	}

	var hash int32
	for _, b := range prefix {
		hash = (hash << 5) - hash + int32(b)
	}

	return strconv.FormatInt(int64(hash), 16)
}

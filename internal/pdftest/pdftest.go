// Package pdftest builds minimal PDF documents for tests.
//
// The generated files carry empty letter-size pages and a single xref table
// with offsets computed while writing, so they are accepted by both strict
// parsers and renderers without shipping binary fixtures.
package pdftest

import (
	"bytes"
	"fmt"
)

// MinimalPDF returns a complete PDF with the given number of empty pages.
func MinimalPDF(pages int) []byte {
	if pages < 1 {
		pages = 1
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	// Objects: 1 catalog, 2 page tree, 3..2+pages page dicts.
	objCount := pages + 2
	offsets := make([]int, objCount+1)

	writeObj := func(num int, body string) {
		offsets[num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}

	writeObj(1, "<< /Type /Catalog /Pages 2 0 R >>")

	var kids bytes.Buffer
	for i := 0; i < pages; i++ {
		if i > 0 {
			kids.WriteByte(' ')
		}
		fmt.Fprintf(&kids, "%d 0 R", 3+i)
	}
	writeObj(2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids.String(), pages))

	for i := 0; i < pages; i++ {
		writeObj(3+i, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> >>")
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", objCount+1)
	buf.WriteString("0000000000 65535 f \n")
	for num := 1; num <= objCount; num++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[num])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", objCount+1, xrefOffset)

	return buf.Bytes()
}

// CorruptPDF returns bytes that pass the %PDF signature check but cannot be
// parsed as a document.
func CorruptPDF() []byte {
	return []byte("%PDF-1.4\nnot a well-formed document body\n%%EOF\n")
}

// Package pdfcheck inspects rendered PDFs without a browser.
package pdfcheck

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// Sentinel errors for PDF inspection.
var (
	ErrNotPDF    = errors.New("data is not a PDF")
	ErrMalformed = errors.New("malformed PDF")
)

var magic = []byte("%PDF-")

// HasSignature reports whether data starts with the PDF file signature.
func HasSignature(data []byte) bool {
	return bytes.HasPrefix(data, magic)
}

// PageCount parses data and returns its number of pages.
func PageCount(data []byte) (n int, err error) {
	if !HasSignature(data) {
		return 0, ErrNotPDF
	}

	// The parser panics on some truncated inputs.
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("%w: %v", ErrMalformed, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return r.NumPage(), nil
}

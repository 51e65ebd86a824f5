package resumepdf

import (
	"bytes"
	"fmt"
)

// pdfMagic is the signature every PDF file starts with.
var pdfMagic = []byte("%PDF-")

// Artifact holds the bytes of one rendered PDF. It is never modified after creation.
type Artifact struct {
	data []byte
}

// NewArtifact wraps PDF bytes, for instance a file rendered earlier that
// only needs publishing. It checks that data looks like a PDF.
func NewArtifact(data []byte) (*Artifact, error) {
	if len(data) == 0 {
		return nil, renderErr(ErrPDFGeneration, ErrEmptyArtifact)
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return nil, renderErr(ErrPDFGeneration, fmt.Errorf("output lacks PDF signature, got prefix %q", data[:min(8, len(data))]))
	}
	return &Artifact{data: data}, nil
}

// Bytes returns the raw PDF content. Callers must not modify it.
func (a *Artifact) Bytes() []byte {
	return a.data
}

// Len returns the size of the PDF in bytes.
func (a *Artifact) Len() int {
	return len(a.data)
}

// Reader returns a reader over the PDF content.
func (a *Artifact) Reader() *bytes.Reader {
	return bytes.NewReader(a.data)
}

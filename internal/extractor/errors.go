package extractor

import "errors"

// ErrNotPDF is returned when PDF-specific parsing is attempted on content
// that doesn't sniff as a PDF, kept from the teacher's errors.go.
var ErrNotPDF = errors.New("content is not a PDF")

// ErrUnsupportedContentType is returned when dispatch cannot classify a
// fetched resource at all.
var ErrUnsupportedContentType = errors.New("unsupported content type")

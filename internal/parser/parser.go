package parser

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
)

// ErrNotPDF reports input that is not a readable PDF.
var ErrNotPDF = errors.New("not a pdf")

// pdfMagic must appear within the first headerWindow bytes of a PDF file.
const (
	pdfMagic     = "%PDF-"
	headerWindow = 1024
)

// IsPDFFilename checks the file extension, case-insensitively.
func IsPDFFilename(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}

// HasPDFHeader checks for the %PDF- marker near the start of data.
func HasPDFHeader(data []byte) bool {
	head := data
	if len(head) > headerWindow {
		head = head[:headerWindow]
	}
	return bytes.Contains(head, []byte(pdfMagic))
}

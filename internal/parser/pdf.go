package parser

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"sync"

	pdflib "github.com/ledongthuc/pdf"
)

// Options controls PDF text extraction.
type Options struct {
	// FallbackPdftotext retries a page with the pdftotext binary when the Go
	// library cannot extract it.
	FallbackPdftotext bool
}

// PDF is an opened, read-only PDF document. It implements
// document.PageSource with 0-based page indexes.
type PDF struct {
	data   []byte
	reader *pdflib.Reader
	opts   Options

	mu      sync.Mutex
	tmpPath string
}

// Open parses data as a PDF. Errors wrap ErrNotPDF.
func Open(data []byte, opts Options) (p *PDF, err error) {
	if !HasPDFHeader(data) {
		return nil, fmt.Errorf("%w: missing %s header", ErrNotPDF, pdfMagic)
	}

	// ledongthuc/pdf panics on some malformed xref tables.
	defer func() {
		if r := recover(); r != nil {
			p, err = nil, fmt.Errorf("%w: %v", ErrNotPDF, r)
		}
	}()

	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotPDF, err)
	}
	return &PDF{data: data, reader: reader, opts: opts}, nil
}

// Bytes returns the raw document.
func (p *PDF) Bytes() []byte {
	return p.data
}

func (p *PDF) NumPages() int {
	return p.reader.NumPage()
}

// PageText extracts the plain text of page i (0-based).
func (p *PDF) PageText(i int) (string, error) {
	if i < 0 || i >= p.NumPages() {
		return "", fmt.Errorf("page %d out of range [0, %d)", i, p.NumPages())
	}

	text, err := p.libText(i + 1)
	if err != nil && p.opts.FallbackPdftotext {
		text, err = p.pdftotext(i + 1)
	}
	if err != nil {
		return "", fmt.Errorf("extract page %d: %w", i, err)
	}
	return text, nil
}

func (p *PDF) libText(pageNum int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	page := p.reader.Page(pageNum)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

func (p *PDF) pdftotext(pageNum int) (string, error) {
	path, err := p.tempFile()
	if err != nil {
		return "", err
	}
	n := strconv.Itoa(pageNum)
	cmd := exec.Command("pdftotext", "-layout", "-f", n, "-l", n, path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}

// tempFile writes the document to disk once for external tools.
func (p *PDF) tempFile() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tmpPath != "" {
		return p.tmpPath, nil
	}

	tmp, err := os.CreateTemp("", "chaptersplit-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(p.data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close temp file: %w", err)
	}
	p.tmpPath = tmp.Name()
	return p.tmpPath, nil
}

// Close removes any temp file created for the pdftotext fallback.
func (p *PDF) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tmpPath == "" {
		return nil
	}
	err := os.Remove(p.tmpPath)
	p.tmpPath = ""
	return err
}

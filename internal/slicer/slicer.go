package slicer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/dgallion1/chaptersplit/internal/document"
)

// ErrInvalidRange is returned for empty, inverted or out-of-bounds ranges.
var ErrInvalidRange = errors.New("invalid page range")

var disableConfigDir sync.Once

// PDFSlicer writes contiguous page ranges of a source PDF as new documents.
// The source bytes are never modified.
type PDFSlicer struct {
	src       []byte
	pageCount int
}

// New validates src with pdfcpu and returns a slicer over it.
func New(src []byte) (*PDFSlicer, error) {
	disableConfigDir.Do(api.DisableConfigDir)

	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(src), model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	return &PDFSlicer{src: src, pageCount: ctx.PageCount}, nil
}

// PageCount returns the number of pages pdfcpu found in the source.
func (s *PDFSlicer) PageCount() int {
	return s.pageCount
}

// WriteRange writes pages [r.StartPage, r.EndPage) to w.
func (s *PDFSlicer) WriteRange(r document.ChapterRange, w io.Writer) error {
	if err := CheckRange(r, s.pageCount); err != nil {
		return err
	}
	// pdfcpu page numbers are 1-based and inclusive.
	sel := fmt.Sprintf("%d-%d", r.StartPage+1, r.EndPage)
	if err := api.Trim(bytes.NewReader(s.src), w, []string{sel}, model.NewDefaultConfiguration()); err != nil {
		return fmt.Errorf("trim pages %s: %w", sel, err)
	}
	return nil
}

// CheckRange rejects ranges that would produce an empty or corrupt document.
func CheckRange(r document.ChapterRange, total int) error {
	if r.StartPage > r.EndPage-1 {
		return fmt.Errorf("%w: %q [%d, %d) is empty", ErrInvalidRange, r.Title, r.StartPage, r.EndPage)
	}
	if r.StartPage < 0 || r.EndPage > total {
		return fmt.Errorf("%w: %q [%d, %d) outside document of %d pages", ErrInvalidRange, r.Title, r.StartPage, r.EndPage, total)
	}
	return nil
}

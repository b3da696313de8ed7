package document

import "io"

// PageSource is a loaded document: an ordered, immutable sequence of pages
// indexed 0..NumPages()-1.
type PageSource interface {
	NumPages() int
	PageText(i int) (string, error)
}

// Sink creates named output files.
type Sink interface {
	Create(name string) (io.WriteCloser, error)
}

// ChapterMarker records where a chapter title first appears.
type ChapterMarker struct {
	Title     string `json:"title"`
	StartPage int    `json:"start_page"`
}

// ChapterRange is a contiguous page interval [StartPage, EndPage).
type ChapterRange struct {
	Title     string `json:"title"`
	StartPage int    `json:"start_page"`
	EndPage   int    `json:"end_page"`
}

// Len returns the number of pages in the range.
func (r ChapterRange) Len() int {
	return r.EndPage - r.StartPage
}

// ChapterFile describes one written chapter PDF.
type ChapterFile struct {
	Title     string `json:"title"`
	Filename  string `json:"filename"`
	Path      string `json:"path"`
	StartPage int    `json:"start_page"`
	EndPage   int    `json:"end_page"`
}

// Pages is an in-memory PageSource, mostly useful for tests and for text
// that has already been extracted.
type Pages []string

func (p Pages) NumPages() int { return len(p) }

func (p Pages) PageText(i int) (string, error) {
	return p[i], nil
}

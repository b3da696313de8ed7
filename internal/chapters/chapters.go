package chapters

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dgallion1/chaptersplit/internal/document"
)

// ErrNoChapters is returned by Detect when no page has a chapter line.
var ErrNoChapters = errors.New("no chapter headings found")

const prefix = "chapter"

// Detect scans pages in order and returns one marker per distinct title, in
// discovery order. Only the first qualifying line of a page is considered,
// and the first page a title appears on wins.
func Detect(src document.PageSource) ([]document.ChapterMarker, error) {
	var markers []document.ChapterMarker
	seen := make(map[string]bool)

	for i := 0; i < src.NumPages(); i++ {
		text, err := src.PageText(i)
		if err != nil {
			return nil, fmt.Errorf("page %d text: %w", i, err)
		}
		title, ok := FirstHeading(text)
		if !ok || seen[title] {
			continue
		}
		seen[title] = true
		markers = append(markers, document.ChapterMarker{Title: title, StartPage: i})
	}

	if len(markers) == 0 {
		return nil, ErrNoChapters
	}
	return markers, nil
}

// FirstHeading returns the first trimmed line of text whose lowercase form
// starts with "chapter".
func FirstHeading(text string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(strings.ToLower(line), prefix) {
			return line, true
		}
	}
	return "", false
}

// BuildRanges orders markers by start page and pairs each with the next
// marker's start page, or totalPages for the last one.
func BuildRanges(markers []document.ChapterMarker, totalPages int) []document.ChapterRange {
	sorted := make([]document.ChapterMarker, len(markers))
	copy(sorted, markers)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].StartPage < sorted[j].StartPage })

	ranges := make([]document.ChapterRange, 0, len(sorted))
	for i, m := range sorted {
		end := totalPages
		if i+1 < len(sorted) {
			end = sorted[i+1].StartPage
		}
		ranges = append(ranges, document.ChapterRange{
			Title:     m.Title,
			StartPage: m.StartPage,
			EndPage:   end,
		})
	}
	return ranges
}

var titleReplacer = strings.NewReplacer(
	":", " -",
	"/", "-",
	"\\", "-",
)

// SanitizeTitle turns a chapter title into a filename stem.
func SanitizeTitle(title string) string {
	return strings.TrimSpace(titleReplacer.Replace(title))
}

// Filenames hands out unique "<stem>.pdf" names for one output directory.
type Filenames struct {
	used map[string]bool
}

func NewFilenames() *Filenames {
	return &Filenames{used: make(map[string]bool)}
}

// Reserve returns the filename for title. A stem that collides with an
// earlier reservation gets " (2)", " (3)", ... appended.
func (f *Filenames) Reserve(title string) string {
	stem := SanitizeTitle(title)
	if stem == "" {
		stem = "chapter"
	}
	name := stem + ".pdf"
	for n := 2; f.used[strings.ToLower(name)]; n++ {
		name = fmt.Sprintf("%s (%d).pdf", stem, n)
	}
	f.used[strings.ToLower(name)] = true
	return name
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dgallion1/chaptersplit/internal/archive"
	"github.com/dgallion1/chaptersplit/internal/chapters"
	"github.com/dgallion1/chaptersplit/internal/document"
	"github.com/dgallion1/chaptersplit/internal/parser"
	"github.com/dgallion1/chaptersplit/internal/slicer"
	"github.com/dgallion1/chaptersplit/internal/stats"
)

// RangeWriter writes one chapter range of the source as a standalone PDF.
type RangeWriter interface {
	WriteRange(r document.ChapterRange, w io.Writer) error
}

// Result describes a finished split.
type Result struct {
	OutputDir    string                 `json:"output_dir"`
	Archive      string                 `json:"archive,omitempty"`
	ArchiveError string                 `json:"archive_error,omitempty"`
	Pages        int                    `json:"pages"`
	Chapters     []document.ChapterFile `json:"chapters"`
	Duration     time.Duration          `json:"-"`
}

// Splitter runs chapter splits. It holds no per-split state and is safe
// for concurrent use, but concurrent splits into one directory may race.
type Splitter struct {
	log   *slog.Logger
	stats *stats.Recorder
	opts  parser.Options
}

func NewSplitter(log *slog.Logger, rec *stats.Recorder, opts parser.Options) *Splitter {
	return &Splitter{log: log, stats: rec, opts: opts}
}

// Source is an opened PDF that has passed validation and is ready to split.
type Source struct {
	doc *parser.PDF
	sl  *slicer.PDFSlicer
}

func (src *Source) NumPages() int { return src.doc.NumPages() }

func (src *Source) Close() error { return src.doc.Close() }

// Open parses and validates data without touching the filesystem. A
// rejected document is reported as KindInvalidInput.
func (s *Splitter) Open(data []byte) (*Source, error) {
	start := time.Now()

	doc, err := parser.Open(data, s.opts)
	if err != nil {
		s.record(start, 0, true)
		return nil, newError(KindInvalidInput, err, "invalid pdf")
	}

	sl, err := slicer.New(doc.Bytes())
	if err != nil {
		s.record(start, doc.NumPages(), true)
		doc.Close()
		return nil, newError(KindInvalidInput, err, "invalid pdf")
	}
	return &Source{doc: doc, sl: sl}, nil
}

// SplitPDF opens data and splits it into outputDir.
func (s *Splitter) SplitPDF(ctx context.Context, data []byte, outputDir string) (*Result, error) {
	src, err := s.Open(data)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return s.SplitSource(ctx, src, outputDir)
}

// SplitSource splits a document returned by Open.
func (s *Splitter) SplitSource(ctx context.Context, src *Source, outputDir string) (*Result, error) {
	return s.Split(ctx, src.doc, src.sl, outputDir)
}

// Split detects chapters in src, writes one PDF per chapter into outputDir
// and archives the directory to a sibling zip. Nothing touches the
// filesystem until at least one chapter has been found. A failed archive is
// reported in the result and does not fail the split.
func (s *Splitter) Split(ctx context.Context, src document.PageSource, rw RangeWriter, outputDir string) (*Result, error) {
	start := time.Now()
	log := s.log.With("output_dir", outputDir)

	files, err := Run(ctx, src, rw, DirSink{Dir: outputDir})
	if err != nil {
		log.Error("split failed", "kind", KindOf(err), "error", err)
		s.record(start, src.NumPages(), true)
		return nil, err
	}
	for i := range files {
		files[i].Path = filepath.Join(outputDir, files[i].Filename)
	}

	res := &Result{
		OutputDir: outputDir,
		Pages:     src.NumPages(),
		Chapters:  files,
	}

	zipPath, err := archive.ZipDir(outputDir)
	if err != nil {
		log.Warn("archive failed, chapter files kept", "error", err)
		res.ArchiveError = err.Error()
	} else {
		res.Archive = zipPath
	}

	res.Duration = time.Since(start)
	s.record(start, res.Pages, false)
	log.Info("split complete",
		"chapters", len(files),
		"pages", res.Pages,
		"archive", res.Archive,
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func (s *Splitter) record(start time.Time, pages int, failed bool) {
	if s.stats != nil {
		s.stats.Record(time.Since(start), pages, failed)
	}
}

// Run is the filesystem-free core of a split: detect, build ranges, and
// write each range through sink. The first failure stops the remaining
// chapters.
func Run(ctx context.Context, src document.PageSource, rw RangeWriter, sink document.Sink) ([]document.ChapterFile, error) {
	markers, err := chapters.Detect(src)
	if errors.Is(err, chapters.ErrNoChapters) {
		return nil, newError(KindNoChapters, nil, "no chapters found in %d pages", src.NumPages())
	}
	if err != nil {
		return nil, newError(KindIO, err, "scan pages")
	}

	ranges := chapters.BuildRanges(markers, src.NumPages())
	names := chapters.NewFilenames()
	files := make([]document.ChapterFile, 0, len(ranges))

	for _, r := range ranges {
		if err := ctx.Err(); err != nil {
			return files, newError(KindIO, err, "split interrupted after %d chapters", len(files))
		}
		if err := slicer.CheckRange(r, src.NumPages()); err != nil {
			return files, newError(KindInvalidRange, err, "chapter %q", r.Title)
		}

		name := names.Reserve(r.Title)
		if err := writeChapter(sink, name, r, rw); err != nil {
			if errors.Is(err, slicer.ErrInvalidRange) {
				return files, newError(KindInvalidRange, err, "chapter %q", r.Title)
			}
			return files, newError(KindIO, err, "write %s", name)
		}

		files = append(files, document.ChapterFile{
			Title:     r.Title,
			Filename:  name,
			StartPage: r.StartPage,
			EndPage:   r.EndPage,
		})
	}
	return files, nil
}

type remover interface {
	Remove(name string) error
}

func writeChapter(sink document.Sink, name string, r document.ChapterRange, rw RangeWriter) error {
	w, err := sink.Create(name)
	if err != nil {
		return err
	}
	werr := rw.WriteRange(r, w)
	cerr := w.Close()
	if werr == nil && cerr == nil {
		return nil
	}
	if rm, ok := sink.(remover); ok {
		rm.Remove(name)
	}
	if werr != nil {
		return werr
	}
	return fmt.Errorf("close %s: %w", name, cerr)
}

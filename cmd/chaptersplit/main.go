package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgallion1/chaptersplit/internal/parser"
	"github.com/dgallion1/chaptersplit/internal/pipeline"
)

func main() {
	out := flag.String("out", "output_chapters_pdf", "output directory for chapter PDFs")
	pdftotext := flag.Bool("pdftotext", false, "fall back to pdftotext for pages the Go reader cannot extract")
	verbose := flag.Bool("v", false, "log progress to stderr")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-out dir] [-pdftotext] file.pdf\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelInfo
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	path := flag.Arg(0)
	if !parser.IsPDFFilename(path) {
		log.Error("input must be a .pdf file", "path", path)
		os.Exit(1)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Error("read input", "error", err)
		os.Exit(1)
	}

	splitter := pipeline.NewSplitter(log, nil, parser.Options{FallbackPdftotext: *pdftotext})
	res, err := splitter.SplitPDF(context.Background(), data, *out)
	if err != nil {
		log.Error("split failed", "kind", pipeline.KindOf(err), "error", err)
		os.Exit(1)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(res); err != nil {
		log.Error("encode result", "error", err)
		os.Exit(1)
	}
}

// Package testpdf builds small PDF fixtures for tests.
package testpdf

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/jung-kurt/gofpdf"
)

// Build returns a PDF with one page per entry of pages, each page holding a
// single line of Helvetica text. An empty string yields a blank page.
func Build(t testing.TB, pages []string) []byte {
	t.Helper()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(false)
	pdf.SetFont("Helvetica", "", 14)
	for _, text := range pages {
		pdf.AddPage()
		if text != "" {
			pdf.Cell(0, 10, text)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("build fixture pdf: %v", err)
	}
	return buf.Bytes()
}

// Write builds the fixture and saves it as name under dir.
func Write(t testing.TB, dir, name string, pages []string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, Build(t, pages), 0o644); err != nil {
		t.Fatalf("write fixture pdf: %v", err)
	}
	return path
}

// Book is the ten-page document used across tests: a preface on page 0,
// "Chapter 1: Intro" on page 1 and "Chapter 2: Depths" on page 5.
func Book() []string {
	return []string{
		"Preface",
		"Chapter 1: Intro",
		"Body page 2",
		"Body page 3",
		"Body page 4",
		"Chapter 2: Depths",
		"Body page 6",
		"Body page 7",
		"Body page 8",
		"Body page 9",
	}
}

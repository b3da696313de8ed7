package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dgallion1/chaptersplit/internal/document"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestNewRecord_Completed(t *testing.T) {
	res := &Result{
		OutputDir: "out",
		Archive:   "out.zip",
		Pages:     10,
		Chapters: []document.ChapterFile{
			{Title: "Chapter 1", Filename: "Chapter 1.pdf", StartPage: 1, EndPage: 10},
		},
	}
	rec := NewRecord("book.pdf", "out", []byte("data"), res, nil)

	if rec.Status != StatusCompleted {
		t.Errorf("expected status %q, got %q", StatusCompleted, rec.Status)
	}
	if len(rec.ID) != 20 {
		t.Errorf("expected 20-char id, got %q", rec.ID)
	}
	if rec.Pages != 10 || len(rec.Chapters) != 1 || rec.Archive != "out.zip" {
		t.Errorf("result not copied into record: %+v", rec)
	}
	if rec.ContentHash != ContentHashHex([]byte("data")) {
		t.Errorf("unexpected content hash %q", rec.ContentHash)
	}
}

func TestNewRecord_Failed(t *testing.T) {
	err := newError(KindNoChapters, nil, "no chapters found in 3 pages")
	rec := NewRecord("book.pdf", "out", nil, nil, err)

	if rec.Status != StatusFailed {
		t.Errorf("expected status %q, got %q", StatusFailed, rec.Status)
	}
	if rec.ErrorKind != KindNoChapters {
		t.Errorf("expected kind %q, got %q", KindNoChapters, rec.ErrorKind)
	}
	if rec.Chapters == nil {
		t.Error("expected non-nil chapters slice")
	}
}

func TestNewRecord_UnclassifiedErrorIsIO(t *testing.T) {
	rec := NewRecord("book.pdf", "out", nil, nil, errors.New("disk on fire"))
	if rec.ErrorKind != KindIO {
		t.Errorf("expected kind %q, got %q", KindIO, rec.ErrorKind)
	}
}

func TestRegistry_PutGet(t *testing.T) {
	reg := NewRegistry(time.Hour)
	rec := &Record{ID: "rec-1", UpdatedAt: time.Now(), Chapters: []document.ChapterFile{{Title: "a"}}}
	reg.Put(rec)

	got := reg.Get("rec-1")
	if got == nil {
		t.Fatal("expected to get record back")
	}
	if got.ID != "rec-1" {
		t.Errorf("expected ID %q, got %q", "rec-1", got.ID)
	}

	// Returned records are copies.
	got.Chapters[0].Title = "changed"
	if reg.Get("rec-1").Chapters[0].Title != "a" {
		t.Error("mutating a returned record changed the registry")
	}
}

func TestRegistry_GetMissing(t *testing.T) {
	reg := NewRegistry(time.Hour)
	if reg.Get("nonexistent") != nil {
		t.Error("expected nil for missing record")
	}
}

func TestRegistry_TTLCleanup(t *testing.T) {
	reg := NewRegistry(time.Minute)
	reg.Put(&Record{ID: "old", UpdatedAt: time.Now().Add(-2 * time.Minute)})
	reg.Put(&Record{ID: "new", UpdatedAt: time.Now()})

	reg.Cleanup()

	if reg.Get("old") != nil {
		t.Error("expected expired record to be cleaned up")
	}
	if reg.Get("new") == nil {
		t.Error("expected fresh record to survive cleanup")
	}
	if reg.Len() != 1 {
		t.Errorf("expected 1 record, got %d", reg.Len())
	}
}

func TestRegistry_RunStopsOnCancel(t *testing.T) {
	reg := NewRegistry(time.Millisecond)
	reg.Put(&Record{ID: "old", UpdatedAt: time.Now().Add(-time.Hour)})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reg.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for reg.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if reg.Len() != 0 {
		t.Error("expected janitor to evict the expired record")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

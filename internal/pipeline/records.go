package pipeline

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/dgallion1/chaptersplit/internal/document"
)

// Status is the outcome of a split.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Record is the stored outcome of one HTTP-initiated split.
type Record struct {
	ID        string `json:"split_id"`
	Filename  string `json:"filename"`
	OutputDir string `json:"output_dir"`

	Status    Status    `json:"status"`
	ErrorKind ErrorKind `json:"error_kind,omitempty"`
	Error     string    `json:"error,omitempty"`

	Pages        int                    `json:"pages"`
	Chapters     []document.ChapterFile `json:"chapters"`
	Archive      string                 `json:"archive,omitempty"`
	ArchiveError string                 `json:"archive_error,omitempty"`

	ContentHash string    `json:"content_hash"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewRecord builds a record for a split of data named filename.
func NewRecord(filename, outputDir string, data []byte, res *Result, err error) *Record {
	now := time.Now()
	rec := &Record{
		ID:          ContentHashHex([]byte(fmt.Sprintf("%s-%s-%d", filename, outputDir, now.UnixNano())))[:20],
		Filename:    filename,
		OutputDir:   outputDir,
		Status:      StatusCompleted,
		Chapters:    []document.ChapterFile{},
		ContentHash: ContentHashHex(data),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err != nil {
		rec.Status = StatusFailed
		rec.ErrorKind = KindOf(err)
		rec.Error = err.Error()
	}
	if res != nil {
		rec.Pages = res.Pages
		rec.Chapters = res.Chapters
		rec.Archive = res.Archive
		rec.ArchiveError = res.ArchiveError
	}
	return rec
}

// Registry is a thread-safe in-memory record store with TTL eviction.
type Registry struct {
	mu      sync.Mutex
	records map[string]*Record
	ttl     time.Duration
}

func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		records: make(map[string]*Record),
		ttl:     ttl,
	}
}

func (r *Registry) Put(rec *Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.ID] = rec
}

// Get returns a copy of the record, or nil.
func (r *Registry) Get(id string) *Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return nil
	}
	cp := *rec
	cp.Chapters = append([]document.ChapterFile(nil), rec.Chapters...)
	return &cp
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// Cleanup removes expired records.
func (r *Registry) Cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for id, rec := range r.records {
		if now.Sub(rec.UpdatedAt) > r.ttl {
			delete(r.records, id)
		}
	}
}

// Run evicts expired records every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Cleanup()
		}
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}

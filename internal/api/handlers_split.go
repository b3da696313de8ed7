package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/chaptersplit/internal/parser"
	"github.com/dgallion1/chaptersplit/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

// requestError is a rejected upload. Nothing has touched the filesystem
// when one is returned.
type requestError struct {
	msg     string
	code    int
	badFile bool
}

func (e *requestError) Error() string { return e.msg }

type upload struct {
	filename  string
	data      []byte
	outputDir string
}

// readUpload parses and validates the multipart form shared by the HTML
// form and the JSON API: a "file" part and an "output_path" field.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*upload, *requestError) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, &requestError{"invalid multipart form: " + err.Error(), http.StatusBadRequest, false}
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, &requestError{"file is required: " + err.Error(), http.StatusBadRequest, true}
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsPDFFilename(filename) {
		return nil, &requestError{fmt.Sprintf("unsupported file type: %q", filepath.Ext(filename)), http.StatusBadRequest, true}
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, &requestError{"failed to read file", http.StatusBadRequest, false}
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, &requestError{fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge, false}
	}
	if !parser.HasPDFHeader(data) {
		return nil, &requestError{"file content is not a PDF", http.StatusBadRequest, true}
	}

	outputDir, err := s.resolveOutputDir(r.FormValue("output_path"))
	if err != nil {
		return nil, &requestError{err.Error(), http.StatusBadRequest, false}
	}

	return &upload{filename: filename, data: data, outputDir: outputDir}, nil
}

// resolveOutputDir maps a user-supplied output path onto the filesystem.
// Relative paths live under OutputRoot and may not escape it.
func (s *Server) resolveOutputDir(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("output_path is required")
	}
	if filepath.IsAbs(raw) {
		if !s.cfg.AllowAbsoluteOutput {
			return "", errors.New("absolute output_path is not allowed")
		}
		return filepath.Clean(raw), nil
	}

	root := filepath.Clean(s.cfg.OutputRoot)
	dir := filepath.Join(root, raw)
	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("output_path %q must name a directory inside the output root", raw)
	}
	return dir, nil
}

// runSplit parses the upload, saves it once it is known to be a readable
// PDF, splits it and stores the record.
func (s *Server) runSplit(r *http.Request, up *upload) (*pipeline.Record, error) {
	log := s.log.With("filename", up.filename, "output_dir", up.outputDir)

	src, err := s.splitter.Open(up.data)
	if err != nil {
		log.Warn("rejected upload", "error", err)
		rec := pipeline.NewRecord(up.filename, up.outputDir, up.data, nil, err)
		s.records.Put(rec)
		return rec, err
	}
	defer src.Close()

	if err := s.saveUpload(up); err != nil {
		log.Error("save upload failed", "error", err)
		rec := pipeline.NewRecord(up.filename, up.outputDir, up.data, nil, err)
		s.records.Put(rec)
		return rec, err
	}

	res, err := s.splitter.SplitSource(r.Context(), src, up.outputDir)
	rec := pipeline.NewRecord(up.filename, up.outputDir, up.data, res, err)
	s.records.Put(rec)
	log.Info("split finished", "split_id", rec.ID, "status", rec.Status, "chapters", len(rec.Chapters))
	return rec, err
}

func (s *Server) saveUpload(up *upload) error {
	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}
	path := filepath.Join(s.cfg.UploadDir, up.filename)
	if err := os.WriteFile(path, up.data, 0o644); err != nil {
		return fmt.Errorf("save upload: %w", err)
	}
	return nil
}

func (s *Server) handleSplit(w http.ResponseWriter, r *http.Request) {
	up, reqErr := s.readUpload(w, r)
	if reqErr != nil {
		jsonError(w, reqErr.msg, reqErr.code)
		return
	}

	rec, err := s.runSplit(r, up)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusForKind(pipeline.KindOf(err)))
		json.NewEncoder(w).Encode(map[string]any{
			"error":    err.Error(),
			"kind":     pipeline.KindOf(err),
			"split_id": rec.ID,
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{
		"split":       rec,
		"archive_url": archiveURL(rec),
	})
}

func (s *Server) handleSplitStatus(w http.ResponseWriter, r *http.Request) {
	rec := s.records.Get(chi.URLParam(r, "splitID"))
	if rec == nil {
		jsonError(w, "split not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"split":       rec,
		"archive_url": archiveURL(rec),
	})
}

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	rec := s.records.Get(chi.URLParam(r, "splitID"))
	if rec == nil {
		jsonError(w, "split not found", http.StatusNotFound)
		return
	}
	if rec.Archive == "" {
		jsonError(w, "no archive for this split", http.StatusNotFound)
		return
	}

	f, err := os.Open(rec.Archive)
	if err != nil {
		jsonError(w, "archive unavailable", http.StatusGone)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		jsonError(w, "archive unavailable", http.StatusGone)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(rec.Archive)))
	http.ServeContent(w, r, filepath.Base(rec.Archive), info.ModTime(), f)
}

func archiveURL(rec *pipeline.Record) string {
	if rec.Archive == "" {
		return ""
	}
	return fmt.Sprintf("/api/splits/%s/archive", rec.ID)
}

func statusForKind(kind pipeline.ErrorKind) int {
	switch kind {
	case pipeline.KindInvalidInput:
		return http.StatusBadRequest
	case pipeline.KindNoChapters:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || name == "/" {
		name = "unnamed"
	}
	return name
}

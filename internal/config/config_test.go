package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "UPLOAD_DIR", "OUTPUT_ROOT", "ALLOW_ABSOLUTE_OUTPUT",
		"MAX_UPLOAD_BYTES", "RECORD_TTL", "STATS_WINDOW", "PDF_FALLBACK_PDFTOTEXT", "CHAPTERSPLIT_API_KEY"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "8090" {
		t.Errorf("expected port 8090, got %q", cfg.Port)
	}
	if cfg.UploadDir != "uploads" {
		t.Errorf("expected upload dir %q, got %q", "uploads", cfg.UploadDir)
	}
	if cfg.OutputRoot != "." {
		t.Errorf("expected output root %q, got %q", ".", cfg.OutputRoot)
	}
	if cfg.AllowAbsoluteOutput {
		t.Error("expected absolute output to be disallowed by default")
	}
	if cfg.MaxUploadBytes != 52428800 {
		t.Errorf("expected 50MB upload limit, got %d", cfg.MaxUploadBytes)
	}
	if cfg.RecordTTL != time.Hour {
		t.Errorf("expected 1h record TTL, got %s", cfg.RecordTTL)
	}
	if !cfg.PDFFallbackPdftotext {
		t.Error("expected pdftotext fallback enabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")
	t.Setenv("RECORD_TTL", "5m")
	t.Setenv("ALLOW_ABSOLUTE_OUTPUT", "true")
	t.Setenv("PDF_FALLBACK_PDFTOTEXT", "false")

	cfg := Load()
	if cfg.Port != "9000" {
		t.Errorf("expected port 9000, got %q", cfg.Port)
	}
	if cfg.MaxUploadBytes != 1024 {
		t.Errorf("expected 1024, got %d", cfg.MaxUploadBytes)
	}
	if cfg.RecordTTL != 5*time.Minute {
		t.Errorf("expected 5m, got %s", cfg.RecordTTL)
	}
	if !cfg.AllowAbsoluteOutput {
		t.Error("expected absolute output allowed")
	}
	if cfg.PDFFallbackPdftotext {
		t.Error("expected pdftotext fallback disabled")
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("MAX_UPLOAD_BYTES", "-5")
	t.Setenv("RECORD_TTL", "soon")

	cfg := Load()
	if cfg.MaxUploadBytes != 52428800 {
		t.Errorf("expected clamped default, got %d", cfg.MaxUploadBytes)
	}
	if cfg.RecordTTL != time.Hour {
		t.Errorf("expected default TTL, got %s", cfg.RecordTTL)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"ok", Config{Port: "8090", UploadDir: "u", OutputRoot: "."}, false},
		{"empty upload dir", Config{Port: "8090", UploadDir: " ", OutputRoot: "."}, true},
		{"empty output root", Config{Port: "8090", UploadDir: "u"}, true},
		{"bad port", Config{Port: "http", UploadDir: "u", OutputRoot: "."}, true},
	}
	for _, tt := range tests {
		err := tt.cfg.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: Validate() error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

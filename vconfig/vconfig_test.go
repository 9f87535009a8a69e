package vconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFillDefaults(t *testing.T) {
	got := Config{}.FillDefaults()
	want := Config{Compression: CompressionDFA, Format: FormatText}
	if got != want {
		t.Fatalf("FillDefaults() = %+v, want %+v", got, want)
	}
}

func TestFillDefaultsPreservesSetFields(t *testing.T) {
	got := Config{Compression: CompressionNone, Format: FormatJSON, StartContext: "expr"}.FillDefaults()
	want := Config{Compression: CompressionNone, Format: FormatJSON, StartContext: "expr"}
	if got != want {
		t.Fatalf("FillDefaults() = %+v, want %+v", got, want)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"zero value", Config{}, false},
		{"valid compression and format", Config{Compression: "dfa", Format: "tree"}, false},
		{"invalid compression", Config{Compression: "gzip"}, true},
		{"invalid format", Config{Format: "xml"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "vellum.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Config{}.FillDefaults()
	if cfg != want {
		t.Fatalf("Load() = %+v, want %+v", cfg, want)
	}
}

func TestLoadDecodesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vellum.toml")
	src := "compression = \"none\"\nformat = \"json\"\nstart_context = \"expr\"\n"
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Config{Compression: CompressionNone, Format: FormatJSON, StartContext: "expr"}
	if cfg != want {
		t.Fatalf("Load() = %+v, want %+v", cfg, want)
	}
}

func TestLoadRejectsInvalidValue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vellum.toml")
	if err := os.WriteFile(path, []byte("compression = \"lzma\"\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("Load: expected error for invalid compression value")
	}
}

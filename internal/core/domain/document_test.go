package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewDocument(t *testing.T) {
	tests := []struct {
		input    string
		wantName string
		wantPath string
		wantDir  string
	}{
		{"Notes.md", "Notes", "Notes.md", ""},
		{"journal/2024/Daily Log.md", "Daily Log", "journal/2024/Daily Log.md", "journal/2024"},
		{"/inbox/Ideas.md", "Ideas", "inbox/Ideas.md", "inbox"},
		{`windows\style\Path.md`, "Path", "windows/style/Path.md", "windows/style"},
		{"no-extension", "no-extension", "no-extension", ""},
		{"archive/v1.2.notes.md", "v1.2.notes", "archive/v1.2.notes.md", "archive"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			doc, err := NewDocument(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if doc.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", doc.Name, tt.wantName)
			}
			if doc.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", doc.Path, tt.wantPath)
			}
			if doc.Dir() != tt.wantDir {
				t.Errorf("Dir() = %q, want %q", doc.Dir(), tt.wantDir)
			}
		})
	}
}

func TestNewDocument_Invalid(t *testing.T) {
	for _, input := range []string{"", ".", "/", "../outside.md", "a/../../b.md"} {
		if _, err := NewDocument(input); err == nil {
			t.Errorf("NewDocument(%q) expected error", input)
		}
	}
}

func TestNormalizeMimeType(t *testing.T) {
	tests := []struct{ in, want string }{
		{"image/png", "image/png"},
		{"IMAGE/PNG", "image/png"},
		{" image/jpeg ", "image/jpeg"},
		{"image/webp; codecs=vp8", "image/webp"},
		{"text/plain; charset=utf-8", "text/plain"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeMimeType(tt.in); got != tt.want {
			t.Errorf("NormalizeMimeType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStoredAsset_Basename(t *testing.T) {
	a := &StoredAsset{Name: "Notes 20240101120000 1.webp"}
	if got := a.Basename(); got != "Notes 20240101120000 1" {
		t.Errorf("Basename() = %q", got)
	}
	noExt := &StoredAsset{Name: ".hidden"}
	if got := noExt.Basename(); got != ".hidden" {
		t.Errorf("Basename() = %q, want .hidden", got)
	}
}

func TestClampQuality(t *testing.T) {
	tests := []struct{ in, want int }{
		{-5, 1}, {0, 1}, {1, 1}, {50, 50}, {85, 85}, {100, 100}, {101, 100}, {9000, 100},
	}
	for _, tt := range tests {
		if got := ClampQuality(tt.in); got != tt.want {
			t.Errorf("ClampQuality(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
	if f := QualityFactor(50); f != 0.5 {
		t.Errorf("QualityFactor(50) = %v, want 0.5", f)
	}
}

func TestPasteError_Matching(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("paste failed: %w", NewPasteError(StagePersisting, ErrPersist, cause))

	if !errors.Is(err, ErrPersist) {
		t.Error("expected errors.Is to match the kind sentinel")
	}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to match the original cause")
	}
	if errors.Is(err, ErrDecode) {
		t.Error("unexpected match on a different kind")
	}

	var pe *PasteError
	if !errors.As(err, &pe) || pe.Stage != StagePersisting {
		t.Errorf("expected PasteError at persisting stage, got %#v", pe)
	}
	if pe.Error() != "attachment could not be written: disk full" {
		t.Errorf("unexpected message: %q", pe.Error())
	}
}

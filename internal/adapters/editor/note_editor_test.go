package editor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func writeNote(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "Note.md")
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func readNote(t *testing.T, p string) string {
	t.Helper()
	data, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestNoteEditor_ReplaceSelection(t *testing.T) {
	tests := []struct {
		name    string
		content string
		keep    bool
		want    string
	}{
		{"marker", "before {{cursor}} after\n", false, "before ![[a.webp]] after\n"},
		{"first marker only", "{{cursor}} and {{cursor}}", false, "![[a.webp]] and {{cursor}}"},
		{"keep cursor", "x {{cursor}}\n", true, "x ![[a.webp]]{{cursor}}\n"},
		{"append", "# Title\n", false, "# Title\n![[a.webp]]\n"},
		{"append without newline", "# Title", false, "# Title\n![[a.webp]]\n"},
		{"empty note", "", false, "![[a.webp]]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := writeNote(t, tt.content)
			ed := NewNoteEditor(p, "").KeepCursor(tt.keep)

			if err := ed.ReplaceSelection(context.Background(), "![[a.webp]]"); err != nil {
				t.Fatalf("ReplaceSelection failed: %v", err)
			}
			if got := readNote(t, p); got != tt.want {
				t.Errorf("note = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNoteEditor_CustomMarker(t *testing.T) {
	p := writeNote(t, "a <!-- here --> b")
	ed := NewNoteEditor(p, "<!-- here -->")

	if err := ed.ReplaceSelection(context.Background(), "LINK"); err != nil {
		t.Fatal(err)
	}
	if got := readNote(t, p); got != "a LINK b" {
		t.Errorf("note = %q", got)
	}
}

func TestNoteEditor_CreatesMissingNote(t *testing.T) {
	p := filepath.Join(t.TempDir(), "sub", "New.md")
	ed := NewNoteEditor(p, "")

	if err := ed.ReplaceSelection(context.Background(), "LINK"); err != nil {
		t.Fatal(err)
	}
	if got := readNote(t, p); got != "LINK\n" {
		t.Errorf("note = %q", got)
	}
}

func TestNoteEditor_CanceledContext(t *testing.T) {
	p := writeNote(t, "unchanged")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewNoteEditor(p, "").ReplaceSelection(ctx, "LINK")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if got := readNote(t, p); got != "unchanged" {
		t.Errorf("note modified: %q", got)
	}
}

func TestNoteEditor_ConcurrentInsertions(t *testing.T) {
	p := writeNote(t, "")
	const n = 20

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Separate editors share the per-file lock
			ed := NewNoteEditor(p, "")
			if err := ed.ReplaceSelection(context.Background(), fmt.Sprintf("line-%d", i)); err != nil {
				t.Errorf("ReplaceSelection: %v", err)
			}
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(readNote(t, p)), "\n")
	if len(lines) != n {
		t.Fatalf("got %d lines, want %d", len(lines), n)
	}
	seen := make(map[string]bool)
	for _, l := range lines {
		seen[l] = true
	}
	for i := 0; i < n; i++ {
		if !seen[fmt.Sprintf("line-%d", i)] {
			t.Errorf("missing line-%d", i)
		}
	}
}

func TestClipboardEditor(t *testing.T) {
	var got []string
	ed := &ClipboardEditor{write: func(s string) error {
		got = append(got, s)
		return nil
	}}

	if err := ed.ReplaceSelection(context.Background(), "![[a.webp]]"); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "![[a.webp]]" || ed.Last() != "![[a.webp]]" {
		t.Errorf("unexpected clipboard writes %v", got)
	}

	ed.write = func(string) error { return errors.New("no clipboard") }
	if err := ed.ReplaceSelection(context.Background(), "other"); err == nil {
		t.Error("expected clipboard failure to be returned")
	}
	if ed.Last() != "![[a.webp]]" {
		t.Errorf("Last changed after a failed write: %q", ed.Last())
	}
}

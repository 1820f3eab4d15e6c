package editor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DefaultCursorMarker marks the insertion point inside a note
const DefaultCursorMarker = "{{cursor}}"

// fileLocks serialises writers of the same note across editors
var fileLocks sync.Map

func lockFor(path string) *sync.Mutex {
	mu, _ := fileLocks.LoadOrStore(path, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// NoteEditor edits a Markdown note on disk
// The first cursor marker acts as the selection; without one, text is appended
type NoteEditor struct {
	path       string
	marker     string
	keepCursor bool
}

// NewNoteEditor creates an editor for the note at absPath
// An empty marker selects DefaultCursorMarker
func NewNoteEditor(absPath string, marker string) *NoteEditor {
	if marker == "" {
		marker = DefaultCursorMarker
	}
	return &NoteEditor{path: filepath.Clean(absPath), marker: marker}
}

// KeepCursor leaves the marker after the inserted text so later pastes follow it
func (e *NoteEditor) KeepCursor(keep bool) *NoteEditor {
	e.keepCursor = keep
	return e
}

// Path returns the note being edited
func (e *NoteEditor) Path() string {
	return e.path
}

// ReplaceSelection inserts text at the marker, or appends it on its own line
func (e *NoteEditor) ReplaceSelection(ctx context.Context, text string) error {
	mu := lockFor(e.path)
	mu.Lock()
	defer mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	content, err := os.ReadFile(e.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read note: %w", err)
	}

	updated := e.insert(string(content), text)
	return writeAtomic(e.path, []byte(updated))
}

func (e *NoteEditor) insert(content, text string) string {
	if idx := strings.Index(content, e.marker); idx >= 0 {
		replacement := text
		if e.keepCursor {
			replacement = text + e.marker
		}
		return content[:idx] + replacement + content[idx+len(e.marker):]
	}

	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + text + "\n"
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create note directory: %w", err)
	}

	mode := fs.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, ".webpaste-*")
	if err != nil {
		return fmt.Errorf("failed to create temp note: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write note: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write note: %w", err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write note: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace note: %w", err)
	}
	return nil
}

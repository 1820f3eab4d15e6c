package editor

import (
	"context"
	"sync"

	"github.com/atotto/clipboard"
)

// ClipboardEditor "inserts" text by placing it on the system clipboard
type ClipboardEditor struct {
	mu    sync.Mutex
	write func(string) error
	last  string
}

// NewClipboardEditor creates an editor backed by the system clipboard
func NewClipboardEditor() *ClipboardEditor {
	return &ClipboardEditor{write: clipboard.WriteAll}
}

// ReplaceSelection copies text to the clipboard
func (e *ClipboardEditor) ReplaceSelection(ctx context.Context, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.write(text); err != nil {
		return err
	}
	e.last = text
	return nil
}

// Last returns the most recently copied text
func (e *ClipboardEditor) Last() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

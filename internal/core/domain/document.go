package domain

import (
	"fmt"
	"path"
	"strings"
)

// Document is the note currently being edited
// Path is vault-relative and always uses forward slashes
type Document struct {
	Name string // Display name, e.g. "Notes" for "journal/Notes.md"
	Path string // e.g. "journal/Notes.md"
}

// NewDocument builds a document handle from a vault-relative path
func NewDocument(relPath string) (*Document, error) {
	clean := path.Clean(strings.ReplaceAll(relPath, "\\", "/"))
	clean = strings.TrimPrefix(clean, "/")
	if clean == "." || clean == "" {
		return nil, fmt.Errorf("document path cannot be empty")
	}
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return nil, fmt.Errorf("document path escapes the vault: %s", relPath)
	}

	base := path.Base(clean)
	return &Document{
		Name: strings.TrimSuffix(base, path.Ext(base)),
		Path: clean,
	}, nil
}

// Dir returns the vault-relative folder of the document ("" for the vault root)
func (d *Document) Dir() string {
	dir := path.Dir(d.Path)
	if dir == "." || dir == "/" {
		return ""
	}
	return dir
}

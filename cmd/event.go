package cmd

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/kamal-hamza/webpaste/internal/core/domain"
)

// extensionTypes covers image formats the content sniffer does not know
var extensionTypes = map[string]string{
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".bmp":  "image/bmp",
}

// filePasteEvent is a paste event synthesised from image bytes read from disk or stdin
type filePasteEvent struct {
	files     []domain.ClipboardFile
	prevented atomic.Bool
}

func newFilePasteEvent(name string, data []byte) *filePasteEvent {
	return &filePasteEvent{
		files: []domain.ClipboardFile{{
			Name:     name,
			MimeType: sniffMimeType(name, data),
			Data:     data,
		}},
	}
}

func (e *filePasteEvent) Files() []domain.ClipboardFile {
	return e.files
}

func (e *filePasteEvent) PreventDefault() {
	e.prevented.Store(true)
}

// Prevented reports whether the event was claimed
func (e *filePasteEvent) Prevented() bool {
	return e.prevented.Load()
}

// sniffMimeType trusts the content first and the file extension second
func sniffMimeType(name string, data []byte) string {
	detected := domain.NormalizeMimeType(http.DetectContentType(data))
	if strings.HasPrefix(detected, "image/") {
		return detected
	}

	ext := strings.ToLower(filepath.Ext(name))
	if t, ok := extensionTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return domain.NormalizeMimeType(t)
	}
	return detected
}

package services

import (
	"strings"

	"github.com/kamal-hamza/webpaste/internal/core/domain"
	"github.com/kamal-hamza/webpaste/internal/core/ports"
)

// Interceptor decides which paste events the pipeline takes over
type Interceptor struct{}

// NewInterceptor creates a paste interceptor
func NewInterceptor() *Interceptor {
	return &Interceptor{}
}

// ShouldClaim reports whether a paste with these files against doc belongs to the pipeline
// Only the first file is considered
func (i *Interceptor) ShouldClaim(files []domain.ClipboardFile, doc *domain.Document) bool {
	if len(files) == 0 || doc == nil {
		return false
	}
	mime := domain.NormalizeMimeType(files[0].MimeType)
	if !strings.HasPrefix(mime, "image/") {
		return false
	}
	return mime != domain.TargetMimeType
}

// Claim suppresses the host's default handling and extracts the image when the event qualifies.
// It never blocks: suppression has to happen while the host is still dispatching the event.
func (i *Interceptor) Claim(evt ports.PasteEvent, doc *domain.Document) (domain.PastedImage, bool) {
	if evt == nil {
		return domain.PastedImage{}, false
	}
	files := evt.Files()
	if !i.ShouldClaim(files, doc) {
		return domain.PastedImage{}, false
	}

	evt.PreventDefault()

	first := files[0]
	return domain.PastedImage{
		Name:     first.Name,
		MimeType: domain.NormalizeMimeType(first.MimeType),
		Data:     first.Data,
	}, true
}

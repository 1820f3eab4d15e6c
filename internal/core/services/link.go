package services

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kamal-hamza/webpaste/internal/core/domain"
)

// LinkStyle selects the embed syntax written into notes
type LinkStyle string

const (
	LinkStyleWikilink LinkStyle = "wikilink" // ![[name.webp]]
	LinkStyleMarkdown LinkStyle = "markdown" // ![name](relative/path.webp)
	LinkStyleLatex    LinkStyle = "latex"    // \includegraphics[width=0.8\linewidth]{path}
)

// ParseLinkStyle validates a configured link style
func ParseLinkStyle(s string) (LinkStyle, error) {
	switch LinkStyle(strings.ToLower(strings.TrimSpace(s))) {
	case "", LinkStyleWikilink:
		return LinkStyleWikilink, nil
	case LinkStyleMarkdown:
		return LinkStyleMarkdown, nil
	case LinkStyleLatex:
		return LinkStyleLatex, nil
	}
	return "", fmt.Errorf("unknown link style %q (want wikilink, markdown or latex)", s)
}

// LinkFormatter renders references to stored assets
type LinkFormatter struct {
	Style LinkStyle
}

// NewLinkFormatter creates a formatter for the given style
func NewLinkFormatter(style LinkStyle) *LinkFormatter {
	return &LinkFormatter{Style: style}
}

// GenerateLink renders asset as seen from the note at sourcePath
func (f *LinkFormatter) GenerateLink(asset *domain.StoredAsset, sourcePath string) string {
	switch f.Style {
	case LinkStyleMarkdown:
		return fmt.Sprintf("![%s](%s)", asset.Basename(), escapeLinkPath(relativeTo(sourcePath, asset.Path)))
	case LinkStyleLatex:
		return fmt.Sprintf("\\includegraphics[width=0.8\\linewidth]{%s}", relativeTo(sourcePath, asset.Path))
	default:
		return fmt.Sprintf("![[%s]]", asset.Name)
	}
}

// relativeTo returns target relative to the folder holding source (both vault-relative)
func relativeTo(source, target string) string {
	dir := filepath.Dir(filepath.FromSlash(source))
	rel, err := filepath.Rel(dir, filepath.FromSlash(target))
	if err != nil {
		return target
	}
	return filepath.ToSlash(rel)
}

func escapeLinkPath(p string) string {
	return strings.NewReplacer(" ", "%20", "(", "%28", ")", "%29").Replace(p)
}

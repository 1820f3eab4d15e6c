package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamal-hamza/webpaste/internal/core/domain"
)

func TestParseLinkStyle(t *testing.T) {
	tests := []struct {
		in   string
		want LinkStyle
	}{
		{"", LinkStyleWikilink},
		{"wikilink", LinkStyleWikilink},
		{"Markdown", LinkStyleMarkdown},
		{" latex ", LinkStyleLatex},
	}
	for _, tt := range tests {
		got, err := ParseLinkStyle(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseLinkStyle("html")
	assert.Error(t, err)
}

func TestLinkFormatter_GenerateLink(t *testing.T) {
	asset := &domain.StoredAsset{
		Name: "Notes 20240307090502.webp",
		Path: "attachments/Notes 20240307090502.webp",
	}

	tests := []struct {
		style  LinkStyle
		source string
		want   string
	}{
		{LinkStyleWikilink, "journal/Notes.md", "![[Notes 20240307090502.webp]]"},
		{LinkStyleMarkdown, "Notes.md", "![Notes 20240307090502](attachments/Notes%2020240307090502.webp)"},
		{LinkStyleMarkdown, "journal/Notes.md", "![Notes 20240307090502](../attachments/Notes%2020240307090502.webp)"},
		{LinkStyleLatex, "Notes.md", `\includegraphics[width=0.8\linewidth]{attachments/Notes 20240307090502.webp}`},
	}

	for _, tt := range tests {
		t.Run(string(tt.style)+" "+tt.source, func(t *testing.T) {
			link := NewLinkFormatter(tt.style).GenerateLink(asset, tt.source)
			assert.Equal(t, tt.want, link)
			assert.Contains(t, link, asset.Basename())
		})
	}
}

func TestLinkFormatter_SameFolder(t *testing.T) {
	asset := &domain.StoredAsset{Name: "a (1).webp", Path: "journal/a (1).webp"}
	link := NewLinkFormatter(LinkStyleMarkdown).GenerateLink(asset, "journal/Notes.md")
	assert.Equal(t, "![a (1)](a%20%281%29.webp)", link)
}

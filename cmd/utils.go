package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"

	"github.com/kamal-hamza/webpaste/internal/core/domain"
	"github.com/kamal-hamza/webpaste/pkg/vault"
)

// maxPreviewBytes bounds how much of a note the picker highlights
const maxPreviewBytes = 16 << 10

// GetPreferredEditor returns the editor command from config, env, or default
func GetPreferredEditor() string {
	if appConfig != nil && appConfig.Editor != "" {
		return appConfig.Editor
	}
	if env := os.Getenv("EDITOR"); env != "" {
		return env
	}
	return "vi"
}

// runEditor opens path in the preferred editor attached to the terminal
func runEditor(path string) error {
	c := exec.Command(GetPreferredEditor(), path)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.Run()
}

// resolveNote turns a user query into a document
// The query may be a path to a note (absolute, working-directory relative or
// vault relative) or a case-insensitive fragment of a note path.
// A query that matches nothing but ends in .md names a new note.
func resolveNote(v *vault.Vault, query string) (*domain.Document, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty note query")
	}

	if info, err := os.Stat(query); err == nil && !info.IsDir() {
		rel, err := v.Rel(query)
		if err != nil {
			return nil, err
		}
		return domain.NewDocument(rel)
	}

	if abs, err := v.Abs(filepath.ToSlash(query)); err == nil {
		if info, err := os.Stat(abs); err == nil && !info.IsDir() {
			return domain.NewDocument(filepath.ToSlash(query))
		}
	}

	notes, err := v.ListNotes()
	if err != nil {
		return nil, err
	}
	if match := matchNote(notes, query); match != "" {
		return domain.NewDocument(match)
	}

	if strings.EqualFold(filepath.Ext(query), ".md") {
		return domain.NewDocument(filepath.ToSlash(query))
	}
	return nil, fmt.Errorf("no note matches %q", query)
}

// matchNote prefers an exact name match, then the shortest path containing query
func matchNote(notes []string, query string) string {
	q := strings.ToLower(strings.TrimSuffix(filepath.ToSlash(query), ".md"))

	best := ""
	for _, n := range notes {
		lower := strings.ToLower(strings.TrimSuffix(n, filepath.Ext(n)))
		if lower == q || strings.ToLower(filepath.Base(lower)) == q {
			return n
		}
		if strings.Contains(lower, q) && (best == "" || len(n) < len(best)) {
			best = n
		}
	}
	return best
}

// pickNote lets the user choose a note interactively
func pickNote(v *vault.Vault) (*domain.Document, error) {
	notes, err := v.ListNotes()
	if err != nil {
		return nil, err
	}
	if len(notes) == 0 {
		return nil, fmt.Errorf("no notes in %s", v.RootPath)
	}

	idx, err := fuzzyfinder.Find(
		notes,
		func(i int) string { return notes[i] },
		fuzzyfinder.WithPromptString("note> "),
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			return previewNote(v, notes[i])
		}),
	)
	if err != nil {
		return nil, err
	}
	return domain.NewDocument(notes[idx])
}

func previewNote(v *vault.Vault, rel string) string {
	abs, err := v.Abs(rel)
	if err != nil {
		return ""
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return err.Error()
	}
	if len(data) > maxPreviewBytes {
		data = data[:maxPreviewBytes]
	}
	return highlightMarkdown(string(data))
}

// highlightMarkdown colours note source for terminal previews
func highlightMarkdown(content string) string {
	lexer := lexers.Get("markdown")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, content)
	if err != nil {
		return content
	}

	var buf strings.Builder
	if err := formatters.TTY16m.Format(&buf, style, iterator); err != nil {
		return content
	}
	return buf.String()
}

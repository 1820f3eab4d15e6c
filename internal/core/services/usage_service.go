package services

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/kamal-hamza/webpaste/internal/core/domain"
)

// UsageService finds the notes that reference stored assets
type UsageService struct {
	vaultRoot string
}

// NewUsageService creates a scanner over the notes under vaultRoot
func NewUsageService(vaultRoot string) *UsageService {
	return &UsageService{vaultRoot: vaultRoot}
}

// AssetUsage is one line of a note that references an asset
type AssetUsage struct {
	Note    string // Vault-relative note path
	LineNum int
}

type usageNeedle struct {
	path  string
	forms []string
}

// Characters that may surround a file name inside a wikilink, markdown link or
// latex include. Spaces are not among them: asset names contain spaces.
const (
	linkOpeners = "[(/{\"'<|="
	linkClosers = "])}\"'>|#?"
)

// Execute scans notes (vault-relative paths) and returns the references to each
// asset, keyed by asset path. Assets nobody references are absent from the result.
// Both the plain file name and its link-escaped form count as a reference.
func (s *UsageService) Execute(ctx context.Context, notes []string, assets []domain.Asset) (map[string][]AssetUsage, error) {
	needles := make([]usageNeedle, 0, len(assets))
	for _, a := range assets {
		forms := []string{a.Filename}
		if escaped := escapeLinkPath(a.Filename); escaped != a.Filename {
			forms = append(forms, escaped)
		}
		needles = append(needles, usageNeedle{path: a.Path, forms: forms})
	}

	numWorkers := runtime.NumCPU()
	jobs := make(chan string, len(notes))
	results := make(chan map[string][]AssetUsage, len(notes))
	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for note := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}

				if found := s.scanNote(note, needles); len(found) > 0 {
					results <- found
				}
			}
		}()
	}

	for _, n := range notes {
		jobs <- n
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	usage := make(map[string][]AssetUsage)
	for found := range results {
		for path, refs := range found {
			usage[path] = append(usage[path], refs...)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, refs := range usage {
		sort.Slice(refs, func(i, j int) bool {
			if refs[i].Note != refs[j].Note {
				return refs[i].Note < refs[j].Note
			}
			return refs[i].LineNum < refs[j].LineNum
		})
	}
	return usage, nil
}

func (s *UsageService) scanNote(note string, needles []usageNeedle) map[string][]AssetUsage {
	file, err := os.Open(filepath.Join(s.vaultRoot, filepath.FromSlash(note)))
	if err != nil {
		return nil
	}
	defer file.Close()

	found := make(map[string][]AssetUsage)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		text := scanner.Text()

		for _, n := range needles {
			for _, form := range n.forms {
				if containsLink(text, form) {
					found[n.path] = append(found[n.path], AssetUsage{Note: note, LineNum: lineNum})
					break
				}
			}
		}
	}

	return found
}

// containsLink reports whether name occurs in text as a whole link target
// "Notes 1.webp" is found in "![[Notes 1.webp]]" but not in "![[Old Notes 1.webp]]"
func containsLink(text, name string) bool {
	if name == "" {
		return false
	}
	for from := 0; from <= len(text)-len(name); {
		i := strings.Index(text[from:], name)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(name)

		openOK := start == 0 || strings.IndexByte(linkOpeners, text[start-1]) >= 0
		closeOK := end == len(text) || strings.IndexByte(linkClosers, text[end]) >= 0
		if openOK && closeOK {
			return true
		}
		from = start + 1
	}
	return false
}

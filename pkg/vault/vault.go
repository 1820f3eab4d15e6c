package vault

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MetaDir holds webpaste's own files inside the vault
const MetaDir = ".webpaste"

// Vault represents the notes directory webpaste pastes into
type Vault struct {
	RootPath     string
	MetaPath     string
	DataPath     string // Opaque settings blob (quality)
	ManifestPath string // Stored asset manifest
	ConfigPath   string // Global configuration (outside the vault)
}

// New creates a Vault rooted at root
// An empty root falls back to $WEBPASTE_VAULT, then XDG data directories
func New(root string) (*Vault, error) {
	if root == "" {
		r, err := getVaultRoot()
		if err != nil {
			return nil, fmt.Errorf("failed to determine vault root: %w", err)
		}
		root = r
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve vault root: %w", err)
	}

	configPath, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to determine config path: %w", err)
	}

	meta := filepath.Join(abs, MetaDir)
	return &Vault{
		RootPath:     abs,
		MetaPath:     meta,
		DataPath:     filepath.Join(meta, "data.yaml"),
		ManifestPath: filepath.Join(meta, "manifest.json"),
		ConfigPath:   configPath,
	}, nil
}

// getVaultRoot returns the vault root directory path
// Follows XDG Base Directory specification on Unix and uses AppData on Windows
func getVaultRoot() (string, error) {
	if env := os.Getenv("WEBPASTE_VAULT"); env != "" {
		return env, nil
	}

	// Check XDG_DATA_HOME first (Unix-like systems)
	if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
		return filepath.Join(xdgDataHome, "webpaste"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	// Check if we're on Windows by looking for APPDATA
	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, "webpaste"), nil
	}

	// Fall back to ~/.local/share/webpaste (Unix-like systems)
	return filepath.Join(homeDir, ".local", "share", "webpaste"), nil
}

// GetConfigPath returns the global config file location
func GetConfigPath() (string, error) {
	// Check XDG_CONFIG_HOME first (Unix-like systems)
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "webpaste", "config.yaml"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, "webpaste-config", "config.yaml"), nil
	}

	// Fall back to ~/.config/webpaste/config.yaml (Unix-like systems)
	return filepath.Join(homeDir, ".config", "webpaste", "config.yaml"), nil
}

// Initialize creates the vault directory structure if it doesn't exist
func (v *Vault) Initialize() error {
	for _, dir := range []string{v.RootPath, v.MetaPath} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Exists checks if the vault has been initialized
func (v *Vault) Exists() bool {
	info, err := os.Stat(v.RootPath)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// Abs converts a vault-relative slash path to an absolute filesystem path
// Paths that would leave the vault are rejected
func (v *Vault) Abs(rel string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(strings.TrimPrefix(rel, "/")))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return "", fmt.Errorf("path escapes the vault: %s", rel)
	}
	return filepath.Join(v.RootPath, clean), nil
}

// Rel converts an absolute (or working-directory relative) path into a vault-relative slash path
func (v *Vault) Rel(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(v.RootPath, abs)
	if err != nil {
		return "", fmt.Errorf("%s is not inside the vault: %w", p, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is not inside the vault", p)
	}
	return filepath.ToSlash(rel), nil
}

// ListNotes returns the vault-relative paths of all Markdown notes, sorted
// Hidden files and folders are skipped
func (v *Vault) ListNotes() ([]string, error) {
	var notes []string
	err := filepath.WalkDir(v.RootPath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if p != v.RootPath && strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(name), ".md") {
			return nil
		}
		rel, err := filepath.Rel(v.RootPath, p)
		if err != nil {
			return err
		}
		notes = append(notes, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	sort.Strings(notes)
	return notes, nil
}

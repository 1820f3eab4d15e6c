package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Vault
	VaultPath string `yaml:"vault_path"`

	// Attachment placement
	// "" or "/"  : vault root
	// "./"       : same folder as the note
	// "./<sub>"  : sub folder next to the note
	// "<folder>" : vault-relative folder
	AttachmentFolder string `yaml:"attachment_folder"`
	UseAttachmentAPI bool   `yaml:"use_attachment_api"`

	// Link insertion
	LinkStyle    string `yaml:"link_style"`
	CursorMarker string `yaml:"cursor_marker"`

	// Watch Settings
	InboxDir          string  `yaml:"inbox_dir"`
	WatchDebounceMS   int     `yaml:"watch_debounce_ms"`
	WatchRate         float64 `yaml:"watch_rate"` // Imports per second
	DeleteAfterImport bool    `yaml:"delete_after_import"`

	// UI Settings
	ColorTheme string `yaml:"color_theme"`
	Editor     string `yaml:"editor"`
}

// DefaultConfig returns a Config struct with default values
func DefaultConfig() *Config {
	return &Config{
		VaultPath:         "",
		AttachmentFolder:  "",
		UseAttachmentAPI:  true,
		LinkStyle:         "wikilink",
		CursorMarker:      "{{cursor}}",
		InboxDir:          "",
		WatchDebounceMS:   300,
		WatchRate:         4,
		DeleteAfterImport: false,
		ColorTheme:        "auto",
		Editor:            "",
	}
}

// Load reads configuration from the specified file path
func Load(path string) (*Config, error) {
	// Start with default config
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		// If file doesn't exist, return default config (not an error)
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply defaults for essential values if missing
	if cfg.LinkStyle == "" || !isValidLinkStyle(cfg.LinkStyle) {
		cfg.LinkStyle = "wikilink"
	}
	if cfg.WatchDebounceMS <= 0 {
		cfg.WatchDebounceMS = 300
	}
	if cfg.WatchRate <= 0 {
		cfg.WatchRate = 4
	}
	if cfg.ColorTheme == "" {
		cfg.ColorTheme = "auto"
	}
	cfg.VaultPath = expandHome(cfg.VaultPath)
	cfg.InboxDir = expandHome(cfg.InboxDir)

	return cfg, nil
}

// Save persists the current configuration to the specified file path
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// isValidLinkStyle checks if the link style is valid
func isValidLinkStyle(style string) bool {
	validStyles := []string{"wikilink", "markdown", "latex"}
	for _, valid := range validStyles {
		if strings.EqualFold(style, valid) {
			return true
		}
	}
	return false
}

// expandHome replaces a leading "~/" with the user's home directory
func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

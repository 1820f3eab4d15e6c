package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/webpaste/pkg/config"
	"github.com/kamal-hamza/webpaste/pkg/ui"
	"github.com/kamal-hamza/webpaste/pkg/vault"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a webpaste vault",
	Long: `Initialize a vault and write a default configuration.

The vault is the folder holding your Markdown notes. webpaste keeps its
own data (image quality, asset manifest) in a .webpaste/ folder inside it.
The configuration file lives in your user config directory.`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	v, err := openVault(cfg)
	if err != nil {
		fmt.Fprintln(out, ui.FormatError("Failed to determine vault location"))
		return err
	}

	if _, err := os.Stat(v.MetaPath); err == nil {
		fmt.Fprintln(out, ui.FormatWarning("Vault already initialized"))
		fmt.Fprintln(out, ui.FormatMuted("Location: "+v.RootPath))
		return nil
	}

	if err := v.Initialize(); err != nil {
		fmt.Fprintln(out, ui.FormatError("Failed to initialize vault"))
		return err
	}

	if err := createDefaultConfig(v); err != nil {
		// Config is optional
		fmt.Fprintln(out, ui.FormatWarning("Failed to create default config: "+err.Error()))
	}

	fmt.Fprintln(out, ui.FormatSuccess("Vault initialized"))
	fmt.Fprintln(out)
	fmt.Fprintln(out, ui.RenderKeyValue("Location", v.RootPath))
	fmt.Fprintln(out, ui.RenderKeyValue("Config", v.ConfigPath))
	fmt.Fprintln(out)
	fmt.Fprintln(out, ui.FormatInfo("Next steps:"))
	fmt.Fprintln(out, ui.FormatMuted("  1. Paste an image:      webpaste paste <note> image.png"))
	fmt.Fprintln(out, ui.FormatMuted("  2. Watch an inbox:      webpaste watch <note> --inbox ~/Pictures/Screenshots"))
	fmt.Fprintln(out, ui.FormatMuted("  3. Tune the quality:    webpaste quality"))

	return nil
}

// createDefaultConfig writes a commented config unless one exists
func createDefaultConfig(v *vault.Vault) error {
	if _, err := os.Stat(v.ConfigPath); err == nil {
		return nil
	}

	d := config.DefaultConfig()
	content := fmt.Sprintf(`# webpaste configuration
# Every setting is optional

# Vault used when --vault is not given
vault_path: %q

# Where pasted images go:
#   ""        vault root
#   "./"      next to the note
#   "./img"   sub folder next to the note
#   "assets"  a folder in the vault
attachment_folder: %q

# Set to false to always place images next to the note
use_attachment_api: %t

# wikilink (![[name.webp]]), markdown (![name](path.webp)) or latex
link_style: %s

# Text replaced by the link; without it the link is appended
cursor_marker: %q

# Folder watched by 'webpaste watch'
inbox_dir: ""
watch_debounce_ms: %d
watch_rate: %g
delete_after_import: %t

# auto, dark or light
color_theme: %s

# Editor for 'webpaste config' (uses $EDITOR if not set)
# editor: ""
`, v.RootPath, d.AttachmentFolder, d.UseAttachmentAPI, d.LinkStyle, d.CursorMarker, d.WatchDebounceMS, d.WatchRate, d.DeleteAfterImport, d.ColorTheme)

	if err := os.MkdirAll(filepath.Dir(v.ConfigPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(v.ConfigPath, []byte(content), 0644)
}

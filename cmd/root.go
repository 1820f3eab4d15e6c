package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/webpaste/internal/adapters/codec"
	"github.com/kamal-hamza/webpaste/internal/adapters/repository"
	"github.com/kamal-hamza/webpaste/internal/core/ports"
	"github.com/kamal-hamza/webpaste/internal/core/services"
	"github.com/kamal-hamza/webpaste/internal/logger"
	"github.com/kamal-hamza/webpaste/pkg/config"
	"github.com/kamal-hamza/webpaste/pkg/ui"
	"github.com/kamal-hamza/webpaste/pkg/vault"
)

var (
	appVault  *vault.Vault
	appConfig *config.Config

	// Storage
	vaultStorage *repository.VaultStorage
	assetRepo    *repository.FileAssetRepository

	// Services
	settingsService *services.SettingsService
	pasteService    *services.PasteService

	notifier *ui.ConsoleNotifier

	// Global flags
	vaultFlag   string
	verboseFlag bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "webpaste",
	Short: "Paste images into notes as WebP",
	Long: ui.StyleTitle.Render("webpaste") + " - paste images into your notes as WebP\n\n" +
		"Every pasted image is converted to lossy WebP, stored next to your notes\n" +
		"under a collision-free name and linked at the cursor.",
	PersistentPreRunE: initializeApp,
	SilenceUsage:      true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&vaultFlag, "vault", "", "Vault root (default: config vault_path, $WEBPASTE_VAULT or the XDG data dir)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Print pipeline diagnostics")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(pasteCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(qualityCmd)
	rootCmd.AddCommand(assetsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the global config and applies the UI theme
func loadConfig() (*config.Config, error) {
	path, err := vault.GetConfigPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	ui.SetTheme(cfg.ColorTheme)
	return cfg, nil
}

// openVault resolves the vault root from the flag, then the config
func openVault(cfg *config.Config) (*vault.Vault, error) {
	root := vaultFlag
	if root == "" {
		root = cfg.VaultPath
	}
	return vault.New(root)
}

// initializeApp initializes the application components
func initializeApp(cmd *cobra.Command, args []string) error {
	logger.SetVerbose(verboseFlag)

	switch cmd.Name() {
	case "init", "version", "help":
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	appConfig = cfg

	v, err := openVault(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize vault: %w", err)
	}
	appVault = v

	if cmd.Name() == "config" {
		return nil
	}

	if !appVault.Exists() {
		fmt.Fprintln(cmd.ErrOrStderr(), ui.FormatError("Vault not found: "+appVault.RootPath))
		fmt.Fprintln(cmd.ErrOrStderr(), ui.FormatInfo("Run 'webpaste init' to initialize the vault"))
		return fmt.Errorf("vault not initialized")
	}

	return wireServices(cmd.Context(), cmd)
}

func wireServices(ctx context.Context, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}

	vaultStorage = repository.NewVaultStorage(appVault, appConfig.AttachmentFolder)
	var storage ports.Storage = vaultStorage
	if !appConfig.UseAttachmentAPI {
		storage = repository.WithoutAttachmentAPI(vaultStorage)
	}

	assetRepo = repository.NewFileAssetRepository(appVault)

	settingsService = services.NewSettingsService(repository.NewFileSettingsStore(appVault.DataPath))
	if err := settingsService.Load(ctx); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), ui.FormatWarning("Settings unreadable, using defaults: "+err.Error()))
	}

	notifier = ui.NewConsoleNotifier(cmd.OutOrStdout(), cmd.ErrOrStderr())

	style, err := services.ParseLinkStyle(appConfig.LinkStyle)
	if err != nil {
		return err
	}

	pasteService = services.NewPasteService(
		storage,
		services.NewTranscoder(codec.NewWebPEncoder()),
		settingsService,
		notifier,
	)
	pasteService.SetLinkGenerator(services.NewLinkFormatter(style))
	pasteService.SetAssetRepository(assetRepo)

	logger.Debug("vault %s, path strategy %s, link style %s", appVault.RootPath, pasteService.Paths().Strategy(), style)
	return nil
}

// getContext returns a context for operations
func getContext() context.Context {
	return context.Background()
}

package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/atotto/clipboard"
	"github.com/dustin/go-humanize"
	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/webpaste/internal/core/domain"
	"github.com/kamal-hamza/webpaste/internal/core/services"
	"github.com/kamal-hamza/webpaste/pkg/ui"
)

var (
	assetsPick    bool
	assetsPrune   bool
	assetsOrphans bool
)

var assetsCmd = &cobra.Command{
	Use:   "assets [query]",
	Short: "List pasted images",
	Long: `List the images webpaste has stored, newest first.

The query matches file names, paths and the note an image was pasted into.
Use --pick to choose one interactively and copy its link to the clipboard.
Use --prune to forget images whose files were deleted from the vault.
Use --orphans to list only images no note links to anymore.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAssets,
}

func init() {
	assetsCmd.Flags().BoolVarP(&assetsPick, "pick", "p", false, "Pick an asset and copy its link")
	assetsCmd.Flags().BoolVar(&assetsPrune, "prune", false, "Remove records of missing files")
	assetsCmd.Flags().BoolVar(&assetsOrphans, "orphans", false, "Only list assets no note links to")
}

func runAssets(cmd *cobra.Command, args []string) error {
	ctx := getContext()
	query := ""
	if len(args) > 0 {
		query = args[0]
	}

	assets, err := assetRepo.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to read asset manifest: %w", err)
	}

	if assetsPrune {
		kept := assets[:0]
		removed := 0
		for _, a := range assets {
			abs, err := appVault.Abs(a.Path)
			if err == nil {
				if _, statErr := os.Stat(abs); statErr == nil {
					kept = append(kept, a)
					continue
				}
			}
			if err := assetRepo.Delete(ctx, a.Path); err != nil {
				return err
			}
			removed++
		}
		assets = kept
		fmt.Fprintln(cmd.OutOrStdout(), ui.FormatInfo(fmt.Sprintf("Pruned %d missing asset(s)", removed)))
	}

	notes, err := appVault.ListNotes()
	if err != nil {
		return err
	}
	usage, err := services.NewUsageService(appVault.RootPath).Execute(ctx, notes, assets)
	if err != nil {
		return err
	}
	if assetsOrphans {
		assets = orphanAssets(assets, usage)
	}

	if len(assets) == 0 {
		if query != "" {
			fmt.Fprintln(cmd.OutOrStdout(), ui.FormatWarning("No assets match: "+query))
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), ui.FormatInfo("No assets yet. Paste an image with 'webpaste paste'"))
		}
		return nil
	}

	if assetsPick {
		return pickAsset(cmd, assets, usage)
	}

	fmt.Fprint(cmd.OutOrStdout(), renderAssetTable(assets, usage, time.Now()))
	fmt.Fprintln(cmd.OutOrStdout(), ui.FormatMuted(fmt.Sprintf("%d asset(s)", len(assets))))
	return nil
}

func orphanAssets(assets []domain.Asset, usage map[string][]services.AssetUsage) []domain.Asset {
	var orphans []domain.Asset
	for _, a := range assets {
		if len(usage[a.Path]) == 0 {
			orphans = append(orphans, a)
		}
	}
	return orphans
}

func renderAssetTable(assets []domain.Asset, usage map[string][]services.AssetUsage, now time.Time) string {
	tbl := ui.NewTable(
		ui.TableColumn{Header: "NAME", MaxWidth: 40},
		ui.TableColumn{Header: "NOTE", MaxWidth: 30},
		ui.TableColumn{Header: "SIZE", Align: ui.AlignRight},
		ui.TableColumn{Header: "SAVED", Align: ui.AlignRight},
		ui.TableColumn{Header: "Q", Align: ui.AlignRight},
		ui.TableColumn{Header: "LINKS", Align: ui.AlignRight},
		ui.TableColumn{Header: "STORED"},
	)
	for _, a := range assets {
		tbl.AddRow(
			a.Filename,
			a.Document,
			humanBytes(a.Size),
			savedRatio(a.SourceSize, a.Size),
			fmt.Sprintf("%d", a.Quality),
			fmt.Sprintf("%d", len(usage[a.Path])),
			humanize.RelTime(a.StoredAt, now, "ago", "from now"),
		)
	}
	return tbl.Render()
}

func pickAsset(cmd *cobra.Command, assets []domain.Asset, usage map[string][]services.AssetUsage) error {
	idx, err := fuzzyfinder.Find(
		assets,
		func(i int) string {
			return assets[i].Filename + " " + assets[i].Document
		},
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			a := assets[i]
			preview := fmt.Sprintf("File: %s\nPath: %s\nNote: %s\nSource: %s, %s\nStored: %s, %s (quality %d)\nSHA-256: %s\n",
				a.Filename,
				a.Path,
				a.Document,
				a.SourceMime, humanBytes(a.SourceSize),
				humanBytes(a.Size), humanize.Time(a.StoredAt), a.Quality,
				a.Hash,
			)
			refs := usage[a.Path]
			if len(refs) == 0 {
				return preview + "\nNot linked from any note"
			}
			preview += "\nLinked from:\n"
			for _, r := range refs {
				preview += fmt.Sprintf("  %s:%d\n", r.Note, r.LineNum)
			}
			return preview
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil
		}
		return err
	}

	a := assets[idx]
	style, err := services.ParseLinkStyle(appConfig.LinkStyle)
	if err != nil {
		return err
	}
	link := services.NewLinkFormatter(style).GenerateLink(&domain.StoredAsset{Name: a.Filename, Path: a.Path, Size: a.Size}, a.Document)

	fmt.Fprintln(cmd.OutOrStdout(), ui.FormatSuccess("Selected: "+a.Path))
	fmt.Fprintln(cmd.OutOrStdout(), ui.FormatBold(link))
	if err := clipboard.WriteAll(link); err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), ui.FormatMuted("(Clipboard access failed, please copy manually)"))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.FormatMuted("(Copied to clipboard)"))
	return nil
}

func humanBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

// savedRatio is the size reduction relative to the pasted source
func savedRatio(source, stored int64) string {
	if source <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.0f%%", (1-float64(stored)/float64(source))*100)
}

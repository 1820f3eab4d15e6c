package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kamal-hamza/webpaste/internal/adapters/editor"
	"github.com/kamal-hamza/webpaste/internal/core/domain"
	"github.com/kamal-hamza/webpaste/internal/core/ports"
	"github.com/kamal-hamza/webpaste/pkg/ui"
)

var (
	pasteClipboard bool
	pasteCursor    string
	pasteKeep      bool
)

var pasteCmd = &cobra.Command{
	Use:   "paste [note] [image|-]",
	Short: "Paste an image into a note as WebP",
	Long: `Convert an image to lossy WebP, store it in the vault and link it from a note.

The link is inserted at the first cursor marker ({{cursor}} by default) or
appended to the note. Images that are already WebP are left alone.

Use "-" (or omit the image) to read the image from stdin.
Without a note argument, an interactive picker is shown.

Examples:
  webpaste paste Journal ~/Downloads/graph.png
  grim -g "$(slurp)" - | webpaste paste projects/plan.md -
  webpaste paste --clipboard Journal shot.jpg`,
	Args: cobra.MaximumNArgs(2),
	RunE: runPaste,
}

func init() {
	pasteCmd.Flags().BoolVarP(&pasteClipboard, "clipboard", "c", false, "Copy the link to the clipboard instead of editing the note")
	pasteCmd.Flags().StringVar(&pasteCursor, "cursor", "", "Cursor marker to replace (default from config)")
	pasteCmd.Flags().BoolVarP(&pasteKeep, "keep-cursor", "k", false, "Keep the cursor marker after the inserted link")
}

func runPaste(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	var (
		doc *domain.Document
		err error
	)
	if len(args) > 0 {
		doc, err = resolveNote(appVault, args[0])
	} else {
		doc, err = pickNote(appVault)
	}
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil
		}
		return err
	}

	source := "-"
	if len(args) > 1 {
		source = args[1]
	}
	name, data, err := readImage(cmd.InOrStdin(), source)
	if err != nil {
		return err
	}

	ed, err := editorFor(doc)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), ui.FormatImage(fmt.Sprintf("Pasting %s into %s...", name, doc.Path)))

	evt := newFilePasteEvent(name, data)
	job, claimed := pasteService.HandlePaste(ctx, evt, doc, ed)
	if !claimed {
		mimeType := evt.Files()[0].MimeType
		if mimeType == domain.TargetMimeType {
			return fmt.Errorf("%s is already WebP", name)
		}
		return fmt.Errorf("%s is not an image (%s)", name, mimeType)
	}

	asset, err := job.Wait()
	if err != nil {
		return err
	}

	if pasteClipboard {
		fmt.Fprintln(cmd.OutOrStdout(), ui.FormatInfo("Link copied to clipboard"))
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.FormatMuted(fmt.Sprintf("%s (%s)", asset.Path, ui.FormatBold(humanBytes(asset.Size)))))
	return nil
}

// editorFor returns where the link goes: the note file or the clipboard
func editorFor(doc *domain.Document) (ports.Editor, error) {
	if pasteClipboard {
		return editor.NewClipboardEditor(), nil
	}

	abs, err := appVault.Abs(doc.Path)
	if err != nil {
		return nil, err
	}
	marker := pasteCursor
	if marker == "" {
		marker = appConfig.CursorMarker
	}
	return editor.NewNoteEditor(abs, marker).KeepCursor(pasteKeep), nil
}

// readImage loads the image from a file, or from stdin for "-"
func readImage(stdin io.Reader, source string) (string, []byte, error) {
	if source == "-" {
		if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return "", nil, fmt.Errorf("no image given: pass a file or pipe one on stdin")
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		if len(data) == 0 {
			return "", nil, fmt.Errorf("no image data on stdin")
		}
		return "stdin", data, nil
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read image: %w", err)
	}
	return filepath.Base(source), data, nil
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/kamal-hamza/webpaste/internal/adapters/editor"
	"github.com/kamal-hamza/webpaste/internal/core/domain"
	"github.com/kamal-hamza/webpaste/internal/logger"
	"github.com/kamal-hamza/webpaste/pkg/ui"
)

var (
	watchInbox string
	watchQuiet bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [note]",
	Short: "Paste every image dropped into an inbox folder",
	Long: `Watch an inbox folder and paste every new image into a note.

Point your screenshot tool at the inbox (inbox_dir in config, or --inbox).
Each image becomes a paste into the chosen note: it is converted to WebP,
stored in the vault and linked at the cursor marker. Images are handled
concurrently; a failing image is reported and the watcher keeps going.

Set delete_after_import in config to remove imported files from the inbox.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchInbox, "inbox", "i", "", "Folder to watch (default: inbox_dir from config)")
	watchCmd.Flags().BoolVarP(&watchQuiet, "quiet", "q", false, "Only report failures")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(getContext(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	inbox := watchInbox
	if inbox == "" {
		inbox = appConfig.InboxDir
	}
	if inbox == "" {
		return fmt.Errorf("no inbox folder: set inbox_dir in config or pass --inbox")
	}

	doc, err := watchTarget(args)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil
		}
		return err
	}

	abs, err := appVault.Abs(doc.Path)
	if err != nil {
		return err
	}
	// Later images follow earlier ones instead of landing before them
	ed := editor.NewNoteEditor(abs, appConfig.CursorMarker).KeepCursor(true)

	out := cmd.OutOrStdout()
	if watchQuiet {
		out = io.Discard
	}
	logger.SetTimestamps(true)

	w := newInboxWatcher(inbox, time.Duration(appConfig.WatchDebounceMS)*time.Millisecond, appConfig.WatchRate, out)
	w.deleteAfter = appConfig.DeleteAfterImport
	w.handle = func(ctx context.Context, name string, data []byte) (pasteWaiter, bool) {
		job, claimed := pasteService.HandlePaste(ctx, newFilePasteEvent(name, data), doc, ed)
		if !claimed {
			return nil, false
		}
		return job, true
	}

	fmt.Fprintln(out, ui.FormatWatch("Watching "+inbox))
	fmt.Fprintln(out, ui.FormatMuted("Pasting into: "+doc.Path))
	fmt.Fprintln(out, ui.FormatMuted("Press Ctrl+C to stop"))
	fmt.Fprintln(out)

	if err := w.Run(ctx); err != nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, ui.FormatMuted("Watcher stopped"))
	return nil
}

func watchTarget(args []string) (*domain.Document, error) {
	if len(args) > 0 {
		return resolveNote(appVault, args[0])
	}
	return pickNote(appVault)
}

// pasteWaiter is the handle of a running paste
type pasteWaiter interface {
	Wait() (*domain.StoredAsset, error)
}

// inboxWatcher turns files appearing in a folder into pastes
type inboxWatcher struct {
	dir         string
	debounce    time.Duration
	limiter     *rate.Limiter
	deleteAfter bool
	out         io.Writer
	handle      func(ctx context.Context, name string, data []byte) (pasteWaiter, bool)

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
	wg      sync.WaitGroup
}

func newInboxWatcher(dir string, debounce time.Duration, perSecond float64, out io.Writer) *inboxWatcher {
	burst := int(math.Ceil(perSecond))
	if burst < 1 {
		burst = 1
	}
	return &inboxWatcher{
		dir:      dir,
		debounce: debounce,
		limiter:  rate.NewLimiter(rate.Limit(perSecond), burst),
		out:      out,
		timers:   make(map[string]*time.Timer),
	}
}

// Run blocks until ctx is done, then waits for pastes in flight
func (w *inboxWatcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("failed to create inbox: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch inbox: %w", err)
	}

	defer w.wg.Wait()
	defer w.stopTimers()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if ignoredInboxFile(event.Name) {
				continue
			}
			w.schedule(ctx, event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error: %v", err)

		case <-ctx.Done():
			return nil
		}
	}
}

// schedule (re)starts the quiet period of a file; writers often touch a file several times
func (w *inboxWatcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	if w.stopped {
		return
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		if w.stopped {
			w.mu.Unlock()
			return
		}
		delete(w.timers, path)
		w.wg.Add(1)
		w.mu.Unlock()

		go func() {
			defer w.wg.Done()
			w.process(ctx, path)
		}()
	})
}

func (w *inboxWatcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = true
	for p, t := range w.timers {
		t.Stop()
		delete(w.timers, p)
	}
}

func (w *inboxWatcher) process(ctx context.Context, path string) {
	if err := w.limiter.Wait(ctx); err != nil {
		return
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("failed to read %s: %v", path, err)
		return
	}
	if len(data) == 0 {
		return
	}

	name := filepath.Base(path)
	job, claimed := w.handle(ctx, name, data)
	if !claimed {
		logger.Debug("skipping %s: not a convertible image", name)
		return
	}
	fmt.Fprintln(w.out, ui.FormatImage("Importing "+name))

	// Failures are reported by the pipeline itself
	if _, err := job.Wait(); err != nil {
		return
	}

	if w.deleteAfter {
		if err := os.Remove(path); err != nil {
			logger.Warn("failed to remove %s: %v", path, err)
		}
	}
}

// ignoredInboxFile filters hidden, temporary and partial downloads
func ignoredInboxFile(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~") {
		return true
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".tmp", ".part", ".crdownload", ".download":
		return true
	}
	return false
}

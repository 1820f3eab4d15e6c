package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kamal-hamza/webpaste/internal/core/domain"
	"github.com/kamal-hamza/webpaste/pkg/ui"
)

var qualityCmd = &cobra.Command{
	Use:     "quality [1-100]",
	Aliases: []string{"q"},
	Short:   "Show or set the WebP image quality",
	Long: `Show or set the image quality used for every paste (1-100, default 85).

With a value, the quality is set directly. Without one, an interactive
slider is shown; every change is saved immediately.

Keys:
  ←/h  →/l    -1 / +1
  pgdn pgup   -10 / +10
  home end    1 / 100
  r           reset to 85
  q, enter    done`,
	Args: cobra.MaximumNArgs(1),
	RunE: runQuality,
}

// qualitySetter is the part of the settings service the slider drives
type qualitySetter interface {
	Quality() int
	SetQuality(ctx context.Context, q int) (int, error)
}

func runQuality(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	if len(args) == 1 {
		q, err := strconv.Atoi(strings.TrimSpace(args[0]))
		if err != nil {
			return fmt.Errorf("quality must be a whole number between %d and %d", domain.MinQuality, domain.MaxQuality)
		}
		applied, err := settingsService.SetQuality(ctx, q)
		if err != nil {
			return err
		}
		if applied != q {
			fmt.Fprintln(cmd.OutOrStdout(), ui.FormatWarning(fmt.Sprintf("%d is out of range, using %d", q, applied)))
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.FormatSuccess(fmt.Sprintf("Image quality set to %d", applied)))
		return nil
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(cmd.OutOrStdout(), settingsService.Quality())
		return nil
	}

	m := newQualityModel(ctx, settingsService)
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return fmt.Errorf("error running quality slider: %w", err)
	}
	if fm, ok := final.(qualityModel); ok && fm.err != nil {
		return fm.err
	}
	return nil
}

type qualityKeyMap struct {
	Down     key.Binding
	Up       key.Binding
	PageDown key.Binding
	PageUp   key.Binding
	Min      key.Binding
	Max      key.Binding
	Reset    key.Binding
	Quit     key.Binding
}

func (k qualityKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.PageDown, k.PageUp, k.Reset, k.Quit}
}

func (k qualityKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Down, k.Up, k.PageDown, k.PageUp},
		{k.Min, k.Max, k.Reset, k.Quit},
	}
}

var qualityKeys = qualityKeyMap{
	Down: key.NewBinding(
		key.WithKeys("left", "h", "down", "j"),
		key.WithHelp("←/h", "-1"),
	),
	Up: key.NewBinding(
		key.WithKeys("right", "l", "up", "k"),
		key.WithHelp("→/l", "+1"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown", "H"),
		key.WithHelp("pgdn", "-10"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup", "L"),
		key.WithHelp("pgup", "+10"),
	),
	Min: key.NewBinding(
		key.WithKeys("home", "0"),
		key.WithHelp("home", "min"),
	),
	Max: key.NewBinding(
		key.WithKeys("end", "$"),
		key.WithHelp("end", "max"),
	),
	Reset: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reset"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "enter", "ctrl+c"),
		key.WithHelp("q", "done"),
	),
}

// qualitySavedMsg reports the outcome of persisting one slider change
type qualitySavedMsg struct {
	quality int
	err     error
}

type qualityModel struct {
	ctx      context.Context
	settings qualitySetter
	value    int
	saved    int
	err      error
	bar      progress.Model
	help     help.Model
	keys     qualityKeyMap
	quitting bool
}

func newQualityModel(ctx context.Context, settings qualitySetter) qualityModel {
	q := settings.Quality()
	return qualityModel{
		ctx:      ctx,
		settings: settings,
		value:    q,
		saved:    q,
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage(), progress.WithWidth(40)),
		help:     help.New(),
		keys:     qualityKeys,
	}
}

func (m qualityModel) Init() tea.Cmd {
	return nil
}

func (m qualityModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		next := m.value
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Down):
			next--
		case key.Matches(msg, m.keys.Up):
			next++
		case key.Matches(msg, m.keys.PageDown):
			next -= 10
		case key.Matches(msg, m.keys.PageUp):
			next += 10
		case key.Matches(msg, m.keys.Min):
			next = domain.MinQuality
		case key.Matches(msg, m.keys.Max):
			next = domain.MaxQuality
		case key.Matches(msg, m.keys.Reset):
			next = domain.DefaultQuality
		default:
			return m, nil
		}

		next = domain.ClampQuality(next)
		if next == m.value {
			return m, nil
		}
		m.value = next
		return m, m.save(next)

	case qualitySavedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.saved = msg.quality
		return m, nil

	case tea.WindowSizeMsg:
		width := msg.Width - 12
		if width > 60 {
			width = 60
		}
		if width < 10 {
			width = 10
		}
		m.bar.Width = width
		m.help.Width = msg.Width
		return m, nil
	}

	return m, nil
}

// save persists one change; every slider movement is written through
func (m qualityModel) save(q int) tea.Cmd {
	return func() tea.Msg {
		applied, err := m.settings.SetQuality(m.ctx, q)
		return qualitySavedMsg{quality: applied, err: err}
	}
}

func (m qualityModel) View() string {
	var b strings.Builder

	b.WriteString(ui.FormatTitle("Image quality"))
	b.WriteString("\n\n")
	b.WriteString(m.bar.ViewAs(float64(m.value) / float64(domain.MaxQuality)))
	b.WriteString(" ")
	b.WriteString(ui.StyleSliderValue.Render(strconv.Itoa(m.value)))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(ui.FormatError("Not saved: " + m.err.Error()))
	case m.saved == m.value:
		b.WriteString(ui.FormatMuted("saved"))
	default:
		b.WriteString(ui.FormatMuted("saving..."))
	}
	b.WriteString("\n")

	if !m.quitting {
		b.WriteString(ui.StyleSliderHelp.Render(m.help.View(m.keys)))
		b.WriteString("\n")
	}
	return b.String()
}

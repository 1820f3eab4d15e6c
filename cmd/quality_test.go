package cmd

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kamal-hamza/webpaste/internal/core/ports/mocks"
	"github.com/kamal-hamza/webpaste/internal/core/services"
)

func newTestQualityModel(t *testing.T, blob string) (qualityModel, *services.SettingsService, *mocks.MockSettingsStore) {
	t.Helper()
	var data []byte
	if blob != "" {
		data = []byte(blob)
	}
	store := mocks.NewMockSettingsStore(data)
	svc := services.NewSettingsService(store)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return newQualityModel(context.Background(), svc), svc, store
}

// press sends a key and runs the resulting save command, like the program loop would
func press(t *testing.T, m qualityModel, k tea.KeyMsg) qualityModel {
	t.Helper()
	next, cmd := m.Update(k)
	m = next.(qualityModel)
	if cmd != nil {
		msg := cmd()
		if _, ok := msg.(qualitySavedMsg); ok {
			next, _ = m.Update(msg)
			m = next.(qualityModel)
		}
	}
	return m
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestQualityModelInitialValue(t *testing.T) {
	m, _, _ := newTestQualityModel(t, "quality: 60\n")
	if m.value != 60 || m.saved != 60 {
		t.Errorf("expected initial value 60, got value=%d saved=%d", m.value, m.saved)
	}

	m, _, _ = newTestQualityModel(t, "")
	if m.value != 85 {
		t.Errorf("expected default 85, got %d", m.value)
	}
}

func TestQualityModelPersistsEveryChange(t *testing.T) {
	m, svc, store := newTestQualityModel(t, "")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m = press(t, m, keyRunes("l"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyPgDown})

	if m.value != 77 {
		t.Errorf("value = %d, want 77", m.value)
	}
	if svc.Quality() != 77 || m.saved != 77 {
		t.Errorf("quality not applied: service=%d saved=%d", svc.Quality(), m.saved)
	}
	if store.Saves != 3 {
		t.Errorf("expected 3 saves, got %d", store.Saves)
	}
	if !strings.Contains(string(store.Data), "quality: 77") {
		t.Errorf("stored blob = %q", store.Data)
	}
}

func TestQualityModelClamps(t *testing.T) {
	m, svc, store := newTestQualityModel(t, "quality: 95\n")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyPgUp})
	if m.value != 100 {
		t.Errorf("value = %d, want 100", m.value)
	}

	// Already at the maximum: no change, no save
	saves := store.Saves
	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if store.Saves != saves {
		t.Error("unchanged value should not be saved")
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyHome})
	if m.value != 1 || svc.Quality() != 1 {
		t.Errorf("home should select 1, got %d", m.value)
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	if m.value != 1 {
		t.Errorf("value went below 1: %d", m.value)
	}

	m = press(t, m, keyRunes("r"))
	if m.value != 85 || svc.Quality() != 85 {
		t.Errorf("reset should select 85, got %d", m.value)
	}
}

func TestQualityModelSaveError(t *testing.T) {
	m, svc, store := newTestQualityModel(t, "")
	store.SaveErr = errors.New("read-only vault")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	if m.err == nil {
		t.Fatal("expected the save error to be kept")
	}
	if svc.Quality() != 84 {
		t.Errorf("value should apply even when saving fails, got %d", svc.Quality())
	}
	if !strings.Contains(m.View(), "read-only vault") {
		t.Error("view should show the save error")
	}

	store.SaveErr = nil
	m = press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	if m.err != nil {
		t.Errorf("error should clear after a successful save: %v", m.err)
	}
}

func TestQualityModelQuit(t *testing.T) {
	m, _, _ := newTestQualityModel(t, "")

	next, cmd := m.Update(keyRunes("q"))
	if !next.(qualityModel).quitting {
		t.Error("q should quit")
	}
	if cmd == nil {
		t.Fatal("expected tea.Quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected a QuitMsg")
	}
}

func TestQualityModelView(t *testing.T) {
	m, _, _ := newTestQualityModel(t, "quality: 42\n")
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	view := next.(qualityModel).View()

	for _, want := range []string{"Image quality", "42", "saved"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

package mocks

import (
	"context"
	"sync"

	"github.com/kamal-hamza/webpaste/internal/core/domain"
)

// --- MockPasteEvent ---

// MockPasteEvent is a paste event with a fixed file list
type MockPasteEvent struct {
	files     []domain.ClipboardFile
	mu        sync.Mutex
	prevented int
}

// NewMockPasteEvent creates an event carrying the given files
func NewMockPasteEvent(files ...domain.ClipboardFile) *MockPasteEvent {
	return &MockPasteEvent{files: files}
}

func (e *MockPasteEvent) Files() []domain.ClipboardFile {
	return e.files
}

func (e *MockPasteEvent) PreventDefault() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.prevented++
}

// Prevented reports whether PreventDefault was called
func (e *MockPasteEvent) Prevented() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.prevented > 0
}

// --- MockEditor ---

// MockEditor records every ReplaceSelection call
type MockEditor struct {
	mu         sync.Mutex
	Insertions []string
	Err        error
}

// NewMockEditor creates an editor that accepts every insertion
func NewMockEditor() *MockEditor {
	return &MockEditor{}
}

func (e *MockEditor) ReplaceSelection(ctx context.Context, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Err != nil {
		return e.Err
	}
	e.Insertions = append(e.Insertions, text)
	return nil
}

// Inserted returns a copy of the recorded insertions
func (e *MockEditor) Inserted() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.Insertions...)
}

// --- MockSettingsStore ---

// MockSettingsStore keeps the opaque settings blob in memory
type MockSettingsStore struct {
	mu      sync.Mutex
	Data    []byte
	Saves   int
	LoadErr error
	SaveErr error
}

// NewMockSettingsStore creates a store preloaded with data (nil for "never saved")
func NewMockSettingsStore(data []byte) *MockSettingsStore {
	return &MockSettingsStore{Data: data}
}

func (s *MockSettingsStore) LoadData(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	return s.Data, nil
}

func (s *MockSettingsStore) SaveData(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.Data = append([]byte(nil), data...)
	s.Saves++
	return nil
}

// --- MockNotifier ---

// MockNotifier collects surfaced messages
type MockNotifier struct {
	mu        sync.Mutex
	Successes []string
	Failures  []error
}

// NewMockNotifier creates an empty notifier
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (n *MockNotifier) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Successes = append(n.Successes, msg)
}

func (n *MockNotifier) Failure(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Failures = append(n.Failures, err)
}

// FailureCount returns how many failures were surfaced
func (n *MockNotifier) FailureCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.Failures)
}

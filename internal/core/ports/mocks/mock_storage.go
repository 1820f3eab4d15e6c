package mocks

import (
	"context"
	"fmt"
	"path"
	"sync"

	"github.com/kamal-hamza/webpaste/internal/core/domain"
)

// MockStorage is a mock host storage layer without the attachment-aware API
// AvailablePath hands out suffixed paths for repeated seeds, like a real host
type MockStorage struct {
	mu sync.Mutex

	// Recorded calls
	AvailablePathCalls []string // seed of each AvailablePath call
	Writes             map[string][]byte

	seen map[string]int

	// Failure injection
	PathErr  error
	WriteErr error
}

// NewMockStorage creates an empty mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		Writes: make(map[string][]byte),
		seen:   make(map[string]int),
	}
}

// AvailablePath returns "<seed>.<ext>", then "<seed> 1.<ext>", "<seed> 2.<ext>" ...
func (m *MockStorage) AvailablePath(ctx context.Context, seed string, ext string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.AvailablePathCalls = append(m.AvailablePathCalls, seed)
	if m.PathErr != nil {
		return "", m.PathErr
	}

	n := m.seen[seed]
	m.seen[seed] = n + 1
	if n == 0 {
		return fmt.Sprintf("%s.%s", seed, ext), nil
	}
	return fmt.Sprintf("%s %d.%s", seed, n, ext), nil
}

// CreateBinary records the write and returns a handle named after the path
func (m *MockStorage) CreateBinary(ctx context.Context, p string, data []byte) (*domain.StoredAsset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.WriteErr != nil {
		return nil, m.WriteErr
	}
	if _, exists := m.Writes[p]; exists {
		return nil, fmt.Errorf("file already exists: %s", p)
	}

	buf := make([]byte, len(data))
	copy(buf, data)
	m.Writes[p] = buf

	return &domain.StoredAsset{
		Name: path.Base(p),
		Path: p,
		Size: int64(len(data)),
	}, nil
}

// WriteCount returns the number of successful writes
func (m *MockStorage) WriteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Writes)
}

// SeedCalls returns a copy of the recorded AvailablePath seeds
func (m *MockStorage) SeedCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.AvailablePathCalls...)
}

// --- MockAttachmentStorage ---

// AttachmentCall records one AvailablePathForAttachment call
type AttachmentCall struct {
	BaseName string
	Ext      string
	Document *domain.Document
}

// MockAttachmentStorage adds the attachment-aware API on top of MockStorage
// Attachments are placed under Folder
type MockAttachmentStorage struct {
	*MockStorage
	Folder string

	attachMu        sync.Mutex
	AttachmentCalls []AttachmentCall
	AttachmentErr   error
}

// NewMockAttachmentStorage creates a mock storage that files attachments under folder
func NewMockAttachmentStorage(folder string) *MockAttachmentStorage {
	return &MockAttachmentStorage{
		MockStorage: NewMockStorage(),
		Folder:      folder,
	}
}

// AvailablePathForAttachment places the asset in Folder and delegates suffixing
func (m *MockAttachmentStorage) AvailablePathForAttachment(ctx context.Context, baseName string, ext string, doc *domain.Document) (string, error) {
	m.attachMu.Lock()
	m.AttachmentCalls = append(m.AttachmentCalls, AttachmentCall{BaseName: baseName, Ext: ext, Document: doc})
	failErr := m.AttachmentErr
	m.attachMu.Unlock()

	if failErr != nil {
		return "", failErr
	}
	seed := baseName
	if m.Folder != "" {
		seed = m.Folder + "/" + baseName
	}
	return m.AvailablePath(ctx, seed, ext)
}

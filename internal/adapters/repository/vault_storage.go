package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/kamal-hamza/webpaste/internal/core/domain"
	"github.com/kamal-hamza/webpaste/internal/core/ports"
	"github.com/kamal-hamza/webpaste/pkg/vault"
)

// VaultStorage is the storage layer of a vault on the local filesystem
// A path handed out by AvailablePath stays reserved until CreateBinary
// writes it, so concurrent pastes never receive the same destination
type VaultStorage struct {
	vault            *vault.Vault
	attachmentFolder string

	mu       sync.Mutex
	reserved map[string]struct{}
}

// NewVaultStorage creates the storage layer for v
// attachmentFolder follows the config.Config.AttachmentFolder conventions
func NewVaultStorage(v *vault.Vault, attachmentFolder string) *VaultStorage {
	return &VaultStorage{
		vault:            v,
		attachmentFolder: attachmentFolder,
		reserved:         make(map[string]struct{}),
	}
}

// AvailablePath returns "<seed>.<ext>" if free, else "<seed> 1.<ext>", "<seed> 2.<ext>", ...
func (s *VaultStorage) AvailablePath(ctx context.Context, seed string, ext string) (string, error) {
	seed = strings.Trim(path.Clean("/"+strings.ReplaceAll(seed, "\\", "/")), "/")
	if seed == "" {
		return "", fmt.Errorf("empty path seed")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		candidate := fmt.Sprintf("%s.%s", seed, ext)
		if i > 0 {
			candidate = fmt.Sprintf("%s %d.%s", seed, i, ext)
		}

		if _, taken := s.reserved[candidate]; taken {
			continue
		}

		abs, err := s.vault.Abs(candidate)
		if err != nil {
			return "", err
		}
		if _, err := os.Lstat(abs); err == nil {
			continue
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to check %s: %w", candidate, err)
		}

		s.reserved[candidate] = struct{}{}
		return candidate, nil
	}
}

// AvailablePathForAttachment places the asset according to the attachment folder setting
func (s *VaultStorage) AvailablePathForAttachment(ctx context.Context, baseName string, ext string, doc *domain.Document) (string, error) {
	folder := s.AttachmentDir(doc)
	seed := baseName
	if folder != "" {
		seed = folder + "/" + baseName
	}
	return s.AvailablePath(ctx, seed, ext)
}

// AttachmentDir returns the vault-relative folder attachments of doc go to
func (s *VaultStorage) AttachmentDir(doc *domain.Document) string {
	f := strings.TrimSpace(strings.ReplaceAll(s.attachmentFolder, "\\", "/"))
	switch {
	case f == "" || f == "/":
		return ""
	case f == "." || f == "./":
		return doc.Dir()
	case strings.HasPrefix(f, "./"):
		return strings.Trim(path.Join(doc.Dir(), f[2:]), "/")
	default:
		return strings.Trim(path.Clean(f), "/")
	}
}

// CreateBinary writes data at the vault-relative path p
// The write never replaces an existing file
func (s *VaultStorage) CreateBinary(ctx context.Context, p string, data []byte) (*domain.StoredAsset, error) {
	defer s.release(p)

	abs, err := s.vault.Abs(p)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return nil, fmt.Errorf("failed to create attachment folder: %w", err)
	}

	f, err := os.OpenFile(abs, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("attachment already exists: %s: %w", p, err)
		}
		return nil, fmt.Errorf("failed to create attachment: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(abs)
		return nil, fmt.Errorf("failed to write attachment: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(abs)
		return nil, fmt.Errorf("failed to write attachment: %w", err)
	}

	rel := strings.TrimPrefix(path.Clean("/"+p), "/")
	return &domain.StoredAsset{
		Name: path.Base(rel),
		Path: rel,
		Size: int64(len(data)),
	}, nil
}

func (s *VaultStorage) release(p string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reserved, p)
}

// plainStorage exposes only the generic path primitive and writes
type plainStorage struct {
	s *VaultStorage
}

func (p plainStorage) AvailablePath(ctx context.Context, seed string, ext string) (string, error) {
	return p.s.AvailablePath(ctx, seed, ext)
}

func (p plainStorage) CreateBinary(ctx context.Context, path string, data []byte) (*domain.StoredAsset, error) {
	return p.s.CreateBinary(ctx, path, data)
}

// WithoutAttachmentAPI hides the attachment-aware API of s,
// so attachments are placed next to the note instead
func WithoutAttachmentAPI(s *VaultStorage) ports.Storage {
	return plainStorage{s: s}
}

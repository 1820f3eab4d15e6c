package ports

import (
	"context"
	"image"
	"io"

	"github.com/kamal-hamza/webpaste/internal/core/domain"
)

// PasteEvent is a paste notification delivered by the host
type PasteEvent interface {
	// Files returns the files attached to the clipboard payload
	Files() []domain.ClipboardFile

	// PreventDefault stops the host from running its own paste handling
	// It is only honoured while the event is being dispatched
	PreventDefault()
}

// AvailablePathProvider is the generic collision-avoiding path primitive
type AvailablePathProvider interface {
	// AvailablePath returns "<seed>.<ext>" or a suffixed variant that does not exist yet
	AvailablePath(ctx context.Context, seed string, ext string) (string, error)
}

// AttachmentPathProvider is the attachment-aware path primitive
// Hosts that implement it decide the attachment folder themselves
type AttachmentPathProvider interface {
	AvailablePathForAttachment(ctx context.Context, baseName string, ext string, doc *domain.Document) (string, error)
}

// BinaryWriter persists bytes at a path and hands back the stored asset
type BinaryWriter interface {
	CreateBinary(ctx context.Context, path string, data []byte) (*domain.StoredAsset, error)
}

// Storage is the minimum a host storage layer has to offer
type Storage interface {
	AvailablePathProvider
	BinaryWriter
}

// LinkGenerator lets a host render references in its own embed syntax
type LinkGenerator interface {
	GenerateLink(asset *domain.StoredAsset, sourcePath string) string
}

// Editor is the host document-editing interface
type Editor interface {
	// ReplaceSelection replaces the current selection (or inserts at the cursor)
	ReplaceSelection(ctx context.Context, text string) error
}

// SettingsStore loads and saves the opaque settings blob
type SettingsStore interface {
	// LoadData returns nil data when nothing has been saved yet
	LoadData(ctx context.Context) ([]byte, error)
	SaveData(ctx context.Context, data []byte) error
}

// Encoder writes an image in the target format
type Encoder interface {
	// Encode writes img using quality as a 0.0-1.0 factor
	Encode(w io.Writer, img image.Image, quality float32) error
}

// Notifier surfaces pipeline outcomes to the user
type Notifier interface {
	Success(msg string)
	Failure(err error)
}

// AssetRepository records stored assets
type AssetRepository interface {
	// Save adds or updates an asset record
	Save(ctx context.Context, asset domain.Asset) error

	// Get retrieves asset metadata by vault-relative path
	Get(ctx context.Context, path string) (*domain.Asset, error)

	// GetByHash retrieves an asset by its content hash
	GetByHash(ctx context.Context, hash string) (*domain.Asset, error)

	// Search finds assets matching a query
	Search(ctx context.Context, query string) ([]domain.Asset, error)

	// Delete removes an asset from the registry
	Delete(ctx context.Context, path string) error
}

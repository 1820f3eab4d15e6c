package domain

import "time"

// Asset represents metadata for a stored attachment
type Asset struct {
	Filename   string    `json:"filename"`    // Storage name (e.g. "Notes 20240101120000.webp")
	Path       string    `json:"path"`        // Vault-relative path
	Document   string    `json:"document"`    // Note the asset was pasted into
	SourceMime string    `json:"source_mime"` // MIME type of the pasted image
	SourceSize int64     `json:"source_size"`
	Size       int64     `json:"size"`
	Quality    int       `json:"quality"`
	Hash       string    `json:"hash"` // SHA-256 of the stored bytes
	StoredAt   time.Time `json:"stored_at"`
}

package domain

import "strings"

// TargetMimeType is the only format this tool produces
const TargetMimeType = "image/webp"

// TargetExtension is the file extension of stored assets
const TargetExtension = "webp"

// ClipboardFile is one file attached to a paste event
type ClipboardFile struct {
	Name     string
	MimeType string
	Data     []byte
}

// PastedImage is the image claimed from a paste event
// It lives only for the duration of one pipeline run
type PastedImage struct {
	Name     string
	MimeType string
	Data     []byte
}

// AssetName is the candidate name for a stored asset, before collision handling
type AssetName struct {
	Base string // "<document name> <YYYYMMDDHHMMSS>"
	Ext  string // always "webp"
}

// String joins base and extension
func (n AssetName) String() string {
	return n.Base + "." + n.Ext
}

// StoredAsset is returned by storage after a successful write
type StoredAsset struct {
	Name string // File name including extension, e.g. "Notes 20240101120000.webp"
	Path string // Vault-relative path
	Size int64
}

// Basename returns the asset name without its extension
func (a *StoredAsset) Basename() string {
	if i := strings.LastIndex(a.Name, "."); i > 0 {
		return a.Name[:i]
	}
	return a.Name
}

// NormalizeMimeType lowercases a MIME type and drops any parameters
// "image/PNG; charset=binary" -> "image/png"
func NormalizeMimeType(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}

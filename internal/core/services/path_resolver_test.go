package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamal-hamza/webpaste/internal/core/domain"
	"github.com/kamal-hamza/webpaste/internal/core/ports/mocks"
)

func TestAssetNameFor(t *testing.T) {
	doc := &domain.Document{Name: "Notes", Path: "Notes.md"}

	tests := []struct {
		at   time.Time
		want string
	}{
		{time.Date(2024, 3, 7, 9, 5, 2, 0, time.Local), "Notes 20240307090502"},
		{time.Date(1999, 12, 31, 23, 59, 59, 999, time.Local), "Notes 19991231235959"},
		{time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local), "Notes 20250101000000"},
	}

	for _, tt := range tests {
		name := AssetNameFor(doc, tt.at)
		assert.Equal(t, tt.want, name.Base)
		assert.Equal(t, "webp", name.Ext)
		assert.Equal(t, tt.want+".webp", name.String())
		assert.Len(t, name.Base[len("Notes "):], 14)
	}
}

func TestNewPathResolver_SelectsStrategy(t *testing.T) {
	assert.Equal(t, "fallback", NewPathResolver(mocks.NewMockStorage()).Strategy())
	assert.Equal(t, "attachment", NewPathResolver(mocks.NewMockAttachmentStorage("assets")).Strategy())
}

func TestPathResolver_AttachmentStrategy(t *testing.T) {
	storage := mocks.NewMockAttachmentStorage("attachments")
	resolver := NewPathResolver(storage)
	resolver.SetClock(fixedClock(time.Date(2024, 3, 7, 9, 5, 2, 0, time.Local)))

	doc := &domain.Document{Name: "Notes", Path: "journal/Notes.md"}
	name, p, err := resolver.Resolve(context.Background(), doc)
	require.NoError(t, err)

	assert.Equal(t, "Notes 20240307090502", name.Base)
	assert.Equal(t, "attachments/Notes 20240307090502.webp", p)

	require.Len(t, storage.AttachmentCalls, 1)
	call := storage.AttachmentCalls[0]
	assert.Equal(t, "Notes 20240307090502", call.BaseName)
	assert.Equal(t, "webp", call.Ext)
	assert.Same(t, doc, call.Document)
}

func TestPathResolver_FallbackUsesDocumentFolder(t *testing.T) {
	storage := mocks.NewMockStorage()
	resolver := NewPathResolver(storage)
	resolver.SetClock(fixedClock(time.Date(2024, 3, 7, 9, 5, 2, 0, time.Local)))

	_, p, err := resolver.Resolve(context.Background(), &domain.Document{Name: "Notes", Path: "journal/2024/Notes.md"})
	require.NoError(t, err)
	assert.Equal(t, "journal/2024/Notes 20240307090502.webp", p)

	_, p, err = resolver.Resolve(context.Background(), &domain.Document{Name: "Root", Path: "Root.md"})
	require.NoError(t, err)
	assert.Equal(t, "Root 20240307090502.webp", p)

	assert.Equal(t, []string{"journal/2024/Notes 20240307090502", "Root 20240307090502"}, storage.SeedCalls())
}

func TestPathResolver_FallbackSameSecondYieldsDistinctPaths(t *testing.T) {
	storage := mocks.NewMockStorage()
	resolver := NewPathResolver(storage)
	resolver.SetClock(fixedClock(time.Date(2024, 3, 7, 9, 5, 2, 0, time.Local)))
	doc := &domain.Document{Name: "Notes", Path: "Notes.md"}

	_, first, err := resolver.Resolve(context.Background(), doc)
	require.NoError(t, err)
	_, second, err := resolver.Resolve(context.Background(), doc)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	// both resolutions went through the host primitive with the same seed
	seeds := storage.SeedCalls()
	require.Len(t, seeds, 2)
	assert.Equal(t, seeds[0], seeds[1])
}

func TestPathResolver_HostErrorPropagatesUnchanged(t *testing.T) {
	doc := &domain.Document{Name: "Notes", Path: "Notes.md"}

	fallback := mocks.NewMockStorage()
	fallback.PathErr = errHost
	_, _, err := NewPathResolver(fallback).Resolve(context.Background(), doc)
	assert.Same(t, errHost, err)

	attach := mocks.NewMockAttachmentStorage("")
	attach.AttachmentErr = errHost
	_, _, err = NewPathResolver(attach).Resolve(context.Background(), doc)
	assert.Same(t, errHost, err)

	// one call each, no retries
	assert.Len(t, fallback.SeedCalls(), 1)
	assert.Len(t, attach.AttachmentCalls, 1)
}

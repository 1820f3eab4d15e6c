package services

import (
	"context"
	"time"

	"github.com/kamal-hamza/webpaste/internal/core/domain"
	"github.com/kamal-hamza/webpaste/internal/core/ports"
	"github.com/kamal-hamza/webpaste/internal/logger"
)

// TimestampLayout is the 14-digit local timestamp appended to asset names
const TimestampLayout = "20060102150405"

// PathResolver derives asset names and asks the host for a free destination
type PathResolver struct {
	strategy pathStrategy
	now      func() time.Time
}

type pathStrategy interface {
	resolve(ctx context.Context, name domain.AssetName, doc *domain.Document) (string, error)
	String() string
}

// NewPathResolver picks the attachment-aware strategy when the host offers it,
// and the same-folder fallback otherwise. The choice is made once, here.
func NewPathResolver(storage ports.AvailablePathProvider) *PathResolver {
	var strategy pathStrategy
	if ap, ok := storage.(ports.AttachmentPathProvider); ok {
		strategy = attachmentStrategy{host: ap}
	} else {
		strategy = fallbackStrategy{host: storage}
	}
	logger.Debug("path resolver: using %s strategy", strategy)

	return &PathResolver{
		strategy: strategy,
		now:      time.Now,
	}
}

// SetClock replaces the wall clock (tests)
func (r *PathResolver) SetClock(now func() time.Time) {
	r.now = now
}

// Strategy names the selected strategy ("attachment" or "fallback")
func (r *PathResolver) Strategy() string {
	return r.strategy.String()
}

// AssetNameFor builds "<document name> <YYYYMMDDHHMMSS>" in local time
func AssetNameFor(doc *domain.Document, at time.Time) domain.AssetName {
	return domain.AssetName{
		Base: doc.Name + " " + at.Local().Format(TimestampLayout),
		Ext:  domain.TargetExtension,
	}
}

// Resolve returns the candidate name and the collision-free path chosen by the host
// Host errors are returned unchanged; there are no retries and no existence checks here
func (r *PathResolver) Resolve(ctx context.Context, doc *domain.Document) (domain.AssetName, string, error) {
	name := AssetNameFor(doc, r.now())
	p, err := r.strategy.resolve(ctx, name, doc)
	if err != nil {
		return name, "", err
	}
	return name, p, nil
}

type attachmentStrategy struct {
	host ports.AttachmentPathProvider
}

func (s attachmentStrategy) resolve(ctx context.Context, name domain.AssetName, doc *domain.Document) (string, error) {
	return s.host.AvailablePathForAttachment(ctx, name.Base, name.Ext, doc)
}

func (s attachmentStrategy) String() string { return "attachment" }

type fallbackStrategy struct {
	host ports.AvailablePathProvider
}

func (s fallbackStrategy) resolve(ctx context.Context, name domain.AssetName, doc *domain.Document) (string, error) {
	seed := name.Base
	if dir := doc.Dir(); dir != "" {
		seed = dir + "/" + name.Base
	}
	return s.host.AvailablePath(ctx, seed, name.Ext)
}

func (s fallbackStrategy) String() string { return "fallback" }

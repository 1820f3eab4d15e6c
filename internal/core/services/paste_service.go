package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/kamal-hamza/webpaste/internal/core/domain"
	"github.com/kamal-hamza/webpaste/internal/core/ports"
	"github.com/kamal-hamza/webpaste/internal/logger"
)

// PasteService runs the paste pipeline:
// intercept -> transcode -> resolve path -> persist -> link -> insert
type PasteService struct {
	interceptor *Interceptor
	transcoder  *Transcoder
	paths       *PathResolver
	storage     ports.BinaryWriter
	links       ports.LinkGenerator
	settings    *SettingsService
	notifier    ports.Notifier
	assetRepo   ports.AssetRepository
}

// NewPasteService wires the pipeline against a host storage layer.
// The path strategy is fixed here from what storage implements; a storage that
// also implements ports.LinkGenerator renders its own links.
func NewPasteService(storage ports.Storage, transcoder *Transcoder, settings *SettingsService, notifier ports.Notifier) *PasteService {
	var links ports.LinkGenerator = NewLinkFormatter(LinkStyleWikilink)
	if lg, ok := storage.(ports.LinkGenerator); ok {
		links = lg
	}

	return &PasteService{
		interceptor: NewInterceptor(),
		transcoder:  transcoder,
		paths:       NewPathResolver(storage),
		storage:     storage,
		links:       links,
		settings:    settings,
		notifier:    notifier,
	}
}

// SetLinkGenerator overrides how references are rendered
func (s *PasteService) SetLinkGenerator(g ports.LinkGenerator) {
	s.links = g
}

// SetAssetRepository enables recording of stored assets
func (s *PasteService) SetAssetRepository(repo ports.AssetRepository) {
	s.assetRepo = repo
}

// Paths exposes the path resolver (clock injection, diagnostics)
func (s *PasteService) Paths() *PathResolver {
	return s.paths
}

// PasteJob tracks one claimed paste
type PasteJob struct {
	ID    string
	stage atomic.Value
	done  chan struct{}
	asset *domain.StoredAsset
	err   error
}

func newPasteJob() *PasteJob {
	j := &PasteJob{
		ID:   uuid.NewString(),
		done: make(chan struct{}),
	}
	j.stage.Store(domain.StageFiltering)
	return j
}

// Stage returns the step the job is currently in
func (j *PasteJob) Stage() domain.Stage {
	return j.stage.Load().(domain.Stage)
}

// Done is closed once the job finished or aborted
func (j *PasteJob) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the job finishes and returns its outcome
func (j *PasteJob) Wait() (*domain.StoredAsset, error) {
	<-j.done
	return j.asset, j.err
}

func (j *PasteJob) enter(stage domain.Stage) {
	j.stage.Store(stage)
	logger.Debug("[%s] %s", j.ID[:8], stage)
}

// HandlePaste is the host's paste hook.
// The claim decision and default suppression happen before it returns; the rest
// of the pipeline runs on its own goroutine. Unclaimed events are left untouched
// and no job is returned. Once claimed, a job always runs to completion: it is not
// cancelled with ctx.
func (s *PasteService) HandlePaste(ctx context.Context, evt ports.PasteEvent, doc *domain.Document, editor ports.Editor) (*PasteJob, bool) {
	img, claimed := s.interceptor.Claim(evt, doc)
	if !claimed {
		return nil, false
	}

	job := newPasteJob()
	logger.Debug("[%s] claimed %s (%s, %d bytes) for %s", job.ID[:8], img.Name, img.MimeType, len(img.Data), doc.Path)

	runCtx := context.WithoutCancel(ctx)
	go s.run(runCtx, job, img, doc, editor)

	return job, true
}

// Process runs a pre-claimed image through the pipeline synchronously
func (s *PasteService) Process(ctx context.Context, img domain.PastedImage, doc *domain.Document, editor ports.Editor) (*domain.StoredAsset, error) {
	job := newPasteJob()
	s.run(ctx, job, img, doc, editor)
	return job.asset, job.err
}

func (s *PasteService) run(ctx context.Context, job *PasteJob, img domain.PastedImage, doc *domain.Document, editor ports.Editor) {
	defer close(job.done)

	asset, err := s.execute(ctx, job, img, doc, editor)
	if err != nil {
		job.err = err
		job.enter(domain.StageAborted)
		logger.Warn("[%s] paste aborted: %v", job.ID[:8], err)
		if s.notifier != nil {
			s.notifier.Failure(err)
		}
		return
	}

	job.asset = asset
	job.enter(domain.StageIdle)
	if s.notifier != nil {
		s.notifier.Success(fmt.Sprintf("Pasted %s into %s", asset.Path, doc.Name))
	}
}

func (s *PasteService) execute(ctx context.Context, job *PasteJob, img domain.PastedImage, doc *domain.Document, editor ports.Editor) (*domain.StoredAsset, error) {
	if doc == nil {
		return nil, domain.NewPasteError(domain.StageFiltering, domain.ErrNoDocument, nil)
	}

	// Transcoding: quality is read once per run
	job.enter(domain.StageTranscoding)
	quality := s.settings.Quality()
	data, err := s.transcoder.Transcode(ctx, img, quality)
	if err != nil {
		return nil, stageError(domain.StageTranscoding, domain.ErrEncode, err)
	}
	logger.Debug("[%s] %d -> %d bytes at quality %d", job.ID[:8], len(img.Data), len(data), quality)

	job.enter(domain.StageResolving)
	_, dest, err := s.paths.Resolve(ctx, doc)
	if err != nil {
		return nil, stageError(domain.StageResolving, domain.ErrPathResolution, err)
	}

	job.enter(domain.StagePersisting)
	asset, err := s.storage.CreateBinary(ctx, dest, data)
	if err != nil {
		return nil, stageError(domain.StagePersisting, domain.ErrPersist, err)
	}

	job.enter(domain.StageLinking)
	link := s.links.GenerateLink(asset, doc.Path)
	if err := editor.ReplaceSelection(ctx, link); err != nil {
		return nil, stageError(domain.StageLinking, domain.ErrLink, err)
	}

	s.record(ctx, job, asset, doc, img, quality, data)
	return asset, nil
}

// record adds the asset to the manifest; failures only warn
func (s *PasteService) record(ctx context.Context, job *PasteJob, asset *domain.StoredAsset, doc *domain.Document, img domain.PastedImage, quality int, data []byte) {
	if s.assetRepo == nil {
		return
	}
	sum := sha256.Sum256(data)
	entry := domain.Asset{
		Filename:   asset.Name,
		Path:       asset.Path,
		Document:   doc.Path,
		SourceMime: img.MimeType,
		SourceSize: int64(len(img.Data)),
		Size:       asset.Size,
		Quality:    quality,
		Hash:       hex.EncodeToString(sum[:]),
		StoredAt:   time.Now(),
	}
	if prev, err := s.assetRepo.GetByHash(ctx, entry.Hash); err == nil && prev.Path != entry.Path {
		logger.Info("[%s] identical image already stored at %s", job.ID[:8], prev.Path)
	}
	if err := s.assetRepo.Save(ctx, entry); err != nil {
		logger.Warn("[%s] failed to record asset metadata: %v", job.ID[:8], err)
	}
}

// stageError keeps errors that already carry a kind and wraps the rest
func stageError(stage domain.Stage, kind error, err error) error {
	var pe *domain.PasteError
	if errors.As(err, &pe) {
		return pe
	}
	return domain.NewPasteError(stage, kind, err)
}

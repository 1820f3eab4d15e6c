package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"sync"
	"sync/atomic"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/kamal-hamza/webpaste/internal/core/domain"
	"github.com/kamal-hamza/webpaste/internal/core/ports"
)

// Surfaces larger than this are dropped instead of pooled
const maxPooledSurfaceBytes = 64 << 20

// MaxDimension is the largest width or height a WebP image can store
const MaxDimension = 16383

// Transcoder converts pasted images to WebP
type Transcoder struct {
	encoder  ports.Encoder
	surfaces sync.Pool
	live     atomic.Int64
}

// NewTranscoder creates a transcoder that encodes with enc
func NewTranscoder(enc ports.Encoder) *Transcoder {
	return &Transcoder{encoder: enc}
}

// Transcode decodes img at native resolution and re-encodes it with the given quality (1-100)
// The intermediate surface is released before returning on every path
func (t *Transcoder) Transcode(ctx context.Context, img domain.PastedImage, quality int) ([]byte, error) {
	// Reject from the header so oversized images are never decoded
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		return nil, domain.NewPasteError(domain.StageTranscoding, domain.ErrDecode, err)
	}
	if cfg.Width > MaxDimension || cfg.Height > MaxDimension {
		return nil, domain.NewPasteError(domain.StageTranscoding, domain.ErrEncode,
			fmt.Errorf("%dx%d image exceeds the webp limit of %d pixels per side", cfg.Width, cfg.Height, MaxDimension))
	}

	src, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return nil, domain.NewPasteError(domain.StageTranscoding, domain.ErrDecode, err)
	}

	bounds := src.Bounds()
	if bounds.Empty() {
		return nil, domain.NewPasteError(domain.StageTranscoding, domain.ErrDecode,
			errors.New("image has no pixels"))
	}

	surface := t.acquire(bounds.Dx(), bounds.Dy())
	defer t.release(surface)

	draw.Draw(surface, surface.Rect, src, bounds.Min, draw.Src)

	var buf bytes.Buffer
	if err := t.encoder.Encode(&buf, surface, domain.QualityFactor(quality)); err != nil {
		return nil, domain.NewPasteError(domain.StageTranscoding, domain.ErrEncode, err)
	}
	if buf.Len() == 0 {
		return nil, domain.NewPasteError(domain.StageTranscoding, domain.ErrEncode,
			fmt.Errorf("encoder produced no output for %dx%d image", bounds.Dx(), bounds.Dy()))
	}

	return buf.Bytes(), nil
}

// LiveSurfaces returns the number of surfaces currently checked out
func (t *Transcoder) LiveSurfaces() int64 {
	return t.live.Load()
}

// acquire returns a w x h surface, reusing pooled pixel memory when it fits
func (t *Transcoder) acquire(w, h int) *image.NRGBA {
	t.live.Add(1)

	need := w * h * 4
	if pooled, ok := t.surfaces.Get().(*image.NRGBA); ok && cap(pooled.Pix) >= need {
		pooled.Pix = pooled.Pix[:need]
		pooled.Stride = w * 4
		pooled.Rect = image.Rect(0, 0, w, h)
		return pooled
	}
	return image.NewNRGBA(image.Rect(0, 0, w, h))
}

func (t *Transcoder) release(s *image.NRGBA) {
	t.live.Add(-1)
	if cap(s.Pix) > maxPooledSurfaceBytes {
		return
	}
	t.surfaces.Put(s)
}

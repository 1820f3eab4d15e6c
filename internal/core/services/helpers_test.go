package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/kamal-hamza/webpaste/internal/core/domain"
	"github.com/kamal-hamza/webpaste/internal/core/ports/mocks"
)

// stubEncoder writes a fixed payload, or fails
type stubEncoder struct {
	mu        sync.Mutex
	err       error
	payload   []byte
	calls     int
	qualities []float32
	bounds    []image.Rectangle
	firstPix  color.NRGBA
}

func (e *stubEncoder) Encode(w io.Writer, img image.Image, quality float32) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	e.qualities = append(e.qualities, quality)
	e.bounds = append(e.bounds, img.Bounds())
	if b := img.Bounds(); !b.Empty() {
		e.firstPix = color.NRGBAModel.Convert(img.At(b.Min.X, b.Min.Y)).(color.NRGBA)
	}
	if e.err != nil {
		return e.err
	}
	payload := e.payload
	if payload == nil {
		payload = []byte("RIFF....WEBPVP8 stub")
	}
	_, err := w.Write(payload)
	return err
}

func solidImage(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png fixture: %v", err)
	}
	return buf.Bytes()
}

func pngFile(t *testing.T, w, h int) domain.ClipboardFile {
	t.Helper()
	return domain.ClipboardFile{
		Name:     "image.png",
		MimeType: "image/png",
		Data:     pngBytes(t, solidImage(w, h, color.NRGBA{R: 30, G: 144, B: 255, A: 255})),
	}
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func newTestSettings(t *testing.T, quality int) *SettingsService {
	t.Helper()
	svc := NewSettingsService(mocks.NewMockSettingsStore(nil))
	if _, err := svc.SetQuality(context.Background(), quality); err != nil {
		t.Fatalf("failed to set quality: %v", err)
	}
	return svc
}

var errHost = errors.New("host exploded")

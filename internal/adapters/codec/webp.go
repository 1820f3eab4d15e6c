package codec

import (
	"fmt"
	"image"
	"io"
	"math"

	"github.com/gen2brain/webp"
)

// defaultMethod is libwebp's speed/size trade-off (0 fast, 6 small)
const defaultMethod = 4

// WebPEncoder produces lossy WebP
type WebPEncoder struct {
	Method int
}

// NewWebPEncoder creates an encoder with the default compression method
func NewWebPEncoder() *WebPEncoder {
	return &WebPEncoder{Method: defaultMethod}
}

// Encode writes img as lossy WebP; quality is a 0.0-1.0 factor
func (e *WebPEncoder) Encode(w io.Writer, img image.Image, quality float32) error {
	if quality < 0 || quality > 1 || math.IsNaN(float64(quality)) {
		return fmt.Errorf("quality factor out of range: %v", quality)
	}

	opts := webp.Options{
		Quality:  int(math.Round(float64(quality) * 100)),
		Lossless: false,
		Method:   e.Method,
	}
	if err := webp.Encode(w, img, opts); err != nil {
		return fmt.Errorf("webp encode: %w", err)
	}
	return nil
}

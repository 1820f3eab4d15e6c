package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xwebp "golang.org/x/image/webp"

	"github.com/kamal-hamza/webpaste/internal/adapters/codec"
	"github.com/kamal-hamza/webpaste/internal/core/domain"
)

func TestTranscoder_RoundTripSolidColor(t *testing.T) {
	want := color.NRGBA{R: 200, G: 120, B: 40, A: 255}
	src := solidImage(64, 48, want)

	tr := NewTranscoder(codec.NewWebPEncoder())
	out, err := tr.Transcode(context.Background(), domain.PastedImage{MimeType: "image/png", Data: pngBytes(t, src)}, 85)
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.Equal(t, "RIFF", string(out[:4]))
	assert.Equal(t, "WEBP", string(out[8:12]))

	decoded, err := xwebp.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, src.Bounds().Size(), decoded.Bounds().Size())

	r, g, b := meanLimitedRangeRGB(t, decoded)
	const tolerance = 6
	assert.InDelta(t, float64(want.R), r, tolerance)
	assert.InDelta(t, float64(want.G), g, tolerance)
	assert.InDelta(t, float64(want.B), b, tolerance)

	assert.Zero(t, tr.LiveSurfaces())
}

// meanLimitedRangeRGB averages the decoded planes and converts them with the
// BT.601 limited-range matrix VP8 uses; image/color assumes full range
func meanLimitedRangeRGB(t *testing.T, img image.Image) (r, g, b float64) {
	t.Helper()

	var yc *image.YCbCr
	switch m := img.(type) {
	case *image.YCbCr:
		yc = m
	case *image.NYCbCrA:
		yc = &m.YCbCr
	default:
		t.Fatalf("decoded webp is %T, want a YCbCr image", img)
	}

	var sumY, sumCb, sumCr float64
	n := 0
	bounds := yc.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			sumY += float64(yc.Y[yc.YOffset(x, y)])
			ci := yc.COffset(x, y)
			sumCb += float64(yc.Cb[ci])
			sumCr += float64(yc.Cr[ci])
			n++
		}
	}
	yy := (sumY/float64(n) - 16) * 255 / 219
	cb := (sumCb/float64(n) - 128) * 255 / 224
	cr := (sumCr/float64(n) - 128) * 255 / 224

	r = yy + 1.402*cr
	g = yy - 0.344136*cb - 0.714136*cr
	b = yy + 1.772*cb
	return r, g, b
}

func TestTranscoder_RejectsOversizedImages(t *testing.T) {
	tests := []struct {
		name string
		w, h int
	}{
		{"too wide", MaxDimension + 1, 64},
		{"too tall", 64, MaxDimension + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := &stubEncoder{}
			tr := NewTranscoder(enc)
			data := pngBytes(t, image.NewGray(image.Rect(0, 0, tt.w, tt.h)))

			out, err := tr.Transcode(context.Background(), domain.PastedImage{MimeType: "image/png", Data: data}, 85)
			require.Error(t, err)
			assert.Nil(t, out)
			assert.ErrorIs(t, err, domain.ErrEncode)
			assert.Contains(t, err.Error(), fmt.Sprintf("%dx%d", tt.w, tt.h))
			assert.Zero(t, enc.calls, "encoder must not run")
			assert.Zero(t, tr.LiveSurfaces())
		})
	}
}

func TestTranscoder_AcceptsLargestDimension(t *testing.T) {
	enc := &stubEncoder{}
	tr := NewTranscoder(enc)
	data := pngBytes(t, image.NewGray(image.Rect(0, 0, MaxDimension, 1)))

	_, err := tr.Transcode(context.Background(), domain.PastedImage{MimeType: "image/png", Data: data}, 85)
	require.NoError(t, err)
	require.Len(t, enc.bounds, 1)
	assert.Equal(t, image.Rect(0, 0, MaxDimension, 1), enc.bounds[0])
}

func TestTranscoder_DecodesSeveralFormats(t *testing.T) {
	src := solidImage(10, 6, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	var jpg, gf bytes.Buffer
	require.NoError(t, jpeg.Encode(&jpg, src, nil))
	require.NoError(t, gif.Encode(&gf, src, nil))

	inputs := map[string][]byte{
		"image/png":  pngBytes(t, src),
		"image/jpeg": jpg.Bytes(),
		"image/gif":  gf.Bytes(),
	}

	for mime, data := range inputs {
		t.Run(mime, func(t *testing.T) {
			enc := &stubEncoder{}
			tr := NewTranscoder(enc)

			out, err := tr.Transcode(context.Background(), domain.PastedImage{MimeType: mime, Data: data}, 85)
			require.NoError(t, err)
			assert.NotEmpty(t, out)
			require.Len(t, enc.bounds, 1)
			assert.Equal(t, image.Rect(0, 0, 10, 6), enc.bounds[0], "no resampling")
		})
	}
}

func TestTranscoder_QualityFactor(t *testing.T) {
	enc := &stubEncoder{}
	tr := NewTranscoder(enc)
	img := domain.PastedImage{MimeType: "image/png", Data: pngBytes(t, solidImage(2, 2, color.White))}

	for _, q := range []int{50, 1, 100, 0, 250} {
		_, err := tr.Transcode(context.Background(), img, q)
		require.NoError(t, err)
	}
	assert.Equal(t, []float32{0.5, 0.01, 1, 0.01, 1}, enc.qualities)
}

func TestTranscoder_DecodeFailure(t *testing.T) {
	valid := pngBytes(t, solidImage(4, 4, color.Black))

	inputs := map[string][]byte{
		"truncated header": valid[:12],
		"truncated body":   valid[:len(valid)/2],
		"garbage":          []byte("definitely not an image"),
		"empty":            nil,
	}

	for name, data := range inputs {
		t.Run(name, func(t *testing.T) {
			enc := &stubEncoder{}
			tr := NewTranscoder(enc)

			out, err := tr.Transcode(context.Background(), domain.PastedImage{MimeType: "image/png", Data: data}, 85)
			require.Error(t, err)
			assert.Nil(t, out)
			assert.ErrorIs(t, err, domain.ErrDecode)
			assert.Zero(t, enc.calls, "encoder must not run")
			assert.Zero(t, tr.LiveSurfaces())
		})
	}
}

func TestTranscoder_EncodeFailureReleasesSurface(t *testing.T) {
	enc := &stubEncoder{err: errHost}
	tr := NewTranscoder(enc)

	_, err := tr.Transcode(context.Background(), domain.PastedImage{MimeType: "image/png", Data: pngBytes(t, solidImage(8, 8, color.White))}, 85)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEncode)
	assert.ErrorIs(t, err, errHost)
	assert.Zero(t, tr.LiveSurfaces())
}

func TestTranscoder_EmptyEncoderOutput(t *testing.T) {
	tr := NewTranscoder(&stubEncoder{payload: []byte{}})

	_, err := tr.Transcode(context.Background(), domain.PastedImage{MimeType: "image/png", Data: pngBytes(t, solidImage(3, 3, color.White))}, 85)
	assert.ErrorIs(t, err, domain.ErrEncode)
}

func TestTranscoder_ReusedSurfaceHasCorrectPixels(t *testing.T) {
	enc := &stubEncoder{}
	tr := NewTranscoder(enc)
	ctx := context.Background()

	big := solidImage(40, 40, color.NRGBA{R: 255, A: 255})
	small := solidImage(5, 3, color.NRGBA{G: 255, A: 255})

	_, err := tr.Transcode(ctx, domain.PastedImage{Data: pngBytes(t, big)}, 85)
	require.NoError(t, err)
	_, err = tr.Transcode(ctx, domain.PastedImage{Data: pngBytes(t, small)}, 85)
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 5, 3), enc.bounds[1])
	assert.Equal(t, color.NRGBA{G: 255, A: 255}, enc.firstPix)
	assert.Zero(t, tr.LiveSurfaces())
}

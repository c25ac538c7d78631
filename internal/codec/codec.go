// Package codec keeps image payloads within the storage budget: decode,
// aspect-preserving downscale, lossy re-encode.
package codec

import (
	"bytes"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"math"

	"golang.org/x/image/draw"

	"github.com/ncharlet/bibliart/internal/errors"
	"github.com/ncharlet/bibliart/internal/models"
)

// Preset is a named (maxWidth, quality) pair. The pipeline itself is
// preset-agnostic; callers pick one.
type Preset struct {
	MaxWidth int
	Quality  float64
}

var (
	PresetPortrait           = Preset{MaxWidth: 800, Quality: 0.85}
	PresetArtwork            = Preset{MaxWidth: 1200, Quality: 0.85}
	PresetAggressivePortrait = Preset{MaxWidth: 600, Quality: 0.6}
	PresetAggressiveArtwork  = Preset{MaxWidth: 800, Quality: 0.6}
)

// Compress decodes source bytes, clamps the width to maxWidth (never
// upscaling), and re-encodes as JPEG at the given quality (0.0-1.0).
func Compress(src []byte, maxWidth int, quality float64) (models.Payload, error) {
	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return "", errors.NewUnsupportedInputError(err)
	}
	return encode(fit(img, maxWidth), quality)
}

// Recompress runs the same transform on an already-encoded payload. The
// caller keeps the original on failure.
func Recompress(p models.Payload, maxWidth int, quality float64) (models.Payload, error) {
	raw, err := p.Bytes()
	if err != nil {
		return "", errors.NewDecodeFailedError(err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", errors.NewDecodeFailedError(err)
	}
	return encode(fit(img, maxWidth), quality)
}

// Dimensions reports the pixel size of an encoded payload without a full
// decode.
func Dimensions(p models.Payload) (width, height int, err error) {
	raw, err := p.Bytes()
	if err != nil {
		return 0, 0, errors.NewDecodeFailedError(err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return 0, 0, errors.NewDecodeFailedError(err)
	}
	return cfg.Width, cfg.Height, nil
}

func encode(img image.Image, quality float64) (models.Payload, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality(quality)}); err != nil {
		return "", errors.NewEncodeFailedError(err)
	}
	return models.NewPayload("image/jpeg", buf.Bytes()), nil
}

func fit(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxWidth <= 0 || w <= maxWidth {
		// Already narrow enough: dimensions are unchanged.
		return img
	}
	nh := int(math.Round(float64(h) * float64(maxWidth) / float64(w)))
	if nh < 1 {
		nh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func jpegQuality(q float64) int {
	n := int(math.Round(q * 100))
	if n < 1 {
		n = 1
	}
	if n > 100 {
		n = 100
	}
	return n
}

package pkg

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

var (
	ErrNotAnImage    = errors.New("file is not a supported image")
	ErrImageTooLarge = errors.New("image dimensions too large")
)

// MaxPixels bounds width*height before a bitmap is allocated.
const MaxPixels = 40_000_000

type CompressOptions struct {
	MaxDimension int // longest side, in pixels
	TargetBytes  int
	Quality      int // starting jpeg quality
}

const minJPEGQuality = 40

// CompressImage decodes any supported image, fits it within MaxDimension and
// re-encodes it as JPEG, lowering the quality until the output fits TargetBytes
// or the quality floor is reached.
func CompressImage(data []byte, opts CompressOptions) ([]byte, error) {
	if opts.MaxDimension <= 0 {
		opts.MaxDimension = 1920
	}
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = 85
	}

	// the decoders are registered by imaging; only the header is read here
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}

	b := img.Bounds()
	if b.Dx() > opts.MaxDimension || b.Dy() > opts.MaxDimension {
		img = imaging.Fit(img, opts.MaxDimension, opts.MaxDimension, imaging.Lanczos)
	}

	var out bytes.Buffer
	for q := opts.Quality; ; q -= 10 {
		if q < minJPEGQuality {
			q = minJPEGQuality
		}
		out.Reset()
		if err := imaging.Encode(&out, img, imaging.JPEG, imaging.JPEGQuality(q)); err != nil {
			return nil, err
		}
		if opts.TargetBytes <= 0 || out.Len() <= opts.TargetBytes || q == minJPEGQuality {
			break
		}
	}
	return out.Bytes(), nil
}

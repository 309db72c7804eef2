package storage

import (
	"bytes"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
)

// MaxPhotoDimension bounds the width and height of stored profile photos
const MaxPhotoDimension = 512

// PhotoNormalizer decodes an uploaded image, bounds it to MaxPhotoDimension
// and re-encodes it as JPEG.
type PhotoNormalizer struct {
	MaxDimension int
	Quality      int
}

// NewPhotoNormalizer returns a normalizer with the default bounds
func NewPhotoNormalizer() *PhotoNormalizer {
	return &PhotoNormalizer{MaxDimension: MaxPhotoDimension, Quality: 85}
}

// Normalize returns the re-encoded JPEG bytes
func (n *PhotoNormalizer) Normalize(r io.Reader) (io.Reader, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	b := img.Bounds()
	if b.Dx() > n.MaxDimension || b.Dy() > n.MaxDimension {
		img = imaging.Fit(img, n.MaxDimension, n.MaxDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(n.Quality)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return &buf, nil
}

package service

import (
	"bytes"
	"fmt"
	_ "image/png"

	"github.com/disintegration/imaging"
)

const (
	maxThumbWidth = 300
	thumbQuality  = 60
)

// Thumbnail scales a PNG or JPEG screenshot down to maxWidth pixels wide,
// keeping the aspect ratio, and encodes it as JPEG. Narrower images are only
// re-encoded.
func Thumbnail(imageData []byte, maxWidth, quality int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	if img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode to JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

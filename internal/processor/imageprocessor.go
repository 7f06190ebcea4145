// imageprocessor.go - Optional downscaling before the provider call

package processor

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"
)

// PreprocessImage downscales oversized screenshots so provider payloads stay
// small. Screenshots are synthetic UI captures, not photographed paper, so no
// contrast or sharpening work is done - just a Lanczos resize when the long
// side exceeds maxDimension. Returns the (possibly unchanged) bytes and the
// MIME type to send. Hashing always uses the original bytes, never these.
func PreprocessImage(imageBytes []byte, maxDimension int) ([]byte, string, error) {
	mimeType := DetectMIMEType(imageBytes)

	img, err := imaging.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width <= maxDimension && height <= maxDimension {
		return imageBytes, mimeType, nil
	}

	if width > height {
		img = imaging.Resize(img, maxDimension, 0, imaging.Lanczos)
	} else {
		img = imaging.Resize(img, 0, maxDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	switch mimeType {
	case "image/png":
		err = png.Encode(&buf, img)
	default:
		// GIF and WEBP re-encode as JPEG; the provider only needs pixels.
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
		mimeType = "image/jpeg"
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode resized image: %w", err)
	}

	return buf.Bytes(), mimeType, nil
}

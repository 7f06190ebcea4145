// imagevalidator.go - Image validation before any provider call

package processor

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"image"
	"log"
	"strings"

	// Register decoders for the supported container formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// Validation policy. Payment screenshots are phone captures, so anything
// outside these bounds is either junk input or an abuse attempt.
const (
	MinDimension  = 100
	MaxDimension  = 4096
	MaxFileSizeMB = 10
)

var supportedFormats = map[string]bool{
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"webp": true,
}

// StripDataURL removes an optional "data:image/png;base64," style prefix.
func StripDataURL(imageBase64 string) string {
	if idx := strings.Index(imageBase64, ","); idx >= 0 {
		return imageBase64[idx+1:]
	}
	return imageBase64
}

// DecodeBase64 decodes the payload after stripping a data-URL prefix.
// Accepts both padded and unpadded encodings.
func DecodeBase64(imageBase64 string) ([]byte, error) {
	payload := strings.TrimSpace(StripDataURL(imageBase64))
	if decoded, err := base64.StdEncoding.DecodeString(payload); err == nil {
		return decoded, nil
	}
	return base64.RawStdEncoding.DecodeString(payload)
}

// GenerateImageHash computes the hex SHA-256 of the decoded image bytes.
// The hash is prefix-independent: stripping happens before decoding, so the
// same image with and without a data URL hashes identically. The hash is
// attached to success and failure responses alike for caller-side dedup.
func GenerateImageHash(imageBase64 string) (string, []byte, error) {
	imageBytes, err := DecodeBase64(imageBase64)
	if err != nil {
		return "", nil, fmt.Errorf("invalid base64 encoding: %w", err)
	}
	sum := sha256.Sum256(imageBytes)
	return hex.EncodeToString(sum[:]), imageBytes, nil
}

// ValidateImage checks the payload against the policy. Returns (true, "")
// when the image may be sent to the provider, otherwise (false, reason).
func ValidateImage(imageBase64 string) (bool, string) {
	imageBytes, err := DecodeBase64(imageBase64)
	if err != nil {
		return false, fmt.Sprintf("Invalid base64 encoding: %v", err)
	}

	// Size cap before decoding - never spend CPU on oversized payloads.
	sizeMB := float64(len(imageBytes)) / (1024 * 1024)
	if sizeMB > MaxFileSizeMB {
		return false, fmt.Sprintf("Image too large: %.1fMB (max %dMB)", sizeMB, MaxFileSizeMB)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(imageBytes))
	if err != nil {
		return false, fmt.Sprintf("Cannot open image: %v", err)
	}

	if !supportedFormats[format] {
		return false, fmt.Sprintf("Unsupported format: %s (supported: jpeg, png, gif, webp)", format)
	}

	if cfg.Width < MinDimension || cfg.Height < MinDimension {
		return false, fmt.Sprintf("Image too small: %dx%d (min %dx%d)", cfg.Width, cfg.Height, MinDimension, MinDimension)
	}
	if cfg.Width > MaxDimension || cfg.Height > MaxDimension {
		return false, fmt.Sprintf("Image too large: %dx%d (max %dx%d)", cfg.Width, cfg.Height, MaxDimension, MaxDimension)
	}

	// Payment screenshots are portrait or roughly square. A weird aspect
	// ratio is suspicious but some captures are panoramic, so only warn.
	aspectRatio := float64(cfg.Width) / float64(cfg.Height)
	if aspectRatio > 3.0 || aspectRatio < 0.33 {
		log.Printf("⚠️  Unusual aspect ratio: %.2f (%dx%d)", aspectRatio, cfg.Width, cfg.Height)
	}

	return true, ""
}

// ImageDetails describes a decoded image for logging and diagnostics.
type ImageDetails struct {
	Format    string  `json:"format"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	SizeBytes int     `json:"size_bytes"`
	SizeMB    float64 `json:"size_mb"`
}

// ImageInfo inspects the payload without enforcing the policy.
func ImageInfo(imageBase64 string) (*ImageDetails, error) {
	imageBytes, err := DecodeBase64(imageBase64)
	if err != nil {
		return nil, err
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, err
	}
	return &ImageDetails{
		Format:    format,
		Width:     cfg.Width,
		Height:    cfg.Height,
		SizeBytes: len(imageBytes),
		SizeMB:    float64(len(imageBytes)) / (1024 * 1024),
	}, nil
}

// DetectMIMEType sniffs the container format from magic bytes, defaulting
// to JPEG when unsure. This is what gets sent to the provider alongside the
// raw bytes.
func DetectMIMEType(imageBytes []byte) string {
	switch {
	case bytes.HasPrefix(imageBytes, []byte("\x89PNG")):
		return "image/png"
	case bytes.HasPrefix(imageBytes, []byte("\xFF\xD8\xFF")):
		return "image/jpeg"
	case bytes.HasPrefix(imageBytes, []byte("GIF")):
		return "image/gif"
	case len(imageBytes) >= 12 && bytes.Equal(imageBytes[8:12], []byte("WEBP")):
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

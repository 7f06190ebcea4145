package processor

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

// pngBase64 encodes a solid-color PNG of the given size as base64.
func pngBase64(t *testing.T, width, height int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestStripDataURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain base64", "aGVsbG8=", "aGVsbG8="},
		{"png data url", "data:image/png;base64,aGVsbG8=", "aGVsbG8="},
		{"jpeg data url", "data:image/jpeg;base64,aGVsbG8=", "aGVsbG8="},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripDataURL(tt.input); got != tt.want {
				t.Errorf("StripDataURL(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDecodeBase64AcceptsUnpadded(t *testing.T) {
	padded := base64.StdEncoding.EncodeToString([]byte("payment"))
	unpadded := strings.TrimRight(padded, "=")

	for _, input := range []string{padded, unpadded} {
		got, err := DecodeBase64(input)
		if err != nil {
			t.Fatalf("DecodeBase64(%q) error: %v", input, err)
		}
		if string(got) != "payment" {
			t.Errorf("DecodeBase64(%q) = %q, want %q", input, got, "payment")
		}
	}
}

func TestGenerateImageHash(t *testing.T) {
	payload := pngBase64(t, 120, 120)

	hash1, imageBytes, err := GenerateImageHash(payload)
	if err != nil {
		t.Fatalf("GenerateImageHash error: %v", err)
	}
	if len(hash1) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(hash1))
	}
	if len(imageBytes) == 0 {
		t.Error("decoded bytes are empty")
	}

	// The hash must be independent of the data-URL prefix.
	hash2, _, err := GenerateImageHash("data:image/png;base64," + payload)
	if err != nil {
		t.Fatalf("GenerateImageHash with prefix error: %v", err)
	}
	if hash1 != hash2 {
		t.Errorf("hash differs with data-URL prefix: %s vs %s", hash1, hash2)
	}

	if _, _, err := GenerateImageHash("!!! not base64 !!!"); err == nil {
		t.Error("expected error for invalid base64")
	}
}

func TestValidateImage(t *testing.T) {
	tests := []struct {
		name       string
		payload    func(t *testing.T) string
		wantOK     bool
		wantSubstr string
	}{
		{
			name:    "valid screenshot-sized png",
			payload: func(t *testing.T) string { return pngBase64(t, 400, 800) },
			wantOK:  true,
		},
		{
			name:    "valid with data url prefix",
			payload: func(t *testing.T) string { return "data:image/png;base64," + pngBase64(t, 200, 200) },
			wantOK:  true,
		},
		{
			name:       "invalid base64",
			payload:    func(t *testing.T) string { return "!!! not base64 !!!" },
			wantOK:     false,
			wantSubstr: "Invalid base64",
		},
		{
			name: "not an image",
			payload: func(t *testing.T) string {
				return base64.StdEncoding.EncodeToString([]byte("this is a text file"))
			},
			wantOK:     false,
			wantSubstr: "Cannot open image",
		},
		{
			name:       "below minimum dimensions",
			payload:    func(t *testing.T) string { return pngBase64(t, 50, 50) },
			wantOK:     false,
			wantSubstr: "too small",
		},
		{
			name:       "width above maximum",
			payload:    func(t *testing.T) string { return pngBase64(t, MaxDimension+1, 200) },
			wantOK:     false,
			wantSubstr: "too large",
		},
		{
			name: "payload above size cap",
			payload: func(t *testing.T) string {
				// Size is checked before image decoding, so raw junk works.
				return base64.StdEncoding.EncodeToString(make([]byte, (MaxFileSizeMB+1)*1024*1024))
			},
			wantOK:     false,
			wantSubstr: "too large",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := ValidateImage(tt.payload(t))
			if ok != tt.wantOK {
				t.Fatalf("ValidateImage() ok = %v, want %v (reason: %s)", ok, tt.wantOK, reason)
			}
			if !tt.wantOK && !strings.Contains(reason, tt.wantSubstr) {
				t.Errorf("reason = %q, want substring %q", reason, tt.wantSubstr)
			}
			if tt.wantOK && reason != "" {
				t.Errorf("reason = %q, want empty on success", reason)
			}
		})
	}
}

func TestImageInfo(t *testing.T) {
	info, err := ImageInfo(pngBase64(t, 320, 640))
	if err != nil {
		t.Fatalf("ImageInfo error: %v", err)
	}
	if info.Format != "png" {
		t.Errorf("Format = %q, want png", info.Format)
	}
	if info.Width != 320 || info.Height != 640 {
		t.Errorf("dimensions = %dx%d, want 320x640", info.Width, info.Height)
	}
	if info.SizeBytes == 0 {
		t.Error("SizeBytes = 0")
	}
}

func TestDetectMIMEType(t *testing.T) {
	tests := []struct {
		name  string
		bytes []byte
		want  string
	}{
		{"png", []byte("\x89PNG\r\n\x1a\n"), "image/png"},
		{"jpeg", []byte("\xFF\xD8\xFF\xE0"), "image/jpeg"},
		{"gif", []byte("GIF89a"), "image/gif"},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), "image/webp"},
		{"unknown defaults to jpeg", []byte("????????"), "image/jpeg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectMIMEType(tt.bytes); got != tt.want {
				t.Errorf("DetectMIMEType = %q, want %q", got, tt.want)
			}
		})
	}
}

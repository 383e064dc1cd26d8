package canvas

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"regexp"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/image/draw"
)

var (
	dataURLPattern = regexp.MustCompile(`^data:image/(png|jpeg|jpg|gif);base64,`)

	ErrInvalidDataURL = errors.New("invalid image data URL")
)

// IsValidImageDataURL reports whether s is a base64 png, jpeg or gif data URL.
func IsValidImageDataURL(s string) bool {
	return dataURLPattern.MatchString(s)
}

func EncodeDataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURL returns the mime type and payload of a base64 data URL.
func DecodeDataURL(s string) (string, []byte, error) {
	header, payload, ok := strings.Cut(s, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return "", nil, ErrInvalidDataURL
	}
	mime := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
	if mime == "" {
		mime = "image/png"
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	return mime, data, nil
}

// Base64Size estimates the decoded byte size of a data URL's payload.
func Base64Size(dataURL string) int {
	_, payload, _ := strings.Cut(dataURL, ",")
	return len(payload) * 3 / 4
}

func FormatFileSize(bytes int) string {
	if bytes <= 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(bytes))
}

// ImageDimensions decodes only the header of a data URL image.
func ImageDimensions(dataURL string) (int, int, error) {
	_, data, err := DecodeDataURL(dataURL)
	if err != nil {
		return 0, 0, err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("decode image config: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// Compress scales the image down to fit maxWidth x maxHeight, keeping its
// aspect ratio, and re-encodes it as PNG. Images that already fit are
// re-encoded at their own size. Zero limits fall back to 800x600.
func Compress(dataURL string, maxWidth, maxHeight int) (string, error) {
	if maxWidth <= 0 {
		maxWidth = DefaultWidth
	}
	if maxHeight <= 0 {
		maxHeight = DefaultHeight
	}

	_, data, err := DecodeDataURL(dataURL)
	if err != nil {
		return "", err
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	if w > maxWidth || h > maxHeight {
		ratio := min(float64(maxWidth)/float64(w), float64(maxHeight)/float64(h))
		w = max(1, int(float64(w)*ratio))
		h = max(1, int(float64(h)*ratio))
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	return EncodeDataURL("image/png", buf.Bytes()), nil
}

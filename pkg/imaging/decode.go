package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrCorruptData       = errors.New("corrupt image data")
)

// DecodedImage is the pixel matrix a single pipeline run owns. It is never
// shared between runs.
type DecodedImage struct {
	Pixels image.Image
	Width  int
	Height int
	Format string
}

var signatures = []struct {
	format string
	magic  []byte
}{
	{"png", []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}},
	{"jpeg", []byte{0xFF, 0xD8, 0xFF}},
}

// SniffFormat inspects the leading bytes of data and returns the codec name.
// The declared content type from the upload is treated as a hint only.
func SniffFormat(data []byte) (string, error) {
	for _, sig := range signatures {
		if bytes.HasPrefix(data, sig.magic) {
			return sig.format, nil
		}
	}
	return "", ErrUnsupportedFormat
}

// Decode loads raw bytes into an in-memory pixel matrix. The byte signature
// decides the codec; hint is only used for error reporting.
func Decode(data []byte, hint string) (*DecodedImage, error) {
	format, err := SniffFormat(data)
	if err != nil {
		return nil, fmt.Errorf("%w: declared %q matches no supported codec", ErrUnsupportedFormat, hint)
	}

	var img image.Image
	switch format {
	case "png":
		img, err = png.Decode(bytes.NewReader(data))
	case "jpeg":
		img, err = jpeg.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCorruptData, err.Error())
	}

	bounds := img.Bounds()
	return &DecodedImage{
		Pixels: img,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Format: format,
	}, nil
}

// EncodePNG serializes a pixel matrix for the OCR engine. PNG is lossless so
// preprocessed output survives the round trip bit-exact.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

package ocr

import (
	"errors"
	"time"

	"golang.org/x/net/context"
)

var (
	ErrEngineUnavailable  = errors.New("ocr engine unavailable")
	ErrRecognitionTimeout = errors.New("ocr recognition timeout")
)

// Region is a rectangle in pixel coordinates, origin at the upper-left corner
// of the image.
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// TextRegion is one recognized token with its location and a confidence score
// in [0,1].
type TextRegion struct {
	Text       string  `json:"text"`
	Bounds     Region  `json:"bounds"`
	Confidence float64 `json:"confidence"`
}

// Result captures recognition output for one image. A blank image yields an
// empty PlainText and zero regions, never an error.
type Result struct {
	PlainText  string       `json:"plain_text"`
	Regions    []TextRegion `json:"regions"`
	Confidence float64      `json:"confidence"`
	Language   string       `json:"language,omitempty"`
}

// Options carries per-call recognition knobs.
type Options struct {
	// Languages is a list of Tesseract language codes (e.g. "eng"). Empty
	// means engine default.
	Languages []string
	// PageSegMode maps to tessedit_pageseg_mode; zero means engine default.
	PageSegMode int
	// Timeout bounds one recognition call. Zero means no budget.
	Timeout time.Duration
}

// Engine is the recognition provider contract: one encoded image in, one
// result out. Implementations must honor ctx cancellation.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, image []byte, opts Options) (Result, error)
}

// ClampConfidence forces a raw engine score into [0,1].
func ClampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

package ocr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"golang.org/x/net/context"
)

// TesseractEngine recognizes text through the gosseract client. Each call
// gets its own client; the Tesseract API is not safe for concurrent use on a
// shared handle.
type TesseractEngine struct {
	clientFactory func() *gosseract.Client
}

// NewTesseractEngine probes the installed Tesseract runtime and returns an
// engine bound to it. A missing or broken installation surfaces as
// ErrEngineUnavailable so callers can report "engine down" distinctly from
// bad input.
func NewTesseractEngine() (*TesseractEngine, error) {
	probe := gosseract.NewClient()
	defer probe.Close()

	if _, err := probe.GetAvailableLanguages(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrEngineUnavailable, err.Error())
	}

	return &TesseractEngine{clientFactory: gosseract.NewClient}, nil
}

func (e *TesseractEngine) Name() string { return "tesseract" }

// Recognize runs OCR over an encoded image. The blocking Tesseract call runs
// in its own goroutine so the configured budget and ctx cancellation are both
// honored; on timeout the goroutine finishes in the background and its client
// is closed there.
func (e *TesseractEngine) Recognize(ctx context.Context, image []byte, opts Options) (Result, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	type outcome struct {
		res Result
		err error
	}
	done := make(chan outcome, 1)

	go func() {
		c := e.clientFactory()
		defer c.Close()
		res, err := e.recognizeWithClient(c, image, opts)
		done <- outcome{res: res, err: err}
	}()

	select {
	case out := <-done:
		return out.res, out.err
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return Result{}, ErrRecognitionTimeout
		}
		return Result{}, ctx.Err()
	}
}

func (e *TesseractEngine) recognizeWithClient(c *gosseract.Client, image []byte, opts Options) (Result, error) {
	if err := c.SetImageFromBytes(image); err != nil {
		return Result{}, fmt.Errorf("set image: %w", err)
	}
	if len(opts.Languages) > 0 {
		if err := c.SetLanguage(opts.Languages...); err != nil {
			return Result{}, fmt.Errorf("%w: set languages: %s", ErrEngineUnavailable, err.Error())
		}
	}
	if opts.PageSegMode > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("tessedit_pageseg_mode"), strconv.Itoa(opts.PageSegMode)); err != nil {
			return Result{}, fmt.Errorf("set page segmentation mode: %w", err)
		}
	}

	text, err := c.Text()
	if err != nil {
		return Result{}, fmt.Errorf("recognize text: %w", err)
	}
	plain := strings.TrimSpace(text)

	regions, avgConf := extractRegions(c)

	return Result{
		PlainText:  plain,
		Regions:    regions,
		Confidence: avgConf,
		Language:   firstLanguage(opts.Languages),
	}, nil
}

// extractRegions pulls word-level boxes. Unreadable regions keep their low
// per-word confidence instead of failing the call; recognition is
// probabilistic and partial signal is still signal.
func extractRegions(c *gosseract.Client) ([]TextRegion, float64) {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return nil, 0
	}

	regions := make([]TextRegion, 0, len(boxes))
	var sum float64
	for _, b := range boxes {
		word := strings.TrimSpace(b.Word)
		if word == "" {
			continue
		}
		conf := ClampConfidence(b.Confidence / 100.0)
		sum += conf
		regions = append(regions, TextRegion{
			Text: word,
			Bounds: Region{
				X:      b.Box.Min.X,
				Y:      b.Box.Min.Y,
				Width:  b.Box.Dx(),
				Height: b.Box.Dy(),
			},
			Confidence: conf,
		})
	}
	if len(regions) == 0 {
		return nil, 0
	}
	return regions, sum / float64(len(regions))
}

func firstLanguage(langs []string) string {
	if len(langs) == 0 {
		return ""
	}
	return langs[0]
}

package pipeline

import (
	"errors"
	"runtime"
	"time"

	"ReceiptTracker/internal/entity"
	"ReceiptTracker/pkg/imaging"
	"ReceiptTracker/pkg/ocr"
	redisPkg "ReceiptTracker/pkg/redis"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

// Request is one image to push through the chain. Data is owned by the run
// and never shared with another run.
type Request struct {
	ReceiptID  string
	Data       []byte
	FormatHint string
	Transforms []string
	Options    ocr.Options
}

type StageTimings struct {
	DecodeMillis     int64 `json:"decode_ms"`
	PreprocessMillis int64 `json:"preprocess_ms"`
	RecognizeMillis  int64 `json:"recognize_ms"`
}

// Result is the assembled output of one run: recognition output joined with
// image metadata, applied transforms, accumulated warnings and timings.
type Result struct {
	ReceiptID  string           `json:"receipt_id"`
	PlainText  string           `json:"plain_text"`
	Regions    []ocr.TextRegion `json:"regions"`
	Confidence float64          `json:"confidence"`
	Language   string           `json:"language,omitempty"`
	Format     string           `json:"format"`
	Width      int              `json:"width"`
	Height     int              `json:"height"`
	Applied    []string         `json:"applied_transforms"`
	Warnings   []string         `json:"warnings,omitempty"`
	Degraded   bool             `json:"degraded"`
	Timings    StageTimings     `json:"timings"`
}

type IPipeline interface {
	Run(ctx context.Context, req Request) (*Result, error)
	Capacity() int
}

type pipeline struct {
	engine ocr.Engine
	redis  redisPkg.IRedis
	sem    chan struct{}
	log    *logrus.Logger
}

// New builds a runner with a bounded worker pool. workers <= 0 falls back to
// the CPU count.
func New(engine ocr.Engine, redis redisPkg.IRedis, workers int, logger *logrus.Logger) IPipeline {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &pipeline{
		engine: engine,
		redis:  redis,
		sem:    make(chan struct{}, workers),
		log:    logger,
	}
}

func (p *pipeline) Capacity() int {
	return cap(p.sem)
}

// Run executes decode, preprocess and recognize as a strict chain. Requests
// beyond pool capacity queue on the semaphore until a slot frees or ctx is
// done; they are never dropped. The slot is released exactly once on every
// exit path.
func (p *pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-p.sem }()

	record := entity.ProcessingRecord{
		ReceiptID: req.ReceiptID,
		Status:    entity.ProcessingPending,
		StartedAt: time.Now(),
	}
	p.putRecord(ctx, record)

	res, err := p.runStages(ctx, req, &record)

	now := time.Now()
	record.FinishedAt = &now
	if err != nil {
		record.Status = entity.ProcessingFailed
		record.ErrorCode = errorCode(err)
		p.putRecord(ctx, record)
		return nil, err
	}

	record.Status = entity.ProcessingSucceeded
	if res.Degraded {
		record.Status = entity.ProcessingDegraded
	}
	record.Warnings = res.Warnings
	record.Confidence = res.Confidence
	record.DecodeMillis = res.Timings.DecodeMillis
	record.PreprocessMillis = res.Timings.PreprocessMillis
	record.RecognizeMillis = res.Timings.RecognizeMillis
	p.putRecord(ctx, record)

	return res, nil
}

func (p *pipeline) runStages(ctx context.Context, req Request, record *entity.ProcessingRecord) (*Result, error) {
	start := time.Now()
	decoded, err := imaging.Decode(req.Data, req.FormatHint)
	if err != nil {
		return nil, err
	}
	decodeMs := time.Since(start).Milliseconds()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start = time.Now()
	pre, err := imaging.Preprocess(decoded, req.Transforms)
	if err != nil {
		return nil, err
	}
	preprocessMs := time.Since(start).Milliseconds()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	encoded, err := imaging.EncodePNG(pre.Pixels)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	ocrResult, err := p.engine.Recognize(ctx, encoded, req.Options)
	if err != nil {
		return nil, err
	}
	recognizeMs := time.Since(start).Milliseconds()

	return &Result{
		ReceiptID:  req.ReceiptID,
		PlainText:  ocrResult.PlainText,
		Regions:    ocrResult.Regions,
		Confidence: ocr.ClampConfidence(ocrResult.Confidence),
		Language:   ocrResult.Language,
		Format:     decoded.Format,
		Width:      decoded.Width,
		Height:     decoded.Height,
		Applied:    pre.Applied,
		Warnings:   pre.Warnings,
		Degraded:   len(pre.Warnings) > 0,
		Timings: StageTimings{
			DecodeMillis:     decodeMs,
			PreprocessMillis: preprocessMs,
			RecognizeMillis:  recognizeMs,
		},
	}, nil
}

// putRecord is best effort; a cache write failure must not fail the run.
// Anonymous runs (empty receipt ID, e.g. live previews) are not recorded.
func (p *pipeline) putRecord(ctx context.Context, record entity.ProcessingRecord) {
	if p.redis == nil || record.ReceiptID == "" {
		return
	}
	if err := p.redis.SetRecord(ctx, record); err != nil {
		p.log.WithFields(logrus.Fields{
			"receipt_id": record.ReceiptID,
			"error":      err.Error(),
		}).Warn("Failed to store processing record")
	}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, imaging.ErrUnsupportedFormat):
		return "UNSUPPORTED_FORMAT"
	case errors.Is(err, imaging.ErrCorruptData):
		return "CORRUPT_DATA"
	case errors.Is(err, imaging.ErrTransform):
		return "TRANSFORM_FAILED"
	case errors.Is(err, ocr.ErrEngineUnavailable):
		return "ENGINE_UNAVAILABLE"
	case errors.Is(err, ocr.ErrRecognitionTimeout):
		return "RECOGNITION_TIMEOUT"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "CANCELED"
	default:
		return "INTERNAL"
	}
}

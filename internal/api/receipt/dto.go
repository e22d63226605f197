package receipt

import (
	"time"

	"ReceiptTracker/internal/entity"
	"ReceiptTracker/internal/pipeline"
	"ReceiptTracker/pkg/ocr"
)

type UploadReceiptResponse struct {
	ID          string    `json:"id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}

type ListReceiptsResponse struct {
	Receipts []entity.Receipt `json:"receipts"`
	Count    int              `json:"count"`
}

type UpdateReceiptRequest struct {
	Vendor   string  `json:"vendor" validate:"omitempty,max=255"`
	Amount   float64 `json:"amount" validate:"omitempty,gte=0"`
	Date     string  `json:"date" validate:"omitempty,max=32"`
	Category string  `json:"category" validate:"omitempty,max=64"`
}

// ProcessReceiptRequest tunes one pipeline run. Both fields are optional;
// empty transforms means the default chain, empty languages means the engine
// default.
type ProcessReceiptRequest struct {
	Transforms []string `json:"transforms" validate:"omitempty,dive,oneof=grayscale denoise binarize deskew"`
	Languages  []string `json:"languages" validate:"omitempty,dive,alpha,min=3,max=7"`
}

type ProcessReceiptResponse struct {
	Receipt    entity.Receipt          `json:"receipt"`
	Status     entity.ProcessingStatus `json:"status"`
	Source     string                  `json:"extraction_source"`
	Confidence float64                 `json:"confidence"`
	Applied    []string                `json:"applied_transforms"`
	Warnings   []string                `json:"warnings,omitempty"`
	Regions    []ocr.TextRegion        `json:"regions,omitempty"`
	Timings    pipeline.StageTimings   `json:"timings"`
}

// PreviewResponse is the websocket reply for one binary frame.
type PreviewResponse struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Degraded   bool    `json:"degraded"`
}

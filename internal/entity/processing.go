package entity

import "time"

type ProcessingStatus string

const (
	ProcessingPending   ProcessingStatus = "pending"
	ProcessingSucceeded ProcessingStatus = "succeeded"
	ProcessingDegraded  ProcessingStatus = "degraded"
	ProcessingFailed    ProcessingStatus = "failed"
)

// ProcessingRecord correlates one uploaded receipt with the state of its
// pipeline run. Stored in Redis keyed by receipt ID so callers can poll
// status while a run is in flight.
type ProcessingRecord struct {
	ReceiptID  string           `json:"receipt_id"`
	Status     ProcessingStatus `json:"status"`
	ErrorCode  string           `json:"error_code,omitempty"`
	Warnings   []string         `json:"warnings,omitempty"`
	Confidence float64          `json:"confidence,omitempty"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt *time.Time       `json:"finished_at,omitempty"`

	DecodeMillis     int64 `json:"decode_ms,omitempty"`
	PreprocessMillis int64 `json:"preprocess_ms,omitempty"`
	RecognizeMillis  int64 `json:"recognize_ms,omitempty"`
}

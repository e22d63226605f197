package receiptService

import (
	"errors"
	"time"

	"ReceiptTracker/internal/api/receipt"
	"ReceiptTracker/internal/entity"
	"ReceiptTracker/internal/pipeline"
	contextPkg "ReceiptTracker/pkg/context"
	"ReceiptTracker/pkg/ocr"
	"ReceiptTracker/pkg/receiptparse"
	"ReceiptTracker/pkg/storage"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const (
	recognitionTimeout = 60 * time.Second
	previewTimeout     = 10 * time.Second

	// PSM 6 assumes a single uniform block of text, which fits receipt bodies.
	receiptPageSegMode = 6
)

func (s *receiptService) ProcessReceipt(c context.Context, user entity.UserLoginData, receiptID string, req receipt.ProcessReceiptRequest) (receipt.ProcessReceiptResponse, error) {
	requestID := contextPkg.GetRequestID(c)
	repo, err := s.repo.NewClient(true)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return receipt.ProcessReceiptResponse{}, err
	}
	defer repo.Rollback()

	rec, err := s.getOwnedReceipt(c, repo, user, receiptID)
	if err != nil {
		return receipt.ProcessReceiptResponse{}, err
	}

	data, err := s.fileStorage.Read(rec.FileHandle)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"receipt_id": rec.ID,
			"error":      err.Error(),
		}).Error("Failed to read stored receipt file")
		if errors.Is(err, storage.ErrNotFound) {
			return receipt.ProcessReceiptResponse{}, receipt.ErrFileMissing
		}
		return receipt.ProcessReceiptResponse{}, err
	}

	result, err := s.pipeline.Run(c, pipeline.Request{
		ReceiptID:  rec.ID,
		Data:       data,
		FormatHint: rec.ContentType,
		Transforms: req.Transforms,
		Options: ocr.Options{
			Languages:   req.Languages,
			PageSegMode: receiptPageSegMode,
			Timeout:     recognitionTimeout,
		},
	})
	if err != nil {
		return receipt.ProcessReceiptResponse{}, err
	}

	parsed := receiptparse.Parse(result.PlainText)
	source := "rules"

	if parsed.Empty() && s.geminiClient != nil {
		aiParsed, aiErr := s.geminiClient.ExtractReceiptFields(c, data, rec.ContentType)
		if aiErr != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"receipt_id": rec.ID,
				"error":      aiErr.Error(),
			}).Warn("AI extraction fallback failed, keeping rule output")
		} else {
			aiParsed.RawText = result.PlainText
			parsed = *aiParsed
			source = "ai"
		}
	}

	rec.Vendor = parsed.Vendor
	rec.Amount = parsed.Amount
	rec.Date = parsed.Date
	rec.Category = parsed.Category
	rec.RawText = result.PlainText

	if err := repo.Receipts.UpdateReceipt(c, rec); err != nil {
		return receipt.ProcessReceiptResponse{}, err
	}

	items := make([]entity.LineItem, 0, len(parsed.LineItems))
	for _, li := range parsed.LineItems {
		ULID, err := s.utils.NewULIDFromTimestamp(time.Now())
		if err != nil {
			return receipt.ProcessReceiptResponse{}, err
		}
		items = append(items, entity.LineItem{
			ID:         ULID,
			ReceiptID:  rec.ID,
			Name:       li.Name,
			Quantity:   li.Quantity,
			UnitPrice:  li.UnitPrice,
			TotalPrice: li.TotalPrice,
		})
	}

	if err := repo.LineItems.ReplaceForReceipt(c, rec.ID, items); err != nil {
		return receipt.ProcessReceiptResponse{}, err
	}

	if err := repo.Commit(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"receipt_id": rec.ID,
			"error":      err.Error(),
		}).Error("Failed to commit processing results")
		return receipt.ProcessReceiptResponse{}, err
	}

	rec.LineItems = items

	status := entity.ProcessingSucceeded
	if result.Degraded {
		status = entity.ProcessingDegraded
	}

	return receipt.ProcessReceiptResponse{
		Receipt:    rec,
		Status:     status,
		Source:     source,
		Confidence: result.Confidence,
		Applied:    result.Applied,
		Warnings:   result.Warnings,
		Regions:    result.Regions,
		Timings:    result.Timings,
	}, nil
}

func (s *receiptService) GetProcessingStatus(c context.Context, user entity.UserLoginData, receiptID string) (entity.ProcessingRecord, error) {
	repo, err := s.repo.NewClient(false)
	if err != nil {
		return entity.ProcessingRecord{}, err
	}

	if _, err := s.getOwnedReceipt(c, repo, user, receiptID); err != nil {
		return entity.ProcessingRecord{}, err
	}

	return s.redisServer.GetRecord(c, receiptID)
}

// PreviewFrame runs one websocket frame through the pipeline without touching
// the database or processing records.
func (s *receiptService) PreviewFrame(c context.Context, frame []byte) (receipt.PreviewResponse, error) {
	ctx, cancel := context.WithTimeout(c, previewTimeout)
	defer cancel()

	result, err := s.pipeline.Run(ctx, pipeline.Request{
		Data:       frame,
		FormatHint: "websocket-frame",
		Options: ocr.Options{
			PageSegMode: receiptPageSegMode,
			Timeout:     previewTimeout,
		},
	})
	if err != nil {
		return receipt.PreviewResponse{}, err
	}

	return receipt.PreviewResponse{
		Text:       result.PlainText,
		Confidence: result.Confidence,
		Degraded:   result.Degraded,
	}, nil
}

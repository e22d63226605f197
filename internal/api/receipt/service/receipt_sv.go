package receiptService

import (
	"errors"
	"mime/multipart"
	"time"

	"ReceiptTracker/internal/api/receipt"
	receiptRepository "ReceiptTracker/internal/api/receipt/repository"
	"ReceiptTracker/internal/entity"
	contextPkg "ReceiptTracker/pkg/context"
	"ReceiptTracker/pkg/storage"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func (s *receiptService) UploadReceipt(c context.Context, user entity.UserLoginData, file *multipart.FileHeader) (receipt.UploadReceiptResponse, error) {
	requestID := contextPkg.GetRequestID(c)
	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return receipt.UploadReceiptResponse{}, err
	}

	if err := s.utils.ValidateImageFile(file); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Rejected upload")
		return receipt.UploadReceiptResponse{}, receipt.ErrInvalidFileType
	}

	total, err := repo.Receipts.CountByUser(c, user.ID)
	if err != nil {
		return receipt.UploadReceiptResponse{}, err
	}
	if total >= entity.MaxReceiptsPerUser {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    user.ID,
			"total":      total,
		}).Warn("Receipt quota exceeded")
		return receipt.UploadReceiptResponse{}, receipt.ErrReceiptQuotaExceeded
	}

	src, err := file.Open()
	if err != nil {
		return receipt.UploadReceiptResponse{}, receipt.ErrFailedToStoreFile
	}
	defer src.Close()

	data, err := s.utils.ReadMultipartFile(src)
	if err != nil {
		return receipt.UploadReceiptResponse{}, receipt.ErrFailedToStoreFile
	}

	handle, err := s.fileStorage.Save(file.Filename, data)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to store uploaded file")
		return receipt.UploadReceiptResponse{}, receipt.ErrFailedToStoreFile
	}

	ULID, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		return receipt.UploadReceiptResponse{}, err
	}

	rec := entity.Receipt{
		ID:          ULID,
		UserID:      user.ID,
		FileHandle:  handle,
		FileName:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
	}

	if err := repo.Receipts.CreateReceipt(c, rec); err != nil {
		// Keep storage consistent with the database.
		if delErr := s.fileStorage.Delete(handle); delErr != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      delErr.Error(),
			}).Warn("Failed to clean up stored file after insert failure")
		}
		return receipt.UploadReceiptResponse{}, err
	}

	return receipt.UploadReceiptResponse{
		ID:          rec.ID,
		FileName:    rec.FileName,
		ContentType: rec.ContentType,
		CreatedAt:   time.Now(),
	}, nil
}

func (s *receiptService) ListReceipts(c context.Context, user entity.UserLoginData) (receipt.ListReceiptsResponse, error) {
	requestID := contextPkg.GetRequestID(c)
	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return receipt.ListReceiptsResponse{}, err
	}

	receipts, err := repo.Receipts.ListByUser(c, user.ID)
	if err != nil {
		return receipt.ListReceiptsResponse{}, err
	}

	for i := range receipts {
		items, err := repo.LineItems.ListByReceipt(c, receipts[i].ID)
		if err != nil {
			return receipt.ListReceiptsResponse{}, err
		}
		receipts[i].LineItems = items
	}

	return receipt.ListReceiptsResponse{
		Receipts: receipts,
		Count:    len(receipts),
	}, nil
}

func (s *receiptService) GetReceipt(c context.Context, user entity.UserLoginData, receiptID string) (entity.Receipt, error) {
	repo, err := s.repo.NewClient(false)
	if err != nil {
		return entity.Receipt{}, err
	}

	rec, err := s.getOwnedReceipt(c, repo, user, receiptID)
	if err != nil {
		return entity.Receipt{}, err
	}

	items, err := repo.LineItems.ListByReceipt(c, rec.ID)
	if err != nil {
		return entity.Receipt{}, err
	}
	rec.LineItems = items

	return rec, nil
}

func (s *receiptService) UpdateReceipt(c context.Context, user entity.UserLoginData, receiptID string, req receipt.UpdateReceiptRequest) (entity.Receipt, error) {
	repo, err := s.repo.NewClient(false)
	if err != nil {
		return entity.Receipt{}, err
	}

	rec, err := s.getOwnedReceipt(c, repo, user, receiptID)
	if err != nil {
		return entity.Receipt{}, err
	}

	if req.Vendor != "" {
		rec.Vendor = req.Vendor
	}
	if req.Amount != 0 {
		rec.Amount = req.Amount
	}
	if req.Date != "" {
		rec.Date = req.Date
	}
	if req.Category != "" {
		rec.Category = req.Category
	}

	if err := repo.Receipts.UpdateReceipt(c, rec); err != nil {
		return entity.Receipt{}, err
	}

	items, err := repo.LineItems.ListByReceipt(c, rec.ID)
	if err != nil {
		return entity.Receipt{}, err
	}
	rec.LineItems = items

	return rec, nil
}

func (s *receiptService) DeleteReceipt(c context.Context, user entity.UserLoginData, receiptID string) error {
	requestID := contextPkg.GetRequestID(c)
	repo, err := s.repo.NewClient(false)
	if err != nil {
		return err
	}

	rec, err := s.getOwnedReceipt(c, repo, user, receiptID)
	if err != nil {
		return err
	}

	if err := repo.Receipts.DeleteReceipt(c, rec.ID); err != nil {
		return err
	}

	// File and record cleanup is best effort; the row is already gone.
	if err := s.fileStorage.Delete(rec.FileHandle); err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to delete stored receipt file")
	}
	if err := s.redisServer.DeleteRecord(c, rec.ID); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to delete processing record")
	}

	return nil
}

// getOwnedReceipt fetches a receipt and hides other users' rows behind the
// same not-found error as missing ones.
func (s *receiptService) getOwnedReceipt(c context.Context, repo receiptRepository.Client, user entity.UserLoginData, receiptID string) (entity.Receipt, error) {
	rec, err := repo.Receipts.GetByID(c, receiptID)
	if err != nil {
		return entity.Receipt{}, err
	}
	if rec.UserID != user.ID {
		return entity.Receipt{}, receipt.ErrReceiptNotFound
	}
	return rec, nil
}

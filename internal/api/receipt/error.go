package receipt

import (
	"net/http"

	"ReceiptTracker/pkg/response"
)

var (
	ErrReceiptNotFound      = response.NewError(http.StatusNotFound, "receipt not found")
	ErrReceiptQuotaExceeded = response.NewError(http.StatusTooManyRequests, "maximum number of receipts reached, delete some receipts to upload new ones")
	ErrInvalidFileType      = response.NewError(http.StatusBadRequest, "invalid file type, only JPEG and PNG images are allowed")
	ErrFileTooLarge         = response.NewError(http.StatusBadRequest, "file too large, maximum size is 5MB")
	ErrFileMissing          = response.NewError(http.StatusNotFound, "receipt image file not found")
	ErrFailedToStoreFile    = response.NewError(http.StatusInternalServerError, "failed to store uploaded file")
)

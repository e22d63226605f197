package handlerUtil

import (
	"errors"

	"ReceiptTracker/pkg/imaging"
	"ReceiptTracker/pkg/log"
	"ReceiptTracker/pkg/ocr"
	"ReceiptTracker/pkg/redis"
	"ReceiptTracker/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
)

type ErrorHandler struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

// mapping translates every domain sentinel into a distinct HTTP status +
// code so callers can tell bad input from engine-down from quota.
var mapping = []struct {
	err     error
	status  int
	code    string
	message string
	level   logrus.Level
}{
	// Pipeline: decode failures are the caller's input, engine failures are
	// ours and retryable.
	{imaging.ErrUnsupportedFormat, fiber.StatusBadRequest, "UNSUPPORTED_FORMAT", "Unsupported image format", logrus.WarnLevel},
	{imaging.ErrCorruptData, fiber.StatusBadRequest, "CORRUPT_DATA", "Image data is corrupt or truncated", logrus.WarnLevel},
	{ocr.ErrEngineUnavailable, fiber.StatusServiceUnavailable, "ENGINE_UNAVAILABLE", "OCR engine unavailable, retry later", logrus.ErrorLevel},
	{ocr.ErrRecognitionTimeout, fiber.StatusGatewayTimeout, "RECOGNITION_TIMEOUT", "OCR processing exceeded its time budget, retry later", logrus.WarnLevel},

	{redis.ErrRecordNotFound, fiber.StatusNotFound, "RECORD_NOT_FOUND", "No processing record for this receipt", logrus.WarnLevel},
}

func (h *ErrorHandler) Handle(c *fiber.Ctx, requestID string, err error, path string, operation string) error {
	fields := log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
		"operation":  operation,
	}

	var respErr *response.Error
	if errors.As(err, &respErr) {
		h.logger.WithFields(fields).Warn("Operation failed with error response")
		return c.Status(respErr.Code).JSON(fiber.Map{"error": err.Error()})
	}

	for _, m := range mapping {
		if errors.Is(err, m.err) {
			h.logger.WithFields(fields).Log(m.level, m.message)
			return c.Status(m.status).JSON(fiber.Map{
				"error": m.message,
				"code":  m.code,
			})
		}
	}

	h.logger.WithFields(fields).Error("Unexpected error")

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "An unexpected error occurred",
	})
}

func (h *ErrorHandler) HandleValidationError(c *fiber.Ctx, requestID string, err error, path string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
	}).Warn("Validation failed")

	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "Validation failed: " + err.Error(),
		"code":  "VALIDATION_ERROR",
	})
}

func (h *ErrorHandler) HandleRequestTimeout(c *fiber.Ctx) error {
	return c.Status(fiber.StatusRequestTimeout).JSON(utils.StatusMessage(fiber.StatusRequestTimeout))
}

func (h *ErrorHandler) HandleUnauthorized(c *fiber.Ctx, requestID string, message string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"path":       c.Path(),
		"message":    message,
	}).Warn("Unauthorized access")

	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": message,
		"code":  "UNAUTHORIZED",
	})
}

func (h *ErrorHandler) HandleSuccess(c *fiber.Ctx, statusCode int, data interface{}) error {
	if data == nil {
		return c.SendStatus(statusCode)
	}
	return c.Status(statusCode).JSON(data)
}

package middleware

import (
	"strings"
	"time"

	"ReceiptTracker/pkg/log"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

func LoggerConfig() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID, ok := c.Locals("X-Request-ID").(string)
		if !ok || requestID == "" {
			requestID = "unknown"
		}

		c.Locals("request_id", requestID)

		err := c.Next()

		latency := time.Since(start)
		status := c.Response().StatusCode()

		if err != nil && status == fiber.StatusInternalServerError {
			return err
		}

		logFields := log.Fields{
			"request_id":    requestID,
			"method":        c.Method(),
			"path":          c.Path(),
			"status":        status,
			"latency_ms":    latency.Milliseconds(),
			"ip":            c.IP(),
			"host":          c.Hostname(),
			"user_agent":    c.Get("User-Agent"),
			"response_size": len(c.Response().Body()),
		}

		// Uploads carry binary multipart bodies, only log JSON bodies.
		contentType := string(c.Request().Header.ContentType())
		if len(c.Request().Body()) > 0 && strings.HasPrefix(contentType, fiber.MIMEApplicationJSON) {
			logFields["request_body"] = sanitizeRequestBody(c.Path(), string(c.Request().Body()))
		}

		if status >= 500 {
			log.Error(logFields, "Server error")
		} else if status >= 400 {
			log.Warn(logFields, "Client error")
		} else {
			log.Info(logFields, "Success")
		}

		return err
	}
}

func sanitizeRequestBody(path string, body string) string {
	var jsonBody map[string]interface{}
	if err := jsoniter.Unmarshal([]byte(body), &jsonBody); err != nil {
		return "[non-JSON body]"
	}

	sensitiveFields := []string{
		"password", "token", "secret", "key", "auth",
		"credential", "authorization",
	}

	if strings.Contains(path, "/auth") {
		sensitiveFields = append(sensitiveFields, "password_confirmation", "old_password", "new_password")
	}

	for _, field := range sensitiveFields {
		if _, exists := jsonBody[field]; exists {
			jsonBody[field] = "[SECRET]"
		}
	}

	sanitized, err := jsoniter.Marshal(jsonBody)
	if err != nil {
		return "[sanitization-failed]"
	}

	return string(sanitized)
}

type loggingMiddleware struct {
	logger *logrus.Logger
}

func newLoggingMiddleware(logger *logrus.Logger) *loggingMiddleware {
	return &loggingMiddleware{
		logger: logger,
	}
}

package handlerUtil

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"ReceiptTracker/pkg/imaging"
	"ReceiptTracker/pkg/ocr"
	"ReceiptTracker/pkg/redis"
	"ReceiptTracker/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

func statusFor(t *testing.T, err error) int {
	t.Helper()
	app := fiber.New()
	h := New(logrus.New())

	app.Get("/boom", func(c *fiber.Ctx) error {
		return h.Handle(c, "test-request", err, c.Path(), "test_operation")
	})

	resp, testErr := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	if testErr != nil {
		t.Fatalf("app.Test() error = %v", testErr)
	}
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestHandleMapsSentinelErrors(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{imaging.ErrUnsupportedFormat, fiber.StatusBadRequest},
		{imaging.ErrCorruptData, fiber.StatusBadRequest},
		{fmt.Errorf("decode: %w", imaging.ErrCorruptData), fiber.StatusBadRequest},
		{ocr.ErrEngineUnavailable, fiber.StatusServiceUnavailable},
		{ocr.ErrRecognitionTimeout, fiber.StatusGatewayTimeout},
		{redis.ErrRecordNotFound, fiber.StatusNotFound},
		{errors.New("something else"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := statusFor(t, tc.err); got != tc.want {
			t.Fatalf("Handle(%v) status = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestHandleRespectsResponseErrorCode(t *testing.T) {
	err := response.NewError(fiber.StatusTooManyRequests, "quota exceeded")
	if got := statusFor(t, err); got != fiber.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", got, fiber.StatusTooManyRequests)
	}
}

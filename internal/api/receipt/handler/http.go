package receiptHandler

import (
	receiptService "ReceiptTracker/internal/api/receipt/service"
	"ReceiptTracker/internal/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type ReceiptHandler struct {
	log            *logrus.Logger
	validator      *validator.Validate
	middleware     middleware.Middleware
	receiptService receiptService.IReceiptService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	rs receiptService.IReceiptService,
) *ReceiptHandler {
	return &ReceiptHandler{
		log:            log,
		validator:      validate,
		middleware:     middleware,
		receiptService: rs,
	}
}

func (h *ReceiptHandler) Start(srv fiber.Router) {
	receipts := srv.Group("/receipts")

	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
	receipts.Use("/ws", wsMiddleware)
	receipts.Get("/ws", websocket.New(h.handlePreviewWebSocket))

	receipts.Post("/upload", h.middleware.NewTokenMiddleware, h.HandleUpload)
	receipts.Get("/", h.middleware.NewTokenMiddleware, h.HandleList)
	receipts.Get("/:id", h.middleware.NewTokenMiddleware, h.HandleGet)
	receipts.Put("/:id", h.middleware.NewTokenMiddleware, h.HandleUpdate)
	receipts.Delete("/:id", h.middleware.NewTokenMiddleware, h.HandleDelete)
	receipts.Post("/:id/process", h.middleware.NewTokenMiddleware, h.HandleProcess)
	receipts.Get("/:id/status", h.middleware.NewTokenMiddleware, h.HandleStatus)
}

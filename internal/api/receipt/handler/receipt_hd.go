package receiptHandler

import (
	"time"

	"ReceiptTracker/internal/api/receipt"
	contextPkg "ReceiptTracker/pkg/context"
	"ReceiptTracker/pkg/handlerUtil"
	jwtPkg "ReceiptTracker/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

func (h *ReceiptHandler) HandleUpload(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 30*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	user, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized, access token invalid or expired")
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		return errHandler.Handle(ctx, requestID, receipt.ErrInvalidFileType, ctx.Path(), "read_multipart_file")
	}

	res, err := h.receiptService.UploadReceipt(c, user, file)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "upload_receipt")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusCreated, res)
	}
}

func (h *ReceiptHandler) HandleList(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	user, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized, access token invalid or expired")
	}

	res, err := h.receiptService.ListReceipts(c, user)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "list_receipts")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
	}
}

func (h *ReceiptHandler) HandleGet(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	user, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized, access token invalid or expired")
	}

	res, err := h.receiptService.GetReceipt(c, user, ctx.Params("id"))
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_receipt")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
	}
}

func (h *ReceiptHandler) HandleUpdate(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	user, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized, access token invalid or expired")
	}

	var req receipt.UpdateReceiptRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	res, err := h.receiptService.UpdateReceipt(c, user, ctx.Params("id"), req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "update_receipt")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
	}
}

func (h *ReceiptHandler) HandleDelete(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	user, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized, access token invalid or expired")
	}

	if err := h.receiptService.DeleteReceipt(c, user, ctx.Params("id")); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "delete_receipt")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusNoContent, nil)
	}
}

func (h *ReceiptHandler) HandleProcess(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 90*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	user, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized, access token invalid or expired")
	}

	// Body is optional: no body means default transforms and languages.
	var req receipt.ProcessReceiptRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
		}
		if err := h.validator.Struct(req); err != nil {
			return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
		}
	}

	res, err := h.receiptService.ProcessReceipt(c, user, ctx.Params("id"), req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "process_receipt")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
	}
}

func (h *ReceiptHandler) HandleStatus(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	user, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized, access token invalid or expired")
	}

	record, err := h.receiptService.GetProcessingStatus(c, user, ctx.Params("id"))
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_processing_status")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, record)
	}
}

package handler

import (
	"io"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskpilot/backend/api/transport"
	"github.com/taskpilot/backend/domain"
	"github.com/taskpilot/backend/pkg/httpcontext"
	attachmentUC "github.com/taskpilot/backend/usecase/attachment"
)

type AttachmentHandler struct {
	baseHandler
	uc          *attachmentUC.UseCase
	maxFileSize int
}

func NewAttachmentHandler(uc *attachmentUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger, maxFileSize int) *AttachmentHandler {
	if maxFileSize <= 0 {
		maxFileSize = 16 << 20
	}
	return &AttachmentHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		maxFileSize: maxFileSize,
	}
}

// @Summary Upload attachments to a task
// @Tags attachments
// @Router /api/v1/tasks/{id}/attachments [post]
func (h *AttachmentHandler) Upload(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	taskID, _ := ctx.UserValue("id").(string)
	if taskID == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing task id", nil))
		return
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "multipart form required", nil))
		return
	}

	var uploads []attachmentUC.Upload
	for _, header := range form.File["attachments"] {
		if header.Size > int64(h.maxFileSize) {
			h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "file too large", nil))
			return
		}
		file, err := header.Open()
		if err != nil {
			h.respondError(ctx, err)
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			h.respondError(ctx, err)
			return
		}
		uploads = append(uploads, attachmentUC.Upload{Name: header.Filename, Data: data})
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	stored, err := h.uc.Store(stdCtx, actor, taskID, uploads)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, stored)
}

// @Summary List attachments for a task
// @Tags attachments
// @Router /api/v1/tasks/{id}/attachments [get]
func (h *AttachmentHandler) List(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	taskID, _ := ctx.UserValue("id").(string)
	if taskID == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing task id", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	attachments, err := h.uc.List(stdCtx, actor, taskID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, attachments)
}

// @Summary Download an attachment
// @Tags attachments
// @Router /api/v1/attachments/{id}/download [get]
func (h *AttachmentHandler) Download(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}
	attachmentID, _ := ctx.UserValue("id").(string)
	if attachmentID == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing attachment id", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	path, name, err := h.uc.Open(stdCtx, actor, attachmentID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.Response.Header.Set("Content-Disposition", `attachment; filename="`+name+`"`)
	fasthttp.ServeFile(ctx, path)
}

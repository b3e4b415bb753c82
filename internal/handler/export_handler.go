package handler

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/minsu-dev/board-api/internal/service"
	appErrors "github.com/minsu-dev/board-api/pkg/errors"
	"github.com/minsu-dev/board-api/pkg/response"
)

// ExportHandler wires HTTP endpoints to the export service.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler creates a new handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// ExportPosts godoc
// @Summary Export posts
// @Description Render all posts into a CSV or PDF file; admin only. Returns a signed, expiring download URL.
// @Tags Exports
// @Produce json
// @Param format query string false "Export format (csv or pdf)" default(csv)
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/exports/posts [get]
func (h *ExportHandler) ExportPosts(c *gin.Context) {
	user := userFromContext(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if !user.IsAdmin {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "admin access required"))
		return
	}

	result, err := h.service.ExportPosts(c.Request.Context(), c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result, nil)
}

// Download godoc
// @Summary Download an export file
// @Description Serve an export file referenced by a signed download token
// @Tags Exports
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} file
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /downloads/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	path, err := h.service.ResolveDownload(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.FileAttachment(path, filepath.Base(path))
}

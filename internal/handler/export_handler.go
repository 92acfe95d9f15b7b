package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bittutor/bittutor-api/internal/models"
	"github.com/bittutor/bittutor-api/internal/service"
	"github.com/bittutor/bittutor-api/pkg/response"
)

// ExportHandler exposes roster export endpoints.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Enqueue godoc
// @Summary Schedule a subscriber roster export for a course
// @Tags Exports
// @Produce json
// @Param id path int true "Course ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 202 {object} response.Envelope
// @Router /courses/{id}/exports [post]
func (h *ExportHandler) Enqueue(c *gin.Context) {
	courseID, err := intParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	format := models.ExportFormat(c.DefaultQuery("format", string(models.ExportCSV)))
	job, err := h.exports.Enqueue(c.Request.Context(), courseID, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// Download godoc
// @Summary Download a finished roster export
// @Tags Exports
// @Produce octet-stream
// @Param file path string true "Export file name"
// @Success 200
// @Router /exports/{file} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	data, err := h.exports.Result(c.Param("file"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Data(http.StatusOK, "application/octet-stream", data)
}

package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codewithmorais/quiz-session-service/internal/services"
	"github.com/codewithmorais/quiz-session-service/internal/utils"
)

type ExportHandler struct {
	BaseHandler
	exportService services.ExportService
}

func NewExportHandler(exportService services.ExportService, logger utils.Logger) *ExportHandler {
	return &ExportHandler{
		BaseHandler:   NewBaseHandler(logger),
		exportService: exportService,
	}
}

// ExportResults downloads the authenticated user's answer history as xlsx
// @Summary Export results
// @Tags exports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Failure 401 {object} ErrorResponse
// @Router /exports/results [get]
func (h *ExportHandler) ExportResults(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	h.LogRequest(c, "Exporting user results")

	data, err := h.exportService.ExportUserResults(c.Request.Context(), userID.(string))
	if err != nil {
		h.LogError(c, err, "Failed to export results")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Failed to export results",
		})
		return
	}

	filename := fmt.Sprintf("quiz-results-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/pos-api/internal/application/service"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/response"
)

// ReportHandler serves the dashboard figures
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Dashboard returns ledger totals, billed orders, outstanding udhar and low stock
func (h *ReportHandler) Dashboard(c *gin.Context) {
	var rng request.DateRangeRequest
	if err := c.ShouldBindQuery(&rng); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}
	if rng.DateRange == "" {
		rng.DateRange = "today"
	}

	summary, err := h.reportService.GetSummary(c.Request.Context(), rangeInput(rng))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Dashboard retrieved successfully", gin.H{"summary": summary})
}

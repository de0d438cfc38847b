package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/floristportal/internal/server/http/dto"
)

// ReportHandler serves admin reports.
type ReportHandler struct {
	facade ReportFacade
	logger *slog.Logger
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(facade ReportFacade, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{facade: facade, logger: logger}
}

// Summary handles GET /api/reports/summary.
func (h *ReportHandler) Summary(c *gin.Context) {
	q, ok := bindListQuery(c)
	if !ok {
		return
	}
	report, err := h.facade.ReportSummary(c.Request.Context(), CurrentActor(c), q)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSummaryResponse(report.Summary))
}

// ExportCSV handles GET /api/reports/orders.csv. The file is rendered into
// memory first so a failure can still produce a JSON error.
func (h *ReportHandler) ExportCSV(c *gin.Context) {
	q, ok := bindListQuery(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.facade.ExportOrders(c.Request.Context(), CurrentActor(c), q, &buf); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "orders.csv"))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

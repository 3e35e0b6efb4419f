package handler

import (
	"net/http"

	"inventorypro/internal/service"
)

// ReportHandler serves analytics and the dashboard.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler creates a ReportHandler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Sales handles GET /api/reports/sales.
func (h *ReportHandler) Sales(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.BuildSalesReport(r.Context())
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, report)
}

// Dashboard handles GET /api/dashboard.
func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.reports.BuildDashboard(r.Context())
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, dashboard)
}

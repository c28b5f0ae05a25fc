package handlers

import (
	"net/http"

	"github.com/Dosada05/tournament-runner/services"
)

type ReportHandler struct {
	reportService services.ReportService
}

func NewReportHandler(rs services.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: rs,
	}
}

// ListHandler обрабатывает GET /reports
func (h *ReportHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reportService.ListReports(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"reports": reports}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetHandler обрабатывает GET /reports/{number}
func (h *ReportHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	number, err := getNumberFromURL(r, "number")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	report, err := h.reportService.GetReport(r.Context(), number)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"report": report}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

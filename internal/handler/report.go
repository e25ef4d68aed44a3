package handler

import (
	"errors"
	"net/http"

	"github.com/prepost/prepost-go/internal/middleware"
	"github.com/prepost/prepost-go/internal/model"
	"github.com/prepost/prepost-go/internal/service"
)

// ReportHandler handles HTTP requests for filing reports.
type ReportHandler struct {
	service *service.ReportService
}

func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// HandleFile handles POST /api/v1/reports requests.
func (h *ReportHandler) HandleFile(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	var req model.FileReportRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	report, err := h.service.File(r.Context(), sess.ID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReportFieldsRequired):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		case errors.Is(err, service.ErrMessageNotFound):
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
		case errors.Is(err, service.ErrNotRecipient):
			writeJSON(w, http.StatusForbidden, errorResponse(err.Error()))
		case errors.Is(err, service.ErrDuplicateReport):
			writeJSON(w, http.StatusConflict, errorResponse(err.Error()))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"report_id": report.ID})
}

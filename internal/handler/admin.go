package handler

import (
	"errors"
	"net/http"

	"github.com/prepost/prepost-go/internal/service"
)

// AdminHandler handles the admin console API. Every route here sits behind
// the allow-list middleware; these handlers assume an authorized caller.
type AdminHandler struct {
	admin   *service.AdminService
	reports *service.ReportService
}

func NewAdminHandler(admin *service.AdminService, reports *service.ReportService) *AdminHandler {
	return &AdminHandler{admin: admin, reports: reports}
}

// HandleOverview handles GET /api/v1/admin requests.
func (h *AdminHandler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.admin.Overview(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

// HandleStats handles GET /api/v1/admin/stats requests.
func (h *AdminHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.Stats(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// HandleUsers handles GET /api/v1/admin/users requests.
func (h *AdminHandler) HandleUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.admin.Users(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}
	writeJSON(w, http.StatusOK, users)
}

type adminActionRequest struct {
	Action   string `json:"action"`
	UserID   string `json:"user_id,omitempty"`
	ReportID string `json:"report_id,omitempty"`
}

// HandleAction handles POST /api/v1/admin/actions requests: the moderation
// verbs suspend, unsuspend, dismiss-report and suspend-from-report.
func (h *AdminHandler) HandleAction(w http.ResponseWriter, r *http.Request) {
	var req adminActionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var err error
	switch req.Action {
	case "suspend":
		err = h.reports.SuspendUser(r.Context(), req.UserID)
	case "unsuspend":
		err = h.reports.UnsuspendUser(r.Context(), req.UserID)
	case "dismiss-report":
		err = h.reports.Dismiss(r.Context(), req.ReportID)
	case "suspend-from-report":
		err = h.reports.SuspendFromReport(r.Context(), req.ReportID)
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid action"))
		return
	}

	if err != nil {
		switch {
		case errors.Is(err, service.ErrReportNotFound), errors.Is(err, service.ErrUserNotFound):
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
		case errors.Is(err, service.ErrReportReviewed):
			writeJSON(w, http.StatusConflict, errorResponse(err.Error()))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// HandlePendingReports handles GET /api/v1/admin/reports requests.
func (h *AdminHandler) HandlePendingReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reports.Pending(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

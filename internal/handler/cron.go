package handler

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/prepost/prepost-go/internal/service"
)

// CronHandler exposes externally triggered batch jobs. The trigger is
// authenticated with a shared-secret bearer token, not a user session.
type CronHandler struct {
	messages *service.MessageService
	secret   string
}

func NewCronHandler(svc *service.MessageService, secret string) *CronHandler {
	return &CronHandler{messages: svc, secret: secret}
}

// HandleReminderSweep handles POST /api/v1/cron/reminders requests. The
// sweep is idempotent, so redundant or overlapping triggers are harmless.
func (h *CronHandler) HandleReminderSweep(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	result, err := h.messages.RunReminderSweep(r.Context(), time.Now())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *CronHandler) authorized(r *http.Request) bool {
	if h.secret == "" {
		return false
	}
	token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !found {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.secret)) == 1
}

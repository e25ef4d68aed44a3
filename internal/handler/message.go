package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prepost/prepost-go/internal/middleware"
	"github.com/prepost/prepost-go/internal/model"
	"github.com/prepost/prepost-go/internal/service"
)

// MessageHandler handles HTTP requests for the message lifecycle.
type MessageHandler struct {
	service *service.MessageService
}

func NewMessageHandler(svc *service.MessageService) *MessageHandler {
	return &MessageHandler{service: svc}
}

// HandleSend handles POST /api/v1/messages requests.
func (h *MessageHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	var req model.SendMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	msg, err := h.service.Send(r.Context(), sess.ID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields),
			errors.Is(err, service.ErrBlockedContent),
			errors.Is(err, service.ErrBlockedName):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		case errors.Is(err, service.ErrAccountSuspended):
			writeJSON(w, http.StatusForbidden, errorResponse(err.Error()))
		case errors.Is(err, service.ErrDuplicateRecipient):
			writeJSON(w, http.StatusConflict, errorResponse(err.Error()))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message_id": msg.ID})
}

// HandleRead handles GET /api/v1/messages/{id} requests: the credit-gated
// read-unlock. 402 signals the caller to route to the unlock prompt.
func (h *MessageHandler) HandleRead(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	id := chi.URLParam(r, "id")
	msg, spent, err := h.service.Read(r.Context(), id, sess.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMessageNotFound):
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
		case errors.Is(err, service.ErrNotRecipient):
			writeJSON(w, http.StatusForbidden, errorResponse(err.Error()))
		case errors.Is(err, service.ErrInsufficientCredits):
			writeJSON(w, http.StatusPaymentRequired, map[string]any{
				"error":         err.Error(),
				"needs_credits": true,
			})
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, model.ReadMessageResponse{
		Message:     model.MessageToResponse(msg),
		CreditSpent: spent,
	})
}

// HandleDelete handles DELETE /api/v1/messages/{id} requests.
func (h *MessageHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), id, sess.ID); err != nil {
		switch {
		case errors.Is(err, service.ErrMessageNotFound):
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
		case errors.Is(err, service.ErrNotRecipient):
			writeJSON(w, http.StatusForbidden, errorResponse(err.Error()))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleInbox handles GET /api/v1/messages requests.
func (h *MessageHandler) HandleInbox(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	messages, err := h.service.Inbox(r.Context(), sess.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	resp := make([]model.MessageResponse, 0, len(messages))
	for i := range messages {
		resp = append(resp, model.MessageToResponse(&messages[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleSent handles GET /api/v1/messages/sent requests.
func (h *MessageHandler) HandleSent(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	messages, err := h.service.Sent(r.Context(), sess.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	resp := make([]model.SentMessageResponse, 0, len(messages))
	for i := range messages {
		resp = append(resp, model.MessageToSentResponse(&messages[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

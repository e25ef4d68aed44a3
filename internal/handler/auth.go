package handler

import (
	"errors"
	"net/http"

	"github.com/prepost/prepost-go/internal/middleware"
	"github.com/prepost/prepost-go/internal/model"
	"github.com/prepost/prepost-go/internal/service"
)

// AuthHandler handles HTTP requests for passwordless authentication.
type AuthHandler struct {
	service       *service.AuthService
	cookieMaxAge  int
	secureCookies bool
}

func NewAuthHandler(svc *service.AuthService, cookieMaxAge int, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		service:       svc,
		cookieMaxAge:  cookieMaxAge,
		secureCookies: secureCookies,
	}
}

// HandleLogin handles POST /api/v1/auth/login requests.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.RequestLogin(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailRequired):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		case errors.Is(err, service.ErrAccountSuspended):
			writeJSON(w, http.StatusForbidden, errorResponse(err.Error()))
		case errors.Is(err, service.ErrEmailDispatch):
			writeJSON(w, http.StatusInternalServerError, errorResponse(err.Error()))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleVerify handles GET /api/v1/auth/verify?token= requests. On success
// the session credential is set as an http-only cookie.
func (h *AuthHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.VerifyLogin(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTokenInvalid),
			errors.Is(err, service.ErrTokenUsed),
			errors.Is(err, service.ErrTokenExpired):
			writeJSON(w, http.StatusUnauthorized, errorResponse(err.Error()))
		case errors.Is(err, service.ErrAccountSuspended):
			writeJSON(w, http.StatusForbidden, errorResponse(err.Error()))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	middleware.SetSessionCookie(w, result.SessionToken, h.cookieMaxAge, h.secureCookies)
	writeJSON(w, http.StatusOK, map[string]any{
		"user":        model.UserToResponse(result.User),
		"first_login": result.FirstLogin,
	})
}

// HandleLogout handles POST /api/v1/auth/logout requests.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe handles GET /api/v1/auth/me requests.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	user, err := h.service.CurrentUser(r.Context(), sess.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	writeJSON(w, http.StatusOK, model.UserToResponse(user))
}

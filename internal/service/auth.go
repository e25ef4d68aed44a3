package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/prepost/prepost-go/internal/crypto"
	"github.com/prepost/prepost-go/internal/email"
	"github.com/prepost/prepost-go/internal/model"
	"github.com/prepost/prepost-go/internal/repository"
)

var (
	ErrEmailRequired    = errors.New("a valid email is required")
	ErrAccountSuspended = errors.New("account suspended")
	ErrTokenInvalid     = errors.New("invalid login link")
	ErrTokenUsed        = errors.New("this login link has already been used")
	ErrTokenExpired     = errors.New("this login link has expired")
	ErrEmailDispatch    = errors.New("unable to send login email right now, please try again in a few minutes")
)

// AuthService handles passwordless login: magic-link issuance and
// verification, and session credential creation.
type AuthService struct {
	users         UserStore
	tokens        TokenStore
	mailer        email.Sender
	appURL        string
	sessionSecret string
	sessionExpiry time.Duration
	tokenExpiry   time.Duration
}

func NewAuthService(users UserStore, tokens TokenStore, mailer email.Sender,
	appURL, sessionSecret string, sessionExpiry, tokenExpiry time.Duration) *AuthService {
	return &AuthService{
		users:         users,
		tokens:        tokens,
		mailer:        mailer,
		appURL:        appURL,
		sessionSecret: sessionSecret,
		sessionExpiry: sessionExpiry,
		tokenExpiry:   tokenExpiry,
	}
}

// RequestLogin issues a magic link for the given email. It never reveals
// whether an account exists; the response reads the same either way. No
// user record is created here — creation waits for a verified token, so
// unverified requests cannot mint accounts.
func (s *AuthService) RequestLogin(ctx context.Context, req model.LoginRequest) (model.LoginResponse, error) {
	// Honeypot: bots fill every field. Pretend success, do nothing.
	if req.Website != "" {
		slog.Info("login honeypot tripped", "email", req.Email)
		return model.LoginResponse{Success: true, Message: "Check your email for the login link"}, nil
	}

	addr := model.NormalizeEmail(req.Email)
	if addr == "" || !strings.Contains(addr, "@") {
		return model.LoginResponse{}, ErrEmailRequired
	}

	user, err := s.users.GetByEmail(ctx, addr)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return model.LoginResponse{}, err
	}
	if user != nil && user.Suspended {
		return model.LoginResponse{}, ErrAccountSuspended
	}

	now := time.Now()

	// Rate limit by existence: one live link per email at a time.
	active, err := s.tokens.HasActive(ctx, addr, now)
	if err != nil {
		return model.LoginResponse{}, err
	}
	if active {
		return model.LoginResponse{
			Success: true,
			Message: "A login link was already sent. Check your email.",
		}, nil
	}

	token, digest, err := crypto.NewLoginToken()
	if err != nil {
		return model.LoginResponse{}, err
	}

	record := &model.LoginToken{
		TokenHash: digest,
		Email:     addr,
		ExpiresAt: now.Add(s.tokenExpiry),
	}
	if user != nil {
		record.UserID = &user.ID
	}
	if err := s.tokens.Create(ctx, record); err != nil {
		return model.LoginResponse{}, err
	}

	link := fmt.Sprintf("%s/verify?token=%s", s.appURL, token)
	result, err := s.mailer.Send(ctx, addr, email.KindLoginLink, email.Params{
		Link:   link,
		AppURL: s.appURL,
	})
	if err != nil {
		// No token was consumed, so this failure is retryable. Free the
		// rate-limit slot so the retry isn't locked out for 15 minutes.
		if delErr := s.tokens.DeleteByHash(ctx, digest); delErr != nil {
			slog.Error("failed to clean up login token after dispatch failure", "error", delErr)
		}
		slog.Error("login email dispatch failed", "error", err)
		return model.LoginResponse{}, ErrEmailDispatch
	}

	return model.LoginResponse{
		Success: true,
		Message: "Check your email for the login link",
		DevLink: result.DevLink,
	}, nil
}

// VerifyResult is the outcome of a successful login-link verification.
type VerifyResult struct {
	SessionToken string
	User         *model.User
	FirstLogin   bool
}

// VerifyLogin consumes a magic-link token and establishes a session. The
// token is single-use: once consumed it can never verify again, including
// on the suspension failure path — suspension is terminal, not retryable.
func (s *AuthService) VerifyLogin(ctx context.Context, rawToken string) (VerifyResult, error) {
	if rawToken == "" {
		return VerifyResult{}, ErrTokenInvalid
	}

	token, err := s.tokens.Consume(ctx, crypto.DigestLoginToken(rawToken), time.Now())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTokenNotFound):
			return VerifyResult{}, ErrTokenInvalid
		case errors.Is(err, repository.ErrTokenUsed):
			return VerifyResult{}, ErrTokenUsed
		case errors.Is(err, repository.ErrTokenExpired):
			return VerifyResult{}, ErrTokenExpired
		default:
			return VerifyResult{}, err
		}
	}

	var user *model.User
	first := false
	if token.UserID != nil {
		user, err = s.users.GetByID(ctx, *token.UserID)
	} else {
		user, first, err = s.users.ResolveOrCreate(ctx, token.Email)
	}
	if err != nil {
		return VerifyResult{}, err
	}

	if user.Suspended {
		return VerifyResult{}, ErrAccountSuspended
	}

	session, err := crypto.NewSessionToken(user.ID, user.Email, s.sessionSecret, s.sessionExpiry)
	if err != nil {
		return VerifyResult{}, err
	}

	if first {
		// Best-effort welcome; the session is already established.
		if _, err := s.mailer.Send(ctx, user.Email, email.KindWelcome, email.Params{AppURL: s.appURL}); err != nil {
			slog.Error("welcome email dispatch failed", "email", user.Email, "error", err)
		}
	}

	return VerifyResult{SessionToken: session, User: user, FirstLogin: first}, nil
}

// CurrentUser loads the user behind a validated session claim set. A stale
// session for a deleted user resolves to nil, not an error.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

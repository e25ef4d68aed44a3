package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/prepost/prepost-go/internal/dbx"
	"github.com/prepost/prepost-go/internal/model"
)

var (
	ErrTokenNotFound = errors.New("login token not found")
	ErrTokenUsed     = errors.New("login token already used")
	ErrTokenExpired  = errors.New("login token expired")
)

// LoginTokenRepository handles magic-link token persistence.
type LoginTokenRepository struct {
	db *sql.DB
}

func NewLoginTokenRepository(db *sql.DB) *LoginTokenRepository {
	return &LoginTokenRepository{db: db}
}

// Create inserts a new token record and sets the generated ID.
func (r *LoginTokenRepository) Create(ctx context.Context, t *model.LoginToken) error {
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO login_tokens (id, token_hash, email, user_id, expires_at, used, created_at)
		 VALUES (?, ?, ?, ?, ?, FALSE, ?)`,
		t.ID, t.TokenHash, t.Email, t.UserID, t.ExpiresAt, t.CreatedAt)
	return err
}

// DeleteByHash removes a token record. Used to roll back the
// rate-limit-by-existence slot when the login email cannot be dispatched.
func (r *LoginTokenRepository) DeleteByHash(ctx context.Context, tokenHash string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM login_tokens WHERE token_hash = ?`, tokenHash)
	return err
}

// HasActive reports whether an unexpired, unused token already exists for
// the email. Its existence is the login rate limit.
func (r *LoginTokenRepository) HasActive(ctx context.Context, email string, now time.Time) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM login_tokens WHERE email = ? AND used = FALSE AND expires_at > ?`,
		email, now).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Consume atomically marks the token with the given digest as used and
// returns it. The conditional UPDATE on used = FALSE guarantees at most one
// caller ever wins a given token; expired tokens are rejected without being
// consumed.
func (r *LoginTokenRepository) Consume(ctx context.Context, tokenHash string, now time.Time) (*model.LoginToken, error) {
	var token *model.LoginToken
	err := dbx.WithTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		t := &model.LoginToken{}
		var userID sql.NullString
		err := tx.QueryRowContext(ctx,
			`SELECT id, token_hash, email, user_id, expires_at, used, created_at
			 FROM login_tokens WHERE token_hash = ?`, tokenHash).Scan(
			&t.ID, &t.TokenHash, &t.Email, &userID, &t.ExpiresAt, &t.Used, &t.CreatedAt)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrTokenNotFound
			}
			return err
		}
		if userID.Valid {
			t.UserID = &userID.String
		}
		if t.Used {
			return ErrTokenUsed
		}
		if t.Expired(now) {
			return ErrTokenExpired
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE login_tokens SET used = TRUE WHERE id = ? AND used = FALSE`, t.ID)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrTokenUsed
		}

		t.Used = true
		token = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return token, nil
}

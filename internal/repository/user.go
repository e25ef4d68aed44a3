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
	ErrUserNotFound = errors.New("user not found")
)

// UserRepository handles user persistence operations.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID retrieves a user by their ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.getBy(ctx, `SELECT id, email, credits, suspended, created_at FROM users WHERE id = ?`, id)
}

// GetByEmail retrieves a user by their normalized email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getBy(ctx, `SELECT id, email, credits, suspended, created_at FROM users WHERE email = ?`, email)
}

func (r *UserRepository) getBy(ctx context.Context, query string, arg any) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.Credits, &user.Suspended, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// ResolveOrCreate returns the user for a normalized email, creating one if
// none exists. Creation and the retroactive binding of messages previously
// addressed to this email run in one transaction; the INSERT races against
// concurrent resolutions through the unique email key, so exactly one user
// can ever be created per email.
func (r *UserRepository) ResolveOrCreate(ctx context.Context, email string) (*model.User, bool, error) {
	user, err := r.GetByEmail(ctx, email)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, false, err
	}

	created := false
	err = dbx.WithTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		res, err := tx.ExecContext(ctx,
			`INSERT IGNORE INTO users (id, email, created_at) VALUES (?, ?, ?)`,
			uuid.NewString(), email, time.Now())
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		created = affected == 1

		row := tx.QueryRowContext(ctx,
			`SELECT id, email, credits, suspended, created_at FROM users WHERE email = ?`, email)
		user = &model.User{}
		if err := row.Scan(&user.ID, &user.Email, &user.Credits, &user.Suspended, &user.CreatedAt); err != nil {
			return err
		}

		if created {
			_, err = tx.ExecContext(ctx,
				`UPDATE messages SET recipient_id = ? WHERE recipient_email = ? AND recipient_id IS NULL`,
				user.ID, email)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return user, created, nil
}

// SetSuspended toggles the suspended flag.
func (r *UserRepository) SetSuspended(ctx context.Context, id string, suspended bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET suspended = ? WHERE id = ?`, suspended, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Distinguish "no such user" from "already in that state".
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// List returns all users with their sent/received message counts, newest
// first, for the admin console.
func (r *UserRepository) List(ctx context.Context, limit int) ([]model.AdminUser, error) {
	query := `
		SELECT u.id, u.email, u.credits, u.suspended, u.created_at,
		       (SELECT COUNT(*) FROM messages m WHERE m.sender_id = u.id),
		       (SELECT COUNT(*) FROM messages m WHERE m.recipient_id = u.id)
		FROM users u
		ORDER BY u.created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []model.AdminUser{}
	for rows.Next() {
		var u model.AdminUser
		if err := rows.Scan(&u.ID, &u.Email, &u.Credits, &u.Suspended, &u.CreatedAt,
			&u.SentCount, &u.ReceivedCount); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

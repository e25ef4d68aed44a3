package repository

import (
	"context"
	"errors"

	"github.com/prepost/prepost-go/internal/dbx"
)

var (
	ErrInsufficientCredits = errors.New("insufficient credits")
)

// CreditLedger owns all mutations of the per-user credit balance. Award and
// Spend take a dbx.DBTX so the message transactions they pair with can pass
// their own *sql.Tx; no other code writes users.credits.
type CreditLedger struct{}

func NewCreditLedger() *CreditLedger {
	return &CreditLedger{}
}

// Award increments the balance by exactly 1.
func (l *CreditLedger) Award(ctx context.Context, q dbx.DBTX, userID string) error {
	_, err := q.ExecContext(ctx,
		`UPDATE users SET credits = credits + 1 WHERE id = ?`, userID)
	return err
}

// Spend decrements the balance by exactly 1. The credits >= 1 predicate in
// the UPDATE is what keeps the balance non-negative under concurrency; a
// read-then-write pair here would be a double-spend race.
func (l *CreditLedger) Spend(ctx context.Context, q dbx.DBTX, userID string) error {
	res, err := q.ExecContext(ctx,
		`UPDATE users SET credits = credits - 1 WHERE id = ? AND credits >= 1`, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInsufficientCredits
	}
	return nil
}

// Balance returns the current balance, 0 for unknown users.
func (l *CreditLedger) Balance(ctx context.Context, q dbx.DBTX, userID string) (int, error) {
	var credits int
	err := q.QueryRowContext(ctx,
		`SELECT credits FROM users WHERE id = ?`, userID).Scan(&credits)
	if err != nil {
		return 0, err
	}
	return credits, nil
}

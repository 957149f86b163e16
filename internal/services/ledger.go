package services

import (
	"context"
	"errors"
	"fmt"

	"photo-rating-backend/internal/repository"
)

// Point costs of the evaluation economy
const (
	ActivationCost = 1
	DeletionCost   = 1
	RatingReward   = 1
	RatingCharge   = 1
)

// Ledger owns user point balances. Every change is a single conditional
// statement in the store, so concurrent adjustments never lose an update.
type Ledger struct {
	store repository.Store
}

// NewLedger creates a ledger over the given store
func NewLedger(store repository.Store) *Ledger {
	return &Ledger{store: store}
}

// bind returns a ledger that runs inside the transaction tx
func (l *Ledger) bind(tx repository.Store) *Ledger {
	return &Ledger{store: tx}
}

// Balance returns the current balance of a user
func (l *Ledger) Balance(ctx context.Context, userID string) (int, error) {
	user, err := l.store.Users().GetByID(ctx, userID)
	if err != nil {
		return 0, ledgerError(err)
	}
	return user.Points, nil
}

// Adjust applies a signed delta without a floor and returns the new balance
func (l *Ledger) Adjust(ctx context.Context, userID string, delta int) (int, error) {
	points, err := l.store.Users().AddPoints(ctx, userID, delta)
	if err != nil {
		return 0, ledgerError(err)
	}
	return points, nil
}

// Charge debits cost only when the balance covers it
func (l *Ledger) Charge(ctx context.Context, userID string, cost int) (int, error) {
	points, err := l.store.Users().ChargePoints(ctx, userID, cost)
	if err != nil {
		return 0, ledgerError(err)
	}
	return points, nil
}

func ledgerError(err error) error {
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return fmt.Errorf("user %w", ErrNotFound)
	case errors.Is(err, repository.ErrInsufficientBalance):
		return ErrInsufficientPoints
	default:
		return err
	}
}

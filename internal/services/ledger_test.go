package services

import (
	"context"
	"errors"
	"testing"

	"photo-rating-backend/internal/models"
)

func TestLedger_AdjustAllowsNegative(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, 0, models.GenderOther, 30)

	points, err := env.ledger.Adjust(ctx, user.ID, -2)
	if err != nil {
		t.Fatalf("Adjust failed: %v", err)
	}
	if points != -2 {
		t.Errorf("expected -2, got %d", points)
	}

	points, err = env.ledger.Adjust(ctx, user.ID, 5)
	if err != nil {
		t.Fatalf("Adjust failed: %v", err)
	}
	if points != 3 || env.balance(t, user.ID) != 3 {
		t.Errorf("expected persisted balance 3, got %d", points)
	}
}

func TestLedger_ChargeRequiresBalance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, 1, models.GenderOther, 30)

	points, err := env.ledger.Charge(ctx, user.ID, 1)
	if err != nil {
		t.Fatalf("Charge failed: %v", err)
	}
	if points != 0 {
		t.Errorf("expected 0 after charge, got %d", points)
	}

	if _, err := env.ledger.Charge(ctx, user.ID, 1); !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("expected ErrInsufficientPoints, got %v", err)
	}
	if got := env.balance(t, user.ID); got != 0 {
		t.Errorf("failed charge changed balance to %d", got)
	}
}

func TestLedger_UnknownUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.ledger.Balance(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Balance: expected ErrNotFound, got %v", err)
	}
	if _, err := env.ledger.Adjust(ctx, "missing", 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("Adjust: expected ErrNotFound, got %v", err)
	}
	if _, err := env.ledger.Charge(ctx, "missing", 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("Charge: expected ErrNotFound, got %v", err)
	}
}

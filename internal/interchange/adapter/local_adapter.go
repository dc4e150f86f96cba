package adapter

import (
	"context"
	"fmt"
)

// ContactCounter is the part of the contact repository the local adapter
// needs.
type ContactCounter interface {
	CountContacts(ctx context.Context, userID string) (int64, error)
}

// LocalQuotaAdapter implements QuotaAdapter using the local contact store
// and a fixed per-user ceiling
type LocalQuotaAdapter struct {
	counter ContactCounter
	max     int
}

// NewLocalQuotaAdapter creates a new LocalQuotaAdapter
func NewLocalQuotaAdapter(counter ContactCounter, maxPerUser int) *LocalQuotaAdapter {
	return &LocalQuotaAdapter{counter: counter, max: maxPerUser}
}

// Remaining is max minus the live contacts, never negative
func (a *LocalQuotaAdapter) Remaining(ctx context.Context, userID string) (int, error) {
	n, err := a.counter.CountContacts(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count contacts: %w", err)
	}
	left := a.max - int(n)
	if left < 0 {
		left = 0
	}
	return left, nil
}

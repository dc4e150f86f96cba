package adapter

import (
	"context"
)

// QuotaAdapter reports how many more contacts a user may own.
// This abstraction allows switching between the local count and an external
// plan/billing service.
type QuotaAdapter interface {
	// Remaining returns the number of contacts the user may still create
	Remaining(ctx context.Context, userID string) (int, error)
}

// Unlimited is a QuotaAdapter with no ceiling.
type Unlimited struct{}

func (Unlimited) Remaining(ctx context.Context, userID string) (int, error) {
	return int(^uint(0) >> 1), nil
}

package repository

import (
	"context"

	"contactsync/internal/interchange/model"
)

// HistoryRepository defines the interface for import history operations
type HistoryRepository interface {
	// CreateHistory creates a new history record (append-only)
	CreateHistory(ctx context.Context, history *model.ImportHistory) error
	// FindHistory finds a user's history records, newest first, with pagination
	FindHistory(ctx context.Context, userID string, req model.ListImportHistoryReq) ([]*model.ImportHistory, int64, error)
	// AggregateStats sums every history record of a user
	AggregateStats(ctx context.Context, userID string) (*model.ImportStats, error)
	// EnsureHistoryIndexes creates indexes for efficient querying
	EnsureHistoryIndexes(ctx context.Context) error
}

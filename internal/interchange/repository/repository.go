package repository

import (
	"context"
	"errors"
	"time"

	"contactsync/internal/interchange/model"
)

var (
	ErrDuplicate = errors.New("duplicate record")
	ErrNotFound  = errors.New("record not found")
)

type ContactRepository interface {
	// Find live contacts matching filter, ordered by created_at then id
	FindContacts(ctx context.Context, filter model.ContactFilter) ([]*model.Contact, error)
	// Count live contacts owned by a user
	CountContacts(ctx context.Context, userID string) (int64, error)
	// Insert or replace contacts (partial success allowed)
	BulkWriteContacts(ctx context.Context, writes []model.ContactWrite) (*model.BatchWriteResult, error)
	// Soft delete a contact that was merged into keeperID
	MarkMerged(ctx context.Context, userID, contactID, keeperID string, at time.Time) error
	// Mark a contact as a duplicate of keeperID without deleting it
	FlagDuplicate(ctx context.Context, userID, contactID, keeperID string, at time.Time) error
	// Initialize Indexes
	EnsureIndexes(ctx context.Context) error
}

package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"contactsync/internal/interchange/model"
)

// MemoryRepository keeps contacts and history in process. It implements
// both ContactRepository and HistoryRepository with the same filter, order
// and soft delete rules as the Mongo implementation, and backs local runs
// and tests.
type MemoryRepository struct {
	mu       sync.RWMutex
	contacts map[string]*model.Contact
	history  []*model.ImportHistory
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{contacts: make(map[string]*model.Contact)}
}

func (r *MemoryRepository) EnsureIndexes(ctx context.Context) error        { return nil }
func (r *MemoryRepository) EnsureHistoryIndexes(ctx context.Context) error { return nil }

func (r *MemoryRepository) FindContacts(ctx context.Context, filter model.ContactFilter) ([]*model.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*model.Contact{}
	for _, c := range r.contacts {
		if filter.Matches(c) {
			out = append(out, c.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryRepository) CountContacts(ctx context.Context, userID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, c := range r.contacts {
		if c.UserID == userID && c.DeletedAt == nil {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) BulkWriteContacts(ctx context.Context, writes []model.ContactWrite) (*model.BatchWriteResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	result := &model.BatchWriteResult{}
	for i, w := range writes {
		existing, ok := r.contacts[w.Contact.ID]
		var reason string
		switch {
		case w.Kind == model.WriteInsert && ok:
			reason = ErrDuplicate.Error()
		case w.Kind == model.WriteUpdate && (!ok || existing.DeletedAt != nil || existing.UserID != w.Contact.UserID):
			reason = ErrNotFound.Error()
		}
		if reason != "" {
			result.Failed = append(result.Failed, model.FailedContactInfo{Index: i, ContactID: w.Contact.ID, Reason: reason})
			continue
		}
		r.contacts[w.Contact.ID] = w.Contact.Clone()
	}
	result.FailedCount = len(result.Failed)
	result.SuccessCount = len(writes) - result.FailedCount
	return result, nil
}

func (r *MemoryRepository) MarkMerged(ctx context.Context, userID, contactID, keeperID string, at time.Time) error {
	return r.updateLive(ctx, userID, contactID, func(c *model.Contact) {
		c.MergedInto = keeperID
		t := at
		c.DeletedAt = &t
		c.UpdatedAt = at
	})
}

func (r *MemoryRepository) FlagDuplicate(ctx context.Context, userID, contactID, keeperID string, at time.Time) error {
	return r.updateLive(ctx, userID, contactID, func(c *model.Contact) {
		c.DuplicateOf = keeperID
		c.UpdatedAt = at
	})
}

func (r *MemoryRepository) updateLive(ctx context.Context, userID, contactID string, apply func(*model.Contact)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.contacts[contactID]
	if !ok || c.UserID != userID || c.DeletedAt != nil {
		return ErrNotFound
	}
	apply(c)
	return nil
}

// Get returns a copy of any stored contact, deleted ones included.
func (r *MemoryRepository) Get(contactID string) (*model.Contact, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.contacts[contactID]
	if !ok {
		return nil, false
	}
	return c.Clone(), true
}

func (r *MemoryRepository) CreateHistory(ctx context.Context, history *model.ImportHistory) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, h := range r.history {
		if h.ImportID == history.ImportID {
			return ErrDuplicate
		}
	}
	if history.CreatedAt.IsZero() {
		history.CreatedAt = time.Now()
	}
	cp := *history
	r.history = append(r.history, &cp)
	return nil
}

func (r *MemoryRepository) FindHistory(ctx context.Context, userID string, req model.ListImportHistoryReq) ([]*model.ImportHistory, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []*model.ImportHistory{}
	for _, h := range r.history {
		if h.UserID != userID {
			continue
		}
		if req.StartTime != nil && h.CreatedAt.Before(*req.StartTime) {
			continue
		}
		if req.EndTime != nil && h.CreatedAt.After(*req.EndTime) {
			continue
		}
		cp := *h
		matched = append(matched, &cp)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := (req.Page - 1) * req.Size
	if start < 0 || start >= len(matched) {
		return []*model.ImportHistory{}, total, nil
	}
	end := start + req.Size
	if end > len(matched) || req.Size <= 0 {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *MemoryRepository) AggregateStats(ctx context.Context, userID string) (*model.ImportStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &model.ImportStats{}
	for _, h := range r.history {
		if h.UserID != userID {
			continue
		}
		stats.ImportCount++
		stats.TotalImported += h.Created
		stats.TotalUpdated += h.Updated
		stats.TotalSkipped += h.Skipped
		stats.TotalFailed += h.Invalid
		if stats.LastImportAt == nil || h.FinishedAt.After(*stats.LastImportAt) {
			t := h.FinishedAt
			stats.LastImportAt = &t
		}
	}
	return stats, nil
}

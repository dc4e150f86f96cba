package repository

import (
	"context"
	"testing"
	"time"

	"contactsync/internal/interchange/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, repo *MemoryRepository, contacts ...*model.Contact) {
	t.Helper()
	writes := make([]model.ContactWrite, len(contacts))
	for i, c := range contacts {
		writes[i] = model.ContactWrite{Kind: model.WriteInsert, Contact: c}
	}
	res, err := repo.BulkWriteContacts(context.Background(), writes)
	require.NoError(t, err)
	require.Zero(t, res.FailedCount)
}

func TestMemoryRepositoryFindContacts(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := NewMemoryRepository()
	seed(t, repo,
		&model.Contact{ID: "b", UserID: "u1", FirstName: "Bob", Email: "bob@example.com", Company: "Acme", Status: "lead", Tags: []string{"VIP"}, CreatedAt: base},
		&model.Contact{ID: "a", UserID: "u1", FirstName: "Ana", Email: "ana@example.com", Company: "acme", Status: "customer", Tags: []string{"vip", "north"}, CreatedAt: base},
		&model.Contact{ID: "c", UserID: "u1", FirstName: "Cy", Email: "cy@other.com", Company: "Other", Status: "lead", CreatedAt: base.Add(time.Hour)},
		&model.Contact{ID: "d", UserID: "u2", FirstName: "Dee", Email: "dee@example.com", CreatedAt: base},
	)
	ctx := context.Background()

	t.Run("orders by created_at then id and scopes to user", func(t *testing.T) {
		got, err := repo.FindContacts(ctx, model.ContactFilter{UserID: "u1"})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, ids(got))
	})

	t.Run("company is case-insensitive exact", func(t *testing.T) {
		got, err := repo.FindContacts(ctx, model.ContactFilter{UserID: "u1", Company: "ACME"})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, ids(got))
	})

	t.Run("all listed tags are required", func(t *testing.T) {
		got, err := repo.FindContacts(ctx, model.ContactFilter{UserID: "u1", Tags: []string{"vip", "North"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, ids(got))
	})

	t.Run("search and status combine", func(t *testing.T) {
		got, err := repo.FindContacts(ctx, model.ContactFilter{UserID: "u1", Status: "lead", Search: "EXAMPLE"})
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, ids(got))
	})

	t.Run("results are copies", func(t *testing.T) {
		got, err := repo.FindContacts(ctx, model.ContactFilter{UserID: "u2"})
		require.NoError(t, err)
		got[0].FirstName = "Changed"
		stored, _ := repo.Get("d")
		assert.Equal(t, "Dee", stored.FirstName)
	})
}

func TestMemoryRepositoryWrites(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("insert of an existing id and update of a missing id fail individually", func(t *testing.T) {
		repo := NewMemoryRepository()
		seed(t, repo, &model.Contact{ID: "a", UserID: "u1"})

		res, err := repo.BulkWriteContacts(ctx, []model.ContactWrite{
			{Kind: model.WriteInsert, Contact: &model.Contact{ID: "a", UserID: "u1"}},
			{Kind: model.WriteInsert, Contact: &model.Contact{ID: "b", UserID: "u1"}},
			{Kind: model.WriteUpdate, Contact: &model.Contact{ID: "zz", UserID: "u1"}},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, res.SuccessCount)
		assert.Equal(t, 2, res.FailedCount)
		assert.Equal(t, 0, res.Failed[0].Index)
		assert.Equal(t, ErrDuplicate.Error(), res.Failed[0].Reason)
		assert.Equal(t, 2, res.Failed[1].Index)
		assert.Equal(t, ErrNotFound.Error(), res.Failed[1].Reason)
	})

	t.Run("merged contacts disappear from reads and counts", func(t *testing.T) {
		repo := NewMemoryRepository()
		seed(t, repo, &model.Contact{ID: "a", UserID: "u1"}, &model.Contact{ID: "b", UserID: "u1"})

		require.NoError(t, repo.MarkMerged(ctx, "u1", "b", "a", now))
		n, err := repo.CountContacts(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		stored, ok := repo.Get("b")
		require.True(t, ok)
		assert.Equal(t, "a", stored.MergedInto)
		assert.NotNil(t, stored.DeletedAt)

		assert.ErrorIs(t, repo.MarkMerged(ctx, "u1", "b", "a", now), ErrNotFound)
	})

	t.Run("flagged contacts can be excluded", func(t *testing.T) {
		repo := NewMemoryRepository()
		seed(t, repo, &model.Contact{ID: "a", UserID: "u1"}, &model.Contact{ID: "b", UserID: "u1"})

		require.NoError(t, repo.FlagDuplicate(ctx, "u1", "b", "a", now))
		all, _ := repo.FindContacts(ctx, model.ContactFilter{UserID: "u1"})
		live, _ := repo.FindContacts(ctx, model.ContactFilter{UserID: "u1", ExcludeFlagged: true})
		assert.Len(t, all, 2)
		assert.Equal(t, []string{"a"}, ids(live))
	})

	t.Run("other users' contacts are not touched", func(t *testing.T) {
		repo := NewMemoryRepository()
		seed(t, repo, &model.Contact{ID: "a", UserID: "u1"})
		assert.ErrorIs(t, repo.FlagDuplicate(ctx, "u2", "a", "x", now), ErrNotFound)
	})
}

func TestMemoryRepositoryHistory(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	t0 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	for i, h := range []*model.ImportHistory{
		{ImportID: "i1", UserID: "u1", Created: 3, Updated: 1, Skipped: 2, Invalid: 1, FinishedAt: t0, CreatedAt: t0},
		{ImportID: "i2", UserID: "u1", Created: 5, Invalid: 2, FinishedAt: t0.Add(time.Hour), CreatedAt: t0.Add(time.Hour)},
		{ImportID: "i3", UserID: "u2", Created: 9, FinishedAt: t0, CreatedAt: t0},
	} {
		require.NoError(t, repo.CreateHistory(ctx, h), i)
	}

	t.Run("duplicate import id is rejected", func(t *testing.T) {
		err := repo.CreateHistory(ctx, &model.ImportHistory{ImportID: "i1", UserID: "u1"})
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("stats sum per user", func(t *testing.T) {
		stats, err := repo.AggregateStats(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 2, stats.ImportCount)
		assert.Equal(t, 8, stats.TotalImported)
		assert.Equal(t, 1, stats.TotalUpdated)
		assert.Equal(t, 2, stats.TotalSkipped)
		assert.Equal(t, 3, stats.TotalFailed)
		require.NotNil(t, stats.LastImportAt)
		assert.True(t, stats.LastImportAt.Equal(t0.Add(time.Hour)))
	})

	t.Run("no history yields zero stats", func(t *testing.T) {
		stats, err := repo.AggregateStats(ctx, "nobody")
		require.NoError(t, err)
		assert.Equal(t, 0, stats.ImportCount)
		assert.Nil(t, stats.LastImportAt)
	})

	t.Run("history pages newest first", func(t *testing.T) {
		page, total, err := repo.FindHistory(ctx, "u1", model.ListImportHistoryReq{Page: 1, Size: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, page, 1)
		assert.Equal(t, "i2", page[0].ImportID)

		page, _, err = repo.FindHistory(ctx, "u1", model.ListImportHistoryReq{Page: 3, Size: 1})
		require.NoError(t, err)
		assert.Empty(t, page)
	})
}

func ids(cs []*model.Contact) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

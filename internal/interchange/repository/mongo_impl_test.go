package repository

import (
	"context"
	"testing"
	"time"

	"contactsync/internal/interchange/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestBuildContactFilter(t *testing.T) {
	t.Run("user scope and soft delete are always applied", func(t *testing.T) {
		f := buildContactFilter(model.ContactFilter{UserID: "u1"})
		assert.Equal(t, bson.M{"user_id": "u1", "deleted_at": nil}, f)
	})

	t.Run("company and tags are anchored case-insensitive regexes", func(t *testing.T) {
		f := buildContactFilter(model.ContactFilter{UserID: "u1", Company: "A.C.M.E", Tags: []string{"vip"}})
		assert.Equal(t, primitive.Regex{Pattern: `^A\.C\.M\.E$`, Options: "i"}, f["company"])
		assert.Equal(t, bson.M{"$all": bson.A{primitive.Regex{Pattern: "^vip$", Options: "i"}}}, f["tags"])
	})

	t.Run("search spans five fields with escaped input", func(t *testing.T) {
		f := buildContactFilter(model.ContactFilter{UserID: "u1", Search: "a+b"})
		or, ok := f["$or"].(bson.A)
		require.True(t, ok)
		assert.Len(t, or, 5)
		assert.Equal(t, bson.M{"first_name": primitive.Regex{Pattern: `a\+b`, Options: "i"}}, or[0])
	})

	t.Run("flagged exclusion and status", func(t *testing.T) {
		f := buildContactFilter(model.ContactFilter{UserID: "u1", Status: "lead", ExcludeFlagged: true})
		assert.Equal(t, "lead", f["status"])
		assert.Equal(t, bson.M{"$in": bson.A{nil, ""}}, f["duplicate_of"])
	})
}

func TestMongoRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("find decodes contacts", func(mt *mtest.T) {
		repo := &MongoRepository{Contacts: mt.Coll}
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "c1"}, {Key: "user_id", Value: "u1"}, {Key: "email", Value: "a@example.com"}},
			bson.D{{Key: "_id", Value: "c2"}, {Key: "user_id", Value: "u1"}, {Key: "email", Value: "b@example.com"}},
		))

		got, err := repo.FindContacts(context.Background(), model.ContactFilter{UserID: "u1"})
		require.NoError(mt, err)
		require.Len(mt, got, 2)
		assert.Equal(mt, "c1", got[0].ID)
		assert.Equal(mt, "b@example.com", got[1].Email)
	})

	mt.Run("bulk write reports failed indexes", func(mt *mtest.T) {
		repo := &MongoRepository{Contacts: mt.Coll}
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   1,
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))

		res, err := repo.BulkWriteContacts(context.Background(), []model.ContactWrite{
			{Kind: model.WriteInsert, Contact: &model.Contact{ID: "c1", UserID: "u1"}},
			{Kind: model.WriteInsert, Contact: &model.Contact{ID: "c2", UserID: "u1"}},
		})
		require.NoError(mt, err)
		assert.Equal(mt, 1, res.SuccessCount)
		require.Len(mt, res.Failed, 1)
		assert.Equal(mt, "c2", res.Failed[0].ContactID)
		assert.Equal(mt, ErrDuplicate.Error(), res.Failed[0].Reason)
	})

	mt.Run("bulk write fails replaces that match nothing", func(mt *mtest.T) {
		repo := &MongoRepository{Contacts: mt.Coll}
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(
				bson.E{Key: "n", Value: 1},
				bson.E{Key: "nModified", Value: 1},
			),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
				bson.D{{Key: "_id", Value: "c1"}, {Key: "user_id", Value: "u1"}},
			),
		)

		res, err := repo.BulkWriteContacts(context.Background(), []model.ContactWrite{
			{Kind: model.WriteUpdate, Contact: &model.Contact{ID: "c1", UserID: "u1"}},
			{Kind: model.WriteUpdate, Contact: &model.Contact{ID: "c2", UserID: "u1"}},
		})
		require.NoError(mt, err)
		assert.Equal(mt, 1, res.SuccessCount)
		require.Len(mt, res.Failed, 1)
		assert.Equal(mt, 1, res.Failed[0].Index)
		assert.Equal(mt, "c2", res.Failed[0].ContactID)
		assert.Equal(mt, ErrNotFound.Error(), res.Failed[0].Reason)
	})

	mt.Run("bulk write skips the lookup when every replace matched", func(mt *mtest.T) {
		repo := &MongoRepository{Contacts: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		res, err := repo.BulkWriteContacts(context.Background(), []model.ContactWrite{
			{Kind: model.WriteUpdate, Contact: &model.Contact{ID: "c1", UserID: "u1"}},
		})
		require.NoError(mt, err)
		assert.Equal(mt, 1, res.SuccessCount)
		assert.Empty(mt, res.Failed)
	})

	mt.Run("mark merged on a missing contact returns ErrNotFound", func(mt *mtest.T) {
		repo := &MongoRepository{Contacts: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := repo.MarkMerged(context.Background(), "u1", "c9", "c1", time.Now())
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("flag duplicate succeeds when matched", func(mt *mtest.T) {
		repo := &MongoRepository{Contacts: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		err := repo.FlagDuplicate(context.Background(), "u1", "c2", "c1", time.Now())
		assert.NoError(mt, err)
	})
}

func TestMongoHistoryRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("aggregate stats decodes the group document", func(mt *mtest.T) {
		repo := &MongoHistoryRepository{Collection: mt.Coll}
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		last := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: nil},
			{Key: "last_import_at", Value: last},
			{Key: "total_imported", Value: 8},
			{Key: "total_updated", Value: 1},
			{Key: "total_skipped", Value: 2},
			{Key: "total_failed", Value: 3},
			{Key: "import_count", Value: 2},
		}))

		stats, err := repo.AggregateStats(context.Background(), "u1")
		require.NoError(mt, err)
		assert.Equal(mt, 8, stats.TotalImported)
		assert.Equal(mt, 2, stats.ImportCount)
		require.NotNil(mt, stats.LastImportAt)
		assert.True(mt, stats.LastImportAt.Equal(last))
	})

	mt.Run("aggregate stats with no history is zero", func(mt *mtest.T) {
		repo := &MongoHistoryRepository{Collection: mt.Coll}
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		stats, err := repo.AggregateStats(context.Background(), "u1")
		require.NoError(mt, err)
		assert.Equal(mt, &model.ImportStats{}, stats)
	})

	mt.Run("create history maps duplicate key", func(mt *mtest.T) {
		repo := &MongoHistoryRepository{Collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))

		err := repo.CreateHistory(context.Background(), &model.ImportHistory{ImportID: "i1", UserID: "u1"})
		assert.ErrorIs(mt, err, ErrDuplicate)
	})
}

package repository

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"time"

	"contactsync/internal/interchange/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRepository struct {
	Contacts *mongo.Collection
}

func NewMongoRepository(db *mongo.Database, contactsCollectionName string) *MongoRepository {
	return &MongoRepository{
		Contacts: db.Collection(contactsCollectionName),
	}
}

func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	// 1. Listing/export: (user_id, deleted_at, created_at, _id)
	idxList := mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "deleted_at", Value: 1},
			{Key: "created_at", Value: 1},
			{Key: "_id", Value: 1},
		},
		Options: options.Index().SetName("idx_user_created"),
	}

	// 2. Duplicate lookup by email. Not unique: concurrent imports may still
	// race, the cleanup sweep merges them afterwards.
	idxEmail := mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "email", Value: 1},
		},
		Options: options.Index().
			SetName("idx_user_email").
			SetPartialFilterExpression(bson.M{"deleted_at": nil}),
	}

	// 3. Company filter
	idxCompany := mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "company", Value: 1},
		},
		Options: options.Index().SetName("idx_user_company"),
	}

	_, err := r.Contacts.Indexes().CreateMany(ctx, []mongo.IndexModel{idxList, idxEmail, idxCompany})
	return err
}

func (r *MongoRepository) FindContacts(ctx context.Context, filter model.ContactFilter) ([]*model.Contact, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: 1},
		{Key: "_id", Value: 1},
	})

	cursor, err := r.Contacts.Find(ctx, buildContactFilter(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	results := []*model.Contact{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *MongoRepository) CountContacts(ctx context.Context, userID string) (int64, error) {
	return r.Contacts.CountDocuments(ctx, bson.M{"user_id": userID, "deleted_at": nil})
}

func (r *MongoRepository) BulkWriteContacts(ctx context.Context, writes []model.ContactWrite) (*model.BatchWriteResult, error) {
	if len(writes) == 0 {
		return &model.BatchWriteResult{}, nil
	}

	writeModels := make([]mongo.WriteModel, 0, len(writes))
	for _, w := range writes {
		switch w.Kind {
		case model.WriteInsert:
			writeModels = append(writeModels, mongo.NewInsertOneModel().SetDocument(w.Contact))
		default:
			writeModels = append(writeModels, mongo.NewReplaceOneModel().
				SetFilter(bson.M{"_id": w.Contact.ID, "user_id": w.Contact.UserID, "deleted_at": nil}).
				SetReplacement(w.Contact))
		}
	}

	// Ordered: false allows partial success
	opts := options.BulkWrite().SetOrdered(false)
	bulkRes, err := r.Contacts.BulkWrite(ctx, writeModels, opts)

	result := &model.BatchWriteResult{}
	failed := make(map[int]bool)
	if err != nil {
		var bulkErr mongo.BulkWriteException
		if !errors.As(err, &bulkErr) || len(bulkErr.WriteErrors) == 0 {
			// Other errors (connection issues, etc.)
			return nil, err
		}
		for _, writeErr := range bulkErr.WriteErrors {
			idx := writeErr.Index
			if idx < 0 || idx >= len(writes) {
				continue
			}
			reason := writeErr.Message
			if isDuplicateKeyCode(writeErr.Code) {
				reason = ErrDuplicate.Error()
			}
			failed[idx] = true
			result.Failed = append(result.Failed, model.FailedContactInfo{
				Index:     idx,
				ContactID: writes[idx].Contact.ID,
				Reason:    reason,
			})
		}
	}

	// A replace that matches nothing is not a write error; find which ones
	// missed when the matched count falls short.
	var replaced []int
	for i, w := range writes {
		if w.Kind != model.WriteInsert && !failed[i] {
			replaced = append(replaced, i)
		}
	}
	if bulkRes != nil && int(bulkRes.MatchedCount) < len(replaced) {
		missing, err := r.missingContacts(ctx, writes, replaced)
		if err != nil {
			return nil, err
		}
		for _, idx := range missing {
			result.Failed = append(result.Failed, model.FailedContactInfo{
				Index:     idx,
				ContactID: writes[idx].Contact.ID,
				Reason:    ErrNotFound.Error(),
			})
		}
		sort.Slice(result.Failed, func(i, j int) bool { return result.Failed[i].Index < result.Failed[j].Index })
	}

	result.FailedCount = len(result.Failed)
	result.SuccessCount = len(writes) - result.FailedCount
	return result, nil
}

// missingContacts returns the indexes in idxs whose contact is not live for
// its owner.
func (r *MongoRepository) missingContacts(ctx context.Context, writes []model.ContactWrite, idxs []int) ([]int, error) {
	ids := make(bson.A, 0, len(idxs))
	for _, i := range idxs {
		ids = append(ids, writes[i].Contact.ID)
	}

	opts := options.Find().SetProjection(bson.M{"_id": 1, "user_id": 1})
	cursor, err := r.Contacts.Find(ctx, bson.M{"_id": bson.M{"$in": ids}, "deleted_at": nil}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var live []struct {
		ID     string `bson:"_id"`
		UserID string `bson:"user_id"`
	}
	if err := cursor.All(ctx, &live); err != nil {
		return nil, err
	}
	owner := make(map[string]string, len(live))
	for _, c := range live {
		owner[c.ID] = c.UserID
	}

	var missing []int
	for _, i := range idxs {
		c := writes[i].Contact
		if u, ok := owner[c.ID]; !ok || u != c.UserID {
			missing = append(missing, i)
		}
	}
	return missing, nil
}

func (r *MongoRepository) MarkMerged(ctx context.Context, userID, contactID, keeperID string, at time.Time) error {
	return r.updateLive(ctx, userID, contactID, bson.M{
		"merged_into": keeperID,
		"deleted_at":  at,
		"updated_at":  at,
	})
}

func (r *MongoRepository) FlagDuplicate(ctx context.Context, userID, contactID, keeperID string, at time.Time) error {
	return r.updateLive(ctx, userID, contactID, bson.M{
		"duplicate_of": keeperID,
		"updated_at":   at,
	})
}

func (r *MongoRepository) updateLive(ctx context.Context, userID, contactID string, set bson.M) error {
	filter := bson.M{"_id": contactID, "user_id": userID, "deleted_at": nil}
	res, err := r.Contacts.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// buildContactFilter translates a ContactFilter into the query that
// model.ContactFilter.Matches evaluates in memory.
func buildContactFilter(f model.ContactFilter) bson.M {
	filter := bson.M{
		"user_id":    f.UserID,
		"deleted_at": nil,
	}
	if f.ExcludeFlagged {
		filter["duplicate_of"] = bson.M{"$in": bson.A{nil, ""}}
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Company != "" {
		filter["company"] = exactFold(f.Company)
	}
	if len(f.Tags) > 0 {
		tags := make(bson.A, 0, len(f.Tags))
		for _, t := range f.Tags {
			tags = append(tags, exactFold(t))
		}
		filter["tags"] = bson.M{"$all": tags}
	}
	if f.Search != "" {
		needle := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		or := bson.A{}
		for _, field := range []string{"first_name", "last_name", "email", "company", "job_title"} {
			or = append(or, bson.M{field: needle})
		}
		filter["$or"] = or
	}
	return filter
}

func isDuplicateKeyCode(code int) bool {
	return code == 11000 || code == 11001 || code == 12582
}

func exactFold(v string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(v) + "$", Options: "i"}
}

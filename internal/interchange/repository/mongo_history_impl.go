package repository

import (
	"context"
	"time"

	"contactsync/internal/interchange/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoHistoryRepository implements HistoryRepository using MongoDB
type MongoHistoryRepository struct {
	Collection *mongo.Collection
}

// NewMongoHistoryRepository creates a new MongoHistoryRepository
func NewMongoHistoryRepository(db *mongo.Database, collectionName string) *MongoHistoryRepository {
	return &MongoHistoryRepository{
		Collection: db.Collection(collectionName),
	}
}

// EnsureHistoryIndexes creates indexes for efficient querying
func (r *MongoHistoryRepository) EnsureHistoryIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		// Per-user listing and stats: user_id + created_at
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_user_created_at"),
		},
		// One record per import
		{
			Keys:    bson.D{{Key: "import_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_import_id"),
		},
	}

	_, err := r.Collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// CreateHistory creates a new history record (append-only)
func (r *MongoHistoryRepository) CreateHistory(ctx context.Context, history *model.ImportHistory) error {
	if history.CreatedAt.IsZero() {
		history.CreatedAt = time.Now()
	}
	_, err := r.Collection.InsertOne(ctx, history)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

// FindHistory finds history records with pagination and filtering
func (r *MongoHistoryRepository) FindHistory(ctx context.Context, userID string, req model.ListImportHistoryReq) ([]*model.ImportHistory, int64, error) {
	filter := bson.M{"user_id": userID}

	// Add time range filter
	if req.StartTime != nil || req.EndTime != nil {
		timeFilter := bson.M{}
		if req.StartTime != nil {
			timeFilter["$gte"] = *req.StartTime
		}
		if req.EndTime != nil {
			timeFilter["$lte"] = *req.EndTime
		}
		filter["created_at"] = timeFilter
	}

	// Count total records
	total, err := r.Collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	// Calculate skip for pagination
	skip := int64((req.Page - 1) * req.Size)

	// Find with pagination and sort by created_at desc
	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(int64(req.Size))

	cursor, err := r.Collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	results := []*model.ImportHistory{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, 0, err
	}

	return results, total, nil
}

// AggregateStats groups every record of the user into one document
func (r *MongoHistoryRepository) AggregateStats(ctx context.Context, userID string) (*model.ImportStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": userID}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "last_import_at", Value: bson.M{"$max": "$finished_at"}},
			{Key: "total_imported", Value: bson.M{"$sum": "$created"}},
			{Key: "total_updated", Value: bson.M{"$sum": "$updated"}},
			{Key: "total_skipped", Value: bson.M{"$sum": "$skipped"}},
			{Key: "total_failed", Value: bson.M{"$sum": "$invalid"}},
			{Key: "import_count", Value: bson.M{"$sum": 1}},
		}}},
	}

	cursor, err := r.Collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	stats := &model.ImportStats{}
	if cursor.Next(ctx) {
		if err := cursor.Decode(stats); err != nil {
			return nil, err
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}

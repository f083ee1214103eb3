package record

import (
	"context"
	"errors"

	"toorak_vpn/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "records"

type (
	RecordRepo struct {
		collection *mongo.Collection
	}
)

func NewRecordRepo(db *mongo.Database) *RecordRepo {
	return &RecordRepo{
		collection: db.Collection(collectionName),
	}
}

// EnsureIndexes makes message_id unique so a replayed message cannot create
// a second record.
func (r *RecordRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "message_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// GetByMessageID returns nil, nil when no record exists.
func (r *RecordRepo) GetByMessageID(ctx context.Context, messageID string) (*model.ProtectedRecord, error) {
	filter := bson.M{
		"message_id": messageID,
	}

	var rec model.ProtectedRecord
	err := r.collection.FindOne(ctx, filter).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return &rec, nil
}

func (r *RecordRepo) Create(ctx context.Context, rec *model.ProtectedRecord) error {
	_, err := r.collection.InsertOne(ctx, rec)
	return err
}

package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/therapease/therapease-backend/internal/models"
)

const journalCollection = "journals"

// MongoJournalStore implements JournalStore on the journals collection.
type MongoJournalStore struct {
	DB *mongo.Database
}

func NewMongoJournalStore(db *mongo.Database) *MongoJournalStore {
	return &MongoJournalStore{DB: db}
}

// EnsureIndexes creates the indexes the journal queries rely on.
func (s *MongoJournalStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.DB.Collection(journalCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "entry_date", Value: 1}}},
	})
	return err
}

func (s *MongoJournalStore) Insert(ctx context.Context, entry *models.JournalEntry) error {
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	now := time.Now()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	_, err := s.DB.Collection(journalCollection).InsertOne(ctx, entry)
	return err
}

func (s *MongoJournalStore) FindByID(ctx context.Context, id string) (*models.JournalEntry, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var entry models.JournalEntry
	err = s.DB.Collection(journalCollection).FindOne(ctx, bson.M{"_id": objectID}).Decode(&entry)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *MongoJournalStore) FindByUser(ctx context.Context, userID string) ([]models.JournalEntry, error) {
	findOptions := options.Find().SetSort(bson.M{"entry_date": 1})

	cursor, err := s.DB.Collection(journalCollection).Find(ctx, bson.M{"user_id": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.JournalEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *MongoJournalStore) Update(ctx context.Context, entry *models.JournalEntry) error {
	entry.UpdatedAt = time.Now()

	result, err := s.DB.Collection(journalCollection).UpdateOne(ctx,
		bson.M{"_id": entry.ID},
		bson.M{"$set": bson.M{
			"updated_at":        entry.UpdatedAt,
			"entry_title":       entry.EntryTitle,
			"entry_text":        entry.EntryText,
			"predicted_emotion": entry.PredictedEmotion,
		}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoJournalStore) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	result, err := s.DB.Collection(journalCollection).DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

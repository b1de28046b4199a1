package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JournalEntry is a patient's journal entry with its predicted emotion label.
type JournalEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	UserID           string    `bson:"user_id" json:"user_id"`
	EntryTitle       string    `bson:"entry_title" json:"entry_title"`
	EntryText        string    `bson:"entry_text" json:"entry_text"`
	EntryDate        time.Time `bson:"entry_date" json:"entry_date"`
	PredictedEmotion string    `bson:"predicted_emotion" json:"predicted_emotion"`
}

func (j *JournalEntry) ToJSON() map[string]interface{} {
	return map[string]interface{}{
		"id":                j.ID.Hex(),
		"entry_title":       j.EntryTitle,
		"entry_text":        j.EntryText,
		"entry_date":        j.EntryDate,
		"predicted_emotion": j.PredictedEmotion,
	}
}

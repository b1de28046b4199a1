package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/therapease/therapease-backend/internal/models"
)

// ErrNotFound is returned by Find methods when no record matches.
var ErrNotFound = errors.New("record not found")

// UserStore persists accounts (patients and therapists).
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	SetJWTActive(ctx context.Context, id uuid.UUID, active bool) error
	SetProfileImage(ctx context.Context, id uuid.UUID, url string) error
}

// JournalStore persists journal entries.
type JournalStore interface {
	Insert(ctx context.Context, entry *models.JournalEntry) error
	FindByID(ctx context.Context, id string) (*models.JournalEntry, error)
	// FindByUser returns the user's entries in chronological order.
	FindByUser(ctx context.Context, userID string) ([]models.JournalEntry, error)
	Update(ctx context.Context, entry *models.JournalEntry) error
	Delete(ctx context.Context, id string) error
}

// RelationStore persists patient-therapist assignments. A patient has at most
// one relation; Create fails if one already exists.
type RelationStore interface {
	Create(ctx context.Context, relation *models.PatientTherapistRelation) error
	FindByPatient(ctx context.Context, patientID uuid.UUID) (*models.PatientTherapistRelation, error)
	FindByTherapist(ctx context.Context, therapistID uuid.UUID) ([]models.PatientTherapistRelation, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// BlocklistStore persists revoked tokens.
type BlocklistStore interface {
	Add(ctx context.Context, token string, revokedAt time.Time) error
	Contains(ctx context.Context, token string) (bool, error)
	// PruneBefore removes blocklist rows created before cutoff and returns
	// how many were deleted.
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/therapease/therapease-backend/internal/models"
)

// In-memory store implementations. Used as substitutes for the Postgres and
// Mongo stores in tests; they honor the same contracts, including the
// one-relation-per-patient constraint.

type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]models.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[uuid.UUID]models.User)}
}

func (s *MemoryUserStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	for _, u := range s.users {
		if u.Email == user.Email || u.Username == user.Username {
			return errors.New("duplicate user")
		}
	}
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryUserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		copy := u
		return &copy, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			copy := u
			return &copy, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryUserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			copy := u
			return &copy, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryUserStore) Update(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	stored.Username = user.Username
	stored.FirstName = user.FirstName
	stored.LastName = user.LastName
	stored.DateOfBirth = user.DateOfBirth
	stored.Gender = user.Gender
	stored.Country = user.Country
	stored.City = user.City
	stored.TherapistSpeciality = user.TherapistSpeciality
	stored.TherapistLocation = user.TherapistLocation
	stored.UpdatedAt = time.Now()
	s.users[user.ID] = stored
	return nil
}

func (s *MemoryUserStore) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	stored.PasswordHash = passwordHash
	s.users[id] = stored
	return nil
}

func (s *MemoryUserStore) SetJWTActive(ctx context.Context, id uuid.UUID, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	stored.JWTAuthActive = active
	s.users[id] = stored
	return nil
}

func (s *MemoryUserStore) SetProfileImage(ctx context.Context, id uuid.UUID, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	stored.ProfileImageURL = url
	s.users[id] = stored
	return nil
}

type MemoryJournalStore struct {
	mu      sync.RWMutex
	entries map[string]models.JournalEntry
}

func NewMemoryJournalStore() *MemoryJournalStore {
	return &MemoryJournalStore{entries: make(map[string]models.JournalEntry)}
}

func (s *MemoryJournalStore) Insert(ctx context.Context, entry *models.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	now := time.Now()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	s.entries[entry.ID.Hex()] = *entry
	return nil
}

func (s *MemoryJournalStore) FindByID(ctx context.Context, id string) (*models.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.entries[id]; ok {
		copy := e
		return &copy, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryJournalStore) FindByUser(ctx context.Context, userID string) ([]models.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var entries []models.JournalEntry
	for _, e := range s.entries {
		if e.UserID == userID {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].EntryDate.Before(entries[j].EntryDate)
	})
	return entries, nil
}

func (s *MemoryJournalStore) Update(ctx context.Context, entry *models.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.entries[entry.ID.Hex()]
	if !ok {
		return ErrNotFound
	}
	stored.EntryTitle = entry.EntryTitle
	stored.EntryText = entry.EntryText
	stored.PredictedEmotion = entry.PredictedEmotion
	stored.UpdatedAt = time.Now()
	s.entries[entry.ID.Hex()] = stored
	return nil
}

func (s *MemoryJournalStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return ErrNotFound
	}
	delete(s.entries, id)
	return nil
}

type MemoryRelationStore struct {
	mu        sync.RWMutex
	relations map[uuid.UUID]models.PatientTherapistRelation
}

func NewMemoryRelationStore() *MemoryRelationStore {
	return &MemoryRelationStore{relations: make(map[uuid.UUID]models.PatientTherapistRelation)}
}

func (s *MemoryRelationStore) Create(ctx context.Context, relation *models.PatientTherapistRelation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rel := range s.relations {
		if rel.PatientID == relation.PatientID {
			return errors.New("patient already has a relation")
		}
	}
	if relation.ID == uuid.Nil {
		relation.ID = uuid.New()
	}
	relation.CreatedAt = time.Now()
	s.relations[relation.ID] = *relation
	return nil
}

func (s *MemoryRelationStore) FindByPatient(ctx context.Context, patientID uuid.UUID) (*models.PatientTherapistRelation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rel := range s.relations {
		if rel.PatientID == patientID {
			copy := rel
			return &copy, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryRelationStore) FindByTherapist(ctx context.Context, therapistID uuid.UUID) ([]models.PatientTherapistRelation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var relations []models.PatientTherapistRelation
	for _, rel := range s.relations {
		if rel.TherapistID == therapistID {
			relations = append(relations, rel)
		}
	}
	sort.Slice(relations, func(i, j int) bool {
		return relations[i].CreatedAt.Before(relations[j].CreatedAt)
	})
	return relations, nil
}

func (s *MemoryRelationStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.relations[id]; !ok {
		return ErrNotFound
	}
	delete(s.relations, id)
	return nil
}

type MemoryBlocklistStore struct {
	mu     sync.RWMutex
	tokens map[string]time.Time
}

func NewMemoryBlocklistStore() *MemoryBlocklistStore {
	return &MemoryBlocklistStore{tokens: make(map[string]time.Time)}
}

func (s *MemoryBlocklistStore) Add(ctx context.Context, token string, revokedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[token]; !ok {
		s.tokens[token] = revokedAt
	}
	return nil
}

func (s *MemoryBlocklistStore) Contains(ctx context.Context, token string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tokens[token]
	return ok, nil
}

func (s *MemoryBlocklistStore) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var pruned int64
	for token, revokedAt := range s.tokens {
		if revokedAt.Before(cutoff) {
			delete(s.tokens, token)
			pruned++
		}
	}
	return pruned, nil
}

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/therapease/therapease-backend/internal/models"
)

const userColumns = `id, created_at, updated_at, username, email, password_hash, type_of_account,
		first_name, last_name, date_of_birth, gender, country, city,
		therapist_speciality, therapist_location, profile_image_url, jwt_auth_active`

// PostgresUserStore implements UserStore on top of the users table.
type PostgresUserStore struct {
	DB *sql.DB
}

func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{DB: db}
}

func (s *PostgresUserStore) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	var dob interface{}
	if !user.DateOfBirth.IsZero() {
		dob = user.DateOfBirth
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO users (id, created_at, updated_at, username, email, password_hash, type_of_account,
			first_name, last_name, date_of_birth, gender, country, city,
			therapist_speciality, therapist_location, profile_image_url, jwt_auth_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`, user.ID, user.CreatedAt, user.UpdatedAt, user.Username, user.Email, user.PasswordHash,
		user.TypeOfAccount, user.FirstName, user.LastName, dob, user.Gender, user.Country,
		user.City, user.TherapistSpeciality, user.TherapistLocation, user.ProfileImageURL,
		user.JWTAuthActive)
	return err
}

func (s *PostgresUserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.scanUser(s.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (s *PostgresUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.scanUser(s.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (s *PostgresUserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.scanUser(s.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (s *PostgresUserStore) Update(ctx context.Context, user *models.User) error {
	var dob interface{}
	if !user.DateOfBirth.IsZero() {
		dob = user.DateOfBirth
	}
	user.UpdatedAt = time.Now()

	_, err := s.DB.ExecContext(ctx, `
		UPDATE users SET updated_at = $2, username = $3, first_name = $4, last_name = $5,
			date_of_birth = $6, gender = $7, country = $8, city = $9,
			therapist_speciality = $10, therapist_location = $11
		WHERE id = $1
	`, user.ID, user.UpdatedAt, user.Username, user.FirstName, user.LastName, dob,
		user.Gender, user.Country, user.City, user.TherapistSpeciality, user.TherapistLocation)
	return err
}

func (s *PostgresUserStore) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	_, err := s.DB.ExecContext(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, passwordHash)
	return err
}

func (s *PostgresUserStore) SetJWTActive(ctx context.Context, id uuid.UUID, active bool) error {
	_, err := s.DB.ExecContext(ctx,
		`UPDATE users SET jwt_auth_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	return err
}

func (s *PostgresUserStore) SetProfileImage(ctx context.Context, id uuid.UUID, url string) error {
	_, err := s.DB.ExecContext(ctx,
		`UPDATE users SET profile_image_url = $2, updated_at = NOW() WHERE id = $1`, id, url)
	return err
}

func (s *PostgresUserStore) scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	var dob sql.NullTime
	var gender, country, city, speciality, location, imageURL sql.NullString

	err := row.Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt, &user.Username, &user.Email,
		&user.PasswordHash, &user.TypeOfAccount, &user.FirstName, &user.LastName, &dob,
		&gender, &country, &city, &speciality, &location, &imageURL, &user.JWTAuthActive)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if dob.Valid {
		user.DateOfBirth = dob.Time
	}
	user.Gender = gender.String
	user.Country = country.String
	user.City = city.String
	user.TherapistSpeciality = speciality.String
	user.TherapistLocation = location.String
	user.ProfileImageURL = imageURL.String
	return &user, nil
}

// PostgresRelationStore implements RelationStore.
type PostgresRelationStore struct {
	DB *sql.DB
}

func NewPostgresRelationStore(db *sql.DB) *PostgresRelationStore {
	return &PostgresRelationStore{DB: db}
}

func (s *PostgresRelationStore) Create(ctx context.Context, relation *models.PatientTherapistRelation) error {
	if relation.ID == uuid.Nil {
		relation.ID = uuid.New()
	}
	relation.CreatedAt = time.Now()
	// UNIQUE(patient_id) rejects a second therapist for the same patient
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO patient_therapist_relations (id, created_at, patient_id, therapist_id)
		VALUES ($1, $2, $3, $4)
	`, relation.ID, relation.CreatedAt, relation.PatientID, relation.TherapistID)
	return err
}

func (s *PostgresRelationStore) FindByPatient(ctx context.Context, patientID uuid.UUID) (*models.PatientTherapistRelation, error) {
	var relation models.PatientTherapistRelation
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, created_at, patient_id, therapist_id
		FROM patient_therapist_relations WHERE patient_id = $1
	`, patientID).Scan(&relation.ID, &relation.CreatedAt, &relation.PatientID, &relation.TherapistID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &relation, nil
}

func (s *PostgresRelationStore) FindByTherapist(ctx context.Context, therapistID uuid.UUID) ([]models.PatientTherapistRelation, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, created_at, patient_id, therapist_id
		FROM patient_therapist_relations WHERE therapist_id = $1
		ORDER BY created_at
	`, therapistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var relations []models.PatientTherapistRelation
	for rows.Next() {
		var relation models.PatientTherapistRelation
		if err := rows.Scan(&relation.ID, &relation.CreatedAt, &relation.PatientID, &relation.TherapistID); err != nil {
			return nil, err
		}
		relations = append(relations, relation)
	}
	return relations, rows.Err()
}

func (s *PostgresRelationStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.DB.ExecContext(ctx,
		`DELETE FROM patient_therapist_relations WHERE id = $1`, id)
	return err
}

// PostgresBlocklistStore implements BlocklistStore.
type PostgresBlocklistStore struct {
	DB *sql.DB
}

func NewPostgresBlocklistStore(db *sql.DB) *PostgresBlocklistStore {
	return &PostgresBlocklistStore{DB: db}
}

func (s *PostgresBlocklistStore) Add(ctx context.Context, token string, revokedAt time.Time) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO jwt_token_blocklist (id, jwt_token, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (jwt_token) DO NOTHING
	`, uuid.New(), token, revokedAt)
	return err
}

func (s *PostgresBlocklistStore) Contains(ctx context.Context, token string) (bool, error) {
	var exists bool
	err := s.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM jwt_token_blocklist WHERE jwt_token = $1)`, token).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (s *PostgresBlocklistStore) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.DB.ExecContext(ctx,
		`DELETE FROM jwt_token_blocklist WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

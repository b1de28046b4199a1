package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/therapease/therapease-backend/internal/models"
)

func TestPostgresUserStoreFindByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()
	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "created_at", "updated_at", "username", "email", "password_hash", "type_of_account",
		"first_name", "last_name", "date_of_birth", "gender", "country", "city",
		"therapist_speciality", "therapist_location", "profile_image_url", "jwt_auth_active",
	}).AddRow(id, now, now, "anna", "anna@example.com", "hash", "patient",
		"Anna", "Schmidt", nil, "female", "Germany", "Berlin", nil, nil, nil, true)

	mock.ExpectQuery("FROM users WHERE email = \\$1").
		WithArgs("anna@example.com").
		WillReturnRows(rows)

	user, err := NewPostgresUserStore(db).FindByEmail(context.Background(), "anna@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "anna", user.Username)
	assert.Equal(t, "patient", user.TypeOfAccount)
	assert.True(t, user.DateOfBirth.IsZero())
	assert.Empty(t, user.TherapistSpeciality)
	assert.True(t, user.JWTAuthActive)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserStoreFindByEmailNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM users WHERE email = \\$1").
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = NewPostgresUserStore(db).FindByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserStoreSetJWTActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()
	mock.ExpectExec("UPDATE users SET jwt_auth_active = \\$2, updated_at = NOW\\(\\) WHERE id = \\$1").
		WithArgs(id, false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewPostgresUserStore(db).SetJWTActive(context.Background(), id, false))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRelationStoreCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	relation := models.PatientTherapistRelation{
		PatientID:   uuid.New(),
		TherapistID: uuid.New(),
	}

	mock.ExpectExec("INSERT INTO patient_therapist_relations").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), relation.PatientID, relation.TherapistID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewPostgresRelationStore(db).Create(context.Background(), &relation))
	assert.NotEqual(t, uuid.Nil, relation.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRelationStoreFindByPatientNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	patientID := uuid.New()
	mock.ExpectQuery("SELECT id, created_at, patient_id, therapist_id").
		WithArgs(patientID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = NewPostgresRelationStore(db).FindByPatient(context.Background(), patientID)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBlocklistStoreAdd(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectExec("INSERT INTO jwt_token_blocklist").
		WithArgs(sqlmock.AnyArg(), "some.jwt.token", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewPostgresBlocklistStore(db).Add(context.Background(), "some.jwt.token", now))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBlocklistStoreContains(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("some.jwt.token").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	revoked, err := NewPostgresBlocklistStore(db).Contains(context.Background(), "some.jwt.token")
	require.NoError(t, err)
	assert.True(t, revoked)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBlocklistStorePruneBefore(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cutoff := time.Now().Add(-24 * time.Hour)
	mock.ExpectExec("DELETE FROM jwt_token_blocklist WHERE created_at < \\$1").
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 3))

	pruned, err := NewPostgresBlocklistStore(db).PruneBefore(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(3), pruned)
	require.NoError(t, mock.ExpectationsWereMet())
}

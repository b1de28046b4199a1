package database

import (
	"database/sql"
	"log"
	"time"

	_ "github.com/lib/pq"
)

var PostgresDB *sql.DB

// ConnectPostgres connects to PostgreSQL database
func ConnectPostgres(postgresURI string) error {
	var err error

	PostgresDB, err = sql.Open("postgres", postgresURI)
	if err != nil {
		return err
	}

	// Set connection pool settings
	PostgresDB.SetMaxOpenConns(25)
	PostgresDB.SetMaxIdleConns(5)
	PostgresDB.SetConnMaxLifetime(5 * time.Minute)

	// Test connection
	if err = PostgresDB.Ping(); err != nil {
		return err
	}

	log.Println("✅ Connected to PostgreSQL")

	// Initialize tables
	if err = InitPostgresTables(); err != nil {
		return err
	}

	return nil
}

// InitPostgresTables creates all necessary tables if they don't exist
func InitPostgresTables() error {
	queries := []string{
		// Users table (patients and therapists share one table, discriminated by type_of_account)
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
			username VARCHAR(64) NOT NULL UNIQUE,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			type_of_account VARCHAR(20) NOT NULL CHECK (type_of_account IN ('patient', 'therapist')),
			first_name VARCHAR(64) NOT NULL,
			last_name VARCHAR(64) NOT NULL,
			date_of_birth DATE,
			gender VARCHAR(32),
			country VARCHAR(64),
			city VARCHAR(64),
			therapist_speciality VARCHAR(64),
			therapist_location VARCHAR(64),
			profile_image_url TEXT,
			jwt_auth_active BOOLEAN NOT NULL DEFAULT FALSE
		)`,

		// Revoked session tokens. Rows are pruned once the token is past its
		// natural expiry (see services.StartBlocklistCleanup).
		`CREATE TABLE IF NOT EXISTS jwt_token_blocklist (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			jwt_token TEXT NOT NULL UNIQUE,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,

		// Patient-therapist roster. UNIQUE(patient_id) guarantees a patient
		// has at most one therapist.
		`CREATE TABLE IF NOT EXISTS patient_therapist_relations (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			patient_id UUID NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
			therapist_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE
		)`,

		// Create indexes for better performance
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
		`CREATE INDEX IF NOT EXISTS idx_users_username ON users(username)`,
		`CREATE INDEX IF NOT EXISTS idx_jwt_token_blocklist_token ON jwt_token_blocklist(jwt_token)`,
		`CREATE INDEX IF NOT EXISTS idx_jwt_token_blocklist_created_at ON jwt_token_blocklist(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_relations_therapist_id ON patient_therapist_relations(therapist_id)`,
	}

	for _, query := range queries {
		if _, err := PostgresDB.Exec(query); err != nil {
			return err
		}
	}

	log.Println("✅ PostgreSQL tables initialized")
	return nil
}

// DisconnectPostgres closes the PostgreSQL connection
func DisconnectPostgres() error {
	if PostgresDB != nil {
		return PostgresDB.Close()
	}
	return nil
}

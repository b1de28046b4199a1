package models

import (
	"time"

	"github.com/google/uuid"
)

// PatientTherapistRelation links one patient to one therapist. The store
// enforces at most one relation per patient.
type PatientTherapistRelation struct {
	ID          uuid.UUID `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	PatientID   uuid.UUID `json:"patient_id"`
	TherapistID uuid.UUID `json:"therapist_id"`
}

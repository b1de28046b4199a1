package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/therapease/therapease-backend/internal/middleware"
	"github.com/therapease/therapease-backend/internal/models"
	"github.com/therapease/therapease-backend/internal/store"
)

type AddPatientRequest struct {
	Email string `json:"email"`
}

// requireTherapist resolves the caller and rejects non-therapist accounts.
func requireTherapist(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	caller, ok := middleware.CallerFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return nil, false
	}
	if !caller.IsTherapist() {
		respondError(w, http.StatusForbidden, "User is not a therapist")
		return nil, false
	}
	return caller, true
}

// ListPatients returns full details for every patient on the caller's roster.
func ListPatients(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireTherapist(w, r)
	if !ok {
		return
	}

	relations, err := relationStore.FindByTherapist(r.Context(), caller.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch patients")
		return
	}

	patients := make([]map[string]interface{}, 0, len(relations))
	for _, relation := range relations {
		patient, err := userStore.FindByID(r.Context(), relation.PatientID)
		if err != nil {
			// Relation rows cascade-delete with users; a miss here is a race,
			// skip the row rather than failing the whole roster
			log.Printf("⚠️  Roster references missing patient %s", relation.PatientID)
			continue
		}
		patients = append(patients, patient.AllDetails())
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"patients": patients,
	})
}

// AddPatient assigns a patient (looked up by email) to the caller's roster.
func AddPatient(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireTherapist(w, r)
	if !ok {
		return
	}

	var req AddPatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" {
		respondError(w, http.StatusBadRequest, "Email is required")
		return
	}

	patient, err := userStore.FindByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Patient does not exist")
		} else {
			respondError(w, http.StatusInternalServerError, "Database error")
		}
		return
	}

	// A patient has at most one therapist, regardless of which one
	if _, err := relationStore.FindByPatient(r.Context(), patient.ID); err == nil {
		respondError(w, http.StatusConflict, "Patient already has a therapist")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusInternalServerError, "Database error")
		return
	}

	if patient.IsTherapist() {
		respondError(w, http.StatusConflict, "Patient is a therapist")
		return
	}

	relation := models.PatientTherapistRelation{
		PatientID:   patient.ID,
		TherapistID: caller.ID,
	}
	if err := relationStore.Create(r.Context(), &relation); err != nil {
		// The UNIQUE(patient_id) constraint closes the check-then-create race
		respondError(w, http.StatusConflict, "Patient already has a therapist")
		return
	}

	respondSuccess(w, http.StatusCreated, map[string]interface{}{
		"msg": "Patient added successfully",
	})
}

// patientFromURL parses the {id} route parameter and loads the patient,
// verifying the account actually is a patient.
func patientFromURL(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	patientID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "Patient does not exist")
		return nil, false
	}

	patient, err := userStore.FindByID(r.Context(), patientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Patient does not exist")
		} else {
			respondError(w, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	if patient.TypeOfAccount != models.AccountTypePatient {
		respondError(w, http.StatusNotFound, "User is not a patient")
		return nil, false
	}
	return patient, true
}

// GetPatientDetail returns a patient's profile plus the chronological list of
// {emotion, date} pairs drawn from their journals. The patient must be on the
// calling therapist's own roster.
func GetPatientDetail(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireTherapist(w, r)
	if !ok {
		return
	}

	patient, ok := patientFromURL(w, r)
	if !ok {
		return
	}

	relation, err := relationStore.FindByPatient(r.Context(), patient.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusForbidden, "Patient is not a patient of the therapist")
		} else {
			respondError(w, http.StatusInternalServerError, "Database error")
		}
		return
	}
	if relation.TherapistID != caller.ID {
		respondError(w, http.StatusForbidden, "Patient is not a patient of the therapist")
		return
	}

	entries, err := journalStore.FindByUser(r.Context(), patient.ID.String())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch journals")
		return
	}

	emotions := make([]map[string]interface{}, 0, len(entries))
	for _, entry := range entries {
		emotions = append(emotions, map[string]interface{}{
			"emotion": entry.PredictedEmotion,
			"date":    entry.EntryDate,
		})
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"patient":  patient.AllDetails(),
		"emotions": emotions,
	})
}

// RemovePatient deletes the relation between the caller and the patient.
func RemovePatient(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireTherapist(w, r)
	if !ok {
		return
	}

	patientID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "Patient does not exist")
		return
	}

	relation, err := relationStore.FindByPatient(r.Context(), patientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Patient is not a patient of the therapist")
		} else {
			respondError(w, http.StatusInternalServerError, "Database error")
		}
		return
	}
	if relation.TherapistID != caller.ID {
		respondError(w, http.StatusForbidden, "Patient is not a patient of the therapist")
		return
	}

	if err := relationStore.Delete(r.Context(), relation.ID); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to remove patient")
		return
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"msg": "Patient deleted successfully",
	})
}

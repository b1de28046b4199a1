package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/therapease/therapease-backend/internal/middleware"
	"github.com/therapease/therapease-backend/internal/models"
	"github.com/therapease/therapease-backend/internal/services"
	"github.com/therapease/therapease-backend/internal/store"
)

type JournalRequest struct {
	EntryTitle string `json:"entry_title"`
	EntryText  string `json:"entry_text"`
}

// predictEmotion wraps the external predictor defensively: the model contract
// declares no failure mode, so a failed call degrades to "unknown" rather
// than failing the write.
func predictEmotion(ctx context.Context, text string) string {
	label, err := predictor.Predict(ctx, text)
	if err != nil {
		log.Printf("⚠️  Emotion prediction failed: %v", err)
		return services.EmotionUnknown
	}
	return label
}

// ListJournals returns all journal entries owned by the caller.
func ListJournals(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	entries, err := journalStore.FindByUser(r.Context(), caller.ID.String())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch journals")
		return
	}

	journals := make([]map[string]interface{}, 0, len(entries))
	for i := range entries {
		journals = append(journals, entries[i].ToJSON())
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"journals": journals,
	})
}

// CreateJournal persists a new entry tagged with the caller's id and the
// predicted emotion of its text.
func CreateJournal(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req JournalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.EntryTitle == "" || req.EntryText == "" {
		respondError(w, http.StatusBadRequest, "entry_title and entry_text are required")
		return
	}

	entry := models.JournalEntry{
		UserID:           caller.ID.String(),
		EntryTitle:       req.EntryTitle,
		EntryText:        req.EntryText,
		EntryDate:        time.Now(),
		PredictedEmotion: predictEmotion(r.Context(), req.EntryText),
	}

	if err := journalStore.Insert(r.Context(), &entry); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create journal entry")
		return
	}

	respondSuccess(w, http.StatusCreated, map[string]interface{}{
		"msg":     "Journal created successfully",
		"journal": entry.ToJSON(),
	})
}

// GetJournal returns a single entry. Ownership is checked before any content
// is returned.
func GetJournal(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	entry, err := journalStore.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Journal does not exist")
		} else {
			respondError(w, http.StatusInternalServerError, "Failed to fetch journal")
		}
		return
	}
	if entry.UserID != caller.ID.String() {
		respondError(w, http.StatusForbidden, "Journal does not belong to this user")
		return
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"journal": entry.ToJSON(),
	})
}

// UpdateJournal replaces title and text and re-runs emotion prediction on the
// new text. Ownership is verified before mutating.
func UpdateJournal(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req JournalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.EntryTitle == "" || req.EntryText == "" {
		respondError(w, http.StatusBadRequest, "entry_title and entry_text are required")
		return
	}

	entry, err := journalStore.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Journal does not exist")
		} else {
			respondError(w, http.StatusInternalServerError, "Failed to fetch journal")
		}
		return
	}
	if entry.UserID != caller.ID.String() {
		respondError(w, http.StatusForbidden, "Journal does not belong to this user")
		return
	}

	entry.EntryTitle = req.EntryTitle
	entry.EntryText = req.EntryText
	entry.PredictedEmotion = predictEmotion(r.Context(), req.EntryText)

	if err := journalStore.Update(r.Context(), entry); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update journal entry")
		return
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"msg":     "Journal updated successfully",
		"journal": entry.ToJSON(),
	})
}

// DeleteJournal removes an entry. Ownership is verified before deleting.
func DeleteJournal(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	entry, err := journalStore.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Journal does not exist")
		} else {
			respondError(w, http.StatusInternalServerError, "Failed to fetch journal")
		}
		return
	}
	if entry.UserID != caller.ID.String() {
		respondError(w, http.StatusForbidden, "Journal does not belong to this user")
		return
	}

	if err := journalStore.Delete(r.Context(), entry.ID.Hex()); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete journal entry")
		return
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"msg": "Journal deleted successfully",
	})
}

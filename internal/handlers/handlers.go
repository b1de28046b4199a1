package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/therapease/therapease-backend/internal/config"
	"github.com/therapease/therapease-backend/internal/services"
	"github.com/therapease/therapease-backend/internal/store"
)

var (
	userStore     store.UserStore
	journalStore  store.JournalStore
	relationStore store.RelationStore
	tokenService  *services.TokenService
	predictor     services.Predictor
	cloudinarySvc *services.CloudinaryService
)

// Init wires the handler package to its stores and services. Tests call this
// with in-memory stores.
func Init(users store.UserStore, journals store.JournalStore, relations store.RelationStore, tokens *services.TokenService, emotion services.Predictor) {
	userStore = users
	journalStore = journals
	relationStore = relations
	tokenService = tokens
	predictor = emotion
}

// InitCloudinaryService initializes the profile-picture upload service.
func InitCloudinaryService(cfg *config.Config) error {
	service, err := services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return err
	}
	cloudinarySvc = service
	return nil
}

func respondJSON(w http.ResponseWriter, status int, payload map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondSuccess(w http.ResponseWriter, status int, payload map[string]interface{}) {
	body := map[string]interface{}{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	respondJSON(w, status, body)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]interface{}{"success": false, "msg": msg})
}

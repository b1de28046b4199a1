package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/therapease/therapease-backend/internal/middleware"
	"github.com/therapease/therapease-backend/internal/models"
	"github.com/therapease/therapease-backend/internal/store"
	"github.com/therapease/therapease-backend/pkg/utils"
)

type RegisterRequest struct {
	Username            string `json:"username"`
	Email               string `json:"email"`
	Password            string `json:"password"`
	TypeOfAccount       string `json:"type_of_account"`
	FirstName           string `json:"first_name"`
	LastName            string `json:"last_name"`
	DateOfBirth         string `json:"date_of_birth"`
	Gender              string `json:"gender"`
	Country             string `json:"country"`
	City                string `json:"city"`
	TherapistSpeciality string `json:"therapist_speciality,omitempty"`
	TherapistLocation   string `json:"therapist_location,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new patient or therapist account. Registration does not
// log the user in; login is a separate step.
func Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Username, email, and password are required")
		return
	}
	if req.TypeOfAccount != models.AccountTypePatient && req.TypeOfAccount != models.AccountTypeTherapist {
		respondError(w, http.StatusBadRequest, "type_of_account must be patient or therapist")
		return
	}

	var dateOfBirth time.Time
	if req.DateOfBirth != "" {
		parsed, err := time.Parse(models.DateOfBirthFormat, req.DateOfBirth)
		if err != nil {
			respondError(w, http.StatusBadRequest, "date_of_birth must be YYYY-MM-DD")
			return
		}
		dateOfBirth = parsed
	}

	// Check if email or username is already taken
	if _, err := userStore.FindByEmail(r.Context(), req.Email); err == nil {
		respondError(w, http.StatusConflict, "User with this email already exists")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if _, err := userStore.FindByUsername(r.Context(), req.Username); err == nil {
		respondError(w, http.StatusConflict, "User with this username already exists")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusInternalServerError, "Database error")
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	user := models.User{
		Username:      req.Username,
		Email:         req.Email,
		PasswordHash:  hashedPassword,
		TypeOfAccount: req.TypeOfAccount,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		DateOfBirth:   dateOfBirth,
		Gender:        req.Gender,
		Country:       req.Country,
		City:          req.City,
	}
	// Speciality and location only apply to therapist accounts; values sent
	// for patients are discarded
	if user.TypeOfAccount == models.AccountTypeTherapist {
		user.TherapistSpeciality = req.TherapistSpeciality
		user.TherapistLocation = req.TherapistLocation
	}

	if err := userStore.Create(r.Context(), &user); err != nil {
		log.Printf("ERROR: Failed to create user: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	respondSuccess(w, http.StatusCreated, map[string]interface{}{
		"msg": "User created successfully",
	})
}

// Login verifies credentials and issues a session token.
func Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := userStore.FindByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "User does not exist")
		} else {
			respondError(w, http.StatusInternalServerError, "Database error")
		}
		return
	}

	valid, err := utils.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil || !valid {
		respondError(w, http.StatusUnauthorized, "Invalid password")
		return
	}

	token, err := tokenService.Issue(r.Context(), user)
	if err != nil {
		log.Printf("ERROR: Failed to issue token: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"user":  user.ToJSON(),
		"token": token,
	})
}

// Logout revokes the caller's token. The same token must be rejected on
// subsequent requests even before its natural expiry.
func Logout(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := tokenService.Revoke(r.Context(), caller, r.Header.Get("Authorization")); err != nil {
		log.Printf("ERROR: Failed to revoke token: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to log out")
		return
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"msg": "User logged out successfully",
	})
}

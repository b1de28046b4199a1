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

type UpdateAccountRequest struct {
	Username            string `json:"username"`
	FirstName           string `json:"first_name"`
	LastName            string `json:"last_name"`
	DateOfBirth         string `json:"date_of_birth"`
	Gender              string `json:"gender"`
	Country             string `json:"country"`
	City                string `json:"city"`
	TherapistSpeciality string `json:"therapist_speciality,omitempty"`
	TherapistLocation   string `json:"therapist_location,omitempty"`
}

type ChangePasswordRequest struct {
	Password    string `json:"password"`
	NewPassword string `json:"new_password"`
}

// GetAccount returns the caller's full profile.
func GetAccount(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"user": caller.AllDetails(),
	})
}

// UpdateAccount overwrites the caller's profile fields. Speciality and
// location are only applied to therapist accounts.
func UpdateAccount(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" {
		respondError(w, http.StatusBadRequest, "Username is required")
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

	user, err := userStore.FindByID(r.Context(), caller.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "User does not exist")
		} else {
			respondError(w, http.StatusInternalServerError, "Database error")
		}
		return
	}

	// New username must not belong to someone else
	if req.Username != user.Username {
		if existing, err := userStore.FindByUsername(r.Context(), req.Username); err == nil && existing.ID != user.ID {
			respondError(w, http.StatusConflict, "User with this username already exists")
			return
		} else if err != nil && !errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusInternalServerError, "Database error")
			return
		}
	}

	user.Username = req.Username
	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.DateOfBirth = dateOfBirth
	user.Gender = req.Gender
	user.Country = req.Country
	user.City = req.City
	if user.IsTherapist() {
		user.TherapistSpeciality = req.TherapistSpeciality
		user.TherapistLocation = req.TherapistLocation
	}

	if err := userStore.Update(r.Context(), user); err != nil {
		log.Printf("ERROR: Failed to update user %s: %v", user.ID, err)
		respondError(w, http.StatusInternalServerError, "Failed to update user")
		return
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"msg": "User updated successfully",
	})
}

// ChangePassword rehashes and stores a new password after verifying the old one.
func ChangePassword(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Password == "" || req.NewPassword == "" {
		respondError(w, http.StatusBadRequest, "password and new_password are required")
		return
	}

	valid, err := utils.VerifyPassword(req.Password, caller.PasswordHash)
	if err != nil || !valid {
		respondError(w, http.StatusUnauthorized, "Wrong password")
		return
	}

	hashedPassword, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	if err := userStore.UpdatePassword(r.Context(), caller.ID, hashedPassword); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update password")
		return
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"msg": "Password updated successfully",
	})
}

// UploadProfilePicture uploads a profile image to Cloudinary and stores the
// resulting URL on the caller's account.
func UploadProfilePicture(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.CallerFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if cloudinarySvc == nil {
		respondError(w, http.StatusInternalServerError, "File upload service not available")
		return
	}

	// Max 10MB for the image plus form data
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	headers, exists := r.MultipartForm.File["image"]
	if !exists || len(headers) == 0 {
		respondError(w, http.StatusBadRequest, "image file is required")
		return
	}

	url, err := cloudinarySvc.UploadFileFromHeader(r.Context(), headers[0], "profile_pictures")
	if err != nil {
		log.Printf("ERROR: Profile picture upload failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to upload image")
		return
	}

	if err := userStore.SetProfileImage(r.Context(), caller.ID, url); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to save image URL")
		return
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"msg":               "Profile picture updated successfully",
		"profile_image_url": url,
	})
}

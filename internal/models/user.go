package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	AccountTypePatient   = "patient"
	AccountTypeTherapist = "therapist"
)

// DateOfBirthFormat is the wire format for date_of_birth fields.
const DateOfBirthFormat = "2006-01-02"

type User struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Username      string `json:"username"`
	Email         string `json:"email"`
	PasswordHash  string `json:"-"` // Don't return password hash in JSON
	TypeOfAccount string `json:"type_of_account"`

	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	DateOfBirth time.Time `json:"-"`
	Gender      string    `json:"gender"`
	Country     string    `json:"country"`
	City        string    `json:"city"`

	// Therapist-only fields; empty for patient accounts
	TherapistSpeciality string `json:"therapist_speciality,omitempty"`
	TherapistLocation   string `json:"therapist_location,omitempty"`

	ProfileImageURL string `json:"profile_image_url,omitempty"`

	// Gates whether existing tokens are honored; flipped on login/logout
	JWTAuthActive bool `json:"-"`
}

func (u *User) IsTherapist() bool {
	return u.TypeOfAccount == AccountTypeTherapist
}

// ToJSON returns the public profile shown after login.
func (u *User) ToJSON() map[string]interface{} {
	return map[string]interface{}{
		"id":              u.ID.String(),
		"username":        u.Username,
		"email":           u.Email,
		"type_of_account": u.TypeOfAccount,
	}
}

// AllDetails returns the full profile (account page, therapist roster views).
func (u *User) AllDetails() map[string]interface{} {
	details := map[string]interface{}{
		"id":              u.ID.String(),
		"username":        u.Username,
		"email":           u.Email,
		"type_of_account": u.TypeOfAccount,
		"first_name":      u.FirstName,
		"last_name":       u.LastName,
		"date_of_birth":   u.DateOfBirthString(),
		"gender":          u.Gender,
		"country":         u.Country,
		"city":            u.City,
		"created_at":      u.CreatedAt,
	}
	if u.ProfileImageURL != "" {
		details["profile_image_url"] = u.ProfileImageURL
	}
	if u.IsTherapist() {
		details["therapist_speciality"] = u.TherapistSpeciality
		details["therapist_location"] = u.TherapistLocation
	}
	return details
}

// DateOfBirthString formats the birth date for responses; empty when unset.
func (u *User) DateOfBirthString() string {
	if u.DateOfBirth.IsZero() {
		return ""
	}
	return u.DateOfBirth.Format(DateOfBirthFormat)
}

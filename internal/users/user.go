package users

import (
	"strings"
	"time"

	"github.com/2beens/fitassist/internal/apperr"
)

type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Age          int       `json:"age"`
	Gender       string    `json:"gender"`
	HeightCm     float64   `json:"heightCm"`
	WeightKg     float64   `json:"weightKg"`
	CreatedAt    time.Time `json:"createdAt"`
}

// HasBodyMetrics reports whether both height and weight are known.
func (u *User) HasBodyMetrics() bool {
	return u.HeightCm > 0 && u.WeightKg > 0
}

type Profile struct {
	Name     string  `json:"name"`
	Age      int     `json:"age"`
	Gender   string  `json:"gender"`
	HeightCm float64 `json:"heightCm"`
	WeightKg float64 `json:"weightKg"`
}

func (p Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return apperr.InvalidInput("name empty")
	}
	if p.Age < 0 || p.Age > 120 {
		return apperr.InvalidInput("age out of range: %d", p.Age)
	}
	if p.HeightCm <= 0 {
		return apperr.InvalidInput("height must be positive, got %v", p.HeightCm)
	}
	if p.WeightKg <= 0 {
		return apperr.InvalidInput("weight must be positive, got %v", p.WeightKg)
	}
	return nil
}

type NewUserParams struct {
	Profile
	Email        string
	PasswordHash string
}

func (p NewUserParams) Validate() error {
	if !strings.Contains(p.Email, "@") {
		return apperr.InvalidInput("invalid email: %q", p.Email)
	}
	if p.PasswordHash == "" {
		return apperr.InvalidInput("password hash empty")
	}
	return p.Profile.Validate()
}

// NormalizeEmail lower-cases and trims an email, emails are compared in this form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

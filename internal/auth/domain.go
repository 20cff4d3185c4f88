package auth

import (
	"time"

	"github.com/google/uuid"
)

// Role enumerates account roles.
type Role string

// Status enumerates account statuses. Only Active accounts may log in.
type Status string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"

	StatusActive    Status = "Active"
	StatusInactive  Status = "Inactive"
	StatusSuspended Status = "Suspended"
)

// User is the persisted identity record. The OTP value and its expiry are
// always set and cleared together; PasswordHash never holds plaintext.
type User struct {
	ID                   uuid.UUID
	Name                 string
	Email                string
	Mobile               string
	PasswordHash         string
	Role                 Role
	Status               Status
	EmailVerified        bool
	RefreshToken         *string
	ForgotPasswordOTP    *string
	ForgotPasswordExpiry *time.Time
	ResetAuthorizedUntil *time.Time
	LastLogin            *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Profile is the caller-facing projection of a User. It never carries the
// password hash, refresh token or OTP state.
type Profile struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Mobile        string     `json:"mobile,omitempty"`
	Role          Role       `json:"role"`
	Status        Status     `json:"status"`
	EmailVerified bool       `json:"email_verified"`
	LastLogin     *time.Time `json:"last_login,omitempty"`
}

// ProfileOf builds the redacted projection for a user.
func ProfileOf(u *User) Profile {
	return Profile{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Mobile:        u.Mobile,
		Role:          u.Role,
		Status:        u.Status,
		EmailVerified: u.EmailVerified,
		LastLogin:     u.LastLogin,
	}
}

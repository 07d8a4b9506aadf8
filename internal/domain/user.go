package domain

import (
	"time"
)

// Roles recognized by the platform. Role checks are allow-list based, so new
// roles can be added without touching the middleware.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered account on the platform.
//
// PasswordHash is empty for social-auth accounts: those logins are
// passwordless and no password path exists for them. The hash is excluded
// from JSON so session snapshots and API responses never carry it.
type User struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	Avatar       string      `json:"avatar,omitempty"`
	Role         string      `json:"role"`
	Verified     bool        `json:"verified"`
	Courses      []CourseRef `json:"courses,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// CourseRef links a user to a purchased course.
type CourseRef struct {
	CourseID string `json:"course_id"`
}

// HasPassword reports whether the account has a credential password.
// Social-auth accounts do not.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// TokenPair holds an access and refresh token pair.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

package domain

import "time"

type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email" validate:"required,email"`
	FullName     string `json:"full_name"`
	PasswordHash string `json:"-"`
	AvatarURL    string `json:"avatar_url,omitempty"`
	CoverURL     string `json:"cover_url,omitempty"`

	// RefreshToken is the single active refresh token for this user.
	// nil means no active session. Login overwrites it, refresh rotates it,
	// logout clears it.
	RefreshToken *string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Sanitized returns a copy safe to hand to the transport layer: credential
// material never leaves the auth service.
func (u User) Sanitized() *User {
	u.PasswordHash = ""
	u.RefreshToken = nil
	return &u
}

func (u *User) HasActiveSession() bool {
	return u.RefreshToken != nil && *u.RefreshToken != ""
}

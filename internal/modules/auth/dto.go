package auth

import (
	"time"

	"vidstream/internal/domain"
)

type RegisterRequest struct {
	Username string `form:"username" json:"username" binding:"required,min=3"`
	Email    string `form:"email" json:"email" binding:"required,email"`
	FullName string `form:"full_name" json:"full_name" binding:"required"`
	Password string `form:"password" json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	// Identifier is a username or an email; the service resolves either.
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshToken     string    `json:"refresh_token"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

type LoginResult struct {
	User   *domain.User
	Tokens *TokenPair
}

package auth

import "errors"

var (
	// ErrUserNotFound and ErrInvalidCredentials stay distinct internally so
	// logs can tell enumeration attempts from bad passwords; the HTTP layer
	// collapses them into one message.
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrUserAlreadyExists = errors.New("username or email already exists")

	// ErrInvalidRefreshToken covers bad signature, malformed and expired
	// tokens, and tokens presented after logout.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrRefreshTokenReused means a structurally valid refresh token no
	// longer matches stored state: a superseded token came back. Treated as
	// a security event and forces logout.
	ErrRefreshTokenReused = errors.New("refresh token reuse detected")
)

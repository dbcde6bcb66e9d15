package token

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Parse failures are collapsed into three kinds so callers can tell a forged
// token from a stale one in logs, even when both end up as a 401.
var (
	ErrMalformed = errors.New("token malformed")
	ErrSignature = errors.New("token signature invalid")
	ErrExpired   = errors.New("token expired")
)

// AccessClaims carries denormalized display fields so most requests never
// touch the database.
type AccessClaims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	jwtlib.RegisteredClaims
}

// RefreshClaims carries the subject id only; everything else is looked up
// against stored state at refresh time.
type RefreshClaims struct {
	UserID int64 `json:"user_id"`
	jwtlib.RegisteredClaims
}

// Manager signs access and refresh tokens with distinct secrets so that
// compromise of one class cannot forge the other.
type Manager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (m *Manager) GenerateAccessToken(userID int64, username, email, fullName string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(m.accessTTL)
	claims := AccessClaims{
		UserID:   userID,
		Username: username,
		Email:    email,
		FullName: fullName,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(m.accessSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (m *Manager) GenerateRefreshToken(userID int64) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(m.refreshTTL)
	claims := RefreshClaims{
		UserID: userID,
		RegisteredClaims: jwtlib.RegisteredClaims{
			// The jti makes every issuance unique even within the same second.
			ID:        uuid.NewString(),
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(m.refreshSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (m *Manager) ParseAccessToken(raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := m.parse(raw, claims, m.accessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (m *Manager) ParseRefreshToken(raw string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := m.parse(raw, claims, m.refreshSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (m *Manager) parse(raw string, claims jwtlib.Claims, secret []byte) error {
	parsed, err := jwtlib.ParseWithClaims(raw, claims, func(t *jwtlib.Token) (any, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, jwtlib.ErrTokenSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		return classify(err)
	}
	if !parsed.Valid {
		return ErrMalformed
	}
	return nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwtlib.ErrTokenSignatureInvalid):
		return ErrSignature
	case errors.Is(err, jwtlib.ErrTokenExpired):
		return ErrExpired
	default:
		return ErrMalformed
	}
}

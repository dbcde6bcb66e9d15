package auth

import (
	"context"
	"errors"
	"log"
	"time"

	"vidstream/internal/domain"
	"vidstream/internal/pkg/password"
	"vidstream/internal/pkg/token"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type tokenManager interface {
	GenerateAccessToken(userID int64, username, email, fullName string) (string, time.Time, error)
	GenerateRefreshToken(userID int64) (string, time.Time, error)
	ParseRefreshToken(raw string) (*token.RefreshClaims, error)
}

// Service contains all business logic for authentication and the session
// lifecycle: one active refresh token per user, rotated on every refresh.
type Service struct {
	users  UserRepositoryInterface
	tokens tokenManager
}

func NewService(users UserRepositoryInterface, tokens tokenManager) *Service {
	return &Service{users: users, tokens: tokens}
}

// Register creates an account. It does not log the user in; the client calls
// Login afterwards.
func (s *Service) Register(ctx context.Context, req RegisterRequest, avatarURL, coverURL string) (*domain.User, error) {
	exists, err := s.users.ExistsByLogin(ctx, req.Username, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     req.Username,
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: hash,
		AvatarURL:    avatarURL,
		CoverURL:     coverURL,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// The existence check above races with concurrent registration;
		// the unique index is authoritative.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	return user.Sanitized(), nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.users.GetByLogin(ctx, req.Identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !password.Verify(req.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}

	// Login replaces any existing session: the stored value is the single
	// source of truth for which refresh token is live.
	if err := s.users.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return nil, err
	}

	return &LoginResult{User: user.Sanitized(), Tokens: pair}, nil
}

// Refresh validates the presented token, checks it against stored state and
// rotates it. A structurally valid token that no longer matches the stored
// value is reuse: the session is terminated.
func (s *Service) Refresh(ctx context.Context, raw string) (*TokenPair, error) {
	claims, err := s.tokens.ParseRefreshToken(raw)
	if err != nil {
		log.Printf("auth refresh rejected: %v", err)
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	if !user.HasActiveSession() {
		// Logged out (or never logged in): nothing to match against.
		return nil, ErrInvalidRefreshToken
	}

	if *user.RefreshToken != raw {
		// Superseded token came back. Kill the live session too: we cannot
		// tell which holder is the attacker.
		log.Printf("security_event type=refresh_token_reuse user_id=%d", user.ID)
		if err := s.users.ClearRefreshToken(ctx, user.ID); err != nil {
			return nil, err
		}
		return nil, ErrRefreshTokenReused
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}

	applied, err := s.users.RotateRefreshToken(ctx, user.ID, raw, pair.RefreshToken)
	if err != nil {
		return nil, err
	}
	if !applied {
		// A concurrent refresh won the swap. The stored value already
		// belongs to the winner, so no clear here; this caller just lost.
		log.Printf("security_event type=refresh_token_reuse user_id=%d concurrent=true", user.ID)
		return nil, ErrRefreshTokenReused
	}

	return pair, nil
}

// Logout clears the stored refresh token. Idempotent: logging out an
// already-logged-out user succeeds silently.
func (s *Service) Logout(ctx context.Context, userID int64) error {
	return s.users.ClearRefreshToken(ctx, userID)
}

// ChangePassword re-hashes after verifying the old password. The refresh
// token is left untouched: existing sessions stay valid.
func (s *Service) ChangePassword(ctx context.Context, userID int64, req ChangePasswordRequest) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if !password.Verify(req.OldPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	hash, err := password.Hash(req.NewPassword)
	if err != nil {
		return err
	}

	return s.users.UpdatePasswordHash(ctx, userID, hash)
}

func (s *Service) issuePair(user *domain.User) (*TokenPair, error) {
	accessToken, accessExp, err := s.tokens.GenerateAccessToken(user.ID, user.Username, user.Email, user.FullName)
	if err != nil {
		return nil, err
	}
	refreshToken, refreshExp, err := s.tokens.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExp,
	}, nil
}

package auth

import (
	"context"

	"vidstream/internal/domain"
)

// UserRepositoryInterface — only the methods the auth service uses.
type UserRepositoryInterface interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByLogin(ctx context.Context, identifier string) (*domain.User, error)
	ExistsByLogin(ctx context.Context, username, email string) (bool, error)
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
	SetRefreshToken(ctx context.Context, id int64, tok string) error
	// RotateRefreshToken must compare and swap in one storage-level
	// operation; the returned bool reports whether the swap applied.
	RotateRefreshToken(ctx context.Context, id int64, old, next string) (bool, error)
	ClearRefreshToken(ctx context.Context, id int64) error
}

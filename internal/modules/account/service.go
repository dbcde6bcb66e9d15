package account

import (
	"context"
	"errors"

	"vidstream/internal/domain"

	"gorm.io/gorm"
)

// UserRepositoryInterface — only the methods the account service uses.
type UserRepositoryInterface interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
}

// Service holds the profile logic. Credential state (password hash, refresh
// token) is owned by the auth module and never modified here.
type Service struct {
	users UserRepositoryInterface
}

func NewService(users UserRepositoryInterface) *Service {
	return &Service{users: users}
}

func (s *Service) GetCurrentUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (*domain.User, error) {
	user, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Email != "" {
		user.Email = req.Email
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	return user.Sanitized(), nil
}

func (s *Service) UpdateAvatar(ctx context.Context, userID int64, url string) (*domain.User, error) {
	return s.updateImage(ctx, userID, func(u *domain.User) { u.AvatarURL = url })
}

func (s *Service) UpdateCover(ctx context.Context, userID int64, url string) (*domain.User, error) {
	return s.updateImage(ctx, userID, func(u *domain.User) { u.CoverURL = url })
}

func (s *Service) updateImage(ctx context.Context, userID int64, apply func(*domain.User)) (*domain.User, error) {
	user, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}

	apply(user)

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	return user.Sanitized(), nil
}

func (s *Service) get(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"vidstream/internal/domain"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func TestService_GetCurrentUser_Sanitizes(t *testing.T) {
	userRepo := new(mockUserRepo)
	tok := "stored-refresh-token"
	userRepo.On("GetByID", mock.Anything, int64(10)).Return(&domain.User{
		ID:           10,
		Username:     "alice",
		PasswordHash: "some-bcrypt-hash",
		RefreshToken: &tok,
	}, nil)

	service := NewService(userRepo)

	user, err := service.GetCurrentUser(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Empty(t, user.PasswordHash)
	assert.Nil(t, user.RefreshToken)
}

func TestService_GetCurrentUser_NotFound(t *testing.T) {
	userRepo := new(mockUserRepo)
	userRepo.On("GetByID", mock.Anything, int64(99)).Return(nil, gorm.ErrRecordNotFound)

	service := NewService(userRepo)

	_, err := service.GetCurrentUser(context.Background(), 99)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestService_UpdateProfile(t *testing.T) {
	userRepo := new(mockUserRepo)
	userRepo.On("GetByID", mock.Anything, int64(10)).Return(&domain.User{
		ID:       10,
		Username: "alice",
		FullName: "Alice",
	}, nil)

	var updated *domain.User
	userRepo.On("Update", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		updated = args.Get(1).(*domain.User)
	}).Return(nil)

	service := NewService(userRepo)

	user, err := service.UpdateProfile(context.Background(), 10, UpdateProfileRequest{FullName: "Alice Carter"})
	require.NoError(t, err)
	assert.Equal(t, "Alice Carter", user.FullName)
	require.NotNil(t, updated)
	assert.Equal(t, "Alice Carter", updated.FullName)
}

func TestService_UpdateAvatar(t *testing.T) {
	userRepo := new(mockUserRepo)
	userRepo.On("GetByID", mock.Anything, int64(10)).Return(&domain.User{ID: 10, Username: "alice"}, nil)
	userRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

	service := NewService(userRepo)

	user, err := service.UpdateAvatar(context.Background(), 10, "/static/uploads/new-avatar.png")
	require.NoError(t, err)
	assert.Equal(t, "/static/uploads/new-avatar.png", user.AvatarURL)
}

package repository

import (
	"context"
	"strings"
	"time"

	"vidstream/internal/domain"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

type userModel struct {
	ID           int64     `gorm:"column:id;primaryKey"`
	Username     string    `gorm:"column:username;uniqueIndex"`
	Email        string    `gorm:"column:email;uniqueIndex"`
	FullName     string    `gorm:"column:full_name"`
	PasswordHash string    `gorm:"column:password_hash"`
	AvatarURL    *string   `gorm:"column:avatar_url"`
	CoverURL     *string   `gorm:"column:cover_url"`
	RefreshToken *string   `gorm:"column:refresh_token"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

func toDomainUser(m userModel) *domain.User {
	var avatar, cover string
	if m.AvatarURL != nil {
		avatar = *m.AvatarURL
	}
	if m.CoverURL != nil {
		cover = *m.CoverURL
	}

	return &domain.User{
		ID:           m.ID,
		Username:     m.Username,
		Email:        m.Email,
		FullName:     m.FullName,
		PasswordHash: m.PasswordHash,
		AvatarURL:    avatar,
		CoverURL:     cover,
		RefreshToken: m.RefreshToken,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toUserModel(u *domain.User) userModel {
	var avatar, cover *string
	if u.AvatarURL != "" {
		v := u.AvatarURL
		avatar = &v
	}
	if u.CoverURL != "" {
		v := u.CoverURL
		cover = &v
	}

	return userModel{
		ID:           u.ID,
		Username:     normalize(u.Username),
		Email:        normalize(u.Email),
		FullName:     strings.TrimSpace(u.FullName),
		PasswordHash: u.PasswordHash,
		AvatarURL:    avatar,
		CoverURL:     cover,
		RefreshToken: u.RefreshToken,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	m := toUserModel(u)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*u = *toDomainUser(m)
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var m userModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainUser(m), nil
}

// GetByLogin resolves a user by username or email; both are stored lowercased.
func (r *UserRepository) GetByLogin(ctx context.Context, identifier string) (*domain.User, error) {
	var m userModel
	tx := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", normalize(identifier), normalize(identifier)).
		First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) ExistsByLogin(ctx context.Context, username, email string) (bool, error) {
	var count int64
	tx := r.db.WithContext(ctx).Model(&userModel{}).
		Where("username = ? OR email = ?", normalize(username), normalize(email)).
		Count(&count)
	if tx.Error != nil {
		return false, tx.Error
	}
	return count > 0, nil
}

// Update writes profile fields only. The password hash and refresh token have
// dedicated methods so an unrelated save can never touch credential state.
func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	updates := map[string]any{
		"full_name":  strings.TrimSpace(u.FullName),
		"updated_at": time.Now().UTC(),
	}
	if u.Email != "" {
		updates["email"] = normalize(u.Email)
	}
	if u.AvatarURL != "" {
		updates["avatar_url"] = u.AvatarURL
	}
	if u.CoverURL != "" {
		updates["cover_url"] = u.CoverURL
	}
	return r.db.WithContext(ctx).Model(&userModel{}).
		Where("id = ?", u.ID).
		Updates(updates).Error
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	return r.db.WithContext(ctx).Model(&userModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"password_hash": hash, "updated_at": time.Now().UTC()}).Error
}

// SetRefreshToken unconditionally installs a new session token (login path).
func (r *UserRepository) SetRefreshToken(ctx context.Context, id int64, tok string) error {
	return r.db.WithContext(ctx).Model(&userModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"refresh_token": tok, "updated_at": time.Now().UTC()}).Error
}

// RotateRefreshToken swaps old for new in a single conditional UPDATE and
// reports whether the swap applied. Doing the compare in SQL closes the race
// where two concurrent refreshes both read the old token: only one UPDATE
// can match, the other sees applied=false.
func (r *UserRepository) RotateRefreshToken(ctx context.Context, id int64, old, next string) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&userModel{}).
		Where("id = ? AND refresh_token = ?", id, old).
		Updates(map[string]any{"refresh_token": next, "updated_at": time.Now().UTC()})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}

// ClearRefreshToken ends the session. Clearing an already-absent token is a
// no-op, which makes logout idempotent.
func (r *UserRepository) ClearRefreshToken(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&userModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"refresh_token": nil, "updated_at": time.Now().UTC()}).Error
}

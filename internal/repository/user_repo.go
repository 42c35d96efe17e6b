package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/capiorg/backend/internal/domain"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	return translate(r.db.WithContext(ctx).Create(u).Error)
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).Where("uuid = ?", id).Take(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *UserRepository) GetByLogin(ctx context.Context, login string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).Where("login = ?", login).Take(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// GetByIDs loads users in bulk for view hydration, keyed by id.
func (r *UserRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.User, error) {
	out := make(map[uuid.UUID]domain.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []domain.User
	if err := r.db.WithContext(ctx).Where("uuid IN ?", ids).Find(&users).Error; err != nil {
		return nil, translate(err)
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

// UpdateProfile mutates display fields only.
func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, firstName, lastName string, avatarID *uuid.UUID) error {
	updates := map[string]any{
		"first_name": firstName,
		"last_name":  lastName,
	}
	if avatarID != nil {
		updates["avatar_id"] = *avatarID
	}
	res := r.db.WithContext(ctx).Model(&domain.User{}).Where("uuid = ?", id).Updates(updates)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetStatus drives the user lifecycle. Rows are never physically removed;
// deletion is a transition to UserStatusDeleted.
func (r *UserRepository) SetStatus(ctx context.Context, id uuid.UUID, status domain.UserStatus) error {
	res := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("uuid = ?", id).
		Update("status_id", status)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkActivity updates the online marker and last activity timestamp.
func (r *UserRepository) MarkActivity(ctx context.Context, id uuid.UUID, online bool) error {
	now := time.Now().UTC()
	return translate(r.db.WithContext(ctx).Model(&domain.User{}).
		Where("uuid = ?", id).
		Updates(map[string]any{"is_online": online, "last_activity": now}).Error)
}

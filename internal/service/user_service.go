package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/capiorg/backend/internal/domain"
	"github.com/capiorg/backend/internal/repository"
)

type UserService struct {
	users *repository.UserRepository
	pres  *Presenter
	log   *zap.SugaredLogger
}

func NewUserService(users *repository.UserRepository, pres *Presenter, log *zap.SugaredLogger) *UserService {
	return &UserService{users: users, pres: pres, log: log}
}

func (s *UserService) Me(ctx context.Context, userID uuid.UUID) (*domain.UserProfile, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.pres.Profile(u), nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, firstName, lastName string, avatarID *uuid.UUID) (*domain.UserProfile, error) {
	if err := s.users.UpdateProfile(ctx, userID, firstName, lastName, avatarID); err != nil {
		return nil, err
	}
	return s.Me(ctx, userID)
}

// Delete soft-deletes the account: a status transition, never a row removal.
func (s *UserService) Delete(ctx context.Context, userID uuid.UUID) error {
	return s.users.SetStatus(ctx, userID, domain.UserStatusDeleted)
}

func (s *UserService) MarkOnline(ctx context.Context, userID uuid.UUID, online bool) {
	if err := s.users.MarkActivity(ctx, userID, online); err != nil {
		s.log.Debugw("activity update failed", "user", userID, "err", err)
	}
}

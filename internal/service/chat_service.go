package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/capiorg/backend/internal/domain"
	"github.com/capiorg/backend/internal/repository"
)

// ChatService exposes conversation creation and annotated listing. Private
// conversation creation is idempotent per user pair.
type ChatService struct {
	convs *repository.ConversationRepository
	users *repository.UserRepository
	pres  *Presenter
	log   *zap.SugaredLogger
}

func NewChatService(
	convs *repository.ConversationRepository,
	users *repository.UserRepository,
	pres *Presenter,
	log *zap.SugaredLogger,
) *ChatService {
	return &ChatService{convs: convs, users: users, pres: pres, log: log}
}

// CreatePrivate returns the existing private conversation between the caller
// and the companion, creating it on first use. The companion must exist.
func (s *ChatService) CreatePrivate(ctx context.Context, userID, companionID uuid.UUID) (*domain.ConversationView, error) {
	if _, err := s.users.GetByID(ctx, companionID); err != nil {
		return nil, err
	}
	conv, err := s.convs.CreatePrivate(ctx, userID, companionID)
	if err != nil {
		return nil, err
	}
	return s.GetOne(ctx, userID, conv.ID)
}

func (s *ChatService) CreateGroup(ctx context.Context, ownerID uuid.UUID, title string) (*domain.ConversationView, error) {
	conv, err := s.convs.CreateGroup(ctx, ownerID, title)
	if err != nil {
		return nil, err
	}
	return s.GetOne(ctx, ownerID, conv.ID)
}

// List returns the caller's conversations with companion profiles and chat
// metadata resolved.
func (s *ChatService) List(ctx context.Context, userID uuid.UUID) ([]domain.ConversationView, error) {
	rows, err := s.convs.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.buildViews(ctx, rows)
}

func (s *ChatService) GetOne(ctx context.Context, userID, conversationID uuid.UUID) (*domain.ConversationView, error) {
	row, err := s.convs.GetOneForUser(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}
	views, err := s.buildViews(ctx, []repository.ConversationRow{*row})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *ChatService) buildViews(ctx context.Context, rows []repository.ConversationRow) ([]domain.ConversationView, error) {
	companionIDs := make([]uuid.UUID, 0, len(rows))
	chatIDs := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		if row.CompanionID != nil {
			companionIDs = append(companionIDs, *row.CompanionID)
		}
		if row.ChatID != nil {
			chatIDs = append(chatIDs, *row.ChatID)
		}
	}

	companions, err := s.users.GetByIDs(ctx, companionIDs)
	if err != nil {
		return nil, err
	}
	chats, err := s.convs.GetChats(ctx, chatIDs)
	if err != nil {
		return nil, err
	}

	views := make([]domain.ConversationView, 0, len(rows))
	for _, row := range rows {
		view := domain.ConversationView{
			ID:        row.ID,
			TypeID:    row.TypeID,
			Type:      domain.ConversationType(row.TypeID).String(),
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		}
		if row.CompanionID != nil {
			if u, ok := companions[*row.CompanionID]; ok {
				view.Companion = s.pres.Profile(&u)
			}
		}
		if row.ChatID != nil {
			if c, ok := chats[*row.ChatID]; ok {
				chat := c
				view.Chat = &chat
			}
		}
		views = append(views, view)
	}
	return views, nil
}

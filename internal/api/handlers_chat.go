package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/capiorg/backend/internal/domain"
)

func callerID(c *fiber.Ctx) (uuid.UUID, error) {
	raw, _ := c.Locals("user_id").(string)
	return uuid.Parse(raw)
}

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Params(name))
}

type createChatRequest struct {
	Type      string `json:"type"` // PRIVATE | PUBLIC
	Companion *struct {
		ID uuid.UUID `json:"uuid"`
	} `json:"companion"`
	Chat *struct {
		Title string `json:"title"`
	} `json:"chat"`
}

func (s *Server) createChat(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized", "invalid identity")
	}
	var req createChatRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "bad_request", "invalid body")
	}

	var view *domain.ConversationView
	switch req.Type {
	case "PRIVATE":
		if req.Companion == nil {
			return fail(c, fiber.StatusBadRequest, "bad_request", "companion is required for a private chat")
		}
		if req.Companion.ID == userID {
			return fail(c, fiber.StatusBadRequest, "bad_request", "companion must be another user")
		}
		view, err = s.chats.CreatePrivate(c.UserContext(), userID, req.Companion.ID)
	case "PUBLIC":
		if req.Chat == nil || req.Chat.Title == "" {
			return fail(c, fiber.StatusBadRequest, "bad_request", "title is required for a public chat")
		}
		view, err = s.chats.CreateGroup(c.UserContext(), userID, req.Chat.Title)
	default:
		return fail(c, fiber.StatusBadRequest, "bad_request", "unknown chat type")
	}
	if err != nil {
		return failDomain(c, err)
	}
	return ok(c, fiber.StatusOK, view)
}

func (s *Server) listChats(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized", "invalid identity")
	}
	views, err := s.chats.List(c.UserContext(), userID)
	if err != nil {
		return failDomain(c, err)
	}
	return ok(c, fiber.StatusOK, views)
}

func (s *Server) getChat(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized", "invalid identity")
	}
	chatID, err := paramUUID(c, "chat_id")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "bad_request", "invalid chat id")
	}
	view, err := s.chats.GetOne(c.UserContext(), userID, chatID)
	if err != nil {
		return failDomain(c, err)
	}
	return ok(c, fiber.StatusOK, view)
}

package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/capiorg/backend/internal/repository"
)

type sendMessageRequest struct {
	Text      string      `json:"text"`
	ReplyID   *uuid.UUID  `json:"reply_uuid"`
	Documents []uuid.UUID `json:"documents"`
}

func (s *Server) sendMessage(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized", "invalid identity")
	}
	chatID, err := paramUUID(c, "chat_id")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "bad_request", "invalid chat id")
	}
	var req sendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "bad_request", "invalid body")
	}
	if req.Text == "" && len(req.Documents) == 0 {
		return fail(c, fiber.StatusBadRequest, "bad_request", "empty message")
	}

	view, err := s.messages.Send(c.UserContext(), repository.SendParams{
		ConversationID: chatID,
		AuthorID:       userID,
		Text:           req.Text,
		ReplyTo:        req.ReplyID,
		DocumentIDs:    req.Documents,
	})
	if err != nil {
		return failDomain(c, err)
	}
	return ok(c, fiber.StatusCreated, view)
}

func (s *Server) listMessages(c *fiber.Ctx) error {
	return s.listThreadWith(c, nil)
}

func (s *Server) listThread(c *fiber.Ctx) error {
	messageID, err := paramUUID(c, "message_id")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "bad_request", "invalid message id")
	}
	return s.listThreadWith(c, &messageID)
}

func (s *Server) listThreadWith(c *fiber.Ctx, parentID *uuid.UUID) error {
	userID, err := callerID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized", "invalid identity")
	}
	chatID, err := paramUUID(c, "chat_id")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "bad_request", "invalid chat id")
	}

	// Membership gate: listing is scoped to conversations the caller is in.
	if _, err := s.chats.GetOne(c.UserContext(), userID, chatID); err != nil {
		return failDomain(c, err)
	}

	views, err := s.messages.ListThread(c.UserContext(), repository.ThreadQuery{
		ViewerID:       userID,
		ConversationID: chatID,
		ParentID:       parentID,
		Limit:          c.QueryInt("limit", repository.DefaultThreadLimit),
		Offset:         c.QueryInt("offset", 0),
	})
	if err != nil {
		return failDomain(c, err)
	}
	return ok(c, fiber.StatusOK, views)
}

type updateMessageRequest struct {
	Text string `json:"text"`
}

func (s *Server) updateMessage(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized", "invalid identity")
	}
	chatID, err := paramUUID(c, "chat_id")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "bad_request", "invalid chat id")
	}
	messageID, err := paramUUID(c, "message_id")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "bad_request", "invalid message id")
	}
	var req updateMessageRequest
	if err := c.BodyParser(&req); err != nil || req.Text == "" {
		return fail(c, fiber.StatusBadRequest, "bad_request", "invalid body")
	}

	view, err := s.messages.Update(c.UserContext(), chatID, messageID, userID, req.Text)
	if err != nil {
		return failDomain(c, err)
	}
	return ok(c, fiber.StatusOK, view)
}

func (s *Server) deleteMessage(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized", "invalid identity")
	}
	chatID, err := paramUUID(c, "chat_id")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "bad_request", "invalid chat id")
	}
	messageID, err := paramUUID(c, "message_id")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "bad_request", "invalid message id")
	}

	deleted, err := s.messages.Delete(c.UserContext(), chatID, messageID, userID)
	if err != nil {
		return failDomain(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"uuid": deleted})
}

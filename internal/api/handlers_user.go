package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func (s *Server) me(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized", "invalid identity")
	}
	profile, err := s.users.Me(c.UserContext(), userID)
	if err != nil {
		return failDomain(c, err)
	}
	return ok(c, fiber.StatusOK, profile)
}

type updateProfileRequest struct {
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	AvatarID  *uuid.UUID `json:"avatar_id"`
}

func (s *Server) updateMe(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized", "invalid identity")
	}
	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "bad_request", "invalid body")
	}
	if req.FirstName == "" || req.LastName == "" {
		return fail(c, fiber.StatusBadRequest, "bad_request", "first_name and last_name are required")
	}
	profile, err := s.users.UpdateProfile(c.UserContext(), userID, req.FirstName, req.LastName, req.AvatarID)
	if err != nil {
		return failDomain(c, err)
	}
	return ok(c, fiber.StatusOK, profile)
}

func (s *Server) deleteMe(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized", "invalid identity")
	}
	if err := s.users.Delete(c.UserContext(), userID); err != nil {
		return failDomain(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"uuid": userID})
}

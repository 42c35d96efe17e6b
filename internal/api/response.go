package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/capiorg/backend/internal/domain"
)

// Standard response envelope: {status, code, result?, error?}.
type Response struct {
	Status bool       `json:"status"`
	Code   int        `json:"code"`
	Result any        `json:"result,omitempty"`
	Error  *ErrorBody `json:"error,omitempty"`
}

type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Exception string `json:"exception,omitempty"`
}

func ok(c *fiber.Ctx, code int, result any) error {
	return c.Status(code).JSON(Response{Status: true, Code: code, Result: result})
}

func fail(c *fiber.Ctx, code int, errCode, message string) error {
	return c.Status(code).JSON(Response{
		Status: false,
		Code:   code,
		Error:  &ErrorBody{Code: errCode, Message: message},
	})
}

// failDomain maps domain errors onto stable envelope codes. Forbidden and
// NotFound intentionally share one response so callers cannot probe for
// resources they lack access to; no internal detail leaks past this point.
func failDomain(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrForbidden):
		return fail(c, fiber.StatusNotFound, "not_found", "record not found")
	case errors.Is(err, domain.ErrAlreadyExists):
		return fail(c, fiber.StatusBadRequest, "already_exists", "record already exists")
	case errors.Is(err, domain.ErrForeignKey):
		return fail(c, fiber.StatusBadRequest, "related_missing", "related entity referenced does not exist")
	default:
		return fail(c, fiber.StatusInternalServerError, "internal", "internal error")
	}
}

package handler

import (
	"errors"
	"time"

	"eps-procurement/internal/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// respondError maps the domain error taxonomy onto HTTP statuses.
func respondError(c *fiber.Ctx, err error) error {
	var e *apperr.Error
	if !errors.As(err, &e) {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	status := 500
	switch e.Kind {
	case apperr.KindValidation, apperr.KindForeignKey:
		status = 400
	case apperr.KindNotFound:
		status = 404
	case apperr.KindAlreadyExists, apperr.KindReferentialIntegrity:
		status = 409
	case apperr.KindBusinessLogic:
		status = 422
	}

	return c.Status(status).JSON(fiber.Map{"error": e})
}

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperr.Validation(name, "invalid UUID %q", c.Params(name))
	}
	return id, nil
}

// parseDateQuery accepts a date (2006-01-02) or RFC3339 timestamp query
// parameter. Returns nil when the parameter is absent.
func parseDateQuery(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, apperr.Validation(name, "invalid date %q", raw)
	}
	return &t, nil
}

package handlers

import (
	"errors"
	"log"
	"strconv"
	"strings"

	"gymtrack/internal/repositories"
	"gymtrack/internal/services"

	"github.com/gofiber/fiber/v2"
)

// respondErr maps the service/repository error taxonomy to an HTTP status and
// renders the {error} body. Unmapped errors are logged and reported as a
// generic 500 so internals never leak to the client.
func respondErr(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, repositories.ErrItemNotInWorkout):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials):
		status = fiber.StatusUnauthorized
	case errors.Is(err, services.ErrEmailRegistered):
		status = fiber.StatusConflict
	case errors.Is(err, repositories.ErrNotFound):
		status = fiber.StatusNotFound
	}

	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		log.Printf("Internal error on %s %s: %v", c.Method(), c.Path(), err)
		msg = "internal error"
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "no session"})
}

// parseID reads a numeric route parameter. A malformed id behaves like a
// missing resource, matching the merged not-found contract.
func parseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, repositories.ErrNotFound
	}
	return uint(id), nil
}

// clampLimit parses a ?limit value into [1, max], defaulting on bad input.
func clampLimit(raw string, def, max int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

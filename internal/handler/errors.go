package handler

import (
	"errors"
	"strconv"

	"go-inventory-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Failure is an unexpected error. The app error handler answers 500 with
// Message and the request logger records the wrapped cause.
type Failure struct {
	Message string
	Err     error
}

func (f *Failure) Error() string { return f.Message + ": " + f.Err.Error() }

func (f *Failure) Unwrap() error { return f.Err }

// respondError maps the service error taxonomy onto status codes.
func respondError(c *fiber.Ctx, err error, fallback string) error {
	var validation *service.ValidationError
	var conflict *service.ConflictError
	var notFound *service.NotFoundError

	switch {
	case errors.As(err, &validation):
		body := fiber.Map{"error": validation.Error()}
		if len(validation.Details) > 0 {
			body["errors"] = validation.Details
		}
		return c.Status(fiber.StatusBadRequest).JSON(body)
	case errors.As(err, &conflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Product with this name already exists"})
	case errors.As(err, &notFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": capitalize(notFound.Error())})
	default:
		return &Failure{Message: fallback, Err: err}
	}
}

// ErrorHandler is the fiber app error handler.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}

	message := "Internal Server Error"
	var f *Failure
	if errors.As(err, &f) {
		message = f.Message
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": message})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
}

// queryInt returns 0 for an absent parameter.
func queryInt(c *fiber.Ctx, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

// pageParams reads page and limit. Absent values come back as 0 so the
// service applies its defaults; present ones must be positive integers.
func pageParams(c *fiber.Ctx) (page, limit int, message string) {
	page, err := queryInt(c, "page")
	if err != nil || (c.Query("page") != "" && page < 1) {
		return 0, 0, "Page must be a positive integer"
	}
	limit, err = queryInt(c, "limit")
	if err != nil || (c.Query("limit") != "" && limit < 1) {
		return 0, 0, "Limit must be between 1 and 1000"
	}
	return page, limit, ""
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}

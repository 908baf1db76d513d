package server

import (
	"errors"

	"kominn/internal/models"
	"kominn/internal/service"
	"kominn/internal/store"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts the "id" route parameter as a positive int.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx) (int, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid ID"))
		return 0, errResponseWritten
	}
	return id, nil
}

// actor builds the caller identity from the locals set by the auth middleware.
func (s *Server) actor(c *fiber.Ctx) service.Actor {
	id, _ := c.Locals("actorID").(int)
	login, _ := c.Locals("actorLogin").(string)
	return service.Actor{ID: id, Login: login}
}

// respondServiceError maps a service or repository error to an HTTP status
// and writes the standardized error response.
func (s *Server) respondServiceError(c *fiber.Ctx, err error) error {
	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		return models.RespondWithError(c, fiber.StatusBadGateway, err)
	}

	var appErr *models.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case "NOT_FOUND":
			return models.RespondWithError(c, fiber.StatusNotFound, appErr)
		case "VALIDATION_ERROR":
			return models.RespondWithError(c, fiber.StatusBadRequest, appErr)
		case "UNAUTHORIZED":
			return models.RespondWithError(c, fiber.StatusUnauthorized, appErr)
		case "ALREADY_PUBLISHED":
			return models.RespondWithError(c, fiber.StatusConflict, appErr)
		case "CONFIGURATION_MISSING":
			return models.RespondWithError(c, fiber.StatusServiceUnavailable, appErr)
		case "SUBMISSION_ERROR":
			return models.RespondWithError(c, fiber.StatusUnprocessableEntity, appErr)
		case "PUBLISHED_NOT_MARKED":
			return models.RespondWithError(c, fiber.StatusInternalServerError, appErr)
		default:
			return models.RespondWithError(c, fiber.StatusInternalServerError, appErr)
		}
	}

	return models.RespondWithError(c, fiber.StatusInternalServerError,
		models.NewInternalError(err))
}

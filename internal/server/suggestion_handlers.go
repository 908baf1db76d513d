package server

import (
	"kominn/internal/models"
	"kominn/internal/repository"
	"kominn/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetSuggestions returns suggestions. The optional "status" query parameter
// filters by a single status and excludes suggestions still in the Submitted
// state; "top" caps the result size and "sort" overrides the default
// newest-first order.
func (s *Server) GetSuggestions(c *fiber.Ctx) error {
	opts := repository.ListOptions{
		Top:  c.QueryInt("top", 0),
		Sort: c.Query("sort"),
	}

	if raw := c.Query("status"); raw != "" {
		status, ok := models.ParseStatus(raw)
		if !ok {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Unknown status: "+raw))
		}
		opts.Status = status
	}

	suggestions, err := s.suggestionService.List(c.UserContext(), opts)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(suggestions)
}

// SearchSuggestions returns suggestions whose title contains the "q" query
// parameter. Suggestions still in the Submitted state are excluded.
func (s *Server) SearchSuggestions(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Query parameter 'q' is required"))
	}

	suggestions, err := s.suggestionService.Search(c.UserContext(), query)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(suggestions)
}

// GetMySuggestions returns the caller's own suggestions, including ones still
// in the Submitted state.
func (s *Server) GetMySuggestions(c *fiber.Ctx) error {
	suggestions, err := s.suggestionService.Mine(c.UserContext(), s.actor(c))
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(suggestions)
}

// GetSuggestion returns a single suggestion by id.
func (s *Server) GetSuggestion(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	suggestion, err := s.suggestionService.Get(c.UserContext(), id)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(suggestion)
}

// SubmitSuggestion creates a new suggestion from the request body. The
// submitter's profile snapshot is resolved server-side; the body carries only
// the suggestion content and campaign correlation metadata.
func (s *Server) SubmitSuggestion(c *fiber.Ctx) error {
	var req service.SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Title == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Title is required"))
	}

	suggestion, err := s.suggestionService.Submit(c.UserContext(), s.actor(c), req)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(suggestion)
}

// PublishSuggestion forwards an accepted suggestion to the external system.
// A suggestion that has already been sent fails with 409 before any external
// call is made.
func (s *Server) PublishSuggestion(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	suggestion, err := s.suggestionService.Get(c.UserContext(), id)
	if err != nil {
		return s.respondServiceError(c, err)
	}

	externalID, err := s.publishService.Publish(c.UserContext(), suggestion)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"external_id": externalID})
}

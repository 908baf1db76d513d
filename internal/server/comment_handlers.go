package server

import (
	"strings"

	"kominn/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetComments returns a suggestion's comments, newest first.
func (s *Server) GetComments(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	comments, err := s.commentService.List(c.UserContext(), id)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(comments)
}

// AddComment appends a comment to a suggestion and bumps its comment counter.
// Attribution is snapshotted from the caller's directory profile.
func (s *Server) AddComment(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if strings.TrimSpace(req.Text) == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Comment text is required"))
	}

	comment, err := s.commentService.Add(c.UserContext(), s.actor(c), id, req.Text)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

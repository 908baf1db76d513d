package server

import (
	"github.com/gofiber/fiber/v2"
)

// ToggleLike flips the caller's like on a suggestion and returns the
// suggestion with its updated like count.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	suggestion, err := s.suggestionService.Get(c.UserContext(), id)
	if err != nil {
		return s.respondServiceError(c, err)
	}

	updated, err := s.likeService.Toggle(c.UserContext(), s.actor(c), suggestion)
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(updated)
}

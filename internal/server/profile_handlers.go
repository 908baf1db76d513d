package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetMyProfile returns the caller's resolved profile snapshot: directory
// properties, the manager identity when resolvable, and the postal
// city/county enrichment.
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	person, err := s.profileService.Profile(c.UserContext(), s.actor(c))
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(person)
}

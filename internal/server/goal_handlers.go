package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// GetGoals returns the sustainability goals with their resolved icon URLs.
func (s *Server) GetGoals(c *fiber.Ctx) error {
	goals, err := s.goalRepo.List(c.UserContext())
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(goals)
}

// GetCampaigns returns submission campaigns ordered by placement. With
// ?active=true only campaigns whose date window covers the current time are
// returned.
func (s *Server) GetCampaigns(c *fiber.Ctx) error {
	if c.QueryBool("active", false) {
		campaigns, err := s.campaignRepo.ListActive(c.UserContext(), time.Now())
		if err != nil {
			return s.respondServiceError(c, err)
		}
		return c.JSON(campaigns)
	}

	campaigns, err := s.campaignRepo.List(c.UserContext())
	if err != nil {
		return s.respondServiceError(c, err)
	}
	return c.JSON(campaigns)
}

package server

import (
	"github.com/gofiber/fiber/v2"

	"takopi/internal/models"
)

// GetUserProfile handles GET /api/users/:id, returning the public profile
// together with both follow counts.
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	userID := c.Params("id")

	user, err := s.repos.Users.GetByID(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	if user == nil {
		return respondError(c, models.NewNotFoundError("User", userID))
	}

	stats, err := s.followService.GetStats(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"user":            user,
		"followers_count": stats.Followers,
		"following_count": stats.Following,
	})
}

package server

import (
	"github.com/gofiber/fiber/v2"

	"takopi/internal/middleware"
)

// ToggleFollow handles POST /api/users/:id/follow.
func (s *Server) ToggleFollow(c *fiber.Ctx) error {
	result, err := s.followService.ToggleFollow(c.UserContext(), middleware.CallerID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// GetFollowStatus handles GET /api/users/:id/follow-status.
func (s *Server) GetFollowStatus(c *fiber.Ctx) error {
	isFollowing, err := s.followService.IsFollowing(c.UserContext(), middleware.CallerID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"is_following": isFollowing})
}

// GetFollowers handles GET /api/users/:id/followers.
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)
	followers, err := s.followService.GetFollowers(c.UserContext(), c.Params("id"), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"followers": followers})
}

// GetFollowing handles GET /api/users/:id/following.
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)
	following, err := s.followService.GetFollowing(c.UserContext(), c.Params("id"), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"following": following})
}

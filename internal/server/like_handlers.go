package server

import (
	"github.com/gofiber/fiber/v2"

	"takopi/internal/middleware"
	"takopi/internal/models"
)

// ToggleLike handles POST /api/content/:id/like.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	result, err := s.likeService.ToggleLike(c.UserContext(), middleware.CallerID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// GetContentLikes handles GET /api/content/:id/likes.
func (s *Server) GetContentLikes(c *fiber.Ctx) error {
	count, err := s.likeService.GetLikesCount(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"likes_count": count})
}

// GetUserLikes handles GET /api/users/:id/likes. Callers may only list their
// own likes.
func (s *Server) GetUserLikes(c *fiber.Ctx) error {
	userID := c.Params("id")
	if userID != middleware.CallerID(c) {
		return respondError(c, models.NewForbiddenError("You may only list your own likes"))
	}
	limit, offset := parsePagination(c)
	likes, err := s.likeService.GetUserLikes(c.UserContext(), userID, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"likes": likes})
}

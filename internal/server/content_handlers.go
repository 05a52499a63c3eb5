package server

import (
	"github.com/gofiber/fiber/v2"

	"takopi/internal/middleware"
	"takopi/internal/models"
)

// GetContentList handles GET /api/content, optionally filtered by kind.
func (s *Server) GetContentList(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)
	contents, err := s.repos.Contents.List(c.UserContext(), c.Query("kind"), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"content": contents})
}

// GetContent handles GET /api/content/:id, enriched with the like count and,
// for authenticated callers, whether they have liked it.
func (s *Server) GetContent(c *fiber.Ctx) error {
	contentID := c.Params("id")

	content, err := s.repos.Contents.GetByID(c.UserContext(), contentID)
	if err != nil {
		return respondError(c, err)
	}
	if content == nil {
		return respondError(c, models.NewNotFoundError("Content", contentID))
	}

	count, err := s.likeService.GetLikesCount(c.UserContext(), contentID)
	if err != nil {
		return respondError(c, err)
	}
	content.LikesCount = count

	liked := false
	if callerID := middleware.CallerID(c); callerID != "" {
		liked, err = s.likeService.HasLiked(c.UserContext(), callerID, contentID)
		if err != nil {
			return respondError(c, err)
		}
	}

	return c.JSON(fiber.Map{
		"content": content,
		"liked":   liked,
	})
}

package server

import (
	"github.com/gofiber/fiber/v2"

	"takopi/internal/middleware"
	"takopi/internal/models"
	"takopi/internal/service"
)

type createCollectionRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
}

type addItemRequest struct {
	ContentID string `json:"content_id"`
}

// CreateCollection handles POST /api/collections.
func (s *Server) CreateCollection(c *fiber.Ctx) error {
	var req createCollectionRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}
	collection, err := s.collectionService.CreateCollection(
		c.UserContext(), middleware.CallerID(c), req.Title, req.Description, req.IsPublic)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(collection)
}

// GetCollection handles GET /api/collections/:id.
func (s *Server) GetCollection(c *fiber.Ctx) error {
	collection, err := s.collectionService.GetCollection(c.UserContext(), c.Params("id"), middleware.CallerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(collection)
}

// GetPublicCollections handles GET /api/collections.
func (s *Server) GetPublicCollections(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)
	collections, err := s.collectionService.GetPublicCollections(c.UserContext(), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"collections": collections})
}

// GetUserCollections handles GET /api/users/:id/collections.
func (s *Server) GetUserCollections(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)
	collections, err := s.collectionService.GetUserCollections(
		c.UserContext(), c.Params("id"), middleware.CallerID(c), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"collections": collections})
}

// UpdateCollection handles PATCH /api/collections/:id.
func (s *Server) UpdateCollection(c *fiber.Ctx) error {
	var input service.UpdateCollectionInput
	if err := c.BodyParser(&input); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}
	collection, err := s.collectionService.UpdateCollection(
		c.UserContext(), c.Params("id"), middleware.CallerID(c), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(collection)
}

// DeleteCollection handles DELETE /api/collections/:id.
func (s *Server) DeleteCollection(c *fiber.Ctx) error {
	err := s.collectionService.DeleteCollection(c.UserContext(), c.Params("id"), middleware.CallerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddCollectionItem handles POST /api/collections/:id/items.
func (s *Server) AddCollectionItem(c *fiber.Ctx) error {
	var req addItemRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}
	item, err := s.collectionService.AddItem(
		c.UserContext(), c.Params("id"), req.ContentID, middleware.CallerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// RemoveCollectionItem handles DELETE /api/collections/:id/items/:contentId.
func (s *Server) RemoveCollectionItem(c *fiber.Ctx) error {
	err := s.collectionService.RemoveItem(
		c.UserContext(), c.Params("id"), c.Params("contentId"), middleware.CallerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetCollectionItems handles GET /api/collections/:id/items.
func (s *Server) GetCollectionItems(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)
	items, err := s.collectionService.GetItems(
		c.UserContext(), c.Params("id"), middleware.CallerID(c), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"items": items})
}

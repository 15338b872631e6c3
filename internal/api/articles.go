package api

import (
	"github.com/bilgisen/autostudio/internal/middleware"
	"github.com/bilgisen/autostudio/internal/models"
	"github.com/gofiber/fiber/v2"
)

type writeRequest struct {
	Topic  string `json:"topic" validate:"required,max=300"`
	Intent string `json:"intent" validate:"max=50"`
}

// CreateArticle handles POST /api/v1/articles. It runs the full
// draft, audit and image pipeline before answering.
func (h *Handlers) CreateArticle(c *fiber.Ctx) error {
	req := middleware.Body[writeRequest](c)

	article, err := h.studio.WriteArticle(c.UserContext(), middleware.SessionFrom(c), req.Topic, req.Intent)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(article)
}

// ListArticles handles GET /api/v1/articles
func (h *Handlers) ListArticles(c *fiber.Ctx) error {
	articles, err := h.studio.ListArticles(c.UserContext(), middleware.SessionFrom(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"total": len(articles),
		"items": articles,
	})
}

// GetArticle handles GET /api/v1/articles/:id
func (h *Handlers) GetArticle(c *fiber.Ctx) error {
	article, err := h.studio.GetArticle(c.UserContext(), middleware.SessionFrom(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(article)
}

// UpdateArticle handles PUT /api/v1/articles/:id
func (h *Handlers) UpdateArticle(c *fiber.Ctx) error {
	var article models.Article
	if err := c.BodyParser(&article); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
			"msg":   err.Error(),
		})
	}
	if article.Status != "" && !article.Status.Valid() {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": fiber.Map{"Status": "oneof"},
		})
	}
	article.ID = c.Params("id")

	updated, err := h.studio.UpdateArticle(c.UserContext(), middleware.SessionFrom(c), &article)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(updated)
}

// DeleteArticle handles DELETE /api/v1/articles/:id
func (h *Handlers) DeleteArticle(c *fiber.Ctx) error {
	if err := h.studio.DeleteArticle(c.UserContext(), middleware.SessionFrom(c), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"status":  "deleted",
		"message": "Article deleted successfully",
	})
}

// PublishArticle handles POST /api/v1/articles/:id/publish
func (h *Handlers) PublishArticle(c *fiber.Ctx) error {
	article, err := h.studio.Publish(c.UserContext(), middleware.SessionFrom(c), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(article)
}

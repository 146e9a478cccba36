package handlers

import (
	"fmt"

	"gamereview/internal/middleware"
	"gamereview/internal/models"
	"gamereview/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ReviewHandler handles HTTP requests for the review screens.
type ReviewHandler struct {
	service *services.ReviewService
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(service *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		service: service,
	}
}

// RegisterRoutes registers the review routes behind sessionMiddleware.
func (h *ReviewHandler) RegisterRoutes(router fiber.Router, sessionMiddleware fiber.Handler) {
	reviewRoutes := router.Group("/reviews", sessionMiddleware)
	reviewRoutes.Get("/", h.HandleListReviews)
	reviewRoutes.Get("/:id", h.HandleGetReview)
	reviewRoutes.Post("/", h.HandleCreateReview)
	reviewRoutes.Put("/:id", h.HandleUpdateReview)
	reviewRoutes.Delete("/:id", h.HandleDeleteReview)
}

// HandleListReviews lists the caller's reviews, most recent first.
// Without a session the list is empty.
func (h *ReviewHandler) HandleListReviews(c *fiber.Ctx) error {
	reviews, err := h.service.List(c.UserContext(), middleware.SessionFrom(c))
	if err != nil {
		return respondError(c, "Could not retrieve reviews", err)
	}
	return c.JSON(reviews)
}

// HandleGetReview retrieves a single review for the edit screen.
func (h *ReviewHandler) HandleGetReview(c *fiber.Ctx) error {
	review, err := h.service.Get(c.UserContext(), middleware.SessionFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, "Could not retrieve review", err)
	}
	return c.JSON(review)
}

// HandleCreateReview creates a new review.
func (h *ReviewHandler) HandleCreateReview(c *fiber.Ctx) error {
	var input models.ReviewInput
	if err := c.BodyParser(&input); err != nil {
		return badBody(c, err)
	}

	id, err := h.service.Create(c.UserContext(), middleware.SessionFrom(c), input)
	if err != nil {
		return respondError(c, "Could not create review", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Review created successfully",
		"id":      id,
	})
}

// HandleUpdateReview replaces the editable fields of a review.
func (h *ReviewHandler) HandleUpdateReview(c *fiber.Ctx) error {
	var input models.ReviewInput
	if err := c.BodyParser(&input); err != nil {
		return badBody(c, err)
	}

	id := c.Params("id")
	if err := h.service.Update(c.UserContext(), middleware.SessionFrom(c), id, input); err != nil {
		return respondError(c, "Could not update review", err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Review %s updated successfully", id),
	})
}

// HandleDeleteReview deletes a review once the caller has confirmed it
// with ?confirm=true.
func (h *ReviewHandler) HandleDeleteReview(c *fiber.Ctx) error {
	id := c.Params("id")
	if !c.QueryBool("confirm") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Deleting a review must be confirmed with ?confirm=true",
		})
	}

	if err := h.service.Delete(c.UserContext(), middleware.SessionFrom(c), id); err != nil {
		return respondError(c, "Could not delete review", err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Review %s deleted successfully", id),
	})
}

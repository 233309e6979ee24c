// Package handler exposes product reviews over HTTP. Approved reviews are
// public; creation and votes require authentication; moderation is staff-only.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"ecommerce-platform/backend/internal/platform/rbac"
	"ecommerce-platform/backend/internal/review/domain"
	"ecommerce-platform/backend/internal/review/service"
	"ecommerce-platform/backend/internal/web"
)

// Handler serves the review endpoints.
type Handler struct {
	reviews *service.Service
}

// NewHandler builds the review handler.
func NewHandler(reviews *service.Service) *Handler {
	return &Handler{reviews: reviews}
}

// RegisterPublic mounts the read-only review routes.
func (h *Handler) RegisterPublic(rg *gin.RouterGroup) {
	rg.GET("/products/:id/reviews", h.listByProduct)
}

// Register mounts the authenticated review routes.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/products/:id/reviews", h.create)
	rg.DELETE("/reviews/:id", h.delete)
	rg.POST("/reviews/:id/helpful", h.markHelpful)
	rg.POST("/reviews/:id/unhelpful", h.markUnhelpful)
}

// RegisterStaff mounts the moderation routes; the caller mounts the group under
// a staff-scoped prefix. The list route returns pending reviews.
func (h *Handler) RegisterStaff(rg *gin.RouterGroup) {
	rg.GET("/reviews", h.listPending)
	rg.POST("/reviews/:id/approve", h.approve)
}

// ReviewResponse is the public representation of a review.
type ReviewResponse struct {
	ID             string    `json:"id"`
	ProductID      string    `json:"productId"`
	UserID         string    `json:"userId"`
	Rating         int       `json:"rating"`
	Title          string    `json:"title,omitempty"`
	Comment        string    `json:"comment,omitempty"`
	Approved       bool      `json:"approved"`
	Verified       bool      `json:"verified"`
	HelpfulCount   int       `json:"helpfulCount"`
	UnhelpfulCount int       `json:"unhelpfulCount"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func toResponse(r *domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:             r.ID,
		ProductID:      r.ProductID,
		UserID:         r.UserID,
		Rating:         r.Rating,
		Title:          r.Title,
		Comment:        r.Comment,
		Approved:       r.Approved,
		Verified:       r.Verified,
		HelpfulCount:   r.HelpfulCount,
		UnhelpfulCount: r.UnhelpfulCount,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func toResponses(reviews []*domain.Review) []ReviewResponse {
	out := make([]ReviewResponse, len(reviews))
	for i, r := range reviews {
		out[i] = toResponse(r)
	}
	return out
}

func (h *Handler) listByProduct(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	res, err := h.reviews.ListByProduct(c.Request.Context(), c.Param("id"), limit, offset)
	if err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reviews": toResponses(res.Reviews),
		"total":   res.Total,
	})
}

type createRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Title   string `json:"title" binding:"omitempty,max=200"`
	Comment string `json:"comment" binding:"omitempty,max=2000"`
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := web.BindJSON(c, &req); err != nil {
		web.Error(c, err)
		return
	}
	rev, err := h.reviews.Create(c.Request.Context(), web.UserID(c), service.CreateInput{
		ProductID: c.Param("id"),
		Rating:    req.Rating,
		Title:     req.Title,
		Comment:   req.Comment,
	})
	if err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, toResponse(rev))
}

func (h *Handler) delete(c *gin.Context) {
	staff := rbac.HasAny(web.Roles(c), rbac.RoleAdmin, rbac.RoleManager)
	if err := h.reviews.Delete(c.Request.Context(), c.Param("id"), web.UserID(c), staff); err != nil {
		web.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) markHelpful(c *gin.Context) {
	if err := h.reviews.MarkHelpful(c.Request.Context(), c.Param("id")); err != nil {
		web.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) markUnhelpful(c *gin.Context) {
	if err := h.reviews.MarkUnhelpful(c.Request.Context(), c.Param("id")); err != nil {
		web.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listPending(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	res, err := h.reviews.ListPending(c.Request.Context(), limit, offset)
	if err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reviews": toResponses(res.Reviews),
		"total":   res.Total,
	})
}

func (h *Handler) approve(c *gin.Context) {
	rev, err := h.reviews.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(rev))
}

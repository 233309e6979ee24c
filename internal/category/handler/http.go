// Package handler exposes the catalog taxonomy over HTTP. Reads are public;
// mutations are admin-scoped.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ecommerce-platform/backend/internal/category/domain"
	"ecommerce-platform/backend/internal/category/service"
	"ecommerce-platform/backend/internal/web"
)

// Handler serves the category endpoints.
type Handler struct {
	categories *service.Service
}

// NewHandler builds the category handler.
func NewHandler(categories *service.Service) *Handler {
	return &Handler{categories: categories}
}

// RegisterPublic mounts the read-only category routes. A ?slug= query on the
// list route resolves a single category by slug.
func (h *Handler) RegisterPublic(rg *gin.RouterGroup) {
	rg.GET("/categories", h.listRoot)
	rg.GET("/categories/:id", h.get)
	rg.GET("/categories/:id/children", h.listChildren)
}

// RegisterAdmin mounts the category mutation routes; the caller mounts the
// group under an admin-scoped prefix.
func (h *Handler) RegisterAdmin(rg *gin.RouterGroup) {
	rg.POST("/categories", h.create)
	rg.PUT("/categories/:id", h.update)
	rg.DELETE("/categories/:id", h.delete)
	rg.GET("/categories", h.listAll)
}

// CategoryResponse is the public representation of a category.
type CategoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Slug        string    `json:"slug"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Active      bool      `json:"active"`
	SortOrder   int       `json:"sortOrder"`
	ParentID    *string   `json:"parentId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toResponse(c *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Slug:        c.Slug,
		ImageURL:    c.ImageURL,
		Active:      c.Active,
		SortOrder:   c.SortOrder,
		ParentID:    c.ParentID,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toResponses(categories []*domain.Category) []CategoryResponse {
	out := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		out[i] = toResponse(c)
	}
	return out
}

type createRequest struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Description string  `json:"description" binding:"omitempty,max=1000"`
	Slug        string  `json:"slug" binding:"omitempty,max=120"`
	ImageURL    string  `json:"imageUrl" binding:"omitempty,url"`
	SortOrder   int     `json:"sortOrder"`
	ParentID    *string `json:"parentId"`
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := web.BindJSON(c, &req); err != nil {
		web.Error(c, err)
		return
	}
	cat, err := h.categories.Create(c.Request.Context(), service.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Slug:        req.Slug,
		ImageURL:    req.ImageURL,
		SortOrder:   req.SortOrder,
		ParentID:    req.ParentID,
	})
	if err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, toResponse(cat))
}

func (h *Handler) get(c *gin.Context) {
	cat, err := h.categories.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(cat))
}

type updateRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=100"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	ImageURL    *string `json:"imageUrl" binding:"omitempty,url"`
	SortOrder   *int    `json:"sortOrder"`
	Active      *bool   `json:"active"`
}

func (h *Handler) update(c *gin.Context) {
	var req updateRequest
	if err := web.BindJSON(c, &req); err != nil {
		web.Error(c, err)
		return
	}
	cat, err := h.categories.Update(c.Request.Context(), c.Param("id"), service.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		SortOrder:   req.SortOrder,
		Active:      req.Active,
	})
	if err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(cat))
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.categories.Delete(c.Request.Context(), c.Param("id")); err != nil {
		web.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listRoot(c *gin.Context) {
	if slug := c.Query("slug"); slug != "" {
		cat, err := h.categories.GetBySlug(c.Request.Context(), slug)
		if err != nil {
			web.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, toResponse(cat))
		return
	}
	out, err := h.categories.ListRoot(c.Request.Context())
	if err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": toResponses(out)})
}

func (h *Handler) listChildren(c *gin.Context) {
	out, err := h.categories.ListChildren(c.Request.Context(), c.Param("id"))
	if err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": toResponses(out)})
}

func (h *Handler) listAll(c *gin.Context) {
	out, err := h.categories.ListAll(c.Request.Context())
	if err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": toResponses(out)})
}

// Package handler exposes the authenticated caller's shopping cart over HTTP.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ecommerce-platform/backend/internal/cart/domain"
	"ecommerce-platform/backend/internal/cart/service"
	"ecommerce-platform/backend/internal/web"
)

// Handler serves the cart endpoints. All routes operate on the caller's own cart.
type Handler struct {
	carts *service.Service
}

// NewHandler builds the cart handler.
func NewHandler(carts *service.Service) *Handler {
	return &Handler{carts: carts}
}

// Register mounts the cart routes.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/cart", h.get)
	rg.POST("/cart/items", h.addItem)
	rg.PUT("/cart/items/:productId", h.updateItem)
	rg.DELETE("/cart/items/:productId", h.removeItem)
	rg.DELETE("/cart", h.clear)
}

// ItemResponse is a cart line with its current product snapshot.
type ItemResponse struct {
	ProductID     string `json:"productId"`
	ProductName   string `json:"productName"`
	PriceCents    int64  `json:"priceCents"`
	Quantity      int    `json:"quantity"`
	SubtotalCents int64  `json:"subtotalCents"`
	Available     bool   `json:"available"`
}

// CartResponse is the cart with computed totals.
type CartResponse struct {
	ID              string         `json:"id"`
	Items           []ItemResponse `json:"items"`
	TotalItemsCount int            `json:"totalItemsCount"`
	SubtotalCents   int64          `json:"subtotalCents"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

func toResponse(c *domain.Cart) CartResponse {
	items := make([]ItemResponse, len(c.Items))
	for i := range c.Items {
		item := &c.Items[i]
		resp := ItemResponse{
			ProductID:     item.ProductID,
			Quantity:      item.Quantity,
			SubtotalCents: item.SubtotalCents(),
		}
		if item.Product != nil {
			resp.ProductName = item.Product.Name
			resp.PriceCents = item.Product.PriceCents
			resp.Available = item.Product.IsAvailable()
		}
		items[i] = resp
	}
	return CartResponse{
		ID:              c.ID,
		Items:           items,
		TotalItemsCount: c.TotalItemsCount(),
		SubtotalCents:   c.SubtotalCents(),
		UpdatedAt:       c.UpdatedAt,
	}
}

func (h *Handler) get(c *gin.Context) {
	cart, err := h.carts.Get(c.Request.Context(), web.UserID(c))
	if err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(cart))
}

type addItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

func (h *Handler) addItem(c *gin.Context) {
	var req addItemRequest
	if err := web.BindJSON(c, &req); err != nil {
		web.Error(c, err)
		return
	}
	cart, err := h.carts.AddItem(c.Request.Context(), web.UserID(c), req.ProductID, req.Quantity)
	if err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(cart))
}

type updateItemRequest struct {
	Quantity *int `json:"quantity" binding:"required,gte=0"`
}

func (h *Handler) updateItem(c *gin.Context) {
	var req updateItemRequest
	if err := web.BindJSON(c, &req); err != nil {
		web.Error(c, err)
		return
	}
	cart, err := h.carts.UpdateItemQuantity(c.Request.Context(), web.UserID(c), c.Param("productId"), *req.Quantity)
	if err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(cart))
}

func (h *Handler) removeItem(c *gin.Context) {
	cart, err := h.carts.RemoveItem(c.Request.Context(), web.UserID(c), c.Param("productId"))
	if err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(cart))
}

func (h *Handler) clear(c *gin.Context) {
	cart, err := h.carts.Clear(c.Request.Context(), web.UserID(c))
	if err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(cart))
}

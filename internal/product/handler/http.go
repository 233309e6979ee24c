// Package handler exposes the product catalog over HTTP. Reads are public;
// mutations and inventory operations are staff-scoped.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"ecommerce-platform/backend/internal/product/domain"
	"ecommerce-platform/backend/internal/product/repository"
	"ecommerce-platform/backend/internal/product/service"
	"ecommerce-platform/backend/internal/web"
)

// Handler serves the product endpoints.
type Handler struct {
	products *service.Service
}

// NewHandler builds the product handler.
func NewHandler(products *service.Service) *Handler {
	return &Handler{products: products}
}

// RegisterPublic mounts the read-only catalog routes. A ?sku= query on the list
// route resolves a single product by SKU.
func (h *Handler) RegisterPublic(rg *gin.RouterGroup) {
	rg.GET("/products", h.list)
	rg.GET("/products/:id", h.get)
}

// RegisterStaff mounts the product mutation and inventory routes; the caller
// mounts the group under a staff-scoped prefix.
func (h *Handler) RegisterStaff(rg *gin.RouterGroup) {
	rg.POST("/products", h.create)
	rg.PUT("/products/:id", h.update)
	rg.DELETE("/products/:id", h.delete)
	rg.PUT("/products/:id/stock", h.setStock)
	rg.POST("/products/:id/stock/decrement", h.decrementStock)
	rg.POST("/products/:id/stock/increment", h.incrementStock)
	rg.POST("/products/:id/images", h.addImage)
	rg.DELETE("/products/:id/images/:imageId", h.removeImage)
	rg.GET("/inventory/low-stock", h.lowStock)
}

// ImageResponse is the public representation of a product image.
type ImageResponse struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	AltText   string `json:"altText,omitempty"`
	Primary   bool   `json:"primary"`
	SortOrder int    `json:"sortOrder"`
}

// ProductResponse is the public representation of a product.
type ProductResponse struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Description       string          `json:"description,omitempty"`
	SKU               string          `json:"sku"`
	PriceCents        int64           `json:"priceCents"`
	StockQuantity     int             `json:"stockQuantity"`
	MinimumStockLevel int             `json:"minimumStockLevel"`
	Active            bool            `json:"active"`
	Featured          bool            `json:"featured"`
	Available         bool            `json:"available"`
	LowStock          bool            `json:"lowStock"`
	Brand             string          `json:"brand,omitempty"`
	Model             string          `json:"model,omitempty"`
	Color             string          `json:"color,omitempty"`
	Size              string          `json:"size,omitempty"`
	WeightGrams       *int64          `json:"weightGrams,omitempty"`
	Dimensions        string          `json:"dimensions,omitempty"`
	Status            string          `json:"status"`
	CategoryID        string          `json:"categoryId"`
	RatingAverage     float64         `json:"ratingAverage"`
	RatingCount       int             `json:"ratingCount"`
	ViewCount         int64           `json:"viewCount"`
	SalesCount        int64           `json:"salesCount"`
	Images            []ImageResponse `json:"images,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

func toResponse(p *domain.Product) ProductResponse {
	images := make([]ImageResponse, len(p.Images))
	for i, img := range p.Images {
		images[i] = ImageResponse{
			ID: img.ID, URL: img.URL, AltText: img.AltText,
			Primary: img.Primary, SortOrder: img.SortOrder,
		}
	}
	return ProductResponse{
		ID:                p.ID,
		Name:              p.Name,
		Description:       p.Description,
		SKU:               p.SKU,
		PriceCents:        p.PriceCents,
		StockQuantity:     p.StockQuantity,
		MinimumStockLevel: p.MinimumStockLevel,
		Active:            p.Active,
		Featured:          p.Featured,
		Available:         p.IsAvailable(),
		LowStock:          p.IsLowStock(),
		Brand:             p.Brand,
		Model:             p.Model,
		Color:             p.Color,
		Size:              p.Size,
		WeightGrams:       p.WeightGrams,
		Dimensions:        p.Dimensions,
		Status:            string(p.Status),
		CategoryID:        p.CategoryID,
		RatingAverage:     p.RatingAverage(),
		RatingCount:       p.RatingCount,
		ViewCount:         p.ViewCount,
		SalesCount:        p.SalesCount,
		Images:            images,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func toResponses(products []*domain.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i, p := range products {
		out[i] = toResponse(p)
	}
	return out
}

func (h *Handler) list(c *gin.Context) {
	if sku := c.Query("sku"); sku != "" {
		p, err := h.products.GetBySKU(c.Request.Context(), sku)
		if err != nil {
			web.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, toResponse(p))
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	minPrice, _ := strconv.ParseInt(c.Query("minPriceCents"), 10, 64)
	maxPrice, _ := strconv.ParseInt(c.Query("maxPriceCents"), 10, 64)

	result, err := h.products.List(c.Request.Context(), repository.ListFilter{
		CategoryID:    c.Query("categoryId"),
		Search:        c.Query("search"),
		Brand:         c.Query("brand"),
		MinPriceCents: minPrice,
		MaxPriceCents: maxPrice,
		FeaturedOnly:  c.Query("featured") == "true",
		ActiveOnly:    true,
		Sort:          c.Query("sort"),
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"products": toResponses(result.Products),
		"total":    result.Total,
	})
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.products.View(c.Request.Context(), c.Param("id"))
	if err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(p))
}

type createRequest struct {
	Name              string `json:"name" binding:"required,max=200"`
	Description       string `json:"description" binding:"omitempty,max=5000"`
	SKU               string `json:"sku" binding:"required,max=64"`
	PriceCents        int64  `json:"priceCents" binding:"required,gt=0"`
	CostCents         int64  `json:"costCents" binding:"omitempty,gte=0"`
	StockQuantity     int    `json:"stockQuantity" binding:"gte=0"`
	MinimumStockLevel *int   `json:"minimumStockLevel" binding:"omitempty,gte=0"`
	Featured          bool   `json:"featured"`
	Brand             string `json:"brand" binding:"omitempty,max=100"`
	Model             string `json:"model" binding:"omitempty,max=100"`
	Color             string `json:"color" binding:"omitempty,max=50"`
	Size              string `json:"size" binding:"omitempty,max=50"`
	WeightGrams       *int64 `json:"weightGrams" binding:"omitempty,gt=0"`
	Dimensions        string `json:"dimensions" binding:"omitempty,max=100"`
	CategoryID        string `json:"categoryId" binding:"required"`
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := web.BindJSON(c, &req); err != nil {
		web.Error(c, err)
		return
	}
	p, err := h.products.Create(c.Request.Context(), service.CreateInput{
		Name:              req.Name,
		Description:       req.Description,
		SKU:               req.SKU,
		PriceCents:        req.PriceCents,
		CostCents:         req.CostCents,
		StockQuantity:     req.StockQuantity,
		MinimumStockLevel: req.MinimumStockLevel,
		Featured:          req.Featured,
		Brand:             req.Brand,
		Model:             req.Model,
		Color:             req.Color,
		Size:              req.Size,
		WeightGrams:       req.WeightGrams,
		Dimensions:        req.Dimensions,
		CategoryID:        req.CategoryID,
	})
	if err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, toResponse(p))
}

type updateRequest struct {
	Name              *string `json:"name" binding:"omitempty,max=200"`
	Description       *string `json:"description" binding:"omitempty,max=5000"`
	PriceCents        *int64  `json:"priceCents" binding:"omitempty,gt=0"`
	CostCents         *int64  `json:"costCents" binding:"omitempty,gte=0"`
	MinimumStockLevel *int    `json:"minimumStockLevel" binding:"omitempty,gte=0"`
	Active            *bool   `json:"active"`
	Featured          *bool   `json:"featured"`
	Brand             *string `json:"brand" binding:"omitempty,max=100"`
	Model             *string `json:"model" binding:"omitempty,max=100"`
	Color             *string `json:"color" binding:"omitempty,max=50"`
	Size              *string `json:"size" binding:"omitempty,max=50"`
	WeightGrams       *int64  `json:"weightGrams" binding:"omitempty,gt=0"`
	Dimensions        *string `json:"dimensions" binding:"omitempty,max=100"`
	Status            *string `json:"status" binding:"omitempty,oneof=ACTIVE INACTIVE OUT_OF_STOCK DISCONTINUED PENDING_APPROVAL"`
	CategoryID        *string `json:"categoryId"`
}

func (h *Handler) update(c *gin.Context) {
	var req updateRequest
	if err := web.BindJSON(c, &req); err != nil {
		web.Error(c, err)
		return
	}
	p, err := h.products.Update(c.Request.Context(), c.Param("id"), service.UpdateInput{
		Name:              req.Name,
		Description:       req.Description,
		PriceCents:        req.PriceCents,
		CostCents:         req.CostCents,
		MinimumStockLevel: req.MinimumStockLevel,
		Active:            req.Active,
		Featured:          req.Featured,
		Brand:             req.Brand,
		Model:             req.Model,
		Color:             req.Color,
		Size:              req.Size,
		WeightGrams:       req.WeightGrams,
		Dimensions:        req.Dimensions,
		Status:            req.Status,
		CategoryID:        req.CategoryID,
	})
	if err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(p))
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.products.Delete(c.Request.Context(), c.Param("id")); err != nil {
		web.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type stockRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

type setStockRequest struct {
	Quantity *int `json:"quantity" binding:"required,gte=0"`
}

func (h *Handler) setStock(c *gin.Context) {
	var req setStockRequest
	if err := web.BindJSON(c, &req); err != nil {
		web.Error(c, err)
		return
	}
	p, err := h.products.SetStock(c.Request.Context(), c.Param("id"), *req.Quantity)
	if err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(p))
}

func (h *Handler) decrementStock(c *gin.Context) {
	var req stockRequest
	if err := web.BindJSON(c, &req); err != nil {
		web.Error(c, err)
		return
	}
	if err := h.products.DecrementStock(c.Request.Context(), c.Param("id"), req.Quantity); err != nil {
		web.Error(c, err)
		return
	}
	p, err := h.products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(p))
}

func (h *Handler) incrementStock(c *gin.Context) {
	var req stockRequest
	if err := web.BindJSON(c, &req); err != nil {
		web.Error(c, err)
		return
	}
	if err := h.products.IncrementStock(c.Request.Context(), c.Param("id"), req.Quantity); err != nil {
		web.Error(c, err)
		return
	}
	p, err := h.products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(p))
}

type addImageRequest struct {
	URL       string `json:"url" binding:"required,url"`
	AltText   string `json:"altText" binding:"omitempty,max=200"`
	Primary   bool   `json:"primary"`
	SortOrder int    `json:"sortOrder"`
}

func (h *Handler) addImage(c *gin.Context) {
	var req addImageRequest
	if err := web.BindJSON(c, &req); err != nil {
		web.Error(c, err)
		return
	}
	img, err := h.products.AddImage(c.Request.Context(), c.Param("id"), service.AddImageInput{
		URL:       req.URL,
		AltText:   req.AltText,
		Primary:   req.Primary,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, ImageResponse{
		ID: img.ID, URL: img.URL, AltText: img.AltText,
		Primary: img.Primary, SortOrder: img.SortOrder,
	})
}

func (h *Handler) removeImage(c *gin.Context) {
	if err := h.products.RemoveImage(c.Request.Context(), c.Param("id"), c.Param("imageId")); err != nil {
		web.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) lowStock(c *gin.Context) {
	out, err := h.products.ListLowStock(c.Request.Context())
	if err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": toResponses(out)})
}

// Package handler exposes orders over HTTP. Customers place, view, and cancel
// their own orders; staff manage status, payment, and the full order book.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"ecommerce-platform/backend/internal/order/domain"
	"ecommerce-platform/backend/internal/order/repository"
	"ecommerce-platform/backend/internal/order/service"
	"ecommerce-platform/backend/internal/platform/rbac"
	"ecommerce-platform/backend/internal/web"
)

// Handler serves the order endpoints.
type Handler struct {
	orders *service.Service
}

// NewHandler builds the order handler.
func NewHandler(orders *service.Service) *Handler {
	return &Handler{orders: orders}
}

// Register mounts the customer-facing order routes on an authenticated group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/orders", h.place)
	rg.GET("/orders", h.listOwn)
	rg.GET("/orders/:id", h.get)
	rg.POST("/orders/:id/cancel", h.cancel)
}

// RegisterStaff mounts the order management routes; the caller mounts the group
// under a staff-scoped prefix. A ?number= query on the list route resolves a
// single order by its public number.
func (h *Handler) RegisterStaff(rg *gin.RouterGroup) {
	rg.GET("/orders", h.listAll)
	rg.PUT("/orders/:id/status", h.updateStatus)
	rg.POST("/orders/:id/payment", h.recordPayment)
}

// ItemResponse is one order line with its purchase-time product snapshot.
type ItemResponse struct {
	ID                 string `json:"id"`
	ProductID          string `json:"productId"`
	Quantity           int    `json:"quantity"`
	UnitPriceCents     int64  `json:"unitPriceCents"`
	TotalPriceCents    int64  `json:"totalPriceCents"`
	ProductName        string `json:"productName"`
	ProductSKU         string `json:"productSku"`
	ProductDescription string `json:"productDescription,omitempty"`
}

// StatusChangeResponse is one entry of the order's status history.
type StatusChangeResponse struct {
	Status    string    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	ChangedBy string    `json:"changedBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// OrderResponse is the public representation of an order.
type OrderResponse struct {
	ID                   string                 `json:"id"`
	OrderNumber          string                 `json:"orderNumber"`
	UserID               string                 `json:"userId"`
	Status               string                 `json:"status"`
	SubtotalCents        int64                  `json:"subtotalCents"`
	TaxCents             int64                  `json:"taxCents"`
	ShippingCents        int64                  `json:"shippingCents"`
	DiscountCents        int64                  `json:"discountCents"`
	TotalCents           int64                  `json:"totalCents"`
	TotalItems           int                    `json:"totalItems"`
	ShippingAddressID    string                 `json:"shippingAddressId"`
	BillingAddressID     string                 `json:"billingAddressId"`
	PaymentMethod        string                 `json:"paymentMethod,omitempty"`
	PaymentStatus        string                 `json:"paymentStatus"`
	PaymentTransactionID string                 `json:"paymentTransactionId,omitempty"`
	OrderDate            time.Time              `json:"orderDate"`
	ShippedDate          *time.Time             `json:"shippedDate,omitempty"`
	DeliveredDate        *time.Time             `json:"deliveredDate,omitempty"`
	TrackingNumber       string                 `json:"trackingNumber,omitempty"`
	Notes                string                 `json:"notes,omitempty"`
	Cancellable          bool                   `json:"cancellable"`
	Items                []ItemResponse         `json:"items,omitempty"`
	History              []StatusChangeResponse `json:"history,omitempty"`
	CreatedAt            time.Time              `json:"createdAt"`
	UpdatedAt            time.Time              `json:"updatedAt"`
}

func toResponse(o *domain.Order) OrderResponse {
	items := make([]ItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = ItemResponse{
			ID:                 it.ID,
			ProductID:          it.ProductID,
			Quantity:           it.Quantity,
			UnitPriceCents:     it.UnitPriceCents,
			TotalPriceCents:    it.TotalPriceCents,
			ProductName:        it.ProductName,
			ProductSKU:         it.ProductSKU,
			ProductDescription: it.ProductDescription,
		}
	}
	history := make([]StatusChangeResponse, len(o.History))
	for i, hc := range o.History {
		history[i] = StatusChangeResponse{
			Status:    string(hc.Status),
			Notes:     hc.Notes,
			ChangedBy: hc.ChangedBy,
			CreatedAt: hc.CreatedAt,
		}
	}
	return OrderResponse{
		ID:                   o.ID,
		OrderNumber:          o.OrderNumber,
		UserID:               o.UserID,
		Status:               string(o.Status),
		SubtotalCents:        o.SubtotalCents,
		TaxCents:             o.TaxCents,
		ShippingCents:        o.ShippingCents,
		DiscountCents:        o.DiscountCents,
		TotalCents:           o.TotalCents,
		TotalItems:           o.TotalItemsCount(),
		ShippingAddressID:    o.ShippingAddressID,
		BillingAddressID:     o.BillingAddressID,
		PaymentMethod:        o.PaymentMethod,
		PaymentStatus:        string(o.PaymentStatus),
		PaymentTransactionID: o.PaymentTransactionID,
		OrderDate:            o.OrderDate,
		ShippedDate:          o.ShippedDate,
		DeliveredDate:        o.DeliveredDate,
		TrackingNumber:       o.TrackingNumber,
		Notes:                o.Notes,
		Cancellable:          o.CanBeCancelled(),
		Items:                items,
		History:              history,
		CreatedAt:            o.CreatedAt,
		UpdatedAt:            o.UpdatedAt,
	}
}

func toResponses(orders []*domain.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = toResponse(o)
	}
	return out
}

// isStaff reports whether the caller may act on other users' orders.
func isStaff(c *gin.Context) bool {
	return rbac.HasAny(web.Roles(c), rbac.RoleAdmin, rbac.RoleManager, rbac.RoleCustomerService)
}

type placeRequest struct {
	ShippingAddressID string `json:"shippingAddressId" binding:"required,uuid"`
	BillingAddressID  string `json:"billingAddressId" binding:"omitempty,uuid"`
	PaymentMethod     string `json:"paymentMethod" binding:"omitempty,max=50"`
	Notes             string `json:"notes" binding:"omitempty,max=1000"`
	TaxCents          int64  `json:"taxCents" binding:"omitempty,gte=0"`
	ShippingCents     int64  `json:"shippingCents" binding:"omitempty,gte=0"`
	DiscountCents     int64  `json:"discountCents" binding:"omitempty,gte=0"`
}

func (h *Handler) place(c *gin.Context) {
	var req placeRequest
	if err := web.BindJSON(c, &req); err != nil {
		web.Error(c, err)
		return
	}
	o, err := h.orders.PlaceOrder(c.Request.Context(), web.UserID(c), service.PlaceOrderInput{
		ShippingAddressID: req.ShippingAddressID,
		BillingAddressID:  req.BillingAddressID,
		PaymentMethod:     req.PaymentMethod,
		Notes:             req.Notes,
		TaxCents:          req.TaxCents,
		ShippingCents:     req.ShippingCents,
		DiscountCents:     req.DiscountCents,
	})
	if err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, toResponse(o))
}

func (h *Handler) listOwn(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	result, err := h.orders.List(c.Request.Context(), repository.ListFilter{
		UserID: web.UserID(c),
		Status: c.Query("status"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orders": toResponses(result.Orders),
		"total":  result.Total,
	})
}

func (h *Handler) get(c *gin.Context) {
	var (
		o   *domain.Order
		err error
	)
	if isStaff(c) {
		o, err = h.orders.Get(c.Request.Context(), c.Param("id"))
	} else {
		o, err = h.orders.GetForUser(c.Request.Context(), web.UserID(c), c.Param("id"))
	}
	if err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(o))
}

type cancelRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=500"`
}

func (h *Handler) cancel(c *gin.Context) {
	var req cancelRequest
	if c.Request.ContentLength > 0 {
		if err := web.BindJSON(c, &req); err != nil {
			web.Error(c, err)
			return
		}
	}
	if !isStaff(c) {
		if _, err := h.orders.GetForUser(c.Request.Context(), web.UserID(c), c.Param("id")); err != nil {
			web.Error(c, err)
			return
		}
	}
	o, err := h.orders.Cancel(c.Request.Context(), c.Param("id"), req.Reason, web.UserID(c))
	if err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(o))
}

func (h *Handler) listAll(c *gin.Context) {
	if number := c.Query("number"); number != "" {
		o, err := h.orders.GetByNumber(c.Request.Context(), number)
		if err != nil {
			web.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, toResponse(o))
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	result, err := h.orders.List(c.Request.Context(), repository.ListFilter{
		UserID: c.Query("userId"),
		Status: c.Query("status"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orders": toResponses(result.Orders),
		"total":  result.Total,
	})
}

type updateStatusRequest struct {
	Status         string `json:"status" binding:"required"`
	Notes          string `json:"notes" binding:"omitempty,max=500"`
	TrackingNumber string `json:"trackingNumber" binding:"omitempty,max=100"`
}

func (h *Handler) updateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := web.BindJSON(c, &req); err != nil {
		web.Error(c, err)
		return
	}
	o, err := h.orders.UpdateStatus(c.Request.Context(), c.Param("id"), service.UpdateStatusInput{
		Status:         req.Status,
		Notes:          req.Notes,
		TrackingNumber: req.TrackingNumber,
		ChangedBy:      web.UserID(c),
	})
	if err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(o))
}

type recordPaymentRequest struct {
	TransactionID string `json:"transactionId" binding:"required,max=100"`
}

func (h *Handler) recordPayment(c *gin.Context) {
	var req recordPaymentRequest
	if err := web.BindJSON(c, &req); err != nil {
		web.Error(c, err)
		return
	}
	o, err := h.orders.RecordPayment(c.Request.Context(), c.Param("id"), req.TransactionID)
	if err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(o))
}

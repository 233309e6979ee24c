// Package handler exposes the caller's address book over HTTP.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ecommerce-platform/backend/internal/address/domain"
	"ecommerce-platform/backend/internal/address/service"
	"ecommerce-platform/backend/internal/web"
)

// Handler serves the address endpoints. All routes operate on the caller's own
// addresses.
type Handler struct {
	addresses *service.Service
}

// NewHandler builds the address handler.
func NewHandler(addresses *service.Service) *Handler {
	return &Handler{addresses: addresses}
}

// Register mounts the address routes.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/addresses", h.list)
	rg.POST("/addresses", h.create)
	rg.GET("/addresses/:id", h.get)
	rg.PUT("/addresses/:id", h.update)
	rg.DELETE("/addresses/:id", h.delete)
	rg.POST("/addresses/:id/default", h.setDefault)
}

// AddressResponse is the public representation of an address.
type AddressResponse struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	StreetAddress string    `json:"streetAddress"`
	AddressLine2  string    `json:"addressLine2,omitempty"`
	City          string    `json:"city"`
	State         string    `json:"state"`
	PostalCode    string    `json:"postalCode"`
	Country       string    `json:"country"`
	Default       bool      `json:"default"`
	FirstName     string    `json:"firstName,omitempty"`
	LastName      string    `json:"lastName,omitempty"`
	PhoneNumber   string    `json:"phoneNumber,omitempty"`
	Company       string    `json:"company,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toResponse(a *domain.Address) AddressResponse {
	return AddressResponse{
		ID:            a.ID,
		Type:          string(a.Type),
		StreetAddress: a.StreetAddress,
		AddressLine2:  a.AddressLine2,
		City:          a.City,
		State:         a.State,
		PostalCode:    a.PostalCode,
		Country:       a.Country,
		Default:       a.Default,
		FirstName:     a.FirstName,
		LastName:      a.LastName,
		PhoneNumber:   a.PhoneNumber,
		Company:       a.Company,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

type addressRequest struct {
	Type          string `json:"type" binding:"required,oneof=SHIPPING BILLING BOTH"`
	StreetAddress string `json:"streetAddress" binding:"required,max=200"`
	AddressLine2  string `json:"addressLine2" binding:"omitempty,max=200"`
	City          string `json:"city" binding:"required,max=100"`
	State         string `json:"state" binding:"required,max=100"`
	PostalCode    string `json:"postalCode" binding:"required,max=20"`
	Country       string `json:"country" binding:"required,max=100"`
	Default       bool   `json:"default"`
	FirstName     string `json:"firstName" binding:"omitempty,max=100"`
	LastName      string `json:"lastName" binding:"omitempty,max=100"`
	PhoneNumber   string `json:"phoneNumber" binding:"omitempty,max=20"`
	Company       string `json:"company" binding:"omitempty,max=100"`
}

func (r addressRequest) toInput() service.Input {
	return service.Input{
		Type:          r.Type,
		StreetAddress: r.StreetAddress,
		AddressLine2:  r.AddressLine2,
		City:          r.City,
		State:         r.State,
		PostalCode:    r.PostalCode,
		Country:       r.Country,
		Default:       r.Default,
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		PhoneNumber:   r.PhoneNumber,
		Company:       r.Company,
	}
}

func (h *Handler) list(c *gin.Context) {
	out, err := h.addresses.List(c.Request.Context(), web.UserID(c))
	if err != nil {
		web.Error(c, err)
		return
	}
	resp := make([]AddressResponse, len(out))
	for i, a := range out {
		resp[i] = toResponse(a)
	}
	c.JSON(http.StatusOK, gin.H{"addresses": resp})
}

func (h *Handler) create(c *gin.Context) {
	var req addressRequest
	if err := web.BindJSON(c, &req); err != nil {
		web.Error(c, err)
		return
	}
	a, err := h.addresses.Create(c.Request.Context(), web.UserID(c), req.toInput())
	if err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, toResponse(a))
}

func (h *Handler) get(c *gin.Context) {
	a, err := h.addresses.Get(c.Request.Context(), web.UserID(c), c.Param("id"))
	if err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(a))
}

func (h *Handler) update(c *gin.Context) {
	var req addressRequest
	if err := web.BindJSON(c, &req); err != nil {
		web.Error(c, err)
		return
	}
	a, err := h.addresses.Update(c.Request.Context(), web.UserID(c), c.Param("id"), req.toInput())
	if err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(a))
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.addresses.Delete(c.Request.Context(), web.UserID(c), c.Param("id")); err != nil {
		web.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) setDefault(c *gin.Context) {
	a, err := h.addresses.SetDefault(c.Request.Context(), web.UserID(c), c.Param("id"))
	if err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(a))
}

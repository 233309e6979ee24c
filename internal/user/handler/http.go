// Package handler exposes user management over HTTP.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"ecommerce-platform/backend/internal/apperr"
	"ecommerce-platform/backend/internal/platform/rbac"
	"ecommerce-platform/backend/internal/user/domain"
	"ecommerce-platform/backend/internal/user/service"
	"ecommerce-platform/backend/internal/web"
)

// Handler serves the user management endpoints.
type Handler struct {
	users *service.Service
}

// NewHandler builds the user handler.
func NewHandler(users *service.Service) *Handler {
	return &Handler{users: users}
}

// Register mounts the user routes. adminOnly guards the admin-scoped routes.
func (h *Handler) Register(rg *gin.RouterGroup, adminOnly gin.HandlerFunc) {
	rg.GET("/users/me", h.me)
	rg.GET("/users/:id", h.get)
	rg.PUT("/users/:id", h.updateProfile)
	rg.POST("/users/:id/change-password", h.changePassword)
	rg.POST("/users/:id/verify-email", h.verifyEmail)

	admin := rg.Group("", adminOnly)
	admin.GET("/users", h.list)
	admin.DELETE("/users/:id", h.delete)
	admin.POST("/users/:id/lock", h.lock)
	admin.POST("/users/:id/unlock", h.unlock)
	admin.PUT("/users/:id/enabled", h.setEnabled)
	admin.PUT("/users/:id/roles", h.updateRoles)
}

// UserResponse is the public representation of a user. The password hash and
// internal security counters are never exposed.
type UserResponse struct {
	ID            string     `json:"id"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	FirstName     string     `json:"firstName"`
	LastName      string     `json:"lastName"`
	PhoneNumber   string     `json:"phoneNumber,omitempty"`
	Enabled       bool       `json:"enabled"`
	EmailVerified bool       `json:"emailVerified"`
	Status        string     `json:"status"`
	Roles         []string   `json:"roles"`
	LastLoginAt   *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// ToUserResponse converts a domain user to its public representation.
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		PhoneNumber:   u.PhoneNumber,
		Enabled:       u.Enabled,
		EmailVerified: u.EmailVerified,
		Status:        string(u.Status),
		Roles:         rbac.Strings(u.Roles),
		LastLoginAt:   u.LastLoginAt,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func toUserResponses(users []*domain.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i, u := range users {
		out[i] = ToUserResponse(u)
	}
	return out
}

// requireSelfOrAdmin aborts unless the caller is the target user or an admin.
func requireSelfOrAdmin(c *gin.Context, targetID string) bool {
	if web.UserID(c) == targetID || web.IsAdmin(c) {
		return true
	}
	web.Error(c, apperr.Forbidden("insufficient permissions"))
	return false
}

func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	return limit, offset
}

func (h *Handler) me(c *gin.Context) {
	u, err := h.users.Get(c.Request.Context(), web.UserID(c))
	if err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, ToUserResponse(u))
}

func (h *Handler) get(c *gin.Context) {
	id := c.Param("id")
	if !requireSelfOrAdmin(c, id) {
		return
	}
	u, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, ToUserResponse(u))
}

func (h *Handler) list(c *gin.Context) {
	limit, offset := pagination(c)
	var (
		users []*domain.User
		err   error
	)
	if q := c.Query("search"); q != "" {
		users, err = h.users.Search(c.Request.Context(), q, limit, offset)
	} else {
		users, err = h.users.List(c.Request.Context(), limit, offset)
	}
	if err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": toUserResponses(users)})
}

type updateProfileRequest struct {
	Email       string `json:"email" binding:"omitempty,email"`
	FirstName   string `json:"firstName" binding:"omitempty,max=100"`
	LastName    string `json:"lastName" binding:"omitempty,max=100"`
	PhoneNumber string `json:"phoneNumber" binding:"omitempty,max=20"`
}

func (h *Handler) updateProfile(c *gin.Context) {
	id := c.Param("id")
	if !requireSelfOrAdmin(c, id) {
		return
	}
	var req updateProfileRequest
	if err := web.BindJSON(c, &req); err != nil {
		web.Error(c, err)
		return
	}
	u, err := h.users.UpdateProfile(c.Request.Context(), id, service.UpdateProfileInput{
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, ToUserResponse(u))
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8,max=128"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

func (h *Handler) changePassword(c *gin.Context) {
	id := c.Param("id")
	if web.UserID(c) != id {
		web.Error(c, apperr.Forbidden("insufficient permissions"))
		return
	}
	var req changePasswordRequest
	if err := web.BindJSON(c, &req); err != nil {
		web.Error(c, err)
		return
	}
	if err := h.users.ChangePassword(c.Request.Context(), id, req.CurrentPassword, req.NewPassword, req.ConfirmPassword); err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password changed"})
}

func (h *Handler) verifyEmail(c *gin.Context) {
	id := c.Param("id")
	if !requireSelfOrAdmin(c, id) {
		return
	}
	u, err := h.users.VerifyEmail(c.Request.Context(), id)
	if err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, ToUserResponse(u))
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), c.Param("id")); err != nil {
		web.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) lock(c *gin.Context) {
	if err := h.users.Lock(c.Request.Context(), c.Param("id")); err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "account locked"})
}

func (h *Handler) unlock(c *gin.Context) {
	if err := h.users.Unlock(c.Request.Context(), c.Param("id")); err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "account unlocked"})
}

type setEnabledRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

func (h *Handler) setEnabled(c *gin.Context) {
	var req setEnabledRequest
	if err := web.BindJSON(c, &req); err != nil {
		web.Error(c, err)
		return
	}
	u, err := h.users.SetEnabled(c.Request.Context(), c.Param("id"), *req.Enabled)
	if err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, ToUserResponse(u))
}

type updateRolesRequest struct {
	Roles []string `json:"roles" binding:"required"`
}

func (h *Handler) updateRoles(c *gin.Context) {
	var req updateRolesRequest
	if err := web.BindJSON(c, &req); err != nil {
		web.Error(c, err)
		return
	}
	u, err := h.users.UpdateRoles(c.Request.Context(), c.Param("id"), req.Roles)
	if err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, ToUserResponse(u))
}

// Package handler exposes the authentication endpoints.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ecommerce-platform/backend/internal/auth/service"
	userhandler "ecommerce-platform/backend/internal/user/handler"
	userservice "ecommerce-platform/backend/internal/user/service"
	"ecommerce-platform/backend/internal/web"
)

// Handler serves login, refresh, registration, and password reset.
type Handler struct {
	auth *service.Service
}

// NewHandler builds the auth handler.
func NewHandler(auth *service.Service) *Handler {
	return &Handler{auth: auth}
}

// Register mounts the public auth routes.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/auth/register", h.register)
	rg.POST("/auth/login", h.login)
	rg.POST("/auth/refresh", h.refresh)
	rg.POST("/auth/forgot-password", h.forgotPassword)
	rg.POST("/auth/reset-password", h.resetPassword)
}

type registerRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=50"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8,max=128"`
	FirstName   string `json:"firstName" binding:"required,max=100"`
	LastName    string `json:"lastName" binding:"required,max=100"`
	PhoneNumber string `json:"phoneNumber" binding:"omitempty,max=20"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := web.BindJSON(c, &req); err != nil {
		web.Error(c, err)
		return
	}
	u, err := h.auth.Register(c.Request.Context(), userservice.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, userhandler.ToUserResponse(u))
}

type loginRequest struct {
	// Username accepts the username or the email address.
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken  string                   `json:"accessToken"`
	RefreshToken string                   `json:"refreshToken"`
	TokenType    string                   `json:"tokenType"`
	ExpiresAt    time.Time                `json:"expiresAt"`
	User         userhandler.UserResponse `json:"user"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := web.BindJSON(c, &req); err != nil {
		web.Error(c, err)
		return
	}
	u, pair, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresAt:    pair.ExpiresAt,
		User:         userhandler.ToUserResponse(u),
	})
}

type forgotPasswordRequest struct {
	// Username accepts the username or the email address.
	Username string `json:"username" binding:"required"`
}

func (h *Handler) forgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := web.BindJSON(c, &req); err != nil {
		web.Error(c, err)
		return
	}
	if err := h.auth.RequestPasswordReset(c.Request.Context(), req.Username); err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "if the account exists, a reset email has been sent"})
}

type resetPasswordRequest struct {
	Token           string `json:"token" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8,max=128"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

func (h *Handler) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := web.BindJSON(c, &req); err != nil {
		web.Error(c, err)
		return
	}
	if err := h.auth.ResetPassword(c.Request.Context(), req.Token, req.NewPassword, req.ConfirmPassword); err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password reset"})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

func (h *Handler) refresh(c *gin.Context) {
	var req refreshRequest
	if err := web.BindJSON(c, &req); err != nil {
		web.Error(c, err)
		return
	}
	u, pair, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		web.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresAt:    pair.ExpiresAt,
		User:         userhandler.ToUserResponse(u),
	})
}

// Package server assembles the HTTP API: router, middleware chain, and the
// route groups each feature handler mounts into.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	addresshandler "ecommerce-platform/backend/internal/address/handler"
	authhandler "ecommerce-platform/backend/internal/auth/handler"
	carthandler "ecommerce-platform/backend/internal/cart/handler"
	categoryhandler "ecommerce-platform/backend/internal/category/handler"
	orderhandler "ecommerce-platform/backend/internal/order/handler"
	"ecommerce-platform/backend/internal/platform/rbac"
	producthandler "ecommerce-platform/backend/internal/product/handler"
	reviewhandler "ecommerce-platform/backend/internal/review/handler"
	"ecommerce-platform/backend/internal/security"
	userhandler "ecommerce-platform/backend/internal/user/handler"
)

// Pinger is anything that can report backend liveness (e.g. *sql.DB).
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps holds the handlers and collaborators the router needs.
type Deps struct {
	Tokens *security.TokenProvider

	Auth       *authhandler.Handler
	Users      *userhandler.Handler
	Categories *categoryhandler.Handler
	Products   *producthandler.Handler
	Carts      *carthandler.Handler
	Addresses  *addresshandler.Handler
	Orders     *orderhandler.Handler
	Reviews    *reviewhandler.Handler

	// DB is pinged by the readiness endpoint. May be nil in tests.
	DB Pinger
	// ServiceName names the tracer; defaults to "ecommerce-api".
	ServiceName string
}

// New builds the gin engine with all routes mounted.
//
// Route tiers under /api/v1:
//   - public: auth, catalog reads, approved reviews
//   - authenticated: profile, cart, addresses, orders, review writes
//   - /admin: user administration, category and catalog mutations,
//     order management, review moderation (role-gated per group)
func New(deps Deps) *gin.Engine {
	serviceName := deps.ServiceName
	if serviceName == "" {
		serviceName = "ecommerce-api"
	}

	r := gin.New()
	r.Use(gin.Recovery(), Tracing(serviceName), RequestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/readyz", func(c *gin.Context) {
		if deps.DB != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := deps.DB.PingContext(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	public := r.Group("/api/v1")
	deps.Auth.Register(public)
	deps.Categories.RegisterPublic(public)
	deps.Products.RegisterPublic(public)
	deps.Reviews.RegisterPublic(public)

	authed := r.Group("/api/v1", Authenticate(deps.Tokens))
	deps.Users.Register(authed, RequireRoles(rbac.RoleAdmin))
	deps.Carts.Register(authed)
	deps.Addresses.Register(authed)
	deps.Orders.Register(authed)
	deps.Reviews.Register(authed)

	admin := r.Group("/api/v1/admin", Authenticate(deps.Tokens))

	catalog := admin.Group("", RequireRoles(rbac.RoleAdmin, rbac.RoleManager, rbac.RoleInventoryManager))
	deps.Products.RegisterStaff(catalog)

	management := admin.Group("", RequireRoles(rbac.RoleAdmin, rbac.RoleManager))
	deps.Categories.RegisterAdmin(management)
	deps.Reviews.RegisterStaff(management)

	orders := admin.Group("", RequireRoles(rbac.RoleAdmin, rbac.RoleManager, rbac.RoleCustomerService))
	deps.Orders.RegisterStaff(orders)

	return r
}

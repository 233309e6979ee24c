package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"ecommerce-platform/backend/internal/platform/rbac"
	"ecommerce-platform/backend/internal/security"
	"ecommerce-platform/backend/internal/web"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testTokens() *security.TokenProvider {
	return security.NewTokenProvider([]byte("test-secret"), "test-iss", "test-aud", time.Minute, time.Hour)
}

func TestAuthenticateSetsIdentity(t *testing.T) {
	tokens := testTokens()
	access, _, err := tokens.IssueAccess("u-1", []string{"USER", "ADMIN"})
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	r := gin.New()
	r.GET("/probe", Authenticate(tokens), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"userId": web.UserID(c),
			"admin":  web.IsAdmin(c),
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if !strings.Contains(body, `"userId":"u-1"`) || !strings.Contains(body, `"admin":true`) {
		t.Errorf("body = %s, want identity from token", body)
	}
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	tokens := testTokens()
	refresh, _, err := tokens.IssueRefresh("u-1")
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}

	r := gin.New()
	r.GET("/probe", Authenticate(tokens), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	cases := map[string]string{
		"missing header":     "",
		"not bearer":         "Basic abc",
		"garbage":            "Bearer not-a-jwt",
		"refresh not access": "Bearer " + refresh,
	}
	for name, header := range cases {
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", name, w.Code)
		}
	}
}

func TestRequireRoles(t *testing.T) {
	r := gin.New()
	r.GET("/staff",
		func(c *gin.Context) { web.SetIdentity(c, "u-1", []rbac.Role{rbac.RoleUser}) },
		RequireRoles(rbac.RoleAdmin, rbac.RoleManager),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)
	r.GET("/manager",
		func(c *gin.Context) { web.SetIdentity(c, "u-2", []rbac.Role{rbac.RoleManager}) },
		RequireRoles(rbac.RoleAdmin, rbac.RoleManager),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/staff", nil))
	if w.Code != http.StatusForbidden {
		t.Errorf("user role: status = %d, want 403", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/manager", nil))
	if w.Code != http.StatusOK {
		t.Errorf("manager role: status = %d, want 200", w.Code)
	}
}

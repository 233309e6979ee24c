package server

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"ecommerce-platform/backend/internal/apperr"
	"ecommerce-platform/backend/internal/platform/rbac"
	"ecommerce-platform/backend/internal/security"
	"ecommerce-platform/backend/internal/web"
	"ecommerce-platform/backend/pkg/logkey"
)

// Authenticate validates the Bearer access token and stores the caller's
// identity on the request context. Requests without a valid token are rejected.
func Authenticate(tokens *security.TokenProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			web.Error(c, apperr.Unauthenticated("missing bearer token"))
			return
		}
		userID, roleTags, err := tokens.ValidateAccess(raw)
		if err != nil {
			web.Error(c, apperr.Unauthenticated("invalid or expired token"))
			return
		}
		web.SetIdentity(c, userID, rbac.FromStrings(roleTags))
		c.Next()
	}
}

// RequireRoles rejects callers that hold none of the allowed roles. Mount after
// Authenticate.
func RequireRoles(allowed ...rbac.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rbac.HasAny(web.Roles(c), allowed...) {
			web.Error(c, apperr.Forbidden("insufficient role"))
			return
		}
		c.Next()
	}
}

// RequestLogger logs one structured line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			slog.String(logkey.Method, c.Request.Method),
			slog.String(logkey.Path, c.FullPath()),
			slog.Int(logkey.Status, c.Writer.Status()),
			slog.Duration(logkey.Duration, time.Since(start)),
		}
		if id := web.UserID(c); id != "" {
			attrs = append(attrs, slog.String(logkey.UserID, id))
		}
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			attrs = append(attrs, slog.String(logkey.TraceID, sc.TraceID().String()))
		}
		if c.Writer.Status() >= 500 {
			slog.ErrorContext(c.Request.Context(), "http request", attrs...)
			return
		}
		slog.InfoContext(c.Request.Context(), "http request", attrs...)
	}
}

// Tracing starts a server span per request and records the response status.
func Tracing(serviceName string) gin.HandlerFunc {
	tracer := otel.Tracer(serviceName)
	return func(c *gin.Context) {
		name := c.Request.Method + " " + c.FullPath()
		ctx, span := tracer.Start(c.Request.Context(), name,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", c.Request.Method),
				attribute.String("http.route", c.FullPath()),
			),
		)
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.response.status_code", status))
		if status >= 500 {
			span.SetStatus(codes.Error, "server error")
		}
	}
}

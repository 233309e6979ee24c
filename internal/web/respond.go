// Package web maps domain errors to HTTP responses and binds request bodies.
// Every error response uses the same envelope so clients can rely on one shape.
package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"ecommerce-platform/backend/internal/apperr"
	"ecommerce-platform/backend/pkg/logkey"
)

// ErrorBody is the envelope for every error response.
type ErrorBody struct {
	Status      int               `json:"status"`
	Error       string            `json:"error"`
	Message     string            `json:"message"`
	Path        string            `json:"path"`
	Timestamp   time.Time         `json:"timestamp"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

func statusFor(kind apperr.Kind) (int, string) {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound, "Not Found"
	case apperr.KindConflict:
		return http.StatusConflict, "Conflict"
	case apperr.KindInvalidArgument:
		return http.StatusBadRequest, "Bad Request"
	case apperr.KindValidation:
		return http.StatusBadRequest, "Validation Failed"
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized, "Unauthorized"
	case apperr.KindForbidden:
		return http.StatusForbidden, "Forbidden"
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}

// Error writes the envelope for err and aborts the request. Internal errors are
// logged with their cause; the response carries only a generic message.
func Error(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status, label := statusFor(kind)

	message := err.Error()
	if kind == apperr.KindInternal {
		slog.ErrorContext(c.Request.Context(), "request failed",
			slog.String(logkey.Path, c.Request.URL.Path), slog.Any(logkey.Error, err))
		message = "an unexpected error occurred"
	}

	c.AbortWithStatusJSON(status, ErrorBody{
		Status:      status,
		Error:       label,
		Message:     message,
		Path:        c.Request.URL.Path,
		Timestamp:   time.Now().UTC(),
		FieldErrors: apperr.Fields(err),
	})
}

// BindJSON decodes the request body into v. Struct tag violations come back as
// a KindValidation error with one message per field.
func BindJSON(c *gin.Context, v any) error {
	err := c.ShouldBindJSON(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fieldName(fe)] = fieldMessage(fe)
		}
		return apperr.Validation("request validation failed", fields)
	}
	return apperr.InvalidArgument("malformed request body")
}

func fieldName(fe validator.FieldError) string {
	f := fe.Field()
	if f == "" {
		return "body"
	}
	return strings.ToLower(f[:1]) + f[1:]
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "uuid":
		return "must be a valid id"
	default:
		return "is invalid"
	}
}

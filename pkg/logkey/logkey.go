// Package logkey defines shared slog attribute keys so log fields stay
// consistent across handlers and services.
package logkey

const (
	TraceID   = "trace_id"
	Error     = "error"
	UserID    = "user_id"
	OrderID   = "order_id"
	ProductID = "product_id"
	Method    = "method"
	Path      = "path"
	Status    = "status"
	Duration  = "duration"
)

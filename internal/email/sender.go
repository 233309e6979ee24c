// Package email defines the outbound email side effects. Delivery mechanics are
// an external collaborator; the default implementation logs the send so dev and
// tests can observe it.
package email

import (
	"context"
	"log/slog"
)

// Sender sends transactional emails. Implementations are best-effort: callers
// log and ignore errors so a mail outage never fails the triggering operation.
type Sender interface {
	SendVerificationEmail(ctx context.Context, to, username string) error
	SendPasswordResetEmail(ctx context.Context, to, resetToken string) error
	SendOrderConfirmationEmail(ctx context.Context, to, orderNumber string) error
	SendOrderShippedEmail(ctx context.Context, to, orderNumber, trackingNumber string) error
}

// LogSender implements Sender by logging each send. Used in development and as
// the default when no mail transport is configured.
type LogSender struct{}

func (LogSender) SendVerificationEmail(ctx context.Context, to, username string) error {
	slog.InfoContext(ctx, "email: verification", slog.String("to", to), slog.String("username", username))
	return nil
}

func (LogSender) SendPasswordResetEmail(ctx context.Context, to, resetToken string) error {
	slog.InfoContext(ctx, "email: password reset", slog.String("to", to))
	return nil
}

func (LogSender) SendOrderConfirmationEmail(ctx context.Context, to, orderNumber string) error {
	slog.InfoContext(ctx, "email: order confirmation", slog.String("to", to), slog.String("order_number", orderNumber))
	return nil
}

func (LogSender) SendOrderShippedEmail(ctx context.Context, to, orderNumber, trackingNumber string) error {
	slog.InfoContext(ctx, "email: order shipped", slog.String("to", to),
		slog.String("order_number", orderNumber), slog.String("tracking_number", trackingNumber))
	return nil
}

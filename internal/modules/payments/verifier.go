package payments

import (
	"context"
	"log/slog"
	"net/http"
)

// PermissiveVerifier accepts every event. It exists for local development
// only and warns on each call.
type PermissiveVerifier struct {
	Logger *slog.Logger
}

func (v PermissiveVerifier) Verify(ctx context.Context, headers http.Header, _ []byte) (bool, error) {
	logger := v.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.WarnContext(ctx, "webhook signature NOT verified (WEBHOOK_ALLOW_UNVERIFIED=true)",
		"transmission_id", headers.Get("Paypal-Transmission-Id"))
	return true, nil
}

// RejectingVerifier is used when no verification method is configured.
type RejectingVerifier struct{}

func (RejectingVerifier) Verify(context.Context, http.Header, []byte) (bool, error) {
	return false, nil
}

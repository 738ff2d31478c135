package paypal

import (
	"context"
	"net/http"

	"github.com/Mootosamy/backend-chronopost/internal/modules/payments"
)

// Unavailable stands in for the client when credentials are not configured.
type Unavailable struct{}

func (Unavailable) IsReady() bool { return false }

func (Unavailable) CreateOrder(context.Context, payments.OrderRequest) (payments.Order, error) {
	return payments.Order{}, payments.ErrGatewayUnavailable
}

func (Unavailable) GetOrder(context.Context, string) (payments.Order, error) {
	return payments.Order{}, payments.ErrGatewayUnavailable
}

func (Unavailable) CaptureOrder(context.Context, string) (payments.Capture, error) {
	return payments.Capture{}, payments.ErrGatewayUnavailable
}

// WebhookVerifier checks signatures through the gateway's verification API.
type WebhookVerifier struct {
	Client    *Client
	WebhookID string
}

func (v WebhookVerifier) Verify(ctx context.Context, h http.Header, body []byte) (bool, error) {
	return v.Client.VerifyWebhookSignature(ctx, v.WebhookID, h, body)
}

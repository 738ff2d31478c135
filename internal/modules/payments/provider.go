package payments

import (
	"context"
	"net/http"
)

// OrderRequest carries the link's amount and currency as entered; the gateway
// normalizes them.
type OrderRequest struct {
	Amount      string
	Currency    string
	LinkID      string
	Reference   string // merchant reference shown to the payer
	Description string
	ReturnURL   string
	CancelURL   string
}

type Order struct {
	ID          string
	Status      string
	ApprovalURL string
	// Amount and Currency are what the gateway was asked to charge,
	// after normalization and currency substitution.
	Amount   string
	Currency string
}

type Capture struct {
	OrderID   string
	Status    string // gateway capture status, e.g. COMPLETED, PENDING, DECLINED
	CaptureID string
	Amount    string
	Currency  string

	PayerEmail *string
	PayerName  *string
	PayerID    *string
}

type Gateway interface {
	// IsReady is false when credentials are missing; every other call then
	// fails with ErrGatewayUnavailable.
	IsReady() bool
	CreateOrder(ctx context.Context, req OrderRequest) (Order, error)
	GetOrder(ctx context.Context, orderID string) (Order, error)
	CaptureOrder(ctx context.Context, orderID string) (Capture, error)
}

type Verifier interface {
	Verify(ctx context.Context, headers http.Header, body []byte) (bool, error)
}

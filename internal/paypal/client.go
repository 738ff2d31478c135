package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/Mootosamy/backend-chronopost/internal/config"
	"github.com/Mootosamy/backend-chronopost/internal/modules/payments"
)

const (
	SandboxURL = "https://api-m.sandbox.paypal.com"
	LiveURL    = "https://api-m.paypal.com"
)

type Options struct {
	ClientID  string
	Secret    string
	BaseURL   string
	BrandName string
	Timeout   time.Duration
}

type Client struct {
	baseURL   string
	brandName string
	http      *http.Client
	logger    *slog.Logger
}

// New returns a ready Client, or Unavailable when credentials are missing.
func New(cfg config.PayPalConfig) payments.Gateway {
	if !cfg.Configured() {
		return Unavailable{}
	}
	base := SandboxURL
	if cfg.Mode == "live" {
		base = LiveURL
	}
	return NewClient(Options{
		ClientID:  cfg.ClientID,
		Secret:    cfg.Secret,
		BaseURL:   base,
		BrandName: cfg.BrandName,
		Timeout:   cfg.Timeout,
	})
}

func NewClient(o Options) *Client {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	base := strings.TrimRight(o.BaseURL, "/")

	cc := clientcredentials.Config{
		ClientID:     o.ClientID,
		ClientSecret: o.Secret,
		TokenURL:     base + "/v1/oauth2/token",
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	// token requests share the timeout of API calls
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: o.Timeout})
	hc := cc.Client(tokenCtx)
	hc.Timeout = o.Timeout

	return &Client{
		baseURL:   base,
		brandName: o.BrandName,
		http:      hc,
		logger:    slog.Default(),
	}
}

func (c *Client) SetLogger(logger *slog.Logger) {
	c.logger = logger
}

func (c *Client) IsReady() bool { return true }

func (c *Client) CreateOrder(ctx context.Context, req payments.OrderRequest) (payments.Order, error) {
	amount, err := NormalizeAmount(req.Amount)
	if err != nil {
		return payments.Order{}, &payments.GatewayError{Op: "create_order", Cause: err.Error(), Err: err}
	}
	currency := GatewayCurrency(req.Currency)
	if currency != strings.ToUpper(strings.TrimSpace(req.Currency)) {
		c.logger.InfoContext(ctx, "currency substituted for gateway", "from", req.Currency, "to", currency, "link_id", req.LinkID)
	}

	body := orderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnitRequest{{
			ReferenceID: req.Reference,
			CustomID:    req.LinkID,
			Description: req.Description,
			Amount:      money{CurrencyCode: currency, Value: amount},
		}},
		ApplicationContext: applicationContext{
			ReturnURL:          req.ReturnURL,
			CancelURL:          req.CancelURL,
			BrandName:          c.brandName,
			LandingPage:        "BILLING",
			UserAction:         "PAY_NOW",
			ShippingPreference: "NO_SHIPPING",
		},
	}

	var out orderResponse
	if err := c.do(ctx, "create_order", http.MethodPost, "/v2/checkout/orders", body,
		map[string]string{"Prefer": "return=representation"}, &out); err != nil {
		return payments.Order{}, err
	}
	if out.ID == "" {
		return payments.Order{}, &payments.GatewayError{Op: "create_order", Cause: "response without order id"}
	}

	c.logger.InfoContext(ctx, "paypal order created", "order_id", out.ID, "status", out.Status)
	return payments.Order{
		ID:          out.ID,
		Status:      out.Status,
		ApprovalURL: out.link("approve", "payer-action"),
		Amount:      amount,
		Currency:    currency,
	}, nil
}

func (c *Client) GetOrder(ctx context.Context, orderID string) (payments.Order, error) {
	var out orderResponse
	if err := c.do(ctx, "get_order", http.MethodGet, "/v2/checkout/orders/"+orderID, nil, nil, &out); err != nil {
		return payments.Order{}, err
	}
	o := payments.Order{
		ID:          out.ID,
		Status:      out.Status,
		ApprovalURL: out.link("approve", "payer-action"),
	}
	if len(out.PurchaseUnits) > 0 && out.PurchaseUnits[0].Amount != nil {
		o.Amount = out.PurchaseUnits[0].Amount.Value
		o.Currency = out.PurchaseUnits[0].Amount.CurrencyCode
	}
	return o, nil
}

// CaptureOrder is idempotent on the gateway side: retries reuse the same
// request id and get the original capture back.
func (c *Client) CaptureOrder(ctx context.Context, orderID string) (payments.Capture, error) {
	var out orderResponse
	if err := c.do(ctx, "capture", http.MethodPost, "/v2/checkout/orders/"+orderID+"/capture", struct{}{},
		map[string]string{"PayPal-Request-Id": "capture-" + orderID}, &out); err != nil {
		return payments.Capture{}, err
	}

	capt, ok := out.firstCapture()
	if !ok {
		return payments.Capture{}, &payments.GatewayError{Op: "capture", Cause: "response without capture"}
	}

	res := payments.Capture{
		OrderID:   out.ID,
		Status:    capt.Status,
		CaptureID: capt.ID,
	}
	if res.Status == "" {
		res.Status = out.Status
	}
	if capt.Amount != nil {
		res.Amount = capt.Amount.Value
		res.Currency = capt.Amount.CurrencyCode
	}
	if p := out.Payer; p != nil {
		res.PayerEmail = nonEmpty(p.EmailAddress)
		res.PayerID = nonEmpty(p.PayerID)
		if p.Name != nil {
			res.PayerName = nonEmpty(strings.TrimSpace(p.Name.GivenName + " " + p.Name.Surname))
		}
	}

	c.logger.InfoContext(ctx, "paypal order captured", "order_id", out.ID, "capture_id", capt.ID, "status", res.Status)
	return res, nil
}

// VerifyWebhookSignature asks the gateway whether the transmission headers
// match the body for the given webhook id.
func (c *Client) VerifyWebhookSignature(ctx context.Context, webhookID string, h http.Header, body []byte) (bool, error) {
	req := verifyRequest{
		AuthAlgo:         h.Get("Paypal-Auth-Algo"),
		CertURL:          h.Get("Paypal-Cert-Url"),
		TransmissionID:   h.Get("Paypal-Transmission-Id"),
		TransmissionSig:  h.Get("Paypal-Transmission-Sig"),
		TransmissionTime: h.Get("Paypal-Transmission-Time"),
		WebhookID:        webhookID,
		WebhookEvent:     json.RawMessage(body),
	}
	if req.TransmissionID == "" || req.TransmissionSig == "" || req.CertURL == "" {
		return false, nil
	}

	var out struct {
		VerificationStatus string `json:"verification_status"`
	}
	if err := c.do(ctx, "verify_webhook", http.MethodPost, "/v1/notifications/verify-webhook-signature", req, nil, &out); err != nil {
		return false, err
	}
	return out.VerificationStatus == "SUCCESS", nil
}

func (c *Client) do(ctx context.Context, op, method, path string, in any, headers map[string]string, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return &payments.GatewayError{Op: op, Cause: "encode request", Err: err}
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &payments.GatewayError{Op: op, Cause: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return payments.NewGatewayError(op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return payments.NewGatewayError(op, err)
	}
	if resp.StatusCode >= 300 {
		return &payments.GatewayError{Op: op, Cause: apiErrorCause(resp.StatusCode, raw)}
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &payments.GatewayError{Op: op, Cause: "unexpected response shape", Err: err}
	}
	return nil
}

func apiErrorCause(status int, raw []byte) string {
	var e apiError
	if json.Unmarshal(raw, &e) == nil {
		name := e.Name
		if name == "" {
			name = e.Error
		}
		if len(e.Details) > 0 && e.Details[0].Issue != "" {
			name = e.Details[0].Issue
		}
		if name != "" {
			return fmt.Sprintf("%s (HTTP %d)", name, status)
		}
	}
	return fmt.Sprintf("HTTP %d", status)
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

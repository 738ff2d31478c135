package paypal

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mootosamy/backend-chronopost/internal/config"
	"github.com/Mootosamy/backend-chronopost/internal/modules/payments"
)

type fakePayPal struct {
	*httptest.Server
	tokens     atomic.Int32
	lastOrder  orderRequest
	lastHeader http.Header
	captureFn  func(w http.ResponseWriter, r *http.Request)
	verifyResp string
}

func newFakePayPal(t *testing.T) *fakePayPal {
	f := &fakePayPal{verifyResp: "SUCCESS"}
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client-id" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":"invalid_client"}`)
			return
		}
		f.tokens.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"A21AA","token_type":"Bearer","expires_in":32400}`)
	})

	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		f.lastHeader = r.Header.Clone()
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&f.lastOrder))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{
			"id": "5O190127TN364715T",
			"status": "CREATED",
			"links": [
				{"href": "https://api-m.sandbox.paypal.com/v2/checkout/orders/5O190127TN364715T", "rel": "self"},
				{"href": "https://www.sandbox.paypal.com/checkoutnow?token=5O190127TN364715T", "rel": "approve"}
			]
		}`)
	})

	mux.HandleFunc("/v2/checkout/orders/5O190127TN364715T", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{
			"id": "5O190127TN364715T",
			"status": "APPROVED",
			"purchase_units": [{"amount": {"currency_code": "USD", "value": "1000.00"}}]
		}`)
	})

	mux.HandleFunc("/v2/checkout/orders/5O190127TN364715T/capture", func(w http.ResponseWriter, r *http.Request) {
		f.lastHeader = r.Header.Clone()
		if f.captureFn != nil {
			f.captureFn(w, r)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{
			"id": "5O190127TN364715T",
			"status": "COMPLETED",
			"payer": {
				"name": {"given_name": "John", "surname": "Doe"},
				"email_address": "customer@example.com",
				"payer_id": "QYR5Z8XDVJNXQ"
			},
			"purchase_units": [{
				"reference_id": "MRU-INV1",
				"payments": {"captures": [{
					"id": "3C679366HH908993F",
					"status": "COMPLETED",
					"amount": {"currency_code": "USD", "value": "1000.00"}
				}]}
			}]
		}`)
	})

	mux.HandleFunc("/v1/notifications/verify-webhook-signature", func(w http.ResponseWriter, r *http.Request) {
		var req verifyRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "WH-ID", req.WebhookID)
		assert.JSONEq(t, `{"id":"WH-1"}`, string(req.WebhookEvent))
		_, _ = io.WriteString(w, `{"verification_status":"`+f.verifyResp+`"}`)
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakePayPal) client(timeout time.Duration) *Client {
	return NewClient(Options{
		ClientID:  "client-id",
		Secret:    "secret",
		BaseURL:   f.URL,
		BrandName: "Chronopost Mauritius Ltd",
		Timeout:   timeout,
	})
}

func TestClient_CreateOrderNormalizesAmountAndCurrency(t *testing.T) {
	f := newFakePayPal(t)
	c := f.client(5 * time.Second)

	o, err := c.CreateOrder(context.Background(), payments.OrderRequest{
		Amount:      "1 000,00",
		Currency:    "Rs",
		LinkID:      "PAY-1",
		Reference:   "MRU-INV1",
		Description: "Payment for order ORD-1",
		ReturnURL:   "http://localhost:3000/payment/PAY-1/success",
		CancelURL:   "http://localhost:3000/payment/PAY-1/cancel",
	})
	require.NoError(t, err)

	assert.Equal(t, "5O190127TN364715T", o.ID)
	assert.Equal(t, "CREATED", o.Status)
	assert.Equal(t, "https://www.sandbox.paypal.com/checkoutnow?token=5O190127TN364715T", o.ApprovalURL)
	assert.Equal(t, "1000.00", o.Amount)
	assert.Equal(t, "USD", o.Currency)

	require.Len(t, f.lastOrder.PurchaseUnits, 1)
	pu := f.lastOrder.PurchaseUnits[0]
	assert.Equal(t, money{CurrencyCode: "USD", Value: "1000.00"}, pu.Amount)
	assert.Equal(t, "MRU-INV1", pu.ReferenceID)
	assert.Equal(t, "PAY-1", pu.CustomID)
	assert.Equal(t, "CAPTURE", f.lastOrder.Intent)
	assert.Equal(t, "NO_SHIPPING", f.lastOrder.ApplicationContext.ShippingPreference)
	assert.Equal(t, "Bearer A21AA", f.lastHeader.Get("Authorization"))
	assert.Equal(t, "return=representation", f.lastHeader.Get("Prefer"))
}

func TestClient_CreateOrderRejectsBadAmount(t *testing.T) {
	f := newFakePayPal(t)
	_, err := f.client(time.Second).CreateOrder(context.Background(), payments.OrderRequest{Amount: "abc", Currency: "USD"})

	var gerr *payments.GatewayError
	require.ErrorAs(t, err, &gerr)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.Equal(t, int32(0), f.tokens.Load())
}

func TestClient_TokenIsReused(t *testing.T) {
	f := newFakePayPal(t)
	c := f.client(time.Second)

	for i := 0; i < 3; i++ {
		_, err := c.GetOrder(context.Background(), "5O190127TN364715T")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), f.tokens.Load())
}

func TestClient_GetOrder(t *testing.T) {
	f := newFakePayPal(t)
	o, err := f.client(time.Second).GetOrder(context.Background(), "5O190127TN364715T")
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", o.Status)
	assert.Equal(t, "1000.00", o.Amount)
	assert.Equal(t, "USD", o.Currency)
}

func TestClient_CaptureOrder(t *testing.T) {
	f := newFakePayPal(t)
	c, err := f.client(time.Second).CaptureOrder(context.Background(), "5O190127TN364715T")
	require.NoError(t, err)

	assert.Equal(t, "COMPLETED", c.Status)
	assert.Equal(t, "3C679366HH908993F", c.CaptureID)
	assert.Equal(t, "1000.00", c.Amount)
	require.NotNil(t, c.PayerEmail)
	assert.Equal(t, "customer@example.com", *c.PayerEmail)
	assert.Equal(t, "John Doe", *c.PayerName)
	assert.Equal(t, "QYR5Z8XDVJNXQ", *c.PayerID)
	assert.Equal(t, "capture-5O190127TN364715T", f.lastHeader.Get("PayPal-Request-Id"))
}

func TestClient_CaptureOrderErrors(t *testing.T) {
	t.Run("not approved", func(t *testing.T) {
		f := newFakePayPal(t)
		f.captureFn = func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = io.WriteString(w, `{"name":"UNPROCESSABLE_ENTITY","details":[{"issue":"ORDER_NOT_APPROVED"}]}`)
		}
		_, err := f.client(time.Second).CaptureOrder(context.Background(), "5O190127TN364715T")

		var gerr *payments.GatewayError
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, "capture", gerr.Op)
		assert.Equal(t, "ORDER_NOT_APPROVED (HTTP 422)", gerr.Cause)
		assert.False(t, gerr.Timeout())
	})

	t.Run("slow gateway", func(t *testing.T) {
		f := newFakePayPal(t)
		release := make(chan struct{})
		f.captureFn = func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}
		defer close(release)

		_, err := f.client(100*time.Millisecond).CaptureOrder(context.Background(), "5O190127TN364715T")
		var gerr *payments.GatewayError
		require.ErrorAs(t, err, &gerr)
		assert.True(t, gerr.Timeout())
		assert.Equal(t, "timeout", gerr.Cause)
	})

	t.Run("missing capture", func(t *testing.T) {
		f := newFakePayPal(t)
		f.captureFn = func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `{"id":"5O190127TN364715T","status":"COMPLETED"}`)
		}
		_, err := f.client(time.Second).CaptureOrder(context.Background(), "5O190127TN364715T")
		var gerr *payments.GatewayError
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, "response without capture", gerr.Cause)
	})
}

func TestClient_BadCredentials(t *testing.T) {
	f := newFakePayPal(t)
	c := NewClient(Options{ClientID: "nope", Secret: "nope", BaseURL: f.URL, Timeout: time.Second})

	_, err := c.GetOrder(context.Background(), "5O190127TN364715T")
	var gerr *payments.GatewayError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "get_order", gerr.Op)
}

func TestClient_VerifyWebhookSignature(t *testing.T) {
	f := newFakePayPal(t)
	c := f.client(time.Second)
	h := http.Header{}
	h.Set("Paypal-Transmission-Id", "69cd13f0")
	h.Set("Paypal-Transmission-Sig", "sig")
	h.Set("Paypal-Cert-Url", "https://api.paypal.com/v1/notifications/certs/CERT")
	h.Set("Paypal-Auth-Algo", "SHA256withRSA")
	h.Set("Paypal-Transmission-Time", "2026-01-02T10:00:00Z")
	body := []byte(`{"id":"WH-1"}`)

	v := WebhookVerifier{Client: c, WebhookID: "WH-ID"}
	ok, err := v.Verify(context.Background(), h, body)
	require.NoError(t, err)
	assert.True(t, ok)

	f.verifyResp = "FAILURE"
	ok, err = v.Verify(context.Background(), h, body)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = v.Verify(context.Background(), http.Header{}, body)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNew_WithoutCredentialsIsUnavailable(t *testing.T) {
	gw := New(config.PayPalConfig{Mode: "sandbox"})
	assert.False(t, gw.IsReady())

	_, err := gw.CaptureOrder(context.Background(), "X")
	assert.ErrorIs(t, err, payments.ErrGatewayUnavailable)

	gw = New(config.PayPalConfig{ClientID: "id", Secret: "s", Mode: "live", Timeout: time.Second})
	require.True(t, gw.IsReady())
	assert.Equal(t, LiveURL, gw.(*Client).baseURL)
}

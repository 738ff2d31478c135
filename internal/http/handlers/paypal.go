package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Mootosamy/backend-chronopost/internal/http/middleware"
	"github.com/Mootosamy/backend-chronopost/internal/modules/links"
	"github.com/Mootosamy/backend-chronopost/internal/modules/payments"
	"github.com/Mootosamy/backend-chronopost/internal/shared/apperr"
)

// PayPalHandler serves the customer checkout: create an order for a link,
// capture it after approval.
type PayPalHandler struct {
	engine *payments.Engine
}

func NewPayPalHandler(engine *payments.Engine) *PayPalHandler {
	return &PayPalHandler{engine: engine}
}

// POST /api/paypal/create-order?payment_id=PAY-...
func (h *PayPalHandler) CreateOrder(c *gin.Context) {
	linkID := c.Query("payment_id")
	if linkID == "" {
		middleware.Fail(c, apperr.InvalidErr("Invalid request.", map[string]string{"payment_id": "This field is required."}))
		return
	}

	co, err := h.engine.StartCheckout(c.Request.Context(), linkID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order_id":     co.Transaction.PayPalOrderID,
		"approval_url": co.ApprovalURL,
		"status":       co.OrderStatus,
	})
}

type captureInput struct {
	OrderID   string `json:"order_id" binding:"required"`
	PaymentID string `json:"payment_id" binding:"required"`
}

// POST /api/paypal/capture-order
func (h *PayPalHandler) CaptureOrder(c *gin.Context) {
	var in captureInput
	if !bindJSON(c, &in) {
		return
	}

	res, err := h.engine.Capture(c.Request.Context(), in.OrderID, in.PaymentID)
	if err != nil {
		fail(c, err)
		return
	}

	t := res.Transaction
	msg := "Payment completed successfully"
	switch {
	case res.LinkStatus == links.StatusFailed:
		msg = "Payment was declined"
	case res.LinkStatus != links.StatusCompleted:
		msg = "Payment is pending"
	}
	c.JSON(http.StatusOK, gin.H{
		"message":             msg,
		"order_id":            t.PayPalOrderID,
		"capture_id":          t.PayPalCaptureID,
		"status":              t.Status,
		"payer_email":         t.PayerEmail,
		"payer_name":          t.PayerName,
		"amount":              t.Amount,
		"currency":            t.Currency,
		"payment_link_status": res.LinkStatus,
		"result":              res.Result,
	})
}

// GET /api/paypal/order/:id
func (h *PayPalHandler) GetOrder(c *gin.Context) {
	o, err := h.engine.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order_id":     o.ID,
		"status":       o.Status,
		"approval_url": o.ApprovalURL,
		"amount":       o.Amount,
		"currency":     o.Currency,
	})
}

package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Mootosamy/backend-chronopost/internal/modules/payments"
)

const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	svc *payments.WebhookService
}

func NewWebhookHandler(svc *payments.WebhookService) *WebhookHandler {
	return &WebhookHandler{svc: svc}
}

// POST /api/webhooks/paypal
// The raw body is needed for signature verification, so it is read before
// any decoding. Everything except an unverified signature is acknowledged.
func (h *WebhookHandler) PayPal(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		h.svc.ReceiveUnreadable(c.Request.Context(), body, err)
		c.JSON(http.StatusOK, gin.H{"status": "success"})
		return
	}

	ack := h.svc.Receive(c.Request.Context(), c.Request.Header, body)
	if !ack.Accepted {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "signature verification failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// GET /api/webhooks/events?limit=50
func (h *WebhookHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	out, err := h.svc.List(c.Request.Context(), limit)
	if err != nil {
		fail(c, err)
		return
	}
	if out == nil {
		out = []payments.WebhookEvent{}
	}
	c.JSON(http.StatusOK, out)
}

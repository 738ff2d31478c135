package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Mootosamy/backend-chronopost/internal/modules/email"
)

type EmailHandler struct {
	svc *email.Service
}

func NewEmailHandler(svc *email.Service) *EmailHandler {
	return &EmailHandler{svc: svc}
}

type paymentEmailInput struct {
	RecipientEmail  string `json:"recipient_email" binding:"required,email"`
	OrderName       string `json:"order_name" binding:"required"`
	OrderNumber     string `json:"order_number" binding:"required"`
	Amount          string `json:"amount" binding:"required"`
	Currency        string `json:"currency" binding:"required"`
	ClientFirstName string `json:"client_first_name" binding:"required"`
	ClientLastName  string `json:"client_last_name" binding:"required"`
	PaymentLink     string `json:"payment_link" binding:"required,url"`
	Reference       string `json:"reference" binding:"required"`
}

// GET /api/preview-email
func (h *EmailHandler) Preview(c *gin.Context) {
	html, err := h.svc.Preview(email.SamplePaymentEmail())
	if err != nil {
		fail(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// POST /api/send-payment-email answers 200 whether or not the mail went out;
// the result tells the operator which.
func (h *EmailHandler) Send(c *gin.Context) {
	var in paymentEmailInput
	if !bindJSON(c, &in) {
		return
	}

	res := h.svc.SendPaymentLink(c.Request.Context(), email.PaymentEmail(in))
	msg := "Email sent successfully"
	if !res.Success {
		msg = "Email could not be sent"
	}
	c.JSON(http.StatusOK, gin.H{
		"message": msg,
		"success": res.Success,
		"result":  res,
	})
}

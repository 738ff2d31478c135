package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Mootosamy/backend-chronopost/internal/http/middleware"
	"github.com/Mootosamy/backend-chronopost/internal/modules/links"
	"github.com/Mootosamy/backend-chronopost/internal/paypal"
	"github.com/Mootosamy/backend-chronopost/internal/shared/apperr"
)

type LinksHandler struct {
	svc *links.Service
}

func NewLinksHandler(svc *links.Service) *LinksHandler {
	return &LinksHandler{svc: svc}
}

type createLinkInput struct {
	OrderName       string `json:"order_name" binding:"required,max=255"`
	OrderNumber     string `json:"order_number" binding:"required,max=128"`
	Amount          string `json:"amount" binding:"required,max=64"`
	Currency        string `json:"currency" binding:"required,max=8"`
	ClientFirstName string `json:"client_first_name" binding:"required,max=128"`
	ClientLastName  string `json:"client_last_name" binding:"required,max=128"`
	ClientEmail     string `json:"client_email" binding:"required,email"`
}

// POST /api/payment-links
func (h *LinksHandler) Create(c *gin.Context) {
	var in createLinkInput
	if !bindJSON(c, &in) {
		return
	}
	// stored as entered; only checked for being payable later
	if _, err := paypal.NormalizeAmount(in.Amount); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Invalid request.", map[string]string{"amount": "Must be a positive amount with at most 2 decimals."}))
		return
	}

	op, _ := middleware.CurrentOperator(c)
	l, err := h.svc.Create(c.Request.Context(), links.CreateInput{
		OrderName:       in.OrderName,
		OrderNumber:     in.OrderNumber,
		Amount:          in.Amount,
		Currency:        in.Currency,
		ClientFirstName: in.ClientFirstName,
		ClientLastName:  in.ClientLastName,
		ClientEmail:     in.ClientEmail,
		OperatorID:      op.ID,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

// GET /api/payment-links
func (h *LinksHandler) List(c *gin.Context) {
	out, err := h.svc.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	if out == nil {
		out = []links.PaymentLink{}
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/payment-links/:id is public: the customer payment page reads it.
func (h *LinksHandler) Get(c *gin.Context) {
	l, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

// PUT /api/payment-links/:id/status?status=Completed[&paypal_order_id=...]
func (h *LinksHandler) UpdateStatus(c *gin.Context) {
	status, err := links.ParseStatus(c.Query("status"))
	if err != nil {
		fail(c, err)
		return
	}
	var ref *string
	if v := c.Query("paypal_order_id"); v != "" {
		ref = &v
	}

	op, _ := middleware.CurrentOperator(c)
	l, out, err := h.svc.OverrideStatus(c.Request.Context(), c.Param("id"), status, ref, op.ID)
	if err != nil {
		fail(c, err)
		return
	}

	msg := "Status updated successfully"
	if out == links.Unchanged {
		msg = "Payment link is already final; status unchanged"
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      msg,
		"outcome":      out,
		"payment_link": l,
	})
}

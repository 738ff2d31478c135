package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Mootosamy/backend-chronopost/internal/modules/payments"
)

type TransactionsHandler struct {
	ledger *payments.Ledger
}

func NewTransactionsHandler(ledger *payments.Ledger) *TransactionsHandler {
	return &TransactionsHandler{ledger: ledger}
}

// GET /api/transactions[?payment_link_id=...], newest first.
func (h *TransactionsHandler) List(c *gin.Context) {
	out, err := h.ledger.List(c.Request.Context(), c.Query("payment_link_id"))
	if err != nil {
		fail(c, err)
		return
	}
	if out == nil {
		out = []payments.Transaction{}
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/transactions/:id
func (h *TransactionsHandler) Get(c *gin.Context) {
	t, err := h.ledger.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

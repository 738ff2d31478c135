package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Mootosamy/backend-chronopost/internal/http/middleware"
	"github.com/Mootosamy/backend-chronopost/internal/http/validation"
	"github.com/Mootosamy/backend-chronopost/internal/modules/auth"
	"github.com/Mootosamy/backend-chronopost/internal/modules/links"
	"github.com/Mootosamy/backend-chronopost/internal/modules/payments"
	"github.com/Mootosamy/backend-chronopost/internal/paypal"
	"github.com/Mootosamy/backend-chronopost/internal/shared/apperr"
)

// bindJSON binds and validates the request body into dst. On failure the
// error is recorded and false is returned.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Invalid request.", validation.FromBindError(err, dst)))
		return false
	}
	return true
}

// toAppErr translates module errors into HTTP-facing ones.
func toAppErr(err error) error {
	if _, ok := apperr.As(err); ok {
		return err
	}

	var gerr *payments.GatewayError
	switch {
	case errors.Is(err, links.ErrNotFound):
		return apperr.NotFoundErr("Payment link not found")
	case errors.Is(err, links.ErrInvalidStatus):
		return apperr.InvalidErr("Invalid status.", map[string]string{"status": "Must be one of: Pending, Completed, Failed, Expired."})
	case errors.Is(err, payments.ErrTransactionNotFound):
		return apperr.NotFoundErr("Transaction not found")
	case errors.Is(err, payments.ErrLinkNotPayable):
		return apperr.InvalidErr("Payment link is not in pending status", nil)
	case errors.Is(err, payments.ErrGatewayUnavailable):
		return apperr.UnavailableErr("PayPal service not configured", err)
	case errors.Is(err, paypal.ErrInvalidAmount):
		return apperr.InvalidErr("Invalid amount.", map[string]string{"amount": err.Error()})
	case errors.As(err, &gerr):
		return apperr.UpstreamErr("PayPal request failed: "+gerr.Cause, err)
	case errors.Is(err, auth.ErrInvalidCredentials):
		return apperr.UnauthorizedErr("Invalid username or password")
	case errors.Is(err, auth.ErrInactive):
		return apperr.UnauthorizedErr("User account is inactive")
	case errors.Is(err, auth.ErrDuplicate):
		return apperr.ConflictErr("Username or email already exists")
	case errors.Is(err, auth.ErrInvalidInput):
		return apperr.InvalidErr("Username, email and password are required", nil)
	case errors.Is(err, auth.ErrNotFound):
		return apperr.NotFoundErr("User not found")
	default:
		return apperr.Wrap(err)
	}
}

func fail(c *gin.Context, err error) {
	middleware.Fail(c, toAppErr(err))
}

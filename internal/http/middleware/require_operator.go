package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Mootosamy/backend-chronopost/internal/modules/auth"
	"github.com/Mootosamy/backend-chronopost/internal/shared/apperr"
)

const ctxKeyOperator = "operator"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (auth.Operator, error)
}

// RequireOperator admits requests carrying a valid "Authorization: Bearer"
// token for an active operator.
func RequireOperator(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			c.Header("WWW-Authenticate", "Bearer")
			Fail(c, apperr.UnauthorizedErr("Not authenticated"))
			return
		}

		op, err := a.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			if errors.Is(err, auth.ErrUnauthorized) {
				c.Header("WWW-Authenticate", "Bearer")
				Fail(c, apperr.UnauthorizedErr("Invalid or expired token"))
				return
			}
			Fail(c, apperr.Wrap(err))
			return
		}

		c.Set(ctxKeyOperator, op)
		c.Next()
	}
}

func CurrentOperator(c *gin.Context) (auth.Operator, bool) {
	v, ok := c.Get(ctxKeyOperator)
	if !ok {
		return auth.Operator{}, false
	}
	op, ok := v.(auth.Operator)
	return op, ok
}

package payments

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrLinkNotPayable      = errors.New("payment link not payable")
	ErrGatewayUnavailable  = errors.New("payment gateway unavailable")
)

// GatewayError is any failed or malformed gateway call.
type GatewayError struct {
	Op    string
	Cause string
	Err   error
}

func (e *GatewayError) Error() string {
	if e.Err != nil && e.Err.Error() != e.Cause {
		return fmt.Sprintf("gateway %s: %s: %v", e.Op, e.Cause, e.Err)
	}
	return fmt.Sprintf("gateway %s: %s", e.Op, e.Cause)
}

func (e *GatewayError) Unwrap() error { return e.Err }

func (e *GatewayError) Timeout() bool { return isTimeout(e.Err) }

// NewGatewayError derives the cause from err; timeouts get the cause "timeout".
func NewGatewayError(op string, err error) *GatewayError {
	var ge *GatewayError
	if errors.As(err, &ge) {
		if ge.Op == "" {
			ge.Op = op
		}
		return ge
	}
	cause := "request failed"
	switch {
	case isTimeout(err):
		cause = "timeout"
	case err != nil:
		cause = err.Error()
	}
	return &GatewayError{Op: op, Cause: cause, Err: err}
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/Mootosamy/backend-chronopost/internal/events"
	"github.com/Mootosamy/backend-chronopost/internal/modules/links"
)

// ApplyResult describes what a signal did to the ledger.
type ApplyResult string

const (
	ResultApplied   ApplyResult = "applied"
	ResultNoop      ApplyResult = "noop" // transaction already settled
	ResultIgnored   ApplyResult = "ignored"
	ResultUnmatched ApplyResult = "unmatched"
)

// Engine is the only writer of reconciliation state. Capture responses and
// webhook events both go through apply, which changes the transaction and the
// link in one database transaction.
type Engine struct {
	db          *gorm.DB
	links       *links.Store
	ledger      *Ledger
	gateway     Gateway
	publisher   events.Publisher
	frontendURL string
	timeout     time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

func NewEngine(db *gorm.DB, gateway Gateway, publisher events.Publisher, frontendURL string, timeout time.Duration) *Engine {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Engine{
		db:          db,
		links:       links.NewStore(db),
		ledger:      NewLedger(db),
		gateway:     gateway,
		publisher:   publisher,
		frontendURL: frontendURL,
		timeout:     timeout,
		logger:      slog.Default(),
		now:         time.Now,
	}
}

func (e *Engine) SetLogger(logger *slog.Logger) {
	e.logger = logger
}

func (e *Engine) Ledger() *Ledger { return e.ledger }

type Checkout struct {
	Transaction Transaction
	ApprovalURL string
	OrderStatus string
}

// StartCheckout creates a gateway order for a pending link and makes it the
// link's current order.
func (e *Engine) StartCheckout(ctx context.Context, linkID string) (Checkout, error) {
	if !e.gateway.IsReady() {
		return Checkout{}, ErrGatewayUnavailable
	}
	l, err := e.links.Get(ctx, linkID)
	if err != nil {
		return Checkout{}, err
	}
	if l.Status != links.StatusPending {
		return Checkout{}, ErrLinkNotPayable
	}

	base := e.frontendURL + "/payment/" + l.ID
	gctx, cancel := context.WithTimeout(ctx, e.timeout)
	o, err := e.gateway.CreateOrder(gctx, OrderRequest{
		Amount:      l.Amount,
		Currency:    l.Currency,
		LinkID:      l.ID,
		Reference:   l.Reference,
		Description: fmt.Sprintf("Payment for order %s", l.OrderNumber),
		ReturnURL:   base + "/success",
		CancelURL:   base + "/cancel",
	})
	cancel()
	if err != nil {
		gerr := NewGatewayError("create_order", err)
		e.logger.ErrorContext(ctx, "gateway order creation failed", "link_id", l.ID, "cause", gerr.Cause, "err", err)
		return Checkout{}, gerr
	}

	// the gateway order exists now; record it even if the caller went away
	wctx := context.WithoutCancel(ctx)
	var t Transaction
	var out links.Outcome
	err = e.db.WithContext(wctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if t, err = e.ledger.WithTx(tx).RecordCreated(wctx, l.ID, o.ID, o.Amount, o.Currency); err != nil {
			return err
		}
		out, err = e.links.WithTx(tx).SetExternalOrderRef(wctx, l.ID, o.ID)
		return err
	})
	if err != nil {
		e.logger.ErrorContext(ctx, "failed to record gateway order", "link_id", l.ID, "order_id", o.ID, "err", err)
		return Checkout{}, err
	}
	if out == links.Unchanged {
		e.logger.WarnContext(ctx, "link settled while creating order", "link_id", l.ID, "order_id", o.ID)
		return Checkout{}, ErrLinkNotPayable
	}

	e.logger.InfoContext(ctx, "gateway order created", "link_id", l.ID, "order_id", o.ID, "amount", o.Amount, "currency", o.Currency)
	return Checkout{Transaction: t, ApprovalURL: o.ApprovalURL, OrderStatus: o.Status}, nil
}

func (e *Engine) GetOrder(ctx context.Context, orderID string) (Order, error) {
	if !e.gateway.IsReady() {
		return Order{}, ErrGatewayUnavailable
	}
	gctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	o, err := e.gateway.GetOrder(gctx, orderID)
	if err != nil {
		return Order{}, NewGatewayError("get_order", err)
	}
	return o, nil
}

type CaptureResult struct {
	Transaction Transaction
	LinkStatus  links.Status
	Result      ApplyResult
}

// Capture settles an approved order synchronously. A failed gateway call marks
// the transaction FAILED and leaves the link alone so the capture can be retried.
func (e *Engine) Capture(ctx context.Context, orderID, linkID string) (CaptureResult, error) {
	if !e.gateway.IsReady() {
		return CaptureResult{}, ErrGatewayUnavailable
	}
	t, err := e.ledger.FindByOrderID(ctx, orderID)
	if err != nil {
		return CaptureResult{}, err
	}
	if linkID != "" && t.PaymentLinkID != linkID {
		return CaptureResult{}, ErrTransactionNotFound
	}
	if t.Status.IsTerminal() {
		return e.captureResult(ctx, orderID, ResultNoop)
	}

	gctx, cancel := context.WithTimeout(ctx, e.timeout)
	c, err := e.gateway.CaptureOrder(gctx, orderID)
	cancel()
	if err != nil {
		return CaptureResult{}, e.recordFailure(ctx, orderID, NewGatewayError("capture", err))
	}

	status, ok := captureStatus(c.Status)
	if !ok {
		return CaptureResult{}, e.recordFailure(ctx, orderID, &GatewayError{
			Op:    "capture",
			Cause: fmt.Sprintf("unexpected capture status %q", c.Status),
		})
	}

	res, err := e.apply(ctx, signal{orderID: orderID, status: status, capture: &c, source: "capture"})
	if err != nil {
		return CaptureResult{}, err
	}
	return e.captureResult(ctx, orderID, res)
}

// ApplyEvent reconciles a webhook event. Events that cannot be matched to a
// transaction are logged and reported as ResultUnmatched, not as errors.
func (e *Engine) ApplyEvent(ctx context.Context, ev Event) (ApplyResult, error) {
	var status TxStatus
	switch ev.EventType {
	case EventCaptureCompleted:
		status = TxCompleted
	case EventCaptureDenied:
		status = TxDenied
	default:
		e.logger.InfoContext(ctx, "webhook event type has no transition", "event_id", ev.ID, "type", ev.EventType)
		return ResultIgnored, nil
	}

	orderID := ev.OrderID()
	if orderID == "" {
		e.logger.WarnContext(ctx, "webhook event without order id", "event_id", ev.ID, "type", ev.EventType)
		return ResultUnmatched, nil
	}

	res, err := e.apply(ctx, signal{orderID: orderID, status: status, at: e.now(), source: "webhook"})
	if errors.Is(err, ErrTransactionNotFound) {
		e.logger.WarnContext(ctx, "webhook event for unknown order", "event_id", ev.ID, "type", ev.EventType, "order_id", orderID)
		return ResultUnmatched, nil
	}
	return res, err
}

type signal struct {
	orderID string
	status  TxStatus
	capture *Capture
	at      time.Time
	source  string
}

func (e *Engine) apply(ctx context.Context, sig signal) (ApplyResult, error) {
	var (
		result ApplyResult
		linkEv *events.LinkStatusChanged
	)

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ledger := e.ledger.WithTx(tx)
		t, err := ledger.FindByOrderID(ctx, sig.orderID)
		if err != nil {
			return err
		}

		var changed bool
		if sig.capture != nil {
			changed, err = ledger.RecordCaptureResult(ctx, sig.orderID, sig.status, *sig.capture)
		} else {
			changed, err = ledger.RecordWebhookStatus(ctx, sig.orderID, sig.status, sig.at)
		}
		if err != nil {
			return err
		}
		if !changed {
			result = ResultNoop
			return nil
		}
		result = ResultApplied

		target, terminal := linkStatusFor(sig.status)
		if !terminal {
			return nil
		}

		store := e.links.WithTx(tx)
		l, err := store.Get(ctx, t.PaymentLinkID)
		if errors.Is(err, links.ErrNotFound) {
			e.logger.WarnContext(ctx, "transaction references missing link", "order_id", sig.orderID, "link_id", t.PaymentLinkID)
			return nil
		}
		if err != nil {
			return err
		}
		// only the link's latest order may settle it
		if l.PayPalOrderID == nil || *l.PayPalOrderID != sig.orderID {
			e.logger.WarnContext(ctx, "settled order is not the link's current order", "order_id", sig.orderID, "link_id", l.ID, "source", sig.source)
			return nil
		}

		out, err := store.SetStatus(ctx, l.ID, target, &sig.orderID)
		if err != nil {
			return err
		}
		if out == links.Applied {
			linkEv = &events.LinkStatusChanged{
				Type:          linkEventType(target),
				PaymentLinkID: l.ID,
				OrderID:       sig.orderID,
				Status:        string(target),
				OccurredAt:    e.now().UTC(),
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	e.logger.InfoContext(ctx, "reconciliation signal applied", "order_id", sig.orderID, "status", sig.status, "source", sig.source, "result", result)
	if linkEv != nil {
		e.logger.InfoContext(ctx, "payment link settled", "link_id", linkEv.PaymentLinkID, "status", linkEv.Status, "order_id", sig.orderID)
		if err := e.publisher.Publish(ctx, *linkEv); err != nil {
			e.logger.ErrorContext(ctx, "failed to publish link event", "link_id", linkEv.PaymentLinkID, "err", err)
		}
	}
	return result, nil
}

func (e *Engine) recordFailure(ctx context.Context, orderID string, gerr *GatewayError) error {
	// the request context may already be past its deadline
	wctx := context.WithoutCancel(ctx)
	if _, err := e.ledger.RecordFailure(wctx, orderID, gerr.Cause); err != nil {
		e.logger.ErrorContext(ctx, "failed to record capture failure", "order_id", orderID, "err", err)
	}
	e.logger.WarnContext(ctx, "capture failed", "order_id", orderID, "cause", gerr.Cause, "err", gerr.Err)
	return gerr
}

func (e *Engine) captureResult(ctx context.Context, orderID string, res ApplyResult) (CaptureResult, error) {
	t, err := e.ledger.FindByOrderID(ctx, orderID)
	if err != nil {
		return CaptureResult{}, err
	}
	l, err := e.links.Get(ctx, t.PaymentLinkID)
	if err != nil {
		return CaptureResult{}, err
	}
	return CaptureResult{Transaction: t, LinkStatus: l.Status, Result: res}, nil
}

// captureStatus maps a gateway capture status onto the ledger.
func captureStatus(s string) (TxStatus, bool) {
	switch s {
	case "COMPLETED":
		return TxCompleted, true
	case "PENDING", "APPROVED":
		return TxApproved, true
	case "DECLINED", "DENIED", "FAILED":
		return TxDenied, true
	default:
		return "", false
	}
}

// linkStatusFor is the link status a transaction status settles to.
func linkStatusFor(s TxStatus) (links.Status, bool) {
	switch s {
	case TxCompleted:
		return links.StatusCompleted, true
	case TxDenied:
		return links.StatusFailed, true
	case TxCreated, TxApproved, TxFailed:
		return "", false
	default:
		return "", false
	}
}

func linkEventType(s links.Status) string {
	if s == links.StatusCompleted {
		return events.TypeLinkCompleted
	}
	return events.TypeLinkFailed
}

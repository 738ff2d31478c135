package events

import (
	"context"
	"time"
)

const (
	TypeLinkCompleted = "payment_link.completed"
	TypeLinkFailed    = "payment_link.failed"
)

// LinkStatusChanged is emitted once per link, when it reaches a terminal status.
type LinkStatusChanged struct {
	Type          string    `json:"type"`
	PaymentLinkID string    `json:"payment_link_id"`
	OrderID       string    `json:"order_id"`
	Status        string    `json:"status"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, e LinkStatusChanged) error
	Close() error
}

// Nop is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, LinkStatusChanged) error { return nil }
func (Nop) Close() error                                     { return nil }

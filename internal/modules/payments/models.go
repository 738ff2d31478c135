package payments

import (
	"time"

	"gorm.io/datatypes"
)

type TxStatus string

const (
	TxCreated   TxStatus = "CREATED"
	TxApproved  TxStatus = "APPROVED"
	TxCompleted TxStatus = "COMPLETED"
	TxFailed    TxStatus = "FAILED" // capture attempt failed; a retry may still settle the order
	TxDenied    TxStatus = "DENIED"
)

var txTerminal = []TxStatus{TxCompleted, TxDenied}

func (s TxStatus) IsTerminal() bool {
	switch s {
	case TxCompleted, TxDenied:
		return true
	case TxCreated, TxApproved, TxFailed:
		return false
	default:
		return false
	}
}

// Transaction is one gateway order created for a payment link.
type Transaction struct {
	ID              string  `gorm:"type:varchar(36);primaryKey" json:"id"`
	PaymentLinkID   string  `gorm:"type:varchar(64);not null;index:ix_transactions_payment_link_id" json:"payment_link_id"`
	PayPalOrderID   string  `gorm:"column:paypal_order_id;type:varchar(64);not null;uniqueIndex:ux_transactions_paypal_order_id" json:"paypal_order_id"`
	PayPalCaptureID *string `gorm:"column:paypal_capture_id;type:varchar(64)" json:"paypal_capture_id"`

	Amount   string   `gorm:"type:varchar(32);not null" json:"amount"`
	Currency string   `gorm:"type:varchar(8);not null" json:"currency"`
	Status   TxStatus `gorm:"type:varchar(16);not null" json:"status"`

	PayerEmail *string `gorm:"type:varchar(255)" json:"payer_email,omitempty"`
	PayerName  *string `gorm:"type:varchar(255)" json:"payer_name,omitempty"`
	PayerID    *string `gorm:"type:varchar(64)" json:"payer_id,omitempty"`

	Metadata datatypes.JSONMap `json:"metadata,omitempty"`

	CreatedAt   time.Time  `gorm:"not null;index:ix_transactions_created_at" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (Transaction) TableName() string { return "transactions" }

// WebhookEvent is the audit record of one inbound provider notification.
type WebhookEvent struct {
	ID              string  `gorm:"type:varchar(36);primaryKey" json:"id"`
	ProviderEventID *string `gorm:"type:varchar(128);uniqueIndex:ux_webhook_events_provider_event_id" json:"provider_event_id"`
	EventType       string  `gorm:"type:varchar(64);not null" json:"event_type"`
	ResourceType    string  `gorm:"type:varchar(64)" json:"resource_type"`
	ResourceID      string  `gorm:"type:varchar(64)" json:"resource_id"`
	OrderID         *string `gorm:"type:varchar(64);index:ix_webhook_events_order_id" json:"order_id"`

	Payload datatypes.JSON `gorm:"not null" json:"payload"`

	Verified  bool    `gorm:"not null" json:"verified"`
	Processed bool    `gorm:"not null" json:"processed"`
	Error     *string `gorm:"type:varchar(255)" json:"error"`

	ReceivedAt  time.Time  `gorm:"not null" json:"received_at"`
	ProcessedAt *time.Time `json:"processed_at"`
}

func (WebhookEvent) TableName() string { return "webhook_events" }

package links

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
	StatusFailed    Status = "Failed"
	StatusExpired   Status = "Expired"
)

// terminalStatuses are absorbing: once stored they are never overwritten.
var terminalStatuses = []Status{StatusCompleted, StatusFailed}

func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed:
		return true
	case StatusPending, StatusExpired:
		return false
	default:
		return false
	}
}

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusCompleted, StatusFailed, StatusExpired:
		return st, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

type PaymentLink struct {
	ID              string  `gorm:"type:varchar(64);primaryKey" json:"id"`
	OrderName       string  `gorm:"type:varchar(255);not null" json:"order_name"`
	OrderNumber     string  `gorm:"type:varchar(128);not null" json:"order_number"`
	Amount          string  `gorm:"type:varchar(64);not null" json:"amount"` // as entered, never parsed to float
	Currency        string  `gorm:"type:varchar(8);not null" json:"currency"`
	ClientFirstName string  `gorm:"type:varchar(128);not null" json:"client_first_name"`
	ClientLastName  string  `gorm:"type:varchar(128);not null" json:"client_last_name"`
	ClientEmail     string  `gorm:"type:varchar(255);not null" json:"client_email"`
	Link            string  `gorm:"type:varchar(512);not null" json:"link"`
	Status          Status  `gorm:"type:varchar(16);not null;index:ix_payment_links_status" json:"status"`
	Reference       string  `gorm:"type:varchar(64);not null" json:"reference"`
	PayPalOrderID   *string `gorm:"column:paypal_order_id;type:varchar(64);index:ix_payment_links_paypal_order_id" json:"paypal_order_id"`
	CreatedBy       string  `gorm:"type:varchar(64)" json:"created_by,omitempty"`

	CreatedAt time.Time `gorm:"not null;index:ix_payment_links_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (PaymentLink) TableName() string { return "payment_links" }

func (l PaymentLink) ClientName() string {
	return l.ClientFirstName + " " + l.ClientLastName
}

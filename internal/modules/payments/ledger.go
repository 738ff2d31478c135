package payments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const listLimit = 1000

// Ledger records gateway orders and what happened to them. All writes are
// keyed by the gateway order id and skip transactions already COMPLETED or
// DENIED in the same statement.
type Ledger struct{ db *gorm.DB }

func NewLedger(db *gorm.DB) *Ledger { return &Ledger{db: db} }

func (l *Ledger) WithTx(tx *gorm.DB) *Ledger { return &Ledger{db: tx} }

func (l *Ledger) RecordCreated(ctx context.Context, linkID, orderID, amount, currency string) (Transaction, error) {
	now := time.Now().UTC()
	t := Transaction{
		ID:            uuid.NewString(),
		PaymentLinkID: linkID,
		PayPalOrderID: orderID,
		Amount:        amount,
		Currency:      currency,
		Status:        TxCreated,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := l.db.WithContext(ctx).Create(&t).Error; err != nil {
		return Transaction{}, err
	}
	return t, nil
}

// RecordCaptureResult stores the capture outcome. status is the already-mapped
// ledger status.
func (l *Ledger) RecordCaptureResult(ctx context.Context, orderID string, status TxStatus, c Capture) (bool, error) {
	now := time.Now().UTC()
	upd := map[string]any{"status": status}
	if c.CaptureID != "" {
		upd["paypal_capture_id"] = c.CaptureID
	}
	if c.PayerEmail != nil {
		upd["payer_email"] = *c.PayerEmail
	}
	if c.PayerName != nil {
		upd["payer_name"] = *c.PayerName
	}
	if c.PayerID != nil {
		upd["payer_id"] = *c.PayerID
	}
	if status == TxCompleted {
		upd["completed_at"] = now
	}
	return l.update(ctx, orderID, upd)
}

func (l *Ledger) RecordWebhookStatus(ctx context.Context, orderID string, status TxStatus, at time.Time) (bool, error) {
	upd := map[string]any{"status": status}
	if status == TxCompleted {
		upd["completed_at"] = at.UTC()
	}
	return l.update(ctx, orderID, upd)
}

// RecordFailure marks a capture attempt FAILED with the cause in metadata.
func (l *Ledger) RecordFailure(ctx context.Context, orderID, cause string) (bool, error) {
	now := time.Now().UTC()
	return l.update(ctx, orderID, map[string]any{
		"status": TxFailed,
		"metadata": datatypes.JSONMap{
			"error":     cause,
			"failed_at": now.Format(time.RFC3339),
		},
	})
}

func (l *Ledger) FindByOrderID(ctx context.Context, orderID string) (Transaction, error) {
	var t Transaction
	if err := l.db.WithContext(ctx).First(&t, "paypal_order_id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Transaction{}, ErrTransactionNotFound
		}
		return Transaction{}, err
	}
	return t, nil
}

func (l *Ledger) Get(ctx context.Context, id string) (Transaction, error) {
	var t Transaction
	if err := l.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Transaction{}, ErrTransactionNotFound
		}
		return Transaction{}, err
	}
	return t, nil
}

// List returns transactions newest first, optionally for one link.
func (l *Ledger) List(ctx context.Context, linkID string) ([]Transaction, error) {
	q := l.db.WithContext(ctx).Order("created_at DESC").Limit(listLimit)
	if linkID != "" {
		q = q.Where("payment_link_id = ?", linkID)
	}
	var out []Transaction
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// update reports false when the transaction exists but is already settled.
func (l *Ledger) update(ctx context.Context, orderID string, upd map[string]any) (bool, error) {
	upd["updated_at"] = time.Now().UTC()

	res := l.db.WithContext(ctx).Model(&Transaction{}).
		Where("paypal_order_id = ? AND status NOT IN ?", orderID, txTerminal).
		Updates(upd)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	var n int64
	if err := l.db.WithContext(ctx).Model(&Transaction{}).Where("paypal_order_id = ?", orderID).Count(&n).Error; err != nil {
		return false, err
	}
	if n == 0 {
		return false, ErrTransactionNotFound
	}
	return false, nil
}

package links

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// Outcome reports whether a mutation changed the stored record.
type Outcome string

const (
	Applied Outcome = "applied"
	// Unchanged: the link was already terminal; the write was accepted and ignored.
	Unchanged Outcome = "unchanged"
)

const listLimit = 1000

type Store struct{ db *gorm.DB }

func NewStore(db *gorm.DB) *Store { return &Store{db: db} }

// WithTx binds the store to an open transaction.
func (s *Store) WithTx(tx *gorm.DB) *Store { return &Store{db: tx} }

func (s *Store) Create(ctx context.Context, l *PaymentLink) error {
	now := time.Now().UTC()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now
	if l.Status == "" {
		l.Status = StatusPending
	}
	return s.db.WithContext(ctx).Create(l).Error
}

func (s *Store) Get(ctx context.Context, id string) (PaymentLink, error) {
	var l PaymentLink
	if err := s.db.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PaymentLink{}, ErrNotFound
		}
		return PaymentLink{}, err
	}
	return l, nil
}

// List returns links newest first.
func (s *Store) List(ctx context.Context) ([]PaymentLink, error) {
	var out []PaymentLink
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(listLimit).
		Find(&out).Error
	return out, err
}

// SetStatus is first-writer-wins for terminality: a link that is already
// Completed or Failed keeps its status and order reference, and the call
// still succeeds with Unchanged.
func (s *Store) SetStatus(ctx context.Context, id string, status Status, externalOrderRef *string) (Outcome, error) {
	if _, err := ParseStatus(string(status)); err != nil {
		return "", err
	}
	upd := map[string]any{"status": status}
	if externalOrderRef != nil && *externalOrderRef != "" {
		upd["paypal_order_id"] = *externalOrderRef
	}
	return s.update(ctx, id, upd)
}

// SetExternalOrderRef points the link at its latest gateway order.
func (s *Store) SetExternalOrderRef(ctx context.Context, id, orderRef string) (Outcome, error) {
	return s.update(ctx, id, map[string]any{"paypal_order_id": orderRef})
}

// update is a single conditional UPDATE so the terminal check and the write
// cannot interleave with a concurrent writer.
func (s *Store) update(ctx context.Context, id string, upd map[string]any) (Outcome, error) {
	upd["updated_at"] = time.Now().UTC()

	res := s.db.WithContext(ctx).Model(&PaymentLink{}).
		Where("id = ? AND status NOT IN ?", id, terminalStatuses).
		Updates(upd)
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected > 0 {
		return Applied, nil
	}

	var n int64
	if err := s.db.WithContext(ctx).Model(&PaymentLink{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return "", err
	}
	if n == 0 {
		return "", ErrNotFound
	}
	return Unchanged, nil
}

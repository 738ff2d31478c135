package links

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	store       *Store
	frontendURL string
	logger      *slog.Logger
	now         func() time.Time
}

func NewService(store *Store, frontendURL string) *Service {
	return &Service{
		store:       store,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		logger:      slog.Default(),
		now:         time.Now,
	}
}

func (s *Service) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

type CreateInput struct {
	OrderName       string
	OrderNumber     string
	Amount          string
	Currency        string
	ClientFirstName string
	ClientLastName  string
	ClientEmail     string
	OperatorID      string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (PaymentLink, error) {
	now := s.now().UTC()
	id := NewID(now)

	l := PaymentLink{
		ID:              id,
		OrderName:       strings.TrimSpace(in.OrderName),
		OrderNumber:     strings.TrimSpace(in.OrderNumber),
		Amount:          strings.TrimSpace(in.Amount),
		Currency:        strings.TrimSpace(in.Currency),
		ClientFirstName: strings.TrimSpace(in.ClientFirstName),
		ClientLastName:  strings.TrimSpace(in.ClientLastName),
		ClientEmail:     strings.ToLower(strings.TrimSpace(in.ClientEmail)),
		Link:            s.frontendURL + "/payment/" + id,
		Status:          StatusPending,
		Reference:       fmt.Sprintf("MRU-INV%d", now.Unix()),
		CreatedBy:       in.OperatorID,
		CreatedAt:       now,
	}
	if err := s.store.Create(ctx, &l); err != nil {
		s.logger.ErrorContext(ctx, "failed to create payment link", "err", err)
		return PaymentLink{}, err
	}

	s.logger.InfoContext(ctx, "payment link created", "link_id", l.ID, "operator_id", in.OperatorID)
	return l, nil
}

func (s *Service) Get(ctx context.Context, id string) (PaymentLink, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]PaymentLink, error) {
	return s.store.List(ctx)
}

// OverrideStatus is the operator entry point. It goes through the same
// terminal-write rule as reconciliation.
func (s *Service) OverrideStatus(ctx context.Context, id string, status Status, orderRef *string, operatorID string) (PaymentLink, Outcome, error) {
	out, err := s.store.SetStatus(ctx, id, status, orderRef)
	if err != nil {
		return PaymentLink{}, "", err
	}
	if out == Unchanged {
		s.logger.WarnContext(ctx, "status override ignored: link already terminal", "link_id", id, "requested", status, "operator_id", operatorID)
	} else {
		s.logger.InfoContext(ctx, "payment link status overridden", "link_id", id, "status", status, "operator_id", operatorID)
	}
	l, err := s.store.Get(ctx, id)
	return l, out, err
}

// NewID returns PAY-<unix millis>-<8 hex>. The prefix sorts by creation time;
// uniqueness comes from the random suffix.
func NewID(now time.Time) string {
	u := uuid.New()
	return fmt.Sprintf("PAY-%d-%s", now.UnixMilli(), hex.EncodeToString(u[:4]))
}

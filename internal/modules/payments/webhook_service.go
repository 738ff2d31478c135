package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Mootosamy/backend-chronopost/internal/cache"
	"github.com/Mootosamy/backend-chronopost/internal/storage"
)

const maxUnreadablePrefix = 4 << 10

// Ack is what the webhook endpoint answers. Only an unverified signature is
// refused; every other outcome, internal errors included, is acknowledged so
// the provider does not retry.
type Ack struct {
	Accepted  bool
	Duplicate bool
	EventID   string
	Result    ApplyResult
}

type WebhookService struct {
	db       *gorm.DB
	engine   *Engine
	verifier Verifier
	seen     cache.EventCache
	archive  storage.Storage
	logger   *slog.Logger
	now      func() time.Time
}

func NewWebhookService(db *gorm.DB, engine *Engine, verifier Verifier) *WebhookService {
	if verifier == nil {
		verifier = RejectingVerifier{}
	}
	return &WebhookService{
		db:       db,
		engine:   engine,
		verifier: verifier,
		archive:  storage.None{},
		logger:   slog.Default(),
		now:      time.Now,
	}
}

func (s *WebhookService) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

func (s *WebhookService) SetCache(c cache.EventCache) {
	s.seen = c
}

func (s *WebhookService) SetArchive(st storage.Storage) {
	s.archive = st
}

func (s *WebhookService) Receive(ctx context.Context, headers http.Header, body []byte) Ack {
	ev, perr := ParseEvent(body)
	if perr != nil {
		s.storeMalformed(ctx, body, perr)
		return Ack{Accepted: true}
	}

	verified, verr := s.verifier.Verify(ctx, headers, body)
	if verr != nil {
		s.logger.ErrorContext(ctx, "webhook signature verification error", "event_id", ev.ID, "err", verr)
		verified = false
	}

	// unverified events never claim the dedup key
	if verified && ev.ID != "" && s.alreadyReceived(ctx, ev.ID) {
		s.logger.InfoContext(ctx, "webhook event deduplicated", "event_id", ev.ID, "type", ev.EventType)
		return Ack{Accepted: true, Duplicate: true, EventID: ev.ID}
	}

	rec := WebhookEvent{
		ID:           uuid.NewString(),
		EventType:    ev.EventType,
		ResourceType: ev.ResourceType,
		ResourceID:   ev.Resource.ID,
		Payload:      datatypes.JSON(body),
		Verified:     verified,
		ReceivedAt:   s.now().UTC(),
	}
	if oid := ev.OrderID(); oid != "" {
		rec.OrderID = &oid
	}
	if verified {
		if ev.ID != "" {
			rec.ProviderEventID = &ev.ID
		}
	} else {
		rec.Error = ptr(truncate("signature verification failed (event "+ev.ID+")", 250))
	}

	// persisted before any side effect
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isDup(err) {
			s.logger.InfoContext(ctx, "webhook event deduplicated", "event_id", ev.ID, "type", ev.EventType)
			return Ack{Accepted: true, Duplicate: true, EventID: ev.ID}
		}
		s.logger.ErrorContext(ctx, "failed to persist webhook event", "event_id", ev.ID, "type", ev.EventType, "err", err)
		return Ack{Accepted: true, EventID: ev.ID}
	}
	s.archiveBody(ctx, rec)

	if !verified {
		s.logger.WarnContext(ctx, "webhook event rejected: unverified signature", "event_id", ev.ID, "type", ev.EventType)
		return Ack{Accepted: false, EventID: ev.ID}
	}

	res, aerr := s.engine.ApplyEvent(ctx, ev)
	upd := map[string]any{
		"processed":    true,
		"processed_at": s.now().UTC(),
	}
	if aerr != nil {
		upd["error"] = truncate(aerr.Error(), 250)
		s.logger.ErrorContext(ctx, "webhook event apply failed", "event_id", ev.ID, "type", ev.EventType, "err", aerr)
	}
	if err := s.db.WithContext(context.WithoutCancel(ctx)).Model(&WebhookEvent{}).
		Where("id = ?", rec.ID).
		Updates(upd).Error; err != nil {
		s.logger.ErrorContext(ctx, "failed to mark webhook event processed", "event_id", ev.ID, "err", err)
	}

	if s.seen != nil && ev.ID != "" {
		if err := s.seen.MarkSeen(ctx, ev.ID); err != nil {
			s.logger.WarnContext(ctx, "failed to cache webhook event id", "event_id", ev.ID, "err", err)
		}
	}

	s.logger.InfoContext(ctx, "webhook event processed", "event_id", ev.ID, "type", ev.EventType, "result", res)
	return Ack{Accepted: true, EventID: ev.ID, Result: res}
}

// ReceiveUnreadable records a delivery whose body could not be read in full,
// such as one over the size limit. Only a prefix of what arrived is kept. The
// delivery is still acknowledged.
func (s *WebhookService) ReceiveUnreadable(ctx context.Context, partial []byte, rerr error) Ack {
	n := len(partial)
	if n > maxUnreadablePrefix {
		partial = partial[:maxUnreadablePrefix]
	}
	s.storeMalformed(ctx, partial, fmt.Errorf("unreadable body after %d bytes: %w", n, rerr))
	return Ack{Accepted: true}
}

func (s *WebhookService) alreadyReceived(ctx context.Context, eventID string) bool {
	if s.seen != nil {
		seen, err := s.seen.Seen(ctx, eventID)
		if err != nil {
			s.logger.WarnContext(ctx, "webhook dedup cache unavailable", "event_id", eventID, "err", err)
		} else if seen {
			return true
		}
	}

	var n int64
	if err := s.db.WithContext(ctx).Model(&WebhookEvent{}).
		Where("provider_event_id = ?", eventID).
		Count(&n).Error; err != nil {
		// the unique index still catches it on insert
		s.logger.ErrorContext(ctx, "webhook dedup lookup failed", "event_id", eventID, "err", err)
		return false
	}
	return n > 0
}

// storeMalformed keeps unparseable bodies for audit. Non-JSON bodies are
// stored as a JSON string.
func (s *WebhookService) storeMalformed(ctx context.Context, body []byte, perr error) {
	payload := body
	if !json.Valid(body) {
		payload, _ = json.Marshal(string(body))
	}
	rec := WebhookEvent{
		ID:         uuid.NewString(),
		EventType:  "unknown",
		Payload:    datatypes.JSON(payload),
		Error:      ptr(truncate(perr.Error(), 250)),
		ReceivedAt: s.now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		s.logger.ErrorContext(ctx, "failed to persist malformed webhook", "err", err)
		return
	}
	s.logger.WarnContext(ctx, "malformed webhook stored", "webhook_event_id", rec.ID, "err", perr)
}

func (s *WebhookService) archiveBody(ctx context.Context, rec WebhookEvent) {
	key := "webhooks/" + rec.ReceivedAt.Format("2006-01-02") + "/" + rec.ID + ".json"
	if _, err := s.archive.Put(ctx, bytes.NewReader(rec.Payload), storage.PutInput{
		Key:         key,
		ContentType: "application/json",
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to archive webhook body", "webhook_event_id", rec.ID, "err", err)
	}
}

func (s *WebhookService) List(ctx context.Context, limit int) ([]WebhookEvent, error) {
	if limit <= 0 || limit > listLimit {
		limit = listLimit
	}
	var out []WebhookEvent
	if err := s.db.WithContext(ctx).Order("received_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func isDup(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}

func ptr(s string) *string { return &s }

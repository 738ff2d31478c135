package payments

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Mootosamy/backend-chronopost/internal/database/dbtest"
	"github.com/Mootosamy/backend-chronopost/internal/events"
	"github.com/Mootosamy/backend-chronopost/internal/modules/links"
)

type fakeGateway struct {
	mu        sync.Mutex
	ready     bool
	orders    int
	captures  int
	lastReq   OrderRequest
	createErr error
	captureFn func(ctx context.Context, orderID string) (Capture, error)
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{ready: true}
}

func (g *fakeGateway) IsReady() bool { return g.ready }

func (g *fakeGateway) CreateOrder(_ context.Context, req OrderRequest) (Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return Order{}, g.createErr
	}
	g.orders++
	g.lastReq = req
	id := fmt.Sprintf("ORDER-%d", g.orders)
	return Order{
		ID:          id,
		Status:      "CREATED",
		ApprovalURL: "https://www.sandbox.paypal.com/checkoutnow?token=" + id,
		Amount:      req.Amount,
		Currency:    req.Currency,
	}, nil
}

func (g *fakeGateway) GetOrder(_ context.Context, orderID string) (Order, error) {
	return Order{ID: orderID, Status: "APPROVED", Amount: "10.00", Currency: "USD"}, nil
}

func (g *fakeGateway) CaptureOrder(ctx context.Context, orderID string) (Capture, error) {
	g.mu.Lock()
	g.captures++
	fn := g.captureFn
	g.mu.Unlock()
	if fn != nil {
		return fn(ctx, orderID)
	}
	return completedCapture(orderID), nil
}

func (g *fakeGateway) setCapture(fn func(ctx context.Context, orderID string) (Capture, error)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.captureFn = fn
}

func (g *fakeGateway) captureCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.captures
}

func completedCapture(orderID string) Capture {
	email, name, payer := "buyer@example.com", "John Doe", "PAYER1"
	return Capture{
		OrderID:    orderID,
		Status:     "COMPLETED",
		CaptureID:  "CAP-" + orderID,
		Amount:     "1000.00",
		Currency:   "USD",
		PayerEmail: &email,
		PayerName:  &name,
		PayerID:    &payer,
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.LinkStatusChanged
}

func (p *recordingPublisher) Publish(_ context.Context, e events.LinkStatusChanged) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type fixture struct {
	db        *gorm.DB
	engine    *Engine
	gateway   *fakeGateway
	publisher *recordingPublisher
	links     *links.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return fixtureOn(dbtest.Open(t, fixtureModels...))
}

// newConcurrentFixture uses a database with several connections.
func newConcurrentFixture(t *testing.T) *fixture {
	t.Helper()
	return fixtureOn(dbtest.OpenConcurrent(t, fixtureModels...))
}

var fixtureModels = []any{&links.PaymentLink{}, &Transaction{}, &WebhookEvent{}}

func fixtureOn(db *gorm.DB) *fixture {
	gw := newFakeGateway()
	pub := &recordingPublisher{}
	return &fixture{
		db:        db,
		engine:    NewEngine(db, gw, pub, "http://localhost:3000", 200*time.Millisecond),
		gateway:   gw,
		publisher: pub,
		links:     links.NewStore(db),
	}
}

func (f *fixture) pendingLink(t *testing.T, id string) links.PaymentLink {
	t.Helper()
	l := links.PaymentLink{
		ID:              id,
		OrderName:       "Parcel",
		OrderNumber:     "ORD-" + id,
		Amount:          "1 000,00",
		Currency:        "Rs",
		ClientFirstName: "Marie",
		ClientLastName:  "Lebon",
		ClientEmail:     "marie@example.mu",
		Link:            "http://localhost:3000/payment/" + id,
		Reference:       "MRU-INV1",
	}
	require.NoError(t, f.links.Create(context.Background(), &l))
	return l
}

// checkout creates a link and a gateway order for it.
func (f *fixture) checkout(t *testing.T, linkID string) Checkout {
	t.Helper()
	f.pendingLink(t, linkID)
	co, err := f.engine.StartCheckout(context.Background(), linkID)
	require.NoError(t, err)
	return co
}

func (f *fixture) tx(t *testing.T, orderID string) Transaction {
	t.Helper()
	tr, err := f.engine.Ledger().FindByOrderID(context.Background(), orderID)
	require.NoError(t, err)
	return tr
}

func (f *fixture) link(t *testing.T, id string) links.PaymentLink {
	t.Helper()
	l, err := f.links.Get(context.Background(), id)
	require.NoError(t, err)
	return l
}

func captureEvent(eventID, eventType, orderID string) Event {
	ev := Event{ID: eventID, EventType: eventType, ResourceType: "capture"}
	ev.Resource.ID = "CAP-" + orderID
	ev.Resource.SupplementaryData.RelatedIDs.OrderID = orderID
	return ev
}

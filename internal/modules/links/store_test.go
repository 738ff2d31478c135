package links

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mootosamy/backend-chronopost/internal/database/dbtest"
)

func newLink(id string, created time.Time) *PaymentLink {
	return &PaymentLink{
		ID:              id,
		OrderName:       "Parcel delivery",
		OrderNumber:     "ORD-1",
		Amount:          "1 000,00",
		Currency:        "Rs",
		ClientFirstName: "Anne",
		ClientLastName:  "Lagesse",
		ClientEmail:     "anne@example.mu",
		Link:            "http://localhost:3000/payment/" + id,
		Reference:       "MRU-INV1",
		CreatedAt:       created,
	}
}

func newStore(t *testing.T) *Store {
	return NewStore(dbtest.Open(t, &PaymentLink{}))
}

func TestStore_CreateGet(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.Create(ctx, newLink("PAY-1", time.Time{})))

	got, err := s.Get(ctx, "PAY-1")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
	assert.Equal(t, "1 000,00", got.Amount)
	assert.Nil(t, got.PayPalOrderID)
	assert.False(t, got.UpdatedAt.IsZero())

	_, err = s.Get(ctx, "PAY-missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	base := time.Now().UTC().Add(-time.Hour)

	require.NoError(t, s.Create(ctx, newLink("PAY-old", base)))
	require.NoError(t, s.Create(ctx, newLink("PAY-new", base.Add(30*time.Minute))))
	require.NoError(t, s.Create(ctx, newLink("PAY-mid", base.Add(10*time.Minute))))

	got, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"PAY-new", "PAY-mid", "PAY-old"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestStore_SetStatus(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.Create(ctx, newLink("PAY-1", time.Time{})))
	before, _ := s.Get(ctx, "PAY-1")

	ref := "ORDER-1"
	out, err := s.SetStatus(ctx, "PAY-1", StatusCompleted, &ref)
	require.NoError(t, err)
	assert.Equal(t, Applied, out)

	got, err := s.Get(ctx, "PAY-1")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	require.NotNil(t, got.PayPalOrderID)
	assert.Equal(t, "ORDER-1", *got.PayPalOrderID)
	assert.False(t, got.UpdatedAt.Before(before.UpdatedAt))

	_, err = s.SetStatus(ctx, "PAY-missing", StatusFailed, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.SetStatus(ctx, "PAY-1", Status("Refunded"), nil)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestStore_TerminalStatusIsImmutable(t *testing.T) {
	ctx := context.Background()

	for _, terminal := range []Status{StatusCompleted, StatusFailed} {
		t.Run(string(terminal), func(t *testing.T) {
			s := newStore(t)
			require.NoError(t, s.Create(ctx, newLink("PAY-1", time.Time{})))
			ref := "ORDER-1"
			_, err := s.SetStatus(ctx, "PAY-1", terminal, &ref)
			require.NoError(t, err)

			other := "ORDER-2"
			for _, next := range []Status{StatusPending, StatusCompleted, StatusFailed, StatusExpired} {
				out, err := s.SetStatus(ctx, "PAY-1", next, &other)
				require.NoError(t, err)
				assert.Equal(t, Unchanged, out)
			}
			out, err := s.SetExternalOrderRef(ctx, "PAY-1", other)
			require.NoError(t, err)
			assert.Equal(t, Unchanged, out)

			got, err := s.Get(ctx, "PAY-1")
			require.NoError(t, err)
			assert.Equal(t, terminal, got.Status)
			assert.Equal(t, "ORDER-1", *got.PayPalOrderID)
		})
	}
}

func TestStore_ExpiredIsNotTerminal(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.Create(ctx, newLink("PAY-1", time.Time{})))

	out, err := s.SetStatus(ctx, "PAY-1", StatusExpired, nil)
	require.NoError(t, err)
	assert.Equal(t, Applied, out)

	out, err = s.SetStatus(ctx, "PAY-1", StatusPending, nil)
	require.NoError(t, err)
	assert.Equal(t, Applied, out)
}

func TestStore_ConcurrentTerminalWritesKeepOneWinner(t *testing.T) {
	ctx := context.Background()
	s := NewStore(dbtest.OpenConcurrent(t, &PaymentLink{}))
	require.NoError(t, s.Create(ctx, newLink("PAY-1", time.Time{})))

	var wg sync.WaitGroup
	results := make([]Outcome, 20)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			st := StatusCompleted
			if i%2 == 1 {
				st = StatusFailed
			}
			out, err := s.SetStatus(ctx, "PAY-1", st, nil)
			assert.NoError(t, err)
			results[i] = out
		}(i)
	}
	wg.Wait()

	applied := 0
	for _, r := range results {
		if r == Applied {
			applied++
		}
	}
	assert.Equal(t, 1, applied)

	got, err := s.Get(ctx, "PAY-1")
	require.NoError(t, err)
	assert.True(t, got.Status.IsTerminal())
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("Expired")
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, st)

	_, err = ParseStatus("pending")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

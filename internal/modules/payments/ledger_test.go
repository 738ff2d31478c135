package payments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Mootosamy/backend-chronopost/internal/database/dbtest"
)

func newLedger(t *testing.T) *Ledger {
	return NewLedger(dbtest.Open(t, &Transaction{}))
}

func TestLedger_RecordCreated(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)

	tr, err := l.RecordCreated(ctx, "PAY-1", "ORDER-1", "1000.00", "USD")
	require.NoError(t, err)
	assert.NotEmpty(t, tr.ID)
	assert.Equal(t, TxCreated, tr.Status)

	_, err = l.RecordCreated(ctx, "PAY-1", "ORDER-1", "1000.00", "USD")
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	got, err := l.Get(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, "ORDER-1", got.PayPalOrderID)

	_, err = l.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestLedger_TerminalTransactionsAreNotRewritten(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)
	_, err := l.RecordCreated(ctx, "PAY-1", "ORDER-1", "10.00", "USD")
	require.NoError(t, err)

	changed, err := l.RecordWebhookStatus(ctx, "ORDER-1", TxDenied, time.Now())
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = l.RecordFailure(ctx, "ORDER-1", "timeout")
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = l.RecordCaptureResult(ctx, "ORDER-1", TxCompleted, Capture{CaptureID: "CAP-1"})
	require.NoError(t, err)
	assert.False(t, changed)

	tr, err := l.FindByOrderID(ctx, "ORDER-1")
	require.NoError(t, err)
	assert.Equal(t, TxDenied, tr.Status)
	assert.Nil(t, tr.PayPalCaptureID)
	assert.Nil(t, tr.Metadata)

	_, err = l.RecordFailure(ctx, "ORDER-404", "timeout")
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestLedger_FailedCanStillComplete(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)
	_, err := l.RecordCreated(ctx, "PAY-1", "ORDER-1", "10.00", "USD")
	require.NoError(t, err)

	changed, err := l.RecordFailure(ctx, "ORDER-1", "timeout")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = l.RecordCaptureResult(ctx, "ORDER-1", TxCompleted, completedCapture("ORDER-1"))
	require.NoError(t, err)
	assert.True(t, changed)

	tr, err := l.FindByOrderID(ctx, "ORDER-1")
	require.NoError(t, err)
	assert.Equal(t, TxCompleted, tr.Status)
	assert.Equal(t, "CAP-ORDER-1", *tr.PayPalCaptureID)
	assert.Equal(t, "John Doe", *tr.PayerName)
	assert.Equal(t, "PAYER1", *tr.PayerID)
}

func TestLedger_List(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)
	for _, o := range []struct{ link, order string }{{"PAY-1", "O-1"}, {"PAY-2", "O-2"}, {"PAY-1", "O-3"}} {
		_, err := l.RecordCreated(ctx, o.link, o.order, "1.00", "USD")
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	all, err := l.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "O-3", all[0].PayPalOrderID)

	mine, err := l.List(ctx, "PAY-1")
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestTxStatus_IsTerminal(t *testing.T) {
	for s, want := range map[TxStatus]bool{
		TxCreated: false, TxApproved: false, TxFailed: false, TxCompleted: true, TxDenied: true,
	} {
		assert.Equal(t, want, s.IsTerminal(), s)
	}
}

func TestNewGatewayError(t *testing.T) {
	gerr := NewGatewayError("capture", context.DeadlineExceeded)
	assert.Equal(t, "timeout", gerr.Cause)
	assert.True(t, gerr.Timeout())
	assert.ErrorIs(t, gerr, context.DeadlineExceeded)

	inner := &GatewayError{Op: "capture", Cause: "ORDER_NOT_APPROVED"}
	assert.Same(t, inner, NewGatewayError("capture", inner))
}

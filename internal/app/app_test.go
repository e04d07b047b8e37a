package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finanze/internal/amqp"
	"finanze/internal/core"
	"finanze/internal/export"
	"finanze/internal/ledger"
	"finanze/internal/log"
	"finanze/internal/notify"
	"finanze/internal/period"
	"finanze/internal/storage"
)

var fixedNow = time.Date(2024, 1, 20, 10, 0, 0, 0, time.UTC)

type stubTimer struct{ stopped bool }

func (t *stubTimer) Stop() bool { t.stopped = true; return true }

type manualScheduler struct {
	mu    sync.Mutex
	funcs []func()
}

func (s *manualScheduler) AfterFunc(_ time.Duration, f func()) notify.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.funcs = append(s.funcs, f)
	return &stubTimer{}
}

func (s *manualScheduler) fireLast() {
	s.mu.Lock()
	f := s.funcs[len(s.funcs)-1]
	s.mu.Unlock()
	f()
}

type recordingPublisher struct {
	events []*amqp.LedgerEvent
	err    error
}

func (p *recordingPublisher) PublishLedgerEvent(_ context.Context, e *amqp.LedgerEvent) error {
	p.events = append(p.events, e)
	return p.err
}

type failingSaves struct {
	*storage.MemoryStore
	fail bool
}

func (f *failingSaves) Save(ctx context.Context, key string, data []byte) error {
	if f.fail {
		return errors.New("quota exceeded")
	}
	return f.MemoryStore.Save(ctx, key, data)
}

type fixture struct {
	app   *App
	blobs *failingSaves
	pub   *recordingPublisher
	sched *manualScheduler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	blobs := &failingSaves{MemoryStore: storage.NewMemoryStore()}
	clock := func() time.Time { return fixedNow }
	store, err := ledger.Load(context.Background(), blobs, ledger.Options{Clock: clock, Logger: log.Discard()})
	require.NoError(t, err)

	f := &fixture{blobs: blobs, pub: &recordingPublisher{}, sched: &manualScheduler{}}
	f.app = New(store, Options{
		Clock:     clock,
		Logger:    log.Discard(),
		Publisher: f.pub,
		Scheduler: f.sched,
	})
	return f
}

func expenseDraft(category, date, amount string) core.Draft {
	return core.Draft{Kind: core.Expense, Category: category, Date: date, Amount: amount}
}

func TestToday(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "2024-01-20", f.app.Today().String())
}

func TestDismissNotification(t *testing.T) {
	f := newFixture(t)
	f.app.Notify(notify.Info, "ciao")

	f.app.DismissNotification()
	_, ok := f.app.Notification()
	assert.False(t, ok)
}

func TestAdd_ScenarioSingleExpense(t *testing.T) {
	f := newFixture(t)

	tx, err := f.app.Add(context.Background(), expenseDraft("Cibo", "2024-01-10", "20.50"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), tx.ID)

	v := f.app.Views()
	assert.Equal(t, int64(0), v.Summary.Income.Cents)
	assert.Equal(t, int64(2050), v.Summary.Expenses.Cents)
	assert.Equal(t, int64(-2050), v.Summary.Balance.Cents)
	assert.True(t, strings.HasSuffix(v.Stats, "Top categoria: Cibo"))

	n, ok := f.app.Notification()
	require.True(t, ok)
	assert.Equal(t, notify.Success, n.Level)
	assert.Equal(t, MsgAdded, n.Message)

	require.Len(t, f.pub.events, 1)
	assert.Equal(t, amqp.TransactionCreated, f.pub.events[0].Type)
	assert.Equal(t, int64(1), f.pub.events[0].TransactionID)
}

func TestAdd_ValidationErrorNotifies(t *testing.T) {
	f := newFixture(t)

	_, err := f.app.Add(context.Background(), expenseDraft("", "2024-01-10", "5"))
	require.ErrorIs(t, err, core.ErrMissingCategory)
	assert.Empty(t, f.app.List())
	assert.Empty(t, f.pub.events)

	n, ok := f.app.Notification()
	require.True(t, ok)
	assert.Equal(t, notify.Error, n.Level)
	assert.Equal(t, MsgNoCategory, n.Message)
}

func TestAdd_SaveFailureWarnsAndKeeps(t *testing.T) {
	f := newFixture(t)
	f.blobs.fail = true

	tx, err := f.app.Add(context.Background(), core.Draft{Kind: core.Income, Date: "2024-01-01", Amount: "1000"})
	require.ErrorIs(t, err, ledger.ErrPersistenceWrite)
	assert.Equal(t, int64(1), tx.ID)
	assert.Len(t, f.app.List(), 1)

	n, _ := f.app.Notification()
	assert.Equal(t, notify.Warning, n.Level)
	assert.Equal(t, MsgSaveFailed, n.Message)
}

func TestAdd_PublishFailureIgnored(t *testing.T) {
	f := newFixture(t)
	f.pub.err = errors.New("broker down")

	_, err := f.app.Add(context.Background(), core.Draft{Kind: core.Income, Date: "2024-01-01", Amount: "1"})
	assert.NoError(t, err)
}

func TestTwoStepDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tx, err := f.app.Add(ctx, expenseDraft("Casa", "2024-01-15", "400"))
	require.NoError(t, err)

	staged, err := f.app.RequestDelete(tx.ID)
	require.NoError(t, err)
	assert.Equal(t, tx, staged)
	id, ok := f.app.PendingDelete()
	require.True(t, ok)
	assert.Equal(t, tx.ID, id)
	assert.Len(t, f.app.List(), 1, "staging must not mutate the ledger")

	f.app.CancelDelete()
	_, ok = f.app.PendingDelete()
	assert.False(t, ok)
	removed, err := f.app.ConfirmDelete(ctx)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Len(t, f.app.List(), 1)

	_, err = f.app.RequestDelete(tx.ID)
	require.NoError(t, err)
	removed, err = f.app.ConfirmDelete(ctx)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, f.app.List())
	_, ok = f.app.PendingDelete()
	assert.False(t, ok)

	n, _ := f.app.Notification()
	assert.Equal(t, MsgDeleted, n.Message)
	require.Len(t, f.pub.events, 2)
	assert.Equal(t, amqp.TransactionDeleted, f.pub.events[1].Type)
	assert.Equal(t, "Casa", f.pub.events[1].Category)
}

func TestRequestDelete_Unknown(t *testing.T) {
	f := newFixture(t)
	_, err := f.app.RequestDelete(42)
	assert.ErrorIs(t, err, ErrTransactionNotFound)
	_, ok := f.app.PendingDelete()
	assert.False(t, ok)
}

func TestSetPeriod_ThisMonthScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.app.Add(ctx, core.Draft{Kind: core.Income, Date: "2024-01-01", Amount: "1000"})
	require.NoError(t, err)
	_, err = f.app.Add(ctx, expenseDraft("Casa", "2024-01-15", "400"))
	require.NoError(t, err)
	_, err = f.app.Add(ctx, expenseDraft("Cibo", "2023-11-02", "10"))
	require.NoError(t, err)

	v := f.app.SetPeriod(period.ThisMonth)
	assert.Equal(t, period.ThisMonth, f.app.Period())
	assert.Equal(t, 2, v.Count)
	assert.Equal(t, int64(100000), v.Summary.Income.Cents)
	assert.Equal(t, int64(40000), v.Summary.Expenses.Cents)
	assert.Equal(t, int64(60000), v.Summary.Balance.Cents)
	assert.Len(t, f.app.Filtered(), 2)
}

func TestExport(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.app.Export()
	require.ErrorIs(t, err, export.ErrEmptyExportSet)
	n, _ := f.app.Notification()
	assert.Equal(t, MsgNothingToSend, n.Message)

	_, err = f.app.Add(context.Background(), expenseDraft("Cibo", "2024-01-10", "20,50"))
	require.NoError(t, err)

	data, name, err := f.app.Export()
	require.NoError(t, err)
	assert.Equal(t, "transazioni_2024-01-20.csv", name)
	assert.Contains(t, string(data), `"2024-01-10","spesa","Cibo","20.5"`)
	n, _ = f.app.Notification()
	assert.Equal(t, MsgExported, n.Message)
}

func TestExport_EmptyForActivePeriod(t *testing.T) {
	f := newFixture(t)
	_, err := f.app.Add(context.Background(), expenseDraft("Cibo", "2023-01-10", "1"))
	require.NoError(t, err)

	f.app.SetPeriod(period.ThisWeek)
	_, _, err = f.app.Export()
	assert.ErrorIs(t, err, export.ErrEmptyExportSet)
}

func TestSubscribe(t *testing.T) {
	f := newFixture(t)
	var updates []Update
	unsubscribe := f.app.Subscribe(func(u Update) { updates = append(updates, u) })

	_, err := f.app.Add(context.Background(), core.Draft{Kind: core.Income, Date: "2024-01-19", Amount: "3"})
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, 1, updates[0].Views.Count)
	require.NotNil(t, updates[0].Notification)
	assert.Equal(t, MsgAdded, updates[0].Notification.Message)

	// The hide timer pushes a fresh update without a notification.
	f.sched.fireLast()
	require.Len(t, updates, 2)
	assert.Nil(t, updates[1].Notification)
	_, ok := f.app.Notification()
	assert.False(t, ok)

	unsubscribe()
	f.app.SetPeriod(period.Last30Days)
	assert.Len(t, updates, 2)
}

func TestMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{core.ErrInvalidAmount, MsgInvalidAmount},
		{core.ErrMissingCategory, MsgNoCategory},
		{core.ErrInvalidDate, MsgInvalidDate},
		{core.ErrInvalidKind, MsgInvalidKind},
		{errors.Join(ledger.ErrPersistenceWrite, errors.New("x")), MsgSaveFailed},
		{ledger.ErrPersistenceRead, MsgLoadFailed},
		{export.ErrEmptyExportSet, MsgNothingToSend},
		{period.ErrUnknownPeriod, MsgUnknownPeriod},
		{errors.New("boom"), MsgGeneric},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Message(tt.err), tt.err.Error())
	}

	assert.True(t, IsValidation(core.ErrInvalidDate))
	assert.False(t, IsValidation(ledger.ErrPersistenceWrite))
}

// Package app is the application context: it owns the ledger, the active
// period, the pending delete and the notification board, and pushes fresh
// views to subscribers after every change.
package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"finanze/internal/amqp"
	"finanze/internal/core"
	"finanze/internal/export"
	"finanze/internal/ledger"
	"finanze/internal/log"
	"finanze/internal/notify"
	"finanze/internal/period"
	"finanze/internal/report"
)

var ErrTransactionNotFound = errors.New("transaction not found")

// EventPublisher receives ledger change events. Implemented by *amqp.Client.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, event *amqp.LedgerEvent) error
}

// Update is pushed to subscribers after every change.
type Update struct {
	Views        report.Views
	Notification *notify.Notification
}

// Options configure New. Zero values pick the defaults.
type Options struct {
	Clock          func() time.Time
	Logger         *log.Logger
	Publisher      EventPublisher
	NotifyDuration time.Duration
	Scheduler      notify.Scheduler
}

// App serialises every operation so that a mutation, its save and the
// recomputed views are atomic with respect to other callers.
type App struct {
	mu      sync.Mutex
	ledger  *ledger.Store
	period  period.Period
	pending *int64

	board     *notify.Board
	now       func() time.Time
	logger    *log.Logger
	publisher EventPublisher

	subsMu  sync.Mutex
	subs    map[int]func(Update)
	nextSub int
}

func New(store *ledger.Store, opts Options) *App {
	a := &App{
		ledger:    store,
		period:    period.All,
		now:       opts.Clock,
		logger:    opts.Logger,
		publisher: opts.Publisher,
		subs:      make(map[int]func(Update)),
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.logger == nil {
		a.logger = log.New(log.DefaultConfig())
	}
	a.logger = a.logger.WithComponent(log.ComponentApp)
	a.board = notify.NewBoard(notify.Options{
		Duration:  opts.NotifyDuration,
		Scheduler: opts.Scheduler,
		Clock:     opts.Clock,
		OnHide:    func(notify.Notification) { a.broadcast(a.Views(), nil) },
	})
	return a
}

// Views recomputes every derived view for the active period.
func (a *App) Views() report.Views {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.viewsLocked()
}

func (a *App) viewsLocked() report.Views {
	return report.Build(a.ledger.List(), a.period, a.now())
}

// Today is the civil date of the App clock.
func (a *App) Today() core.Date {
	return core.DateOf(a.now())
}

// List returns the whole ledger in insertion order.
func (a *App) List() []core.Transaction {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ledger.List()
}

// Filtered returns the transactions of the active period.
func (a *App) Filtered() []core.Transaction {
	a.mu.Lock()
	defer a.mu.Unlock()
	return period.Filter(a.ledger.List(), a.period, a.now())
}

func (a *App) Period() period.Period {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.period
}

// SetPeriod changes the active period and returns the recomputed views.
func (a *App) SetPeriod(p period.Period) report.Views {
	a.mu.Lock()
	a.period = p
	views := a.viewsLocked()
	a.mu.Unlock()

	a.logger.Debug("Period changed", log.FieldPeriod, p.String())
	a.broadcast(views, nil)
	return views
}

// Add validates and records a new transaction.
//
// On a validation error nothing changes and an error notification is shown.
// When only the save fails the transaction is kept in memory, a warning is
// shown and the returned error wraps ledger.ErrPersistenceWrite.
func (a *App) Add(ctx context.Context, draft core.Draft) (core.Transaction, error) {
	a.mu.Lock()
	tx, err := a.ledger.Add(ctx, draft)
	if err != nil && !errors.Is(err, ledger.ErrPersistenceWrite) {
		n := a.board.Show(notify.Error, Message(err))
		a.mu.Unlock()
		a.logger.Debug("Rejected transaction", log.FieldError, err)
		a.broadcast(a.Views(), &n)
		return core.Transaction{}, err
	}

	var n notify.Notification
	if err != nil {
		n = a.board.Show(notify.Warning, MsgSaveFailed)
	} else {
		n = a.board.Show(notify.Success, MsgAdded)
	}
	views := a.viewsLocked()
	a.mu.Unlock()

	a.logger.Info("Transaction added", log.NewFields().WithTransaction(tx).WithOperation(log.OpCreate).ToSlice()...)
	a.publish(ctx, amqp.TransactionCreated, tx)
	a.broadcast(views, &n)
	return tx, err
}

// RequestDelete stages id for deletion. The ledger is not touched until ConfirmDelete.
func (a *App) RequestDelete(id int64) (core.Transaction, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	tx, ok := a.ledger.Get(id)
	if !ok {
		a.pending = nil
		return core.Transaction{}, ErrTransactionNotFound
	}
	a.pending = &id
	return tx, nil
}

// PendingDelete returns the staged id, if any.
func (a *App) PendingDelete() (int64, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pending == nil {
		return 0, false
	}
	return *a.pending, true
}

// CancelDelete clears the staged id.
func (a *App) CancelDelete() {
	a.mu.Lock()
	a.pending = nil
	a.mu.Unlock()
}

// ConfirmDelete removes the staged transaction and clears the stage.
// It reports whether a transaction was removed; with nothing staged it does nothing.
func (a *App) ConfirmDelete(ctx context.Context) (bool, error) {
	a.mu.Lock()
	if a.pending == nil {
		a.mu.Unlock()
		return false, nil
	}
	id := *a.pending
	a.pending = nil

	tx, _ := a.ledger.Get(id)
	removed, err := a.ledger.Remove(ctx, id)
	if !removed {
		a.mu.Unlock()
		return false, err
	}

	var n notify.Notification
	if err != nil {
		n = a.board.Show(notify.Warning, MsgSaveFailed)
	} else {
		n = a.board.Show(notify.Info, MsgDeleted)
	}
	views := a.viewsLocked()
	a.mu.Unlock()

	a.logger.Info("Transaction deleted", log.FieldTransactionID, id, log.FieldOperation, log.OpDelete)
	a.publish(ctx, amqp.TransactionDeleted, tx)
	a.broadcast(views, &n)
	return true, err
}

// Export renders the active period as CSV and returns it with its file name.
func (a *App) Export() ([]byte, string, error) {
	a.mu.Lock()
	now := a.now()
	txns := period.Filter(a.ledger.List(), a.period, now)
	data, err := export.ToCSV(txns)
	var n notify.Notification
	if err != nil {
		n = a.board.Show(notify.Error, Message(err))
	} else {
		n = a.board.Show(notify.Success, MsgExported)
	}
	views := a.viewsLocked()
	a.mu.Unlock()

	a.broadcast(views, &n)
	if err != nil {
		return nil, "", err
	}
	a.logger.Info("Exported transactions", log.FieldOperation, log.OpExport, log.FieldCount, len(txns))
	return data, export.FileName(now), nil
}

// Notify shows a message on the board and pushes it to subscribers.
func (a *App) Notify(level notify.Level, message string) notify.Notification {
	n := a.board.Show(level, message)
	a.broadcast(a.Views(), &n)
	return n
}

// Notification returns the visible notification, if any.
func (a *App) Notification() (notify.Notification, bool) {
	return a.board.Current()
}

// DismissNotification hides the visible notification before its timer fires.
func (a *App) DismissNotification() {
	a.board.Dismiss()
}

// NotificationDuration is how long each notification stays visible.
func (a *App) NotificationDuration() time.Duration {
	return a.board.Duration()
}

// Subscribe registers fn to receive every update. Call the returned func to stop.
// fn runs on the goroutine that made the change and must not block.
func (a *App) Subscribe(fn func(Update)) func() {
	a.subsMu.Lock()
	defer a.subsMu.Unlock()
	id := a.nextSub
	a.nextSub++
	a.subs[id] = fn
	return func() {
		a.subsMu.Lock()
		delete(a.subs, id)
		a.subsMu.Unlock()
	}
}

func (a *App) broadcast(views report.Views, n *notify.Notification) {
	a.subsMu.Lock()
	fns := make([]func(Update), 0, len(a.subs))
	for _, fn := range a.subs {
		fns = append(fns, fn)
	}
	a.subsMu.Unlock()

	u := Update{Views: views, Notification: n}
	for _, fn := range fns {
		fn(u)
	}
}

// publish logs failures and never fails the operation.
func (a *App) publish(ctx context.Context, t amqp.EventType, tx core.Transaction) {
	if a.publisher == nil {
		return
	}
	if err := a.publisher.PublishLedgerEvent(ctx, amqp.NewLedgerEvent(t, tx, a.now())); err != nil {
		a.logger.Warn("Failed to publish ledger event",
			"type", t,
			log.FieldTransactionID, tx.ID,
			log.FieldError, err)
	}
}

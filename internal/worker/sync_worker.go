// Package worker keeps a spreadsheet in step with the ledger by replaying
// ledger events consumed from the broker.
package worker

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"finanze/internal/amqp"
	"finanze/internal/core"
	"finanze/internal/log"
	"finanze/internal/sheets"
)

// SyncWorker mirrors the ledger in memory and rewrites the sheet after every
// event that changes the mirror.
type SyncWorker struct {
	sheets sheets.TransactionWriter
	logger *log.Logger

	mu     sync.Mutex
	mirror map[int64]core.Transaction
}

func NewSyncWorker(writer sheets.TransactionWriter, logger *log.Logger) *SyncWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &SyncWorker{
		sheets: writer,
		logger: logger.WithComponent(log.ComponentSheets),
		mirror: make(map[int64]core.Transaction),
	}
}

// StartupSync seeds the mirror with the ledger as it is on disk and writes it
// once, so the sheet is current before the first event arrives. An empty
// ledger clears the sheet down to its header.
func (w *SyncWorker) StartupSync(ctx context.Context, txns []core.Transaction) error {
	w.mu.Lock()
	for _, tx := range txns {
		w.mirror[tx.ID] = tx
	}
	w.mu.Unlock()

	w.logger.InfoContext(ctx, "Startup sync", log.FieldCount, len(txns), log.FieldOperation, log.OpStartup)
	return w.flush(ctx)
}

// HandleEvent applies one ledger event. Events that leave the sheet rows
// unchanged (a redelivered create, a delete of an unknown id) do not touch the sheet.
func (w *SyncWorker) HandleEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	tx, err := ev.Transaction()
	if err != nil {
		return fmt.Errorf("decode event %d: %w", ev.TransactionID, err)
	}

	w.mu.Lock()
	changed := false
	switch ev.Type {
	case amqp.TransactionCreated:
		if old, ok := w.mirror[tx.ID]; !ok || !sameRow(old, tx) {
			w.mirror[tx.ID] = tx
			changed = true
		}
	case amqp.TransactionDeleted:
		if _, ok := w.mirror[tx.ID]; ok {
			delete(w.mirror, tx.ID)
			changed = true
		}
	default:
		w.mu.Unlock()
		return fmt.Errorf("unknown event type %q", ev.Type)
	}
	w.mu.Unlock()

	if !changed {
		w.logger.DebugContext(ctx, "Event already applied", log.FieldTransactionID, tx.ID, "type", ev.Type)
		return nil
	}
	return w.flush(ctx)
}

// Len returns the number of mirrored transactions.
func (w *SyncWorker) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.mirror)
}

func (w *SyncWorker) flush(ctx context.Context) error {
	txns := w.snapshot()
	var (
		ref string
		err error
	)
	if len(txns) == 0 {
		ref, err = w.sheets.Clear(ctx)
	} else {
		ref, err = w.sheets.WriteTransactions(ctx, txns)
	}
	if err != nil {
		return fmt.Errorf("write sheet: %w", err)
	}
	w.logger.InfoContext(ctx, "Sheet synced",
		"sheets_ref", ref,
		log.FieldCount, len(txns),
		log.FieldOperation, log.OpExport)
	return nil
}

// sameRow compares the fields a sheet row shows. CreatedAt is not carried by
// events.
func sameRow(a, b core.Transaction) bool {
	return a.ID == b.ID &&
		a.Kind == b.Kind &&
		a.Category == b.Category &&
		a.Date.Equal(b.Date.Time) &&
		a.Amount == b.Amount
}

// snapshot returns the mirror in insertion order, which ids preserve.
func (w *SyncWorker) snapshot() []core.Transaction {
	w.mu.Lock()
	defer w.mu.Unlock()
	txns := make([]core.Transaction, 0, len(w.mirror))
	for _, tx := range w.mirror {
		txns = append(txns, tx)
	}
	sort.Slice(txns, func(i, j int) bool { return txns[i].ID < txns[j].ID })
	return txns
}

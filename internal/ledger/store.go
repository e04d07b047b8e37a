// Package ledger owns the ordered list of transactions and the id counter,
// and persists both through a storage.BlobStore after every mutation.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"finanze/internal/core"
	"finanze/internal/log"
	"finanze/internal/storage"
)

// DefaultKey is the blob key holding the ledger.
const DefaultKey = "financeTransactions"

var (
	ErrPersistenceRead  = errors.New("persistence read failure")
	ErrPersistenceWrite = errors.New("persistence write failure")
)

// Options configure Load. Zero values pick the defaults.
type Options struct {
	Key    string
	Clock  func() time.Time
	Logger *log.Logger
}

// Store is the in-memory ledger. It is not safe for concurrent use.
type Store struct {
	blobs  storage.BlobStore
	key    string
	now    func() time.Time
	logger *log.Logger

	txns   []core.Transaction
	nextID int64
}

// CounterKey returns the blob key holding the next id for a ledger key.
func CounterKey(key string) string {
	return key + ".nextId"
}

// Load reads the ledger from blobs.
//
// The returned Store is always usable. When the persisted data cannot be
// read or parsed the ledger starts empty and the error, wrapping
// ErrPersistenceRead, is returned alongside it. A missing blob is not an error.
func Load(ctx context.Context, blobs storage.BlobStore, opts Options) (*Store, error) {
	s := &Store{
		blobs:  blobs,
		key:    opts.Key,
		now:    opts.Clock,
		logger: opts.Logger,
		nextID: 1,
	}
	if s.key == "" {
		s.key = DefaultKey
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = log.New(log.DefaultConfig())
	}
	s.logger = s.logger.WithComponent(log.ComponentLedger)

	readErr := s.loadTransactions(ctx)
	s.loadCounter(ctx)

	s.logger.Info("Ledger loaded",
		log.FieldKey, s.key,
		log.FieldCount, len(s.txns),
		"next_id", s.nextID)
	return s, readErr
}

func (s *Store) loadTransactions(ctx context.Context) error {
	data, err := s.blobs.Load(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		s.logger.Error("Failed to read ledger, starting empty", log.FieldKey, s.key, log.FieldError, err)
		return fmt.Errorf("%w: %w", ErrPersistenceRead, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}

	decoded, err := Decode(data)
	if err != nil {
		s.logger.Error("Failed to parse ledger, starting empty", log.FieldKey, s.key, log.FieldError, err)
		return fmt.Errorf("%w: %w", ErrPersistenceRead, err)
	}
	for _, skipped := range decoded.Skipped {
		s.logger.Warn("Skipping invalid ledger record", log.FieldKey, s.key, log.FieldError, skipped)
	}

	s.txns = decoded.Transactions
	for _, tx := range s.txns {
		if tx.ID >= s.nextID {
			s.nextID = tx.ID + 1
		}
	}
	return nil
}

// loadCounter raises nextID to the persisted counter so ids of deleted
// transactions are not handed out again after a restart.
func (s *Store) loadCounter(ctx context.Context) {
	data, err := s.blobs.Load(ctx, CounterKey(s.key))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("Failed to read id counter", log.FieldKey, CounterKey(s.key), log.FieldError, err)
		}
		return
	}
	n, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		s.logger.Warn("Ignoring malformed id counter", log.FieldKey, CounterKey(s.key), log.FieldError, err)
		return
	}
	if n > s.nextID {
		s.nextID = n
	}
}

// Add validates the draft and appends the resulting transaction.
//
// Validation errors are the core sentinels and leave the ledger untouched.
// If persisting fails the transaction is still returned, already applied in
// memory, together with an error wrapping ErrPersistenceWrite.
func (s *Store) Add(ctx context.Context, draft core.Draft) (core.Transaction, error) {
	tx, err := draft.Parse()
	if err != nil {
		return core.Transaction{}, err
	}

	tx.ID = s.nextID
	s.nextID++
	tx.CreatedAt = s.now().UTC()
	s.txns = append(s.txns, tx)

	s.logger.Debug("Transaction added", log.NewFields().WithTransaction(tx).WithOperation(log.OpCreate).ToSlice()...)
	return tx, s.persist(ctx)
}

// Remove deletes the transaction with the given id. It reports whether a
// transaction was removed; an unknown id changes nothing and saves nothing.
func (s *Store) Remove(ctx context.Context, id int64) (bool, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return false, nil
	}
	s.txns = append(s.txns[:idx:idx], s.txns[idx+1:]...)

	s.logger.Debug("Transaction removed", log.FieldTransactionID, id, log.FieldOperation, log.OpDelete)
	return true, s.persist(ctx)
}

// Get returns the transaction with the given id.
func (s *Store) Get(id int64) (core.Transaction, bool) {
	idx := s.indexOf(id)
	if idx < 0 {
		return core.Transaction{}, false
	}
	return s.txns[idx], true
}

// List returns a snapshot of the ledger in insertion order.
func (s *Store) List() []core.Transaction {
	out := make([]core.Transaction, len(s.txns))
	copy(out, s.txns)
	return out
}

func (s *Store) Len() int { return len(s.txns) }

// NextID is the id the next added transaction will receive.
func (s *Store) NextID() int64 { return s.nextID }

func (s *Store) indexOf(id int64) int {
	for i, tx := range s.txns {
		if tx.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) persist(ctx context.Context) error {
	data, err := Encode(s.txns)
	if err != nil {
		return s.writeFailed(s.key, err)
	}
	if err := s.blobs.Save(ctx, s.key, data); err != nil {
		return s.writeFailed(s.key, err)
	}
	counterKey := CounterKey(s.key)
	if err := s.blobs.Save(ctx, counterKey, []byte(strconv.FormatInt(s.nextID, 10))); err != nil {
		return s.writeFailed(counterKey, err)
	}
	return nil
}

func (s *Store) writeFailed(key string, err error) error {
	s.logger.Error("Failed to save ledger", log.FieldKey, key, log.FieldOperation, log.OpSave, log.FieldError, err)
	return fmt.Errorf("%w: %w", ErrPersistenceWrite, err)
}

package amqp

import (
	"encoding/json"
	"time"

	"finanze/internal/core"
)

// EventType names a ledger change.
type EventType string

const (
	TransactionCreated EventType = "transaction.created"
	TransactionDeleted EventType = "transaction.deleted"
)

// LedgerEvent describes one change to the ledger. It carries the whole
// transaction so consumers never need to read the ledger back.
type LedgerEvent struct {
	Type          EventType `json:"type"`
	TransactionID int64     `json:"transaction_id"`
	Kind          core.Kind `json:"kind"`
	Category      string    `json:"category,omitempty"`
	Date          string    `json:"date"`
	AmountCents   int64     `json:"amount_cents"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewLedgerEvent builds the event for tx.
func NewLedgerEvent(t EventType, tx core.Transaction, at time.Time) *LedgerEvent {
	return &LedgerEvent{
		Type:          t,
		TransactionID: tx.ID,
		Kind:          tx.Kind,
		Category:      tx.Category,
		Date:          tx.Date.String(),
		AmountCents:   tx.Amount.Cents,
		Timestamp:     at,
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventFromJSON creates an event from JSON bytes
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var msg LedgerEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Transaction rebuilds the transaction carried by the event.
func (m *LedgerEvent) Transaction() (core.Transaction, error) {
	date, err := core.ParseDate(m.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		ID:       m.TransactionID,
		Kind:     m.Kind,
		Category: m.Category,
		Date:     date,
		Amount:   core.Money{Cents: m.AmountCents},
	}, nil
}

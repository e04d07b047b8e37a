package ledger

import (
	"encoding/json"
	"fmt"
	"time"

	"finanze/internal/core"
)

// record is the persisted shape of a transaction.
//
// The Italian field names are read for ledgers written by the old browser
// app (tipo, categoria, data, importo, timestamp); they are never written.
type record struct {
	ID        int64       `json:"id"`
	Kind      string      `json:"kind,omitempty"`
	Category  string      `json:"category,omitempty"`
	Date      string      `json:"date,omitempty"`
	Amount    *core.Money `json:"amount,omitempty"`
	CreatedAt *time.Time  `json:"createdAt,omitempty"`

	LegacyKind      string      `json:"tipo,omitempty"`
	LegacyCategory  *string     `json:"categoria,omitempty"`
	LegacyDate      string      `json:"data,omitempty"`
	LegacyAmount    *core.Money `json:"importo,omitempty"`
	LegacyTimestamp *time.Time  `json:"timestamp,omitempty"`
}

// Decoded is the outcome of decoding a persisted ledger.
type Decoded struct {
	Transactions []core.Transaction
	// Skipped holds one error per record that was dropped.
	Skipped []error
}

// Encode serialises transactions as a JSON array in the given order.
func Encode(txns []core.Transaction) ([]byte, error) {
	records := make([]record, 0, len(txns))
	for _, tx := range txns {
		amount := tx.Amount
		var createdAt *time.Time
		if !tx.CreatedAt.IsZero() {
			ts := tx.CreatedAt
			createdAt = &ts
		}
		records = append(records, record{
			ID:        tx.ID,
			Kind:      string(tx.Kind),
			Category:  tx.Category,
			Date:      tx.Date.String(),
			Amount:    &amount,
			CreatedAt: createdAt,
		})
	}
	return json.Marshal(records)
}

// Decode parses a JSON array of transactions.
//
// A malformed document is an error. Individual records that fail validation
// or repeat an earlier id are skipped and reported in Decoded.Skipped.
func Decode(data []byte) (Decoded, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Decoded{}, fmt.Errorf("decode ledger: %w", err)
	}

	out := Decoded{Transactions: make([]core.Transaction, 0, len(raw))}
	seen := make(map[int64]struct{}, len(raw))
	for i, msg := range raw {
		tx, err := decodeRecord(msg)
		if err != nil {
			out.Skipped = append(out.Skipped, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		if _, dup := seen[tx.ID]; dup {
			out.Skipped = append(out.Skipped, fmt.Errorf("record %d: duplicate id %d", i, tx.ID))
			continue
		}
		seen[tx.ID] = struct{}{}
		out.Transactions = append(out.Transactions, tx)
	}
	return out, nil
}

func decodeRecord(msg json.RawMessage) (core.Transaction, error) {
	var r record
	if err := json.Unmarshal(msg, &r); err != nil {
		return core.Transaction{}, err
	}
	if r.ID <= 0 {
		return core.Transaction{}, fmt.Errorf("invalid id %d", r.ID)
	}

	kindStr := firstNonEmpty(r.Kind, r.LegacyKind)
	kind, err := core.ParseKind(kindStr)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w %q", err, kindStr)
	}

	date, err := core.ParseDate(firstNonEmpty(r.Date, r.LegacyDate))
	if err != nil {
		return core.Transaction{}, err
	}

	amount := r.Amount
	if amount == nil {
		amount = r.LegacyAmount
	}
	if amount == nil {
		return core.Transaction{}, core.ErrInvalidAmount
	}

	category := r.Category
	if category == "" && r.LegacyCategory != nil {
		category = *r.LegacyCategory
	}
	if kind == core.Income {
		category = ""
	}

	tx := core.Transaction{
		ID:       r.ID,
		Kind:     kind,
		Category: category,
		Date:     date,
		Amount:   *amount,
	}
	switch {
	case r.CreatedAt != nil:
		tx.CreatedAt = *r.CreatedAt
	case r.LegacyTimestamp != nil:
		tx.CreatedAt = *r.LegacyTimestamp
	}

	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

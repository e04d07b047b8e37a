// Package memory is an in-process sheet used for dry runs and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"finanze/internal/core"
	"finanze/internal/sheets"
)

var _ sheets.TransactionWriter = (*Sheet)(nil)

type Sheet struct {
	mu     sync.Mutex
	name   string
	values [][]any
	writes int
}

func New(name string) *Sheet {
	return &Sheet{name: name}
}

// WriteTransactions replaces the sheet content and returns the written range.
func (s *Sheet) WriteTransactions(_ context.Context, txns []core.Transaction) (string, error) {
	values, err := sheets.Values(txns)
	if err != nil {
		return "", err
	}
	return s.replace(values), nil
}

// Clear replaces the sheet content with the header row.
func (s *Sheet) Clear(_ context.Context) (string, error) {
	return s.replace(sheets.HeaderValues()), nil
}

func (s *Sheet) replace(values [][]any) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = values
	s.writes++
	return fmt.Sprintf("mem:%s!A1:D%d", s.name, len(values))
}

// Values returns a copy of the current content.
func (s *Sheet) Values() [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]any, len(s.values))
	for i, row := range s.values {
		out[i] = append([]any(nil), row...)
	}
	return out
}

func (s *Sheet) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

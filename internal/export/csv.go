// Package export turns a filtered set of transactions into a CSV document.
package export

import (
	"bytes"
	"errors"
	"strings"
	"time"

	"finanze/internal/core"
)

// ErrEmptyExportSet is returned when there is nothing to export.
var ErrEmptyExportSet = errors.New("nessuna transazione da esportare")

// ContentType is the media type of the CSV document.
const ContentType = "text/csv; charset=utf-8"

// Header is the first row of every export.
var Header = []string{"Data", "Tipo", "Categoria", "Importo"}

// Rows returns the header followed by one row per transaction, unquoted.
func Rows(txns []core.Transaction) ([][]string, error) {
	if len(txns) == 0 {
		return nil, ErrEmptyExportSet
	}
	rows := make([][]string, 0, len(txns)+1)
	rows = append(rows, Header)
	for _, tx := range txns {
		rows = append(rows, []string{
			tx.Date.String(),
			tx.Kind.Label(),
			tx.Category,
			tx.Amount.String(),
		})
	}
	return rows, nil
}

// ToCSV renders txns with every field double quoted and rows separated by "\n".
// encoding/csv only quotes when needed, so quoting is done here.
func ToCSV(txns []core.Transaction) ([]byte, error) {
	rows, err := Rows(txns)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	for i, row := range rows {
		if i > 0 {
			buf.WriteByte('\n')
		}
		for j, field := range row {
			if j > 0 {
				buf.WriteByte(',')
			}
			buf.WriteByte('"')
			buf.WriteString(strings.ReplaceAll(field, `"`, `""`))
			buf.WriteByte('"')
		}
	}
	return buf.Bytes(), nil
}

// FileName is the download name for an export made on the given day.
func FileName(now time.Time) string {
	return "transazioni_" + core.DateOf(now).String() + ".csv"
}

package app

import (
	"errors"

	"finanze/internal/core"
	"finanze/internal/export"
	"finanze/internal/ledger"
	"finanze/internal/period"
)

// User-facing messages, in Italian.
const (
	MsgAdded         = "Transazione aggiunta con successo!"
	MsgDeleted       = "Transazione eliminata"
	MsgExported      = "Esportazione completata!"
	MsgInvalidAmount = "Inserisci un importo valido maggiore di zero"
	MsgNoCategory    = "Seleziona una categoria per la spesa"
	MsgInvalidDate   = "Inserisci una data valida"
	MsgInvalidKind   = "Seleziona il tipo di transazione"
	MsgSaveFailed    = "Errore nel salvataggio dei dati"
	MsgLoadFailed    = "Errore nel caricamento dei dati"
	MsgNothingToSend = "Nessuna transazione da esportare"
	MsgNotFound      = "Transazione non trovata"
	MsgUnknownPeriod = "Periodo non valido"
	MsgGeneric       = "Si è verificato un errore"
)

// Message returns the text shown to the user for err.
func Message(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidAmount):
		return MsgInvalidAmount
	case errors.Is(err, core.ErrMissingCategory):
		return MsgNoCategory
	case errors.Is(err, core.ErrInvalidDate):
		return MsgInvalidDate
	case errors.Is(err, core.ErrInvalidKind):
		return MsgInvalidKind
	case errors.Is(err, ledger.ErrPersistenceWrite):
		return MsgSaveFailed
	case errors.Is(err, ledger.ErrPersistenceRead):
		return MsgLoadFailed
	case errors.Is(err, export.ErrEmptyExportSet):
		return MsgNothingToSend
	case errors.Is(err, ErrTransactionNotFound):
		return MsgNotFound
	case errors.Is(err, period.ErrUnknownPeriod):
		return MsgUnknownPeriod
	default:
		return MsgGeneric
	}
}

// IsValidation reports whether err is a user input error.
func IsValidation(err error) bool {
	return errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrMissingCategory) ||
		errors.Is(err, core.ErrInvalidDate) ||
		errors.Is(err, core.ErrInvalidKind)
}

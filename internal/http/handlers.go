package http

import (
	"errors"
	"net/http"
	"time"

	"finanze/internal/app"
	"finanze/internal/export"
	"finanze/internal/ledger"
	"finanze/internal/log"
	"finanze/internal/notify"
	"finanze/internal/period"
	"finanze/internal/report"
)

type indexData struct {
	Views        report.Views
	Periods      []period.Period
	Categories   []string
	Today        string
	Notification *notificationJSON
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		ErrorResponse(http.StatusInternalServerError, "templates not loaded").Write(w)
		return
	}

	data := indexData{
		Views:      s.app.Views(),
		Periods:    period.Periods(),
		Categories: report.Categories,
		Today:      s.app.Today().String(),
	}
	// a notification raised just before a reload is still on the board
	if n, ok := s.app.Notification(); ok {
		body := notificationBody(n)
		data.Notification = &body
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Index template execution failed",
			log.FieldError, err, "template", "index.html")
	}
}

func (s *Server) handleViews(w http.ResponseWriter, r *http.Request) {
	NewHTMXResponse().BodyJSON(s.app.Views()).Write(w)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txns := s.app.List()
	items := make([]report.Item, 0, len(txns))
	for _, tx := range txns {
		items = append(items, report.NewItem(tx))
	}
	NewHTMXResponse().BodyJSON(items).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		logger.WarnContext(ctx, "Malformed request body", log.FieldError, err)
		BadRequestError("Formato richiesta non valido").Write(w)
		return
	}

	tx, err := s.app.Add(ctx, parser.Draft())
	switch {
	case err == nil:
		s.withNotification(NewHTMXResponse().Status(http.StatusCreated)).
			TriggerLedgerChanged(tx.ID).
			TriggerFormReset().
			BodyJSON(report.NewItem(tx)).
			Write(w)
	case errors.Is(err, ledger.ErrPersistenceWrite):
		logger.ErrorContext(ctx, "Transaction kept in memory but not saved",
			log.NewFields().WithTransaction(tx).WithError(err).ToSlice()...)
		s.withNotification(NewHTMXResponse()).
			TriggerLedgerChanged(tx.ID).
			TriggerFormReset().
			BodyJSON(report.NewItem(tx)).
			Write(w)
	case app.IsValidation(err):
		s.withNotification(UnprocessableEntityError(app.Message(err))).Write(w)
	default:
		logger.ErrorContext(ctx, "Failed to add transaction", log.FieldError, err)
		InternalServerError(app.Message(err)).Write(w)
	}
}

func (s *Server) handleRequestDelete(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r)
	if err != nil {
		BadRequestError("Identificativo non valido").Write(w)
		return
	}

	tx, err := s.app.RequestDelete(id)
	if err != nil {
		NotFoundError(app.Message(err)).
			TriggerNotification(notify.Error, app.Message(err), s.notifyMs()).
			Write(w)
		return
	}
	NewHTMXResponse().
		TriggerDeletePending(id).
		BodyJSON(report.NewItem(tx)).
		Write(w)
}

type deleteResult struct {
	Removed bool `json:"removed"`
}

func (s *Server) handleConfirmDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, staged := s.app.PendingDelete()

	removed, err := s.app.ConfirmDelete(ctx)
	if err != nil && !errors.Is(err, ledger.ErrPersistenceWrite) {
		log.FromContext(ctx).ErrorContext(ctx, "Failed to delete transaction", log.FieldError, err)
		InternalServerError(app.Message(err)).Write(w)
		return
	}
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Transaction removed in memory but not saved",
			log.FieldTransactionID, id, log.FieldError, err)
	}

	b := NewHTMXResponse()
	if removed {
		b = s.withNotification(b).TriggerLedgerChanged(id)
	} else if staged {
		// removed by someone else in the meantime
		b.TriggerNotification(notify.Error, app.MsgNotFound, s.notifyMs())
	}
	b.BodyJSON(deleteResult{Removed: removed}).Write(w)
}

func (s *Server) handleCancelDelete(w http.ResponseWriter, r *http.Request) {
	s.app.CancelDelete()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetPeriod(w http.ResponseWriter, r *http.Request) {
	p, err := ParsePeriod(r)
	if err != nil {
		BadRequestError(app.MsgUnknownPeriod).Write(w)
		return
	}
	views := s.app.SetPeriod(p)
	NewHTMXResponse().
		TriggerPeriodChanged(p.String()).
		BodyJSON(views).
		Write(w)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data, name, err := s.app.Export()
	if errors.Is(err, export.ErrEmptyExportSet) {
		s.withNotification(NotFoundError(app.Message(err))).Write(w)
		return
	}
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Export failed", log.FieldOperation, log.OpExport, log.FieldError, err)
		InternalServerError(app.Message(err)).Write(w)
		return
	}

	s.withNotification(NewHTMXResponse()).
		Header("Content-Type", export.ContentType).
		Header("Content-Disposition", `attachment; filename="`+name+`"`).
		Body(data).
		Write(w)
}

func (s *Server) handleNotification(w http.ResponseWriter, r *http.Request) {
	n, ok := s.app.Notification()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	NewHTMXResponse().BodyJSON(notificationBody(n)).Write(w)
}

func (s *Server) handleDismissNotification(w http.ResponseWriter, r *http.Request) {
	s.app.DismissNotification()
	w.WriteHeader(http.StatusNoContent)
}

type notificationJSON struct {
	notify.Notification
	Duration int `json:"duration"`
}

func notificationBody(n notify.Notification) notificationJSON {
	return notificationJSON{Notification: n, Duration: n.DurationMs()}
}

// withNotification copies the visible board notification into the HX-Trigger header.
func (s *Server) withNotification(b *HTMXResponseBuilder) *HTMXResponseBuilder {
	if n, ok := s.app.Notification(); ok {
		b.TriggerBoardNotification(n)
	}
	return b
}

func (s *Server) notifyMs() int {
	return int(s.app.NotificationDuration() / time.Millisecond)
}

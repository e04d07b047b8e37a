package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"finanze/internal/app"
	"finanze/internal/log"
)

// SSE event names.
const (
	eventViews        = "views"
	eventNotification = "notification"
)

// handleStream pushes the current views and every later update as Server-Sent Events.
// Slow clients drop intermediate updates; the next one carries the full state.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rc := http.NewResponseController(w)

	updates := make(chan app.Update, 8)
	unsubscribe := s.app.Subscribe(func(u app.Update) {
		select {
		case updates <- u:
		default:
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, eventViews, s.app.Views()); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		log.FromContext(ctx).WarnContext(ctx, "Streaming not supported", log.FieldError, err)
		return
	}

	heartbeat := time.NewTicker(s.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.closing:
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		case u := <-updates:
			if err := writeEvent(w, eventViews, u.Views); err != nil {
				return
			}
			if u.Notification != nil {
				if err := writeEvent(w, eventNotification, notificationBody(*u.Notification)); err != nil {
					return
				}
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	return err
}

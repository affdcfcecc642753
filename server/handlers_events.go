package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jrsteele09/lia-server/events"
	"github.com/rs/zerolog/log"
)

// HeartbeatInterval is the interval between SSE heartbeat comments.
const HeartbeatInterval = 15 * time.Second

// EventsHandler streams one event channel as Server-Sent Events. The
// subscription first replays the channel's recent history, then follows live
// events until the client goes away or the bus closes.
//
// SSE format:
//
//	id: {event id}
//	event: {channel}
//	data: {payload json}
//
// A heartbeat comment ": ping\n\n" is sent every heartbeat interval.
func (s *Server) EventsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeJSONError(w, "server_error", "streaming not supported", http.StatusInternalServerError)
			return
		}

		channel := r.PathValue("event")
		sub := s.bus.Subscribe(channel)
		defer sub.Close()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		log.Debug().Str("channel", channel).Msg("event stream opened")
		s.streamEvents(r.Context(), w, flusher, sub)
		log.Debug().Str("channel", channel).Msg("event stream closed")
	}
}

func (s *Server) streamEvents(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, sub events.Subscription) {
	heartbeat := time.NewTicker(s.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case evt, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := writeSSEEvent(w, evt); err != nil {
				return
			}
			flusher.Flush()

		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// writeSSEEvent writes a single event in SSE format. Payloads are compact
// JSON so they always fit on one data line.
func writeSSEEvent(w http.ResponseWriter, evt events.Event) error {
	_, err := fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", evt.ID, evt.Channel, evt.Payload)
	return err
}

package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/finbridge/aqs/internal/events"
)

// streamBuffer is how many events a subscriber may lag before drops start.
const streamBuffer = 100

// heartbeatInterval keeps idle connections alive through proxies.
const heartbeatInterval = 30 * time.Second

// EventsStreamHandler streams gateway telemetry over Server-Sent Events.
// Clients narrow the stream with ?types=cache.hit,breaker.state; without the
// parameter they get everything.
type EventsStreamHandler struct {
	bus *events.Bus
	log zerolog.Logger
}

// NewEventsStreamHandler creates the SSE handler.
func NewEventsStreamHandler(bus *events.Bus, log zerolog.Logger) *EventsStreamHandler {
	return &EventsStreamHandler{
		bus: bus,
		log: log.With().Str("component", "events_stream").Logger(),
	}
}

// ServeHTTP handles GET /api/events/stream.
func (h *EventsStreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	wanted := parseTypeFilter(r.URL.Query().Get("types"))
	h.log.Info().Msg("Client connected to event stream")

	// Buffered so a slow client drops events instead of blocking publishers.
	feed := make(chan *events.Event, streamBuffer)
	unsubscribe := h.bus.SubscribeAll(func(event *events.Event) {
		if wanted != nil && !wanted[event.Type] {
			return
		}
		select {
		case feed <- event:
		default:
			h.log.Warn().
				Str("event_type", string(event.Type)).
				Msg("Event channel full, dropping event")
		}
	})
	defer unsubscribe()

	h.send(w, map[string]interface{}{
		"type":    "connected",
		"message": "Connected to event stream",
	})
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			h.log.Info().Msg("Client disconnected from event stream")
			return

		case event := <-feed:
			h.send(w, map[string]interface{}{
				"type":      string(event.Type),
				"timestamp": event.Timestamp.Format(time.RFC3339),
				"data":      event.Data,
			})
			flusher.Flush()

		case <-heartbeat.C:
			h.send(w, map[string]interface{}{
				"type":      "heartbeat",
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
			flusher.Flush()
		}
	}
}

// parseTypeFilter turns the comma-separated ?types= value into a set. A nil
// set means no filtering.
func parseTypeFilter(raw string) map[events.EventType]bool {
	if raw == "" {
		return nil
	}
	wanted := make(map[events.EventType]bool)
	for _, t := range strings.Split(raw, ",") {
		wanted[events.EventType(strings.TrimSpace(t))] = true
	}
	return wanted
}

func (h *EventsStreamHandler) send(w http.ResponseWriter, payload map[string]interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to marshal event")
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
}

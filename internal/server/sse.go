package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// streamRingSize is the number of recent events kept in memory for
	// Last-Event-ID reconnection support.
	streamRingSize = 1000

	// keepaliveInterval is how often keepalive comments are sent to
	// prevent connection timeouts.
	keepaliveInterval = 15 * time.Second
)

// streamEvent is the envelope fanned out to SSE clients and kept in the
// replay ring. Seq doubles as the SSE id field.
type streamEvent struct {
	Seq      uint64 // monotonically increasing sequence number
	Topic    string
	EntityID string
	Data     json.RawMessage
}

// streamFilter narrows which events a client receives. The zero value
// matches everything.
type streamFilter struct {
	topics   []string // NATS-style topic patterns; empty matches all
	entityID string   // exact entity match; empty matches all
}

func (f streamFilter) matches(evt *streamEvent) bool {
	if f.entityID != "" && f.entityID != evt.EntityID {
		return false
	}
	if len(f.topics) == 0 {
		return true
	}
	for _, pattern := range f.topics {
		if matchTopicPattern(pattern, evt.Topic) {
			return true
		}
	}
	return false
}

// sseHub fans out events from recordAndPublish to connected SSE clients.
// It maintains an in-memory ring for Last-Event-ID reconnection.
type sseHub struct {
	mu      sync.RWMutex
	clients map[*sseClient]struct{}
	seq     atomic.Uint64

	ringMu  sync.RWMutex
	ring    [streamRingSize]streamEvent
	ringPos int // next write position (wraps around)
	ringLen int // number of valid entries (up to streamRingSize)
}

// sseClient represents a single connected SSE consumer.
type sseClient struct {
	filter streamFilter
	ch     chan *streamEvent // buffered channel for event delivery
}

func newSSEHub() *sseHub {
	return &sseHub{
		clients: make(map[*sseClient]struct{}),
	}
}

// broadcast assigns the event a sequence number, stores it in the replay
// ring, and fans it out to every client whose filter matches.
func (h *sseHub) broadcast(evt streamEvent) {
	evt.Seq = h.seq.Add(1)

	h.ringMu.Lock()
	h.ring[h.ringPos] = evt
	h.ringPos = (h.ringPos + 1) % streamRingSize
	if h.ringLen < streamRingSize {
		h.ringLen++
	}
	h.ringMu.Unlock()

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.filter.matches(&evt) {
			select {
			case c.ch <- &evt:
			default:
				// Drop if client is slow to avoid blocking the publisher.
			}
		}
	}
}

// subscribe registers a new SSE client. Call unsubscribe when done.
func (h *sseHub) subscribe(filter streamFilter) *sseClient {
	c := &sseClient{
		filter: filter,
		ch:     make(chan *streamEvent, 64),
	}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

// unsubscribe removes a client from the hub.
func (h *sseHub) unsubscribe(c *sseClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// eventsSince returns buffered events with Seq > lastSeq, oldest first.
func (h *sseHub) eventsSince(lastSeq uint64) []*streamEvent {
	h.ringMu.RLock()
	defer h.ringMu.RUnlock()

	if h.ringLen == 0 {
		return nil
	}

	var result []*streamEvent

	// Walk the ring from oldest to newest.
	start := h.ringPos - h.ringLen
	if start < 0 {
		start += streamRingSize
	}
	for i := range h.ringLen {
		idx := (start + i) % streamRingSize
		evt := &h.ring[idx]
		if evt.Seq > lastSeq {
			result = append(result, evt)
		}
	}

	return result
}

// matchTopicPattern matches a dot-separated topic against a pattern.
// Supports "*" as a single-segment wildcard and ">" as a multi-segment
// suffix wildcard (NATS-style).
func matchTopicPattern(pattern, topic string) bool {
	if pattern == topic {
		return true
	}

	patParts := strings.Split(pattern, ".")
	topParts := strings.Split(topic, ".")

	for i, pp := range patParts {
		if pp == ">" {
			// ">" matches one or more remaining segments.
			return i < len(topParts)
		}
		if i >= len(topParts) {
			return false
		}
		if pp != "*" && pp != topParts[i] {
			return false
		}
	}

	return len(patParts) == len(topParts)
}

// handleEventStream handles GET /v1/events/stream (SSE endpoint).
// Query params: topics (comma-separated patterns) and entity (a single
// entity ID, e.g. to follow one scan).
func (s *ForgeServer) handleEventStream(w http.ResponseWriter, r *http.Request) {
	// Ensure response supports flushing (required for SSE).
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	filter := streamFilter{
		entityID: strings.TrimSpace(r.URL.Query().Get("entity")),
	}
	if q := r.URL.Query().Get("topics"); q != "" {
		for _, t := range strings.Split(q, ",") {
			t = strings.TrimSpace(t)
			if t != "" {
				filter.topics = append(filter.topics, t)
			}
		}
	}

	client := s.sseHub.subscribe(filter)
	defer s.sseHub.unsubscribe(client)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering.
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// If the client sent Last-Event-ID, replay buffered events.
	if lastIDStr := r.Header.Get("Last-Event-ID"); lastIDStr != "" {
		if lastSeq, err := strconv.ParseUint(lastIDStr, 10, 64); err == nil {
			for _, evt := range s.sseHub.eventsSince(lastSeq) {
				if client.filter.matches(evt) {
					writeSSEEvent(w, evt)
				}
			}
			flusher.Flush()
		}
	}

	// Stream events until client disconnects.
	ctx := r.Context()
	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-client.ch:
			writeSSEEvent(w, evt)
			flusher.Flush()
		case <-keepalive.C:
			// Send a comment line as keepalive.
			fmt.Fprintf(w, ":keepalive\n\n")
			flusher.Flush()
		}
	}
}

// writeSSEEvent writes a single SSE frame.
func writeSSEEvent(w http.ResponseWriter, evt *streamEvent) {
	fmt.Fprintf(w, "id:%d\n", evt.Seq)
	fmt.Fprintf(w, "event:%s\n", evt.Topic)
	fmt.Fprintf(w, "data:%s\n\n", evt.Data)
}

// broadcastEvent is called by recordAndPublish to fan out events to SSE clients.
func (s *ForgeServer) broadcastEvent(topic, entityID string, event any) {
	if s.sseHub == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Warn("failed to marshal event for SSE broadcast", "topic", topic, "error", err)
		return
	}
	s.sseHub.broadcast(streamEvent{Topic: topic, EntityID: entityID, Data: payload})
}

// Package server implements the forge HTTP/JSON API on top of a store.Store
// and an events.Publisher.
package server

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/alfredjeanlab/forge/internal/events"
	"github.com/alfredjeanlab/forge/internal/model"
	"github.com/alfredjeanlab/forge/internal/store"
)

// ForgeServer holds the handlers for the forge REST API.
type ForgeServer struct {
	store     store.Store
	publisher events.Publisher
	sseHub    *sseHub

	// AllowedScanRoots restricts which directories scans may be enqueued
	// against. Empty means any root is accepted.
	AllowedScanRoots []string
}

// NewForgeServer returns a new ForgeServer backed by the given store and publisher.
func NewForgeServer(s store.Store, p events.Publisher) *ForgeServer {
	return &ForgeServer{
		store:     s,
		publisher: p,
		sseHub:    newSSEHub(),
	}
}

// recordAndPublish persists an event to the store and publishes it to NATS.
// Both operations are best-effort; failures are logged but do not block the caller.
func (s *ForgeServer) recordAndPublish(ctx context.Context, topic, entityID, actor string, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Warn("failed to marshal event", "topic", topic, "entity_id", entityID, "error", err)
		return
	}
	if err := s.store.RecordEvent(ctx, &model.Event{
		Topic:    topic,
		EntityID: entityID,
		Actor:    actor,
		Payload:  payload,
	}); err != nil {
		slog.Warn("failed to record event", "topic", topic, "entity_id", entityID, "error", err)
	}
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		slog.Warn("failed to publish event", "topic", topic, "entity_id", entityID, "error", err)
	}
	s.broadcastEvent(topic, entityID, event)
}

// inputError indicates invalid user input.
// The HTTP layer maps this to 400.
type inputError string

func (e inputError) Error() string { return string(e) }

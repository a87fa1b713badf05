// Package sse holds the live-connection registry and the delivery service
// for server-sent event streams. The hub is the only structure mutated
// concurrently by request goroutines, stream teardown and delivery-pool
// workers; it is keyed by (category, user) with at most one emitter per key.
package sse

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/Apple-Square/moment-notification/internal/domain"
	"github.com/Apple-Square/moment-notification/internal/metrics"
)

// Hub is the in-process push channel registry. Lifetime is the process
// lifetime; it is never persisted.
type Hub struct {
	emitters sync.Map // "category:userID" -> *Emitter
	buffer   int
	count    atomic.Int64
}

// NewHub creates a Hub whose emitters buffer up to buffer frames each.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 32
	}
	return &Hub{buffer: buffer}
}

func channelKey(category domain.Category, userID string) string {
	return string(category) + ":" + userID
}

// Connect returns the live emitter for (category, userID), creating one
// if none exists. Idempotent: when two callers race, the first insertion
// wins and every other caller receives that same emitter with created ==
// false. A newly created emitter immediately has the one-shot connection
// handshake queued, so streams that would otherwise stay silent still
// carry traffic before any proxy idle timeout.
func (h *Hub) Connect(category domain.Category, userID string) (e *Emitter, created bool) {
	candidate := newEmitter(category, userID, h.buffer)
	actual, loaded := h.emitters.LoadOrStore(channelKey(category, userID), candidate)
	e = actual.(*Emitter)
	if loaded {
		return e, false
	}

	h.count.Add(1)
	metrics.SSEConnections.Inc()
	_ = e.push(Encode(domain.Event{
		Name: domain.EventConnection,
		Data: map[string]string{"status": "ok"},
	}))
	metrics.EventsSent.WithLabelValues(string(domain.EventConnection)).Inc()

	log.Debug().Str("category", string(category)).Str("user", userID).Msg("push channel opened")
	return e, true
}

// Remove unconditionally evicts and closes the channel for the key.
// Called on stream completion, idle timeout, write error and explicit
// disconnect; absent keys are a no-op.
func (h *Hub) Remove(category domain.Category, userID string) {
	v, ok := h.emitters.LoadAndDelete(channelKey(category, userID))
	if !ok {
		return
	}
	v.(*Emitter).Close()
	h.count.Add(-1)
	metrics.SSEConnections.Dec()
	log.Debug().Str("category", string(category)).Str("user", userID).Msg("push channel removed")
}

// Disconnect evicts the channel only while it still holds exactly this
// emitter. A stream handler unwinding after its emitter was evicted and
// a reconnect installed a fresh one must not tear down the successor.
// The handler's own emitter is closed either way.
func (h *Hub) Disconnect(category domain.Category, userID string, e *Emitter) {
	if h.emitters.CompareAndDelete(channelKey(category, userID), e) {
		h.count.Add(-1)
		metrics.SSEConnections.Dec()
		log.Debug().Str("category", string(category)).Str("user", userID).Msg("push channel removed")
	}
	e.Close()
}

// Send writes one event to the user's channel. A missing channel yields
// ErrChannelNotFound; a failed write evicts the channel and yields
// ErrChannelWriteFailed. Neither is retried — recovery is the client's
// reconnect plus replay.
func (h *Hub) Send(category domain.Category, userID string, ev domain.Event) error {
	v, ok := h.emitters.Load(channelKey(category, userID))
	if !ok {
		metrics.DeliveryFailures.WithLabelValues("not_found").Inc()
		return domain.ErrChannelNotFound
	}

	if err := v.(*Emitter).push(Encode(ev)); err != nil {
		h.Remove(category, userID)
		metrics.DeliveryFailures.WithLabelValues("write_failed").Inc()
		log.Warn().
			Str("category", string(category)).
			Str("user", userID).
			Str("event", string(ev.Name)).
			Msg("push write failed, channel torn down")
		return domain.ErrChannelWriteFailed
	}

	metrics.EventsSent.WithLabelValues(string(ev.Name)).Inc()
	return nil
}

// ConnectedCount returns the number of live push channels.
func (h *Hub) ConnectedCount() int {
	return int(h.count.Load())
}

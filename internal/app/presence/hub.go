/*
Package presence contains the real-time layer of the Pulsegram server.

This file defines the Hub, the single event loop that owns the Registry. Every
registry mutation and every fan-out runs on the Hub goroutine, so individual
operations never interleave; ordering is the order frames arrive on the inbox
channels.
*/
package presence

import (
	"github.com/rs/zerolog"

	"pulsegram/internal/pkg/logx"
)

const (
	// relayQueueSize bounds the domain-event inbox. REST handlers enqueue
	// without blocking; events beyond this backlog are dropped.
	relayQueueSize = 256
)

// announceFrame pairs an announce payload with the connection that sent it.
type announceFrame struct {
	client  *Client
	payload AnnouncePayload
}

// directFrame pairs a direct-message payload with the sending connection.
type directFrame struct {
	client  *Client
	payload DirectSendPayload
}

// Hub coordinates all live connections.
//
// It tracks attached connections, maintains the Registry of announced
// identities, broadcasts presence snapshots on every mutation, routes direct
// messages, and fans out domain events submitted by the REST layer.
type Hub struct {
	registry *Registry
	metrics  *Metrics

	// dedupePresence controls whether a user with several connections
	// appears once or once-per-connection in presence snapshots.
	dedupePresence bool

	// conns tracks every attached connection, announced or not.
	// Touched only by the Run goroutine.
	conns map[*Client]struct{}

	attach   chan *Client
	detach   chan *Client
	announce chan announceFrame
	direct   chan directFrame
	relay    chan []byte

	// stop signals the Run loop to terminate; done is closed when it has.
	stop chan struct{}
	done chan struct{}

	logger zerolog.Logger
}

// NewHub constructs a Hub. Call Run in its own goroutine before using it.
func NewHub(dedupePresence bool) *Hub {
	return &Hub{
		registry:       NewRegistry(),
		metrics:        &Metrics{},
		dedupePresence: dedupePresence,
		conns:          make(map[*Client]struct{}),
		attach:         make(chan *Client),
		detach:         make(chan *Client),
		announce:       make(chan announceFrame),
		direct:         make(chan directFrame),
		relay:          make(chan []byte, relayQueueSize),
		stop:           make(chan struct{}),
		done:           make(chan struct{}),
		logger:         logx.Logger().With().Str("component", "Hub").Logger(),
	}
}

// Run is the Hub's event loop. It exits when Shutdown is called, closing the
// send queue of every attached connection on the way out.
func (h *Hub) Run() {
	defer func() {
		for c := range h.conns {
			c.closeSend()
		}
		h.conns = nil

		close(h.done)
		h.logger.Info().Msg("Hub loop stopped.")
	}()

	h.logger.Info().Msg("Hub loop started.")

	for {
		select {
		case c := <-h.attach:
			h.conns[c] = struct{}{}
			h.logger.Debug().Int("total_conns", len(h.conns)).Msg("Connection attached.")

		case c := <-h.detach:
			h.handleDetach(c)

		case frame := <-h.announce:
			h.handleAnnounce(frame)

		case frame := <-h.direct:
			h.handleDirect(frame)

		case messageBytes := <-h.relay:
			h.fanOut(messageBytes)

		case <-h.stop:
			return
		}
	}
}

// Shutdown stops the Run loop and waits until it has fully exited.
func (h *Hub) Shutdown() {
	select {
	case <-h.stop:
	default:
		close(h.stop)
	}
	<-h.done
}

// Attach registers a freshly upgraded connection with the Hub. The connection
// stays invisible to presence until it announces an identity.
func (h *Hub) Attach(c *Client) {
	select {
	case h.attach <- c:
	case <-h.stop:
	}
}

// Detach hands a closed connection to the reconciler. Safe to call for
// connections that never announced or were already detached.
func (h *Hub) Detach(c *Client) {
	select {
	case h.detach <- c:
	case <-h.stop:
	}
}

// Announce submits an identity declaration for a connection.
func (h *Hub) Announce(c *Client, payload AnnouncePayload) {
	select {
	case h.announce <- announceFrame{client: c, payload: payload}:
	case <-h.stop:
	}
}

// Direct submits a direct message from a connection for routing.
func (h *Hub) Direct(c *Client, payload DirectSendPayload) {
	select {
	case h.direct <- directFrame{client: c, payload: payload}:
	case <-h.stop:
	}
}

// Relay accepts a domain event from the REST layer and queues it for global
// fan-out. It never blocks the caller; with a full backlog the event is
// dropped and logged.
func (h *Hub) Relay(eventType EventType, payload any) {
	messageBytes, err := EncodeEnvelope(eventType, payload)
	if err != nil {
		h.logger.Error().Err(err).Str("event_type", string(eventType)).Msg("Failed to encode domain event.")
		return
	}

	h.metrics.eventsRelayed.Add(1)

	select {
	case h.relay <- messageBytes:
	case <-h.stop:
	default:
		h.logger.Warn().Str("event_type", string(eventType)).Msg("Relay backlog full, domain event dropped.")
	}
}

// handleAnnounce records the identity and re-broadcasts presence.
// A malformed announce is counted and otherwise ignored; a repeated announce
// overwrites the previous record for the connection.
func (h *Hub) handleAnnounce(frame announceFrame) {
	if !frame.payload.Valid() {
		h.metrics.announcesRejected.Add(1)
		h.logger.Warn().
			Str("user_id", frame.payload.UserID).
			Msg("Announce rejected: missing userId or displayName.")
		return
	}

	if _, attached := h.conns[frame.client]; !attached {
		// Raced with a detach; the connection is already gone.
		return
	}

	h.registry.Register(frame.client, frame.payload.UserID, frame.payload.DisplayName)

	h.logger.Info().
		Str("user_id", frame.payload.UserID).
		Int("online_users", h.registry.OnlineUserCount()).
		Msg("Connection announced.")

	h.broadcastPresence()
}

// handleDirect resolves the recipient and delivers the message to each of the
// recipient's connections. An offline recipient means a silent drop.
func (h *Hub) handleDirect(frame directFrame) {
	sender, ok := h.registry.Record(frame.client)
	if !ok {
		h.metrics.directDropped.Add(1)
		h.logger.Warn().Msg("Direct message from unannounced connection dropped.")
		return
	}

	targets := h.registry.Resolve(frame.payload.RecipientID)
	if len(targets) == 0 {
		h.metrics.directDropped.Add(1)
		h.logger.Debug().
			Str("sender_id", sender.UserID).
			Str("recipient_id", frame.payload.RecipientID).
			Msg("Direct message dropped: recipient offline.")
		return
	}

	message := NewDirectMessage(PresenceEntry(sender), frame.payload)

	messageBytes, err := EncodeEnvelope(EventDirect, message)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode direct message.")
		return
	}

	for _, target := range targets {
		if target.enqueue(messageBytes) {
			h.metrics.directDelivered.Add(1)
		} else {
			h.metrics.slowClientDrops.Add(1)
		}
	}
}

// handleDetach removes the connection from the registry and, only when a
// record existed, re-broadcasts presence. Detaching an unknown connection is
// a no-op.
func (h *Hub) handleDetach(c *Client) {
	if _, attached := h.conns[c]; !attached {
		return
	}
	delete(h.conns, c)

	record, found := h.registry.Remove(c)
	c.closeSend()

	if !found {
		h.logger.Debug().Msg("Unannounced connection detached.")
		return
	}

	h.logger.Info().
		Str("user_id", record.UserID).
		Int("online_users", h.registry.OnlineUserCount()).
		Msg("Connection detached.")

	h.broadcastPresence()
}

// broadcastPresence pushes the current snapshot to every announced connection.
// Delivery is fire-and-forget per connection: a full send queue drops that one
// frame without delaying anyone else.
func (h *Hub) broadcastPresence() {
	snapshot := h.registry.Snapshot(h.dedupePresence)

	messageBytes, err := EncodeEnvelope(EventPresence, snapshot)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode presence snapshot.")
		return
	}

	h.fanOut(messageBytes)
}

// fanOut delivers one encoded frame to every announced connection.
func (h *Hub) fanOut(messageBytes []byte) {
	for _, c := range h.registry.Connections() {
		if !c.enqueue(messageBytes) {
			h.metrics.slowClientDrops.Add(1)
		}
	}
}

// OnlineUsers returns the current presence snapshot, honoring the dedupe
// policy. Safe to call from any goroutine.
func (h *Hub) OnlineUsers() []PresenceEntry {
	return h.registry.Snapshot(h.dedupePresence)
}

// OnlineUserCount returns the number of distinct announced users.
func (h *Hub) OnlineUserCount() int {
	return h.registry.OnlineUserCount()
}

// MetricsSnapshot returns the real-time layer's counters.
func (h *Hub) MetricsSnapshot() MetricsSnapshot {
	return h.metrics.Snapshot()
}

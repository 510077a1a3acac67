/*
Package presence contains the real-time layer of the Pulsegram server.

This file defines the Client struct, one per WebSocket connection. It runs the
read and write pumps, decodes inbound frames, and forwards them to the Hub.
Writes to the peer go through a buffered send queue drained by WritePump, so a
slow peer never stalls the Hub loop.
*/
package presence

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"pulsegram/internal/pkg/logx"
)

const (
	// timeout for writing a frame to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time the server waits for a Pong from the client.
	pongWait = 60 * time.Second

	// frequency of server Ping frames.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of an inbound frame.
	maxFrameSize = 4096

	// capacity of the per-connection send queue.
	sendQueueSize = 256
)

// Client represents one live WebSocket connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	// send queues encoded frames for WritePump. Closed by the Hub on detach.
	send chan []byte

	// closeOnce guards against double-closing send when detach paths race.
	closeOnce sync.Once

	logger zerolog.Logger
}

// NewClient wraps an upgraded WebSocket connection.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendQueueSize),
		logger: logx.Logger().With().Str("component", "Client").Str("remote_addr", conn.RemoteAddr().String()).Logger(),
	}
}

// ReadPump reads frames from the connection until it closes, forwarding them
// to the Hub. On exit it detaches the connection, which triggers the presence
// re-broadcast when the connection had announced.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Detach(c)

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close error in ReadPump")
		}
	}()

	c.conn.SetReadLimit(maxFrameSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frameBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Unexpected connection close")
			}
			break
		}

		c.processInboundFrame(frameBytes)
	}
}

// processInboundFrame decodes one frame and dispatches it to the Hub.
// Unparseable or unsupported frames are dropped without a reply.
func (c *Client) processInboundFrame(frameBytes []byte) {
	var envelope Envelope
	if err := json.Unmarshal(frameBytes, &envelope); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid JSON")
		return
	}

	switch envelope.Type {
	case EventAnnounce:
		var payload AnnouncePayload
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			c.logger.Warn().Err(err).Msg("Client sent invalid announce payload")
			return
		}
		c.hub.Announce(c, payload)

	case EventDirect:
		var payload DirectSendPayload
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			c.logger.Warn().Err(err).Msg("Client sent invalid direct payload")
			return
		}
		c.hub.Direct(c, payload)

	default:
		c.logger.Warn().Str("frame_type", string(envelope.Type)).Msg("Client sent unsupported frame type")
	}
}

// WritePump drains the send queue onto the connection and keeps the heartbeat
// alive. It exits when the queue is closed or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close error in WritePump")
		}
	}()

	for {
		select {
		case frameBytes, ok := <-c.send:
			if !c.writeQueuedFrame(frameBytes, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePing() {
				return
			}
		}
	}
}

// writeQueuedFrame writes one frame pulled from the send queue. A closed queue
// produces a close frame. Returns false when WritePump should terminate.
func (c *Client) writeQueuedFrame(frameBytes []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Debug().Err(err).Msg("Error writing close frame")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, frameBytes); err != nil {
		c.logger.Warn().Err(err).Msg("Error writing frame")
		return false
	}

	return true
}

// writePing sends a heartbeat Ping. Returns false on write failure.
func (c *Client) writePing() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Warn().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}

// enqueue offers one frame to the send queue without blocking.
// Reports false when the queue is full (slow client). Only the Hub goroutine
// calls enqueue, and only before it closes the queue on detach.
func (c *Client) enqueue(frameBytes []byte) bool {
	select {
	case c.send <- frameBytes:
		return true
	default:
		return false
	}
}

// closeSend closes the send queue exactly once, terminating WritePump.
func (c *Client) closeSend() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

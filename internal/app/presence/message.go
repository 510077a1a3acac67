/*
Package presence contains the real-time layer of the Pulsegram server: the connection
registry, the presence broadcaster, the direct message router, and the domain event relay.

This file defines the JSON wire envelope and the payload types exchanged with clients
over the WebSocket transport.
*/
package presence

import (
	"encoding/json"
	"time"
)

// EventType identifies the kind of frame carried by an Envelope.
type EventType string

const (
	// EventAnnounce is sent by a client after connecting to declare its identity.
	EventAnnounce EventType = "announce"

	// EventPresence is sent by the server to every connection whenever the set of
	// online users changes.
	EventPresence EventType = "presence"

	// EventDirect is used in both directions: clients send {text, recipientId},
	// the server delivers {text, senderId, senderName, recipientId, timestamp}.
	EventDirect EventType = "direct"

	// EventNewPost is relayed to all connections when a post is created via the REST API.
	EventNewPost EventType = "new_post"

	// EventNewComment is relayed to all connections when a comment is created via the REST API.
	EventNewComment EventType = "new_comment"
)

// Envelope is the outer frame for every message on the wire.
type Envelope struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// AnnouncePayload carries the identity a client declares after connecting.
type AnnouncePayload struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

// Valid reports whether the announce carries both required fields.
// Announces failing this check are ignored without a reply.
func (p AnnouncePayload) Valid() bool {
	return p.UserID != "" && p.DisplayName != ""
}

// PresenceEntry is one element of a presence snapshot.
type PresenceEntry struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

// DirectSendPayload is the client-side shape of a direct message.
// The sender identity is taken from the connection, never from the payload.
type DirectSendPayload struct {
	Text        string `json:"text"`
	RecipientID string `json:"recipientId"`
}

// DirectMessage is the server-side shape delivered to the recipient's connections.
type DirectMessage struct {
	Text        string `json:"text"`
	SenderID    string `json:"senderId"`
	SenderName  string `json:"senderName"`
	RecipientID string `json:"recipientId"`
	Timestamp   int64  `json:"timestamp"`
}

// NewDirectMessage stamps a routed message with the sender identity and the current time.
func NewDirectMessage(sender PresenceEntry, p DirectSendPayload) DirectMessage {
	return DirectMessage{
		Text:        p.Text,
		SenderID:    sender.UserID,
		SenderName:  sender.DisplayName,
		RecipientID: p.RecipientID,
		Timestamp:   time.Now().UnixMilli(),
	}
}

// EncodeEnvelope marshals a typed payload into a ready-to-send wire frame.
func EncodeEnvelope(eventType EventType, payload any) ([]byte, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return json.Marshal(Envelope{
		Type:    eventType,
		Payload: payloadBytes,
	})
}

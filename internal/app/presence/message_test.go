package presence

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnouncePayload_Valid(t *testing.T) {
	assert.True(t, AnnouncePayload{UserID: "u1", DisplayName: "Alice"}.Valid())
	assert.False(t, AnnouncePayload{UserID: "u1"}.Valid())
	assert.False(t, AnnouncePayload{DisplayName: "Alice"}.Valid())
	assert.False(t, AnnouncePayload{}.Valid())
}

func TestEncodeEnvelope(t *testing.T) {
	frameBytes, err := EncodeEnvelope(EventPresence, []PresenceEntry{
		{UserID: "u1", DisplayName: "Alice"},
	})
	require.NoError(t, err)

	var envelope Envelope
	require.NoError(t, json.Unmarshal(frameBytes, &envelope))
	assert.Equal(t, EventPresence, envelope.Type)

	var entries []PresenceEntry
	require.NoError(t, json.Unmarshal(envelope.Payload, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Alice", entries[0].DisplayName)
}

func TestNewDirectMessage(t *testing.T) {
	sender := PresenceEntry{UserID: "u1", DisplayName: "Alice"}

	message := NewDirectMessage(sender, DirectSendPayload{Text: "hi", RecipientID: "u2"})

	assert.Equal(t, "hi", message.Text)
	assert.Equal(t, "u1", message.SenderID)
	assert.Equal(t, "Alice", message.SenderName)
	assert.Equal(t, "u2", message.RecipientID)
	assert.NotZero(t, message.Timestamp)
}

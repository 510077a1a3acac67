package presence

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frameWait = 2 * time.Second

func startHub(t *testing.T, dedupe bool) *Hub {
	t.Helper()

	h := NewHub(dedupe)
	go h.Run()
	t.Cleanup(h.Shutdown)

	return h
}

// joinHub attaches a fresh connection and announces the given identity.
func joinHub(t *testing.T, h *Hub, userID, name string) *Client {
	t.Helper()

	c := newBareClient()
	h.Attach(c)
	h.Announce(c, AnnouncePayload{UserID: userID, DisplayName: name})

	return c
}

// nextFrame blocks until the client receives one frame, then decodes it.
func nextFrame(t *testing.T, c *Client) Envelope {
	t.Helper()

	select {
	case frameBytes, ok := <-c.send:
		require.True(t, ok, "send queue closed while waiting for a frame")

		var envelope Envelope
		require.NoError(t, json.Unmarshal(frameBytes, &envelope))
		return envelope

	case <-time.After(frameWait):
		t.Fatal("timed out waiting for a frame")
		return Envelope{}
	}
}

// nextFrameOfType discards frames until one of the wanted type arrives.
func nextFrameOfType(t *testing.T, c *Client, want EventType) Envelope {
	t.Helper()

	deadline := time.Now().Add(frameWait)
	for time.Now().Before(deadline) {
		envelope := nextFrame(t, c)
		if envelope.Type == want {
			return envelope
		}
	}

	t.Fatalf("no frame of type %q arrived", want)
	return Envelope{}
}

func decodePresence(t *testing.T, envelope Envelope) []PresenceEntry {
	t.Helper()

	require.Equal(t, EventPresence, envelope.Type)

	var entries []PresenceEntry
	require.NoError(t, json.Unmarshal(envelope.Payload, &entries))
	return entries
}

// assertNoFrame verifies nothing is delivered to the client within a short window.
func assertNoFrame(t *testing.T, c *Client) {
	t.Helper()

	select {
	case frameBytes := <-c.send:
		t.Fatalf("unexpected frame delivered: %s", frameBytes)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHub_AnnounceBroadcastsPresence(t *testing.T) {
	h := startHub(t, false)

	alice := joinHub(t, h, "u1", "Alice")

	entries := decodePresence(t, nextFrame(t, alice))
	require.Len(t, entries, 1)
	assert.Equal(t, PresenceEntry{UserID: "u1", DisplayName: "Alice"}, entries[0])

	// A second user joining triggers a full re-broadcast to everyone.
	bob := joinHub(t, h, "u2", "Bob")

	entries = decodePresence(t, nextFrame(t, alice))
	require.Len(t, entries, 2)
	assert.Equal(t, "u2", entries[1].UserID)

	entries = decodePresence(t, nextFrame(t, bob))
	assert.Len(t, entries, 2)
}

func TestHub_MalformedAnnounceIgnored(t *testing.T) {
	h := startHub(t, false)

	c := newBareClient()
	h.Attach(c)
	h.Announce(c, AnnouncePayload{UserID: "", DisplayName: "Ghost"})

	assertNoFrame(t, c)
	assert.Equal(t, 0, h.OnlineUserCount())
	assert.Equal(t, int64(1), h.MetricsSnapshot().AnnouncesRejected)
}

func TestHub_DirectMessageDelivered(t *testing.T) {
	h := startHub(t, false)

	alice := joinHub(t, h, "u1", "Alice")
	bob := joinHub(t, h, "u2", "Bob")
	nextFrameOfType(t, bob, EventPresence)

	h.Direct(alice, DirectSendPayload{Text: "hi", RecipientID: "u2"})

	envelope := nextFrameOfType(t, bob, EventDirect)

	var message DirectMessage
	require.NoError(t, json.Unmarshal(envelope.Payload, &message))
	assert.Equal(t, "hi", message.Text)
	assert.Equal(t, "u1", message.SenderID)
	assert.Equal(t, "Alice", message.SenderName)
	assert.Equal(t, "u2", message.RecipientID)
	assert.NotZero(t, message.Timestamp)

	assert.Equal(t, int64(1), h.MetricsSnapshot().DirectDelivered)
}

func TestHub_DirectMessageToOfflineRecipientDropped(t *testing.T) {
	h := startHub(t, false)

	alice := joinHub(t, h, "u1", "Alice")
	nextFrameOfType(t, alice, EventPresence)

	h.Direct(alice, DirectSendPayload{Text: "anyone there?", RecipientID: "u404"})

	assertNoFrame(t, alice)

	metrics := h.MetricsSnapshot()
	assert.Equal(t, int64(1), metrics.DirectDropped)
	assert.Equal(t, int64(0), metrics.DirectDelivered)
}

func TestHub_DirectMessageReachesAllRecipientTabs(t *testing.T) {
	h := startHub(t, false)

	alice := joinHub(t, h, "u1", "Alice")
	tab1 := joinHub(t, h, "u2", "Bob")
	tab2 := joinHub(t, h, "u2", "Bob")

	h.Direct(alice, DirectSendPayload{Text: "ping", RecipientID: "u2"})

	for _, tab := range []*Client{tab1, tab2} {
		envelope := nextFrameOfType(t, tab, EventDirect)

		var message DirectMessage
		require.NoError(t, json.Unmarshal(envelope.Payload, &message))
		assert.Equal(t, "ping", message.Text)
	}
}

func TestHub_RelayFansOutToAllConnections(t *testing.T) {
	h := startHub(t, false)

	clients := []*Client{
		joinHub(t, h, "u1", "Alice"),
		joinHub(t, h, "u2", "Bob"),
		joinHub(t, h, "u3", "Cara"),
	}

	post := map[string]string{"id": "p1", "title": "hello", "authorName": "Alice"}
	h.Relay(EventNewPost, post)

	for _, c := range clients {
		envelope := nextFrameOfType(t, c, EventNewPost)

		var got map[string]string
		require.NoError(t, json.Unmarshal(envelope.Payload, &got))
		assert.Equal(t, post, got)
	}

	assert.Equal(t, int64(1), h.MetricsSnapshot().EventsRelayed)
}

func TestHub_RelaySkipsUnannouncedConnections(t *testing.T) {
	h := startHub(t, false)

	announced := joinHub(t, h, "u1", "Alice")

	lurker := newBareClient()
	h.Attach(lurker)

	h.Relay(EventNewComment, map[string]string{"postId": "p1"})

	nextFrameOfType(t, announced, EventNewComment)
	assertNoFrame(t, lurker)
}

func TestHub_DetachCleansUpAndRebroadcasts(t *testing.T) {
	h := startHub(t, false)

	alice := joinHub(t, h, "u1", "Alice")
	bob := joinHub(t, h, "u2", "Bob")
	nextFrameOfType(t, bob, EventPresence)

	h.Detach(alice)

	entries := decodePresence(t, nextFrameOfType(t, bob, EventPresence))
	require.Len(t, entries, 1)
	assert.Equal(t, "u2", entries[0].UserID)

	// The detached connection's queue is closed.
	_, open := <-alice.send
	for open {
		_, open = <-alice.send
	}
}

func TestHub_DetachUnannouncedConnectionIsSilent(t *testing.T) {
	h := startHub(t, false)

	alice := joinHub(t, h, "u1", "Alice")
	nextFrameOfType(t, alice, EventPresence)

	lurker := newBareClient()
	h.Attach(lurker)
	h.Detach(lurker)

	// No presence change: the lurker never announced.
	assertNoFrame(t, alice)
	assert.Equal(t, 1, h.OnlineUserCount())

	// Detaching again is a no-op, not an error.
	h.Detach(lurker)
}

func TestHub_DedupePolicyCollapsesTabs(t *testing.T) {
	h := startHub(t, true)

	joinHub(t, h, "u1", "Alice")
	watcher := joinHub(t, h, "u1", "Alice")

	entries := decodePresence(t, nextFrameOfType(t, watcher, EventPresence))
	assert.Len(t, entries, 1)
}

// Mirrors the full register/message/disconnect flow end to end.
func TestHub_Scenario(t *testing.T) {
	h := startHub(t, false)

	c1 := joinHub(t, h, "u1", "Alice")
	c2 := joinHub(t, h, "u2", "Bob")

	entries := decodePresence(t, nextFrameOfType(t, c2, EventPresence))
	require.Equal(t, []PresenceEntry{
		{UserID: "u1", DisplayName: "Alice"},
		{UserID: "u2", DisplayName: "Bob"},
	}, entries)

	h.Direct(c1, DirectSendPayload{Text: "hey", RecipientID: "u2"})

	envelope := nextFrameOfType(t, c2, EventDirect)
	var message DirectMessage
	require.NoError(t, json.Unmarshal(envelope.Payload, &message))
	assert.Equal(t, "hey", message.Text)
	assert.Equal(t, "u1", message.SenderID)
	assert.Equal(t, "u2", message.RecipientID)

	h.Detach(c1)

	entries = decodePresence(t, nextFrameOfType(t, c2, EventPresence))
	require.Equal(t, []PresenceEntry{{UserID: "u2", DisplayName: "Bob"}}, entries)
}

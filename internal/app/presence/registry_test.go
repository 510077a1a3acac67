package presence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBareClient() *Client {
	return &Client{send: make(chan []byte, 8)}
}

func TestRegistry_RegisterAndSnapshot(t *testing.T) {
	r := NewRegistry()

	c1 := newBareClient()
	c2 := newBareClient()

	r.Register(c1, "u1", "Alice")
	r.Register(c2, "u2", "Bob")

	snapshot := r.Snapshot(false)
	require.Len(t, snapshot, 2)
	assert.Equal(t, PresenceEntry{UserID: "u1", DisplayName: "Alice"}, snapshot[0])
	assert.Equal(t, PresenceEntry{UserID: "u2", DisplayName: "Bob"}, snapshot[1])
}

func TestRegistry_RemoveUnknownIsNoOp(t *testing.T) {
	r := NewRegistry()

	_, found := r.Remove(newBareClient())
	assert.False(t, found)

	c := newBareClient()
	r.Register(c, "u1", "Alice")

	record, found := r.Remove(c)
	require.True(t, found)
	assert.Equal(t, "u1", record.UserID)

	// A second remove for the same connection must behave like the first never mattered.
	_, found = r.Remove(c)
	assert.False(t, found)
	assert.Empty(t, r.Snapshot(false))
}

func TestRegistry_ReAnnounceOverwrites(t *testing.T) {
	r := NewRegistry()

	c := newBareClient()
	r.Register(c, "u1", "Alice")
	r.Register(c, "u1", "Alicia")

	snapshot := r.Snapshot(false)
	require.Len(t, snapshot, 1)
	assert.Equal(t, "Alicia", snapshot[0].DisplayName)

	// Re-announcing under a new userID moves the connection between index buckets.
	r.Register(c, "u9", "Alicia")
	assert.Empty(t, r.Resolve("u1"))
	require.Len(t, r.Resolve("u9"), 1)
	assert.Equal(t, 1, r.ConnectionCount())
}

func TestRegistry_MultipleConnectionsPerUser(t *testing.T) {
	r := NewRegistry()

	tab1 := newBareClient()
	tab2 := newBareClient()

	r.Register(tab1, "u1", "Alice")
	r.Register(tab2, "u1", "Alice")

	assert.Len(t, r.Resolve("u1"), 2)
	assert.Equal(t, 2, r.ConnectionCount())
	assert.Equal(t, 1, r.OnlineUserCount())

	// Closing one tab must leave the other registered.
	_, found := r.Remove(tab1)
	require.True(t, found)
	assert.Len(t, r.Resolve("u1"), 1)
	assert.Equal(t, 1, r.OnlineUserCount())
}

func TestRegistry_SnapshotDedupe(t *testing.T) {
	r := NewRegistry()

	r.Register(newBareClient(), "u1", "Alice")
	r.Register(newBareClient(), "u2", "Bob")
	r.Register(newBareClient(), "u1", "Alice")

	assert.Len(t, r.Snapshot(false), 3)

	deduped := r.Snapshot(true)
	require.Len(t, deduped, 2)
	assert.Equal(t, "u1", deduped[0].UserID)
	assert.Equal(t, "u2", deduped[1].UserID)
}

func TestRegistry_Resolve(t *testing.T) {
	r := NewRegistry()

	c := newBareClient()
	r.Register(c, "u1", "Alice")

	require.Len(t, r.Resolve("u1"), 1)
	assert.Same(t, c, r.Resolve("u1")[0])
	assert.Nil(t, r.Resolve("nobody"))
}

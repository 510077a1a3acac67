/*
Package presence contains the real-time layer of the Pulsegram server.

This file defines the Registry, the live-connection table everything else in the
package is built on. It maps connections to announced identities and keeps a
secondary userID index for recipient resolution.
*/
package presence

import (
	"sync"

	"github.com/samber/lo"
)

// ConnectionRecord is one announced connection as tracked by the Registry.
type ConnectionRecord struct {
	UserID      string
	DisplayName string
}

// Registry is the in-memory table of announced connections.
//
// The canonical key is the connection itself (*Client); a secondary index maps
// a userID to all of that user's live connections, so one user with several
// tabs open holds several independent records. All mutation happens on the Hub
// goroutine, but reads (online counts, snapshots for the admin API) may come
// from HTTP goroutines, so access is mutex-guarded.
type Registry struct {
	mu sync.RWMutex

	// records maps each announced connection to its identity.
	records map[*Client]ConnectionRecord

	// order preserves announce order for snapshot computation.
	order []*Client

	// byUser maps a userID to that user's connections, in announce order.
	byUser map[string][]*Client
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		records: make(map[*Client]ConnectionRecord),
		byUser:  make(map[string][]*Client),
	}
}

// Register inserts or overwrites the record for the given connection.
// A repeated announce on the same connection replaces the previous identity;
// if the userID changed, the connection moves between index buckets.
func (r *Registry) Register(c *Client, userID, displayName string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.records[c]; ok {
		if prev.UserID != userID {
			r.dropFromUserIndex(prev.UserID, c)
			r.byUser[userID] = append(r.byUser[userID], c)
		}
	} else {
		r.order = append(r.order, c)
		r.byUser[userID] = append(r.byUser[userID], c)
	}

	r.records[c] = ConnectionRecord{UserID: userID, DisplayName: displayName}
}

// Remove deletes the record for the given connection and returns it.
// Removing an unknown connection is a no-op and reports ok == false.
func (r *Registry) Remove(c *Client) (ConnectionRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[c]
	if !ok {
		return ConnectionRecord{}, false
	}

	delete(r.records, c)
	r.dropFromUserIndex(record.UserID, c)

	for i, existing := range r.order {
		if existing == c {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	return record, true
}

// dropFromUserIndex removes one connection from a user's bucket, deleting the
// bucket when it empties. Caller must hold r.mu.
func (r *Registry) dropFromUserIndex(userID string, c *Client) {
	bucket := r.byUser[userID]
	for i, existing := range bucket {
		if existing == c {
			bucket = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}

	if len(bucket) == 0 {
		delete(r.byUser, userID)
	} else {
		r.byUser[userID] = bucket
	}
}

// Record returns the identity announced for the given connection, if any.
func (r *Registry) Record(c *Client) (ConnectionRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[c]
	return record, ok
}

// Resolve returns all live connections announced for the given userID,
// in announce order. The returned slice is a copy.
func (r *Registry) Resolve(userID string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bucket := r.byUser[userID]
	if len(bucket) == 0 {
		return nil
	}

	out := make([]*Client, len(bucket))
	copy(out, bucket)
	return out
}

// Snapshot returns the current presence entries in announce order.
// With dedupe enabled, a user with several connections appears once
// (first announce wins).
func (r *Registry) Snapshot(dedupe bool) []PresenceEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]PresenceEntry, 0, len(r.order))
	for _, c := range r.order {
		record := r.records[c]
		entries = append(entries, PresenceEntry{
			UserID:      record.UserID,
			DisplayName: record.DisplayName,
		})
	}

	if dedupe {
		entries = lo.UniqBy(entries, func(e PresenceEntry) string { return e.UserID })
	}

	return entries
}

// Connections returns every announced connection, in announce order.
func (r *Registry) Connections() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Client, len(r.order))
	copy(out, r.order)
	return out
}

// ConnectionCount returns the number of announced connections.
func (r *Registry) ConnectionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.records)
}

// OnlineUserCount returns the number of distinct online users.
func (r *Registry) OnlineUserCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byUser)
}

package board

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"whiteboard-backend/internal/metrics"
)

// Registry maps room codes to their sessions. Sessions are created lazily
// on first use and removed only by the idle janitor, never implicitly.
type Registry struct {
	rooms       map[string]*Session
	mu          sync.RWMutex
	clock       clock.Clock
	idleTimeout time.Duration
}

// NewRegistry creates a registry. Rooms with no connected users are
// eligible for eviction once inactive longer than idleTimeout; a zero
// timeout disables eviction.
func NewRegistry(clk clock.Clock, idleTimeout time.Duration) *Registry {
	return &Registry{
		rooms:       make(map[string]*Session),
		clock:       clk,
		idleTimeout: idleTimeout,
	}
}

// EnsureRoom returns the session for the room, creating it on first use.
func (r *Registry) EnsureRoom(roomID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if session, ok := r.rooms[roomID]; ok {
		return session
	}

	session := newSession(roomID, r.clock)
	r.rooms[roomID] = session
	log.Printf("[Registry] Created room %s (total: %d)", roomID, len(r.rooms))
	metrics.ActiveRooms.Set(float64(len(r.rooms)))
	return session
}

// Get returns the session for the room without creating one.
func (r *Registry) Get(roomID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.rooms[roomID]
	return session, ok
}

// Remove drops the room's session.
func (r *Registry) Remove(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[roomID]; ok {
		delete(r.rooms, roomID)
		log.Printf("[Registry] Removed room %s (remaining: %d)", roomID, len(r.rooms))
		metrics.ActiveRooms.Set(float64(len(r.rooms)))
	}
}

// RoomCount returns the number of live sessions.
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// CleanupIdle evicts rooms that have no connected users and have been
// inactive longer than the idle timeout. Rooms with users are never
// evicted. Returns the number of rooms removed.
func (r *Registry) CleanupIdle() int {
	if r.idleTimeout <= 0 {
		return 0
	}
	cutoff := r.clock.Now().Add(-r.idleTimeout)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for roomID, session := range r.rooms {
		if session.UserCount() == 0 && session.LastActive().Before(cutoff) {
			delete(r.rooms, roomID)
			removed++
			log.Printf("[Registry] Evicted idle room %s", roomID)
		}
	}
	if removed > 0 {
		metrics.RoomsEvicted.Add(float64(removed))
		metrics.ActiveRooms.Set(float64(len(r.rooms)))
	}
	return removed
}

// RunJanitor sweeps idle rooms every interval until ctx is cancelled.
func (r *Registry) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := r.clock.Ticker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.CleanupIdle()
		}
	}
}

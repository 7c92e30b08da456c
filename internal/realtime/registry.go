// Package realtime holds the session registry: an explicit map from user ID
// to connected client sessions, mutated only by connect/disconnect and read
// by notification delivery.
package realtime

import (
	"sync"

	"eventhub/internal/queue"
)

const sessionBuffer = 16

// Session is one connected client's delivery channel.
type Session struct {
	UserID string
	C      chan *queue.NotificationEvent

	registry *Registry
}

// Close disconnects the session and removes it from the registry.
func (s *Session) Close() {
	s.registry.disconnect(s)
}

// Registry tracks connected sessions keyed by user ID. A user may hold
// several sessions (multiple tabs or devices); delivery goes to all of them.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string][]*Session
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string][]*Session)}
}

// Connect registers a new session for the user and returns it. The caller
// owns the session and must Close it on disconnect.
func (r *Registry) Connect(userID string) *Session {
	s := &Session{
		UserID:   userID,
		C:        make(chan *queue.NotificationEvent, sessionBuffer),
		registry: r,
	}
	r.mu.Lock()
	r.sessions[userID] = append(r.sessions[userID], s)
	r.mu.Unlock()
	return s
}

func (r *Registry) disconnect(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.sessions[s.UserID]
	for i, candidate := range list {
		if candidate == s {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(r.sessions, s.UserID)
	} else {
		r.sessions[s.UserID] = list
	}
	close(s.C)
}

// Deliver pushes the event to every session of its recipient. Delivery is
// best-effort: a session with a full buffer is skipped rather than blocking
// the consumer.
func (r *Registry) Deliver(event *queue.NotificationEvent) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	delivered := 0
	for _, s := range r.sessions[event.RecipientID] {
		select {
		case s.C <- event:
			delivered++
		default:
		}
	}
	return delivered
}

// Connected reports whether the user has at least one live session.
func (r *Registry) Connected(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions[userID]) > 0
}

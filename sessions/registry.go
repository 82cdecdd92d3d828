// Package sessions holds the per-user working state: the current selection
// machine, the cart being assembled and any open review drafts. There is
// exactly one logical writer per session (the user's own requests), so each
// session carries its own lock to serialize rapid successive mutations.
package sessions

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/biocule/quotation-api/cart"
	"github.com/biocule/quotation-api/selection"
)

// Session is one user's in-progress order.
type Session struct {
	ID string

	mu          sync.Mutex
	state       *selection.State
	cart        *cart.Cart
	drafts      map[string]*cart.Draft
	lastTouched time.Time
}

// WithLock runs fn while holding the session lock, so two rapid successive
// selection changes serialize and the final state matches the last one.
func (s *Session) WithLock(fn func(st *selection.State, c *cart.Cart)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastTouched = time.Now()
	fn(s.state, s.cart)
}

// ReplaceState swaps the selection machine, used when entering edit mode.
func (s *Session) ReplaceState(st *selection.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastTouched = time.Now()
	s.state = st
}

// OpenDraft stores a review draft for a cart item. Any previous draft for
// the same item is discarded.
func (s *Session) OpenDraft(itemID string, d *cart.Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[itemID] = d
}

// Draft returns the open draft for a cart item, if any.
func (s *Session) Draft(itemID string) (*cart.Draft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[itemID]
	return d, ok
}

// DiscardDraft drops a draft without touching the cart. Closing the review
// modal mid-edit lands here.
func (s *Session) DiscardDraft(itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, itemID)
}

// Registry is the mutex-guarded session table.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
}

// NewRegistry creates a registry whose sessions expire after ttl of
// inactivity.
func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// Create starts a new session configuring the given category.
func (r *Registry) Create(category string) *Session {
	s := &Session{
		ID:          uuid.NewString(),
		state:       selection.NewState(category),
		cart:        cart.New(),
		drafts:      make(map[string]*cart.Draft),
		lastTouched: time.Now(),
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	return s
}

// Get looks up a session by id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %s not found", id)
	}
	return s, nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// PurgeIdle drops sessions untouched for longer than the registry TTL and
// returns how many were removed.
func (r *Registry) PurgeIdle(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		s.mu.Lock()
		idle := now.Sub(s.lastTouched)
		s.mu.Unlock()
		if idle > r.ttl {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

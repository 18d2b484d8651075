package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jmdottavio/product-calculator/internal/obs"
	"github.com/jmdottavio/product-calculator/internal/order"
)

// ErrNotFound is returned when a session id is unknown.
var ErrNotFound = errors.New("session: not found")

// Session binds one calculator to one client. The mutex serialises every
// mutation with its full cascade: an edit returns only after all derived
// attributes have settled, and two concurrent edits never interleave.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time

	mu   sync.Mutex
	calc *order.Calculator
}

// Do runs fn with exclusive access to the session's calculator.
func (s *Session) Do(fn func(c *order.Calculator) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.calc)
}

// Snapshot returns the settled calculator state.
func (s *Session) Snapshot() order.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calc.Snapshot()
}

// Registry holds the live sessions. The calculator factory is injected so
// rates and logging are configured in one place.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	newCalc  func() *order.Calculator
}

// NewRegistry constructs a registry around a calculator factory.
func NewRegistry(newCalc func() *order.Calculator) *Registry {
	return &Registry{
		sessions: make(map[uuid.UUID]*Session),
		newCalc:  newCalc,
	}
}

// Create builds a fresh calculator session. Mirroring the original app's
// bootstrap, the new order starts with one blank line ready to fill in.
func (r *Registry) Create() *Session {
	s := &Session{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
		calc:      r.newCalc(),
	}
	s.calc.Order().AddLine()

	r.mu.Lock()
	r.sessions[s.ID] = s
	count := len(r.sessions)
	r.mu.Unlock()

	if obs.SessionsActive != nil {
		obs.SessionsActive.Set(float64(count))
	}
	return s
}

// Get looks up a session by id.
func (r *Registry) Get(id uuid.UUID) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Delete removes a session. Unknown ids are ignored.
func (r *Registry) Delete(id uuid.UUID) {
	r.mu.Lock()
	delete(r.sessions, id)
	count := len(r.sessions)
	r.mu.Unlock()

	if obs.SessionsActive != nil {
		obs.SessionsActive.Set(float64(count))
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

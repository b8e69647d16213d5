package state

import (
	"fmt"
	"sync"

	"github.com/atomicstack/termcord/internal/logging"
	"github.com/atomicstack/termcord/internal/logging/events"
)

// Store owns a Session and serialises access to it. Every mutation, and the
// repaint that reflects it, runs inside one Do call.
type Store struct {
	mu      sync.Mutex
	session *Session
}

// NewStore wraps session.
func NewStore(session *Session) *Store {
	if session == nil {
		session = NewSession()
	}
	return &Store{session: session}
}

// Do runs fn with exclusive access to the session. A panic inside fn is
// recovered and logged, and reported as an error; the lock is always
// released.
func (s *Store) Do(fn func(*Session)) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			events.Session.Recovered(fmt.Sprint(r))
			err = fmt.Errorf("session mutation panicked: %v", r)
			logging.Error(err)
		}
	}()
	fn(s.session)
	return nil
}

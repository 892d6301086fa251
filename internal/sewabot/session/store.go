package session

import (
	"sync"
	"time"
)

// Store is the process-wide map of user ID to Session. It serializes all
// access per user: WithUser holds the user's lock for the duration of the
// callback, so a whole turn's read-modify-write cannot interleave with
// another turn from the same user. Different users never contend.
type Store struct {
	mu       sync.Mutex // guards the two maps, never held during mutations
	sessions map[string]*Session
	locks    map[string]*sync.Mutex

	// now is injectable for tests.
	now func() time.Time
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
		locks:    make(map[string]*sync.Mutex),
		now:      time.Now,
	}
}

// GetOrCreate returns a snapshot of the user's session, creating an idle
// one on first contact. Creation is idempotent: calling twice without an
// intervening mutation yields equivalent sessions.
func (s *Store) GetOrCreate(userID string) *Session {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	return s.getOrCreateLocked(userID).clone()
}

// Update runs fn against the user's session under the user's lock and
// returns a snapshot of the result. fn receives the live session and may
// mutate it freely; the store stamps UpdatedAt afterwards.
func (s *Store) Update(userID string, fn func(*Session)) *Session {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	sess := s.getOrCreateLocked(userID)
	fn(sess)
	sess.UpdatedAt = s.now()
	return sess.clone()
}

// WithUser runs fn against the user's live session while holding the
// user's lock for the entire call. An engine turn executed inside fn can
// read, decide and mutate as one atomic unit: a second message from the
// same user blocks until fn returns. fn may mutate the session freely; the
// store stamps UpdatedAt afterwards.
func (s *Store) WithUser(userID string, fn func(*Session)) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	sess := s.getOrCreateLocked(userID)
	fn(sess)
	sess.UpdatedAt = s.now()
}

// Clear resets the user's workflow, preserving the language of record.
func (s *Store) Clear(userID string) {
	s.Update(userID, func(sess *Session) {
		sess.Reset()
	})
}

// Len returns the number of tracked sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// userLock returns the mutex dedicated to userID, creating it on first use.
func (s *Store) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}

// getOrCreateLocked fetches or lazily creates the live session for userID.
// Callers must hold the user's lock.
func (s *Store) getOrCreateLocked(userID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		now := s.now()
		sess = &Session{
			UserID:    userID,
			State:     MainMenu,
			Data:      make(map[string]string),
			CreatedAt: now,
			UpdatedAt: now,
		}
		s.sessions[userID] = sess
	}
	return sess
}

// Package session owns the in-memory authenticated-session state: the
// current identity, the lifecycle status of the last auth attempt, and the
// last error message. The store performs no I/O; it is mutated only through
// its own operations and is passed explicitly to consumers instead of being
// a package-level singleton.
package session

import (
	"sync"

	"storeadmin/internal/models"
)

// Status describes the lifecycle of the most recent login/register/refresh
// attempt.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Store holds the current identity, or none. Invariants:
//   - the identity is replaced or cleared wholesale, never field-patched;
//   - StatusFailed always carries a non-empty error message.
//
// The epoch counter increments on every identity-changing operation.
// Callers that resolve asynchronously (login, refresh) capture the epoch
// before dispatching and apply their result with SetIdentityIf, so a
// superseded response cannot overwrite newer state.
//
// Safe for concurrent use: the REPL loop and the health watcher goroutine
// read it concurrently.
type Store struct {
	mu     sync.RWMutex
	user   *models.User
	status Status
	err    string
	epoch  uint64
}

func NewStore() *Store {
	return &Store{status: StatusIdle}
}

// Identity returns a copy of the current identity, or nil when no session
// is active.
func (s *Store) Identity() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// IsAuthenticated reports whether an identity is present.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// Status returns the current lifecycle status and last error message.
func (s *Store) Status() (Status, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status, s.err
}

// Epoch returns the current identity epoch.
func (s *Store) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// SetIdentity replaces the identity wholesale and bumps the epoch.
func (s *Store) SetIdentity(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &u
	s.epoch++
}

// SetIdentityIf replaces the identity only when the store's epoch still
// matches the one captured before the request was dispatched. Returns false
// when the result is stale and was discarded.
func (s *Store) SetIdentityIf(epoch uint64, u models.User) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return false
	}
	s.user = &u
	s.epoch++
	return true
}

// Clear drops the identity and bumps the epoch. Status and error are left
// untouched; use Reset for a full logout.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.epoch++
}

// SetStatus records the outcome of an auth attempt. A failed status with an
// empty message gets a generic one so the failed-implies-message invariant
// holds; a non-failed status discards any message.
func (s *Store) SetStatus(status Status, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == StatusFailed && errMsg == "" {
		errMsg = "request failed"
	}
	if status != StatusFailed {
		errMsg = ""
	}
	s.status = status
	s.err = errMsg
}

// Reset clears the identity and returns status/error to their initial
// values. This is the logout transition.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.status = StatusIdle
	s.err = ""
	s.epoch++
}

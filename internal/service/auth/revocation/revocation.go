// Package revocation keeps access tokens that were logged out before they expired.
//
// The store lives in process memory only: it is lost on restart and not shared
// between replicas. An entry is kept until the token would have expired anyway,
// after that the signature check alone rejects the token.
package revocation

import (
	"sync"
	"time"
)

type Option func(*Store)

// Use custom clock instead of time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Store maps raw token to its expiry in epoch seconds.
// Safe for concurrent use. The zero value is not usable, use New.
type Store struct {
	mu     sync.Mutex
	tokens map[string]int64
	now    func() time.Time
}

func New(opts ...Option) *Store {
	s := &Store{
		tokens: make(map[string]int64),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Revoke token until expiresAt. Revoking the same token again overwrites its expiry.
// Every call also drops all entries that are already expired.
func (s *Store) Revoke(token string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[token] = expiresAt.Unix()
	s.sweep()
}

// Report whether token is revoked and not expired yet.
// Expired entry is removed on lookup.
func (s *Store) IsRevoked(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.tokens[token]
	if !ok {
		return false
	}

	if s.expired(exp) {
		delete(s.tokens, token)
		return false
	}

	return true
}

// Number of entries held, expired ones included until they are evicted
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.tokens)
}

// Drop all expired entries. Returns number of evicted and left entries taken under one lock
func (s *Store) Sweep() (evicted int, left int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted = s.sweep()
	return evicted, len(s.tokens)
}

// Must be called with mu held
func (s *Store) sweep() int {
	evicted := 0
	now := s.now().Unix()
	for token, exp := range s.tokens {
		if exp <= now {
			delete(s.tokens, token)
			evicted++
		}
	}
	return evicted
}

func (s *Store) expired(exp int64) bool {
	return exp <= s.now().Unix()
}

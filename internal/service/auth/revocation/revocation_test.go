package revocation

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Manually driven clock
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func Test_Store(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	newStore := func() (*Store, *fakeClock) {
		clock := &fakeClock{now: start}
		return New(WithClock(clock.Now)), clock
	}

	t.Run("unknown token is not revoked", func(t *testing.T) {
		s, _ := newStore()

		assert.False(t, s.IsRevoked("never-seen"))
		assert.Equal(t, 0, s.Len())
	})

	t.Run("revoked until expiry", func(t *testing.T) {
		s, clock := newStore()
		exp := start.Add(100 * time.Second)

		s.Revoke("token", exp)

		clock.Set(start.Add(99 * time.Second))
		assert.True(t, s.IsRevoked("token"), "revoked while expiry is in the future")

		clock.Set(exp)
		assert.False(t, s.IsRevoked("token"), "not revoked once expiry is reached")
		assert.Equal(t, 0, s.Len(), "expired entry removed on lookup")

		assert.False(t, s.IsRevoked("token"), "still false after removal")
	})

	t.Run("seconds granularity", func(t *testing.T) {
		s, clock := newStore()

		s.Revoke("token", start.Add(time.Second+900*time.Millisecond))

		clock.Set(start.Add(time.Second + 500*time.Millisecond))
		assert.False(t, s.IsRevoked("token"), "expiry is truncated to whole seconds")
	})

	t.Run("revoke is idempotent", func(t *testing.T) {
		s, _ := newStore()
		exp := start.Add(time.Minute)

		s.Revoke("token", exp)
		s.Revoke("token", exp)

		assert.True(t, s.IsRevoked("token"))
		assert.Equal(t, 1, s.Len())
	})

	t.Run("revoke overwrites expiry", func(t *testing.T) {
		s, clock := newStore()

		s.Revoke("token", start.Add(time.Minute))
		s.Revoke("token", start.Add(time.Hour))

		clock.Set(start.Add(30 * time.Minute))
		assert.True(t, s.IsRevoked("token"), "later expiry wins")
	})

	t.Run("revoke already expired token keeps nothing", func(t *testing.T) {
		s, _ := newStore()

		s.Revoke("token", start.Add(-time.Second))

		assert.Equal(t, 0, s.Len(), "sweep removes entry inserted with past expiry")
		assert.False(t, s.IsRevoked("token"))
	})

	t.Run("revoke sweeps expired entries", func(t *testing.T) {
		s, clock := newStore()

		for i := range 5 {
			s.Revoke(fmt.Sprintf("short-%d", i), start.Add(time.Minute))
		}
		s.Revoke("long", start.Add(time.Hour))
		require.Equal(t, 6, s.Len())

		clock.Set(start.Add(2 * time.Minute))
		s.Revoke("fresh", start.Add(time.Hour))

		assert.Equal(t, 2, s.Len(), "only not expired entries left")
		assert.True(t, s.IsRevoked("long"))
		assert.True(t, s.IsRevoked("fresh"))
	})

	t.Run("default clock", func(t *testing.T) {
		s := New()

		s.Revoke("token", time.Now().Add(time.Hour))

		assert.True(t, s.IsRevoked("token"))
	})

	t.Run("concurrent access", func(t *testing.T) {
		s := New()
		exp := time.Now().Add(time.Hour)

		var wg sync.WaitGroup
		for i := range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := range 100 {
					token := fmt.Sprintf("token-%d-%d", i, j)
					s.Revoke(token, exp)
					assert.True(t, s.IsRevoked(token))
					_ = s.IsRevoked("missing")
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 20*100, s.Len())
	})
}

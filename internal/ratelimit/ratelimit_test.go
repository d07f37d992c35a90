package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestKeyedRateLimiter_Allow(t *testing.T) {
	tests := []struct {
		name     string
		rps      float64
		burst    int
		calls    int
		wantPass int
	}{
		{"burst allows initial requests", 1, 3, 3, 3},
		{"exceeding burst blocks", 1, 2, 5, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &fakeClock{t: time.Unix(1000, 0)}
			rl := newLimiter(tt.rps, tt.burst, time.Minute, clock.Now, false)

			passed := 0
			for range tt.calls {
				if rl.Allow("203.0.113.7") {
					passed++
				}
			}
			assert.Equal(t, tt.wantPass, passed)
		})
	}
}

func TestKeyedRateLimiter_KeysAreIndependent(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	rl := newLimiter(1, 1, time.Minute, clock.Now, false)

	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))
}

func TestKeyedRateLimiter_Refills(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	rl := newLimiter(1, 1, time.Minute, clock.Now, false)

	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))

	clock.Advance(time.Second)
	assert.True(t, rl.Allow("a"))
}

func TestKeyedRateLimiter_EvictIdle(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	rl := newLimiter(1, 1, time.Minute, clock.Now, false)

	rl.Allow("old")
	clock.Advance(45 * time.Second)
	rl.Allow("recent")
	clock.Advance(30 * time.Second)

	assert.Equal(t, 1, rl.evictIdle())
	assert.Equal(t, 1, rl.Len())

	// a fresh bucket after eviction starts full again
	assert.True(t, rl.Allow("old"))
}

func TestKeyedRateLimiter_StopIdempotent(t *testing.T) {
	rl := New(10, 10)
	assert.NotPanics(t, func() {
		rl.Stop()
		rl.Stop()
	})
}

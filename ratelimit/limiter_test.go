package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(max int, window time.Duration) (*Limiter, *time.Time) {
	now := time.Now()
	l := New(NewMemoryStore(), max, window)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestLimiterAllowsUnderMax(t *testing.T) {
	l, _ := newTestLimiter(5, 15*time.Minute)

	for i := 0; i < 4; i++ {
		assert.True(t, l.Check("a@b.c"))
		l.Record("a@b.c")
	}

	assert.True(t, l.Check("a@b.c"))
}

func TestLimiterBlocksAtMax(t *testing.T) {
	l, _ := newTestLimiter(5, 15*time.Minute)

	for i := 0; i < 5; i++ {
		l.Record("a@b.c")
	}

	// count >= max means the next attempt is rejected
	assert.False(t, l.Check("a@b.c"))
}

func TestLimiterExpiresLazily(t *testing.T) {
	l, now := newTestLimiter(5, 15*time.Minute)

	for i := 0; i < 5; i++ {
		l.Record("a@b.c")
	}
	assert.False(t, l.Check("a@b.c"))

	*now = now.Add(15*time.Minute + time.Second)

	assert.True(t, l.Check("a@b.c"))

	// the stale entry must have been dropped, not just ignored
	_, ok := l.store.Get("a@b.c")
	assert.False(t, ok)
}

func TestLimiterRecordRestartsExpiredWindow(t *testing.T) {
	l, now := newTestLimiter(2, time.Minute)

	l.Record("k")
	l.Record("k")
	assert.False(t, l.Check("k"))

	*now = now.Add(2 * time.Minute)
	l.Record("k")

	e, ok := l.store.Get("k")
	assert.True(t, ok)
	assert.Equal(t, 1, e.Attempts)
	assert.True(t, l.Check("k"))
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)

	l.Record("first")
	assert.False(t, l.Check("first"))
	assert.True(t, l.Check("second"))
}

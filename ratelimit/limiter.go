// Package ratelimit implements a sliding-window attempt counter keyed
// by an arbitrary identifier (email, user ID). Entries older than the
// window are expired lazily on the next check, never swept proactively.
package ratelimit

import "time"

type Limiter struct {
	store  Store
	max    int
	window time.Duration

	now func() time.Time // overridable in tests
}

func New(store Store, max int, window time.Duration) *Limiter {
	return &Limiter{
		store:  store,
		max:    max,
		window: window,
		now:    time.Now,
	}
}

// Check reports whether an attempt for key is allowed. An entry whose
// last attempt is older than the window is treated as absent and
// removed. At the boundary count >= max means blocked.
func (l *Limiter) Check(key string) bool {
	e, ok := l.store.Get(key)
	if !ok {
		return true
	}

	if l.now().Sub(e.LastAttempt) > l.window {
		l.store.Delete(key)
		return true
	}

	return e.Attempts < l.max
}

// Record counts an attempt for key. Callers invoke this only for
// attempts that matter to limiting (a failed login, a created
// message), not for malformed requests.
func (l *Limiter) Record(key string) {
	now := l.now()

	e, ok := l.store.Get(key)
	if !ok || now.Sub(e.LastAttempt) > l.window {
		l.store.Put(key, Entry{Attempts: 1, LastAttempt: now})
		return
	}

	l.store.Put(key, Entry{Attempts: e.Attempts + 1, LastAttempt: now})
}

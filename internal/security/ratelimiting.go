package security

import (
	"sync"
	"time"
)

// staleAfter is how long an idle bucket or lockout record survives before a
// sweep removes it.
const staleAfter = time.Hour

// RateLimiter is a token-bucket limiter keyed by an arbitrary identifier
// (client IP for login attempts). Buckets refill over time; each Allow call
// consumes one token. Safe for concurrent use.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket

	maxTokens  int
	refillRate time.Duration

	lastSweep time.Time
}

type bucket struct {
	tokens     int
	lastRefill time.Time
}

// NewRateLimiter allows maxTokens requests in a burst, refilling one token
// every refillRate. For "5 per minute", use NewRateLimiter(5, 12*time.Second).
func NewRateLimiter(maxTokens int, refillRate time.Duration) *RateLimiter {
	return &RateLimiter{
		buckets:    make(map[string]*bucket),
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastSweep:  time.Now(),
	}
}

// Allow reports whether a request from identifier may proceed, consuming a
// token when it does.
func (rl *RateLimiter) Allow(identifier string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.sweepLocked()

	b, ok := rl.buckets[identifier]
	if !ok {
		rl.buckets[identifier] = &bucket{
			tokens:     rl.maxTokens - 1,
			lastRefill: time.Now(),
		}
		return true
	}

	if refill := int(time.Since(b.lastRefill) / rl.refillRate); refill > 0 {
		b.tokens += refill
		if b.tokens > rl.maxTokens {
			b.tokens = rl.maxTokens
		}
		b.lastRefill = time.Now()
	}

	if b.tokens > 0 {
		b.tokens--
		return true
	}
	return false
}

// Reset clears the bucket for an identifier, restoring its full burst.
func (rl *RateLimiter) Reset(identifier string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.buckets, identifier)
}

// RetryAfter returns how long the identifier must wait for the next token.
// Returns 0 when a request would be allowed immediately.
func (rl *RateLimiter) RetryAfter(identifier string) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[identifier]
	if !ok || b.tokens > 0 {
		return 0
	}
	wait := rl.refillRate - time.Since(b.lastRefill)
	if wait < 0 {
		return 0
	}
	return wait
}

// sweepLocked drops idle buckets. Runs at most once per sweep interval and is
// called with rl.mu held, so there is no background goroutine to manage.
func (rl *RateLimiter) sweepLocked() {
	if time.Since(rl.lastSweep) < 10*time.Minute {
		return
	}
	for id, b := range rl.buckets {
		if time.Since(b.lastRefill) > staleAfter {
			delete(rl.buckets, id)
		}
	}
	rl.lastSweep = time.Now()
}

// AccountLockout counts consecutive failed logins per account and locks the
// account for a fixed duration once the threshold is reached. Counters fade
// after 30 minutes of quiet so old typos do not accumulate.
type AccountLockout struct {
	mu       sync.Mutex
	accounts map[string]*lockoutState

	threshold int
	duration  time.Duration
}

type lockoutState struct {
	failures    int
	lastFailure time.Time
	lockedUntil time.Time
}

// NewAccountLockout locks an account for duration after threshold failures.
func NewAccountLockout(threshold int, duration time.Duration) *AccountLockout {
	return &AccountLockout{
		accounts:  make(map[string]*lockoutState),
		threshold: threshold,
		duration:  duration,
	}
}

// RecordFailedAttempt registers a failed login and reports whether this
// attempt triggered a lockout.
func (al *AccountLockout) RecordFailedAttempt(identifier string) bool {
	al.mu.Lock()
	defer al.mu.Unlock()

	state, ok := al.accounts[identifier]
	if !ok || time.Since(state.lastFailure) > 30*time.Minute {
		al.accounts[identifier] = &lockoutState{failures: 1, lastFailure: time.Now()}
		return false
	}

	state.failures++
	state.lastFailure = time.Now()

	if state.failures >= al.threshold {
		state.lockedUntil = time.Now().Add(al.duration)
		return true
	}
	return false
}

// IsLocked reports whether the account is currently locked out. An expired
// lockout clears itself on the next check.
func (al *AccountLockout) IsLocked(identifier string) bool {
	al.mu.Lock()
	defer al.mu.Unlock()

	state, ok := al.accounts[identifier]
	if !ok || state.lockedUntil.IsZero() {
		return false
	}
	if time.Now().After(state.lockedUntil) {
		delete(al.accounts, identifier)
		return false
	}
	return true
}

// ResetAttempts clears the failure counter, typically on successful login.
func (al *AccountLockout) ResetAttempts(identifier string) {
	al.mu.Lock()
	defer al.mu.Unlock()
	delete(al.accounts, identifier)
}

// LockoutRemaining returns the time left on an active lockout, or 0.
func (al *AccountLockout) LockoutRemaining(identifier string) time.Duration {
	al.mu.Lock()
	defer al.mu.Unlock()

	state, ok := al.accounts[identifier]
	if !ok || state.lockedUntil.IsZero() {
		return 0
	}
	remaining := time.Until(state.lockedUntil)
	if remaining < 0 {
		return 0
	}
	return remaining
}

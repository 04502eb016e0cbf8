package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// challenge is a pending two-factor login: the password already checked
// out, a valid TOTP code is still owed. Single use.
type challenge struct {
	accountID int64
	issuedAt  time.Time
}

// challengeRegistry holds pending challenges in memory, keyed by their
// opaque temp token. No background sweeper: expiry is checked lazily when
// a token is presented. All methods are safe for concurrent use.
type challengeRegistry struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]challenge
}

func newChallengeRegistry(ttl time.Duration) *challengeRegistry {
	return &challengeRegistry{
		ttl:     ttl,
		entries: make(map[string]challenge),
	}
}

// issue creates a challenge for the account and returns its temp token.
func (r *challengeRegistry) issue(accountID int64) string {
	token := uuid.NewString()
	r.mu.Lock()
	r.entries[token] = challenge{accountID: accountID, issuedAt: time.Now()}
	r.mu.Unlock()
	return token
}

// peek returns the account behind a live token without consuming it.
// Expired tokens are removed on sight and reported as absent.
func (r *challengeRegistry) peek(token string) (int64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.entries[token]
	if !ok {
		return 0, false
	}
	if time.Since(c.issuedAt) > r.ttl {
		delete(r.entries, token)
		return 0, false
	}
	return c.accountID, true
}

// consume deletes the token and reports whether it was still present.
// Two concurrent callers racing on the same token see exactly one true.
func (r *challengeRegistry) consume(token string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.entries[token]
	if !ok {
		return false
	}
	delete(r.entries, token)
	return time.Since(c.issuedAt) <= r.ttl
}

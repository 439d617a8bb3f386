package services

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Errors returned by ResetTokenStore.Redeem.
var (
	ErrInvalidToken  = errors.New("invalid or unknown token")
	ErrTokenExpired  = errors.New("token has expired")
	ErrTokenMismatch = errors.New("token does not belong to this user")
)

// maxMismatchAttempts bounds brute-forcing of the user id: after this many
// mismatched redemption attempts the token is evicted.
const maxMismatchAttempts = 5

type resetToken struct {
	userID   int64
	expires  time.Time
	attempts int
}

// ResetTokenStore holds password-reset tokens in process memory. Tokens are
// single-use, expire after the configured TTL, and do not survive a restart.
// All methods are safe for concurrent use.
type ResetTokenStore struct {
	mu     sync.Mutex
	tokens map[string]resetToken
	ttl    time.Duration

	// now is swapped out by tests to simulate the clock.
	now func() time.Time
}

// NewResetTokenStore returns an empty store issuing tokens valid for ttl.
func NewResetTokenStore(ttl time.Duration) *ResetTokenStore {
	return &ResetTokenStore{
		tokens: make(map[string]resetToken),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue generates an opaque token bound to userID and returns it.
func (s *ResetTokenStore) Issue(userID int64) string {
	token := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = resetToken{
		userID:  userID,
		expires: s.now().Add(s.ttl),
	}
	return token
}

// Redeem consumes the token on behalf of userID. The read-check-delete
// sequence runs under the lock, so two concurrent redemptions of the same
// token cannot both succeed.
//
// ErrInvalidToken: unknown token. ErrTokenExpired: past its TTL (evicted).
// ErrTokenMismatch: wrong user id; the token stays valid for retry until
// maxMismatchAttempts is reached, then it is evicted.
func (s *ResetTokenStore) Redeem(token string, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.tokens[token]
	if !ok {
		return ErrInvalidToken
	}

	if s.now().After(entry.expires) {
		delete(s.tokens, token)
		return ErrTokenExpired
	}

	if entry.userID != userID {
		entry.attempts++
		if entry.attempts >= maxMismatchAttempts {
			delete(s.tokens, token)
			log.Printf("reset token evicted after %d mismatched attempts", entry.attempts)
		} else {
			s.tokens[token] = entry
		}
		return ErrTokenMismatch
	}

	// Single use: success always evicts.
	delete(s.tokens, token)
	return nil
}

// Evict drops a token regardless of state.
func (s *ResetTokenStore) Evict(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

// Len reports how many tokens are currently stored.
func (s *ResetTokenStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}

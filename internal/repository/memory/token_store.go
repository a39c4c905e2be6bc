// Package memory holds in-process repository implementations. The refresh
// token registry lives here rather than in Postgres: entries are meaningless
// across restarts and the one-token-per-user rule is a single map write.
package memory

import "sync"

// TokenStore maps username to the currently-valid refresh token. A Put for an
// existing username replaces the previous token, revoking it.
type TokenStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

func NewTokenStore() *TokenStore {
	return &TokenStore{tokens: make(map[string]string)}
}

func (s *TokenStore) Put(username, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[username] = token
}

func (s *TokenStore) Get(username string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.tokens[username]
	return token, ok
}

func (s *TokenStore) Delete(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, username)
}

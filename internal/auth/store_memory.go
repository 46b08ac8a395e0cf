package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	id "github.com/geekskaran/cattel/pkg/domain"
	"github.com/geekskaran/cattel/pkg/platform/sentinel"
)

// In-memory stores keep local development and tests lightweight. They
// intentionally favor clarity over performance.
type InMemoryUserStore struct {
	mu       sync.RWMutex
	users    map[id.UserID]User
	byMobile map[string]id.UserID
	byEmail  map[string]id.UserID
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{
		users:    make(map[id.UserID]User),
		byMobile: make(map[string]id.UserID),
		byEmail:  make(map[string]id.UserID),
	}
}

func (s *InMemoryUserStore) Create(_ context.Context, user User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(user.Email)
	if _, taken := s.byMobile[user.Mobile]; taken {
		return sentinel.ErrConflict
	}
	if _, taken := s.byEmail[email]; taken {
		return sentinel.ErrConflict
	}
	s.users[user.ID] = user
	s.byMobile[user.Mobile] = user.ID
	s.byEmail[email] = user.ID
	return nil
}

func (s *InMemoryUserStore) FindByID(_ context.Context, userID id.UserID) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.users[userID]; ok {
		return user, nil
	}
	return User{}, sentinel.ErrNotFound
}

func (s *InMemoryUserStore) FindByMobile(_ context.Context, mobile string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if userID, ok := s.byMobile[mobile]; ok {
		return s.users[userID], nil
	}
	return User{}, sentinel.ErrNotFound
}

// InMemoryRevocationList tracks revoked token IDs with their expiry.
// Entries past their TTL are dropped lazily on lookup.
type InMemoryRevocationList struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewInMemoryRevocationList() *InMemoryRevocationList {
	return &InMemoryRevocationList{revoked: make(map[string]time.Time)}
}

func (l *InMemoryRevocationList) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.revoked[jti] = time.Now().Add(ttl)
	return nil
}

func (l *InMemoryRevocationList) IsTokenRevoked(_ context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	expiry, ok := l.revoked[jti]
	if !ok {
		return false, nil
	}
	if time.Now().After(expiry) {
		delete(l.revoked, jti)
		return false, nil
	}
	return true, nil
}

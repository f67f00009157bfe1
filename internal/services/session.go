package services

import (
	"context"
	"sync"
	"time"

	"orcamento/internal/cache"
	"orcamento/internal/core"
	"orcamento/internal/store"

	"github.com/google/uuid"
)

// MaxSessions bounds the number of signed-in sessions kept in memory.
const MaxSessions = 10000

// Session is the state of one signed-in user. Its UserData is the source of
// truth until the session ends; the record store only receives full snapshots.
type Session struct {
	Token  string
	UserID string
	Email  string

	// accessToken is the authenticator's token for the user, passed to the
	// record store on every call.
	accessToken string

	mu   sync.Mutex
	data core.UserData
	// saving is set while a write is in flight. dirty records that the data
	// changed meanwhile, so the in-flight save writes again before finishing.
	saving bool
	dirty  bool
	// version counts committed mutations; savedVersion is the version of
	// the last stored snapshot.
	version      uint64
	savedVersion uint64
}

// storeContext carries the user's access token to the record store.
func (s *Session) storeContext(ctx context.Context) context.Context {
	return store.WithAccessToken(ctx, s.accessToken)
}

// Snapshot returns a copy of the session's data.
func (s *Session) Snapshot() core.UserData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Clone()
}

// Unsaved reports whether the data changed since the last successful save.
func (s *Session) Unsaved() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version != s.savedVersion
}

// SessionStore maps bearer tokens to sessions. Idle sessions expire after
// the configured TTL.
type SessionStore struct {
	cache *cache.LRUCache[*Session]
}

// NewSessionStore creates the store. onExpire, if not nil, is called for
// sessions dropped by expiry or capacity, never for Delete.
func NewSessionStore(ttl time.Duration, onExpire func(*Session)) *SessionStore {
	opts := []cache.Option[*Session]{cache.WithSlidingExpiry[*Session]()}
	if onExpire != nil {
		opts = append(opts, cache.WithEvictCallback(func(_ string, sess *Session) { onExpire(sess) }))
	}
	return &SessionStore{
		cache: cache.NewLRUCache[*Session](MaxSessions, ttl, opts...),
	}
}

// Create opens a session for the identity with the given initial state.
func (s *SessionStore) Create(id store.Identity, data core.UserData) *Session {
	sess := &Session{
		Token:       uuid.NewString(),
		UserID:      id.UserID,
		Email:       id.Email,
		accessToken: id.AccessToken,
		data:        data,
	}
	s.cache.Set(sess.Token, sess)
	return sess
}

func (s *SessionStore) Get(token string) (*Session, bool) {
	if token == "" {
		return nil, false
	}
	return s.cache.Get(token)
}

func (s *SessionStore) Delete(token string) {
	s.cache.Delete(token)
}

func (s *SessionStore) Len() int { return s.cache.Size() }

// Cache exposes the underlying cache for periodic cleanup.
func (s *SessionStore) Cache() cache.Cleaner { return s.cache }

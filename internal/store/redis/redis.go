package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"orcamento/internal/core"
	"orcamento/internal/store"
)

const (
	recordKeyPrefix  = "orcamento:user:"
	accountKeyPrefix = "orcamento:account:"
)

// client is the subset of *goredis.Client the store uses.
type client interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *goredis.BoolCmd
	Ping(ctx context.Context) *goredis.StatusCmd
	Close() error
}

// Store keeps each UserData as a JSON string under orcamento:user:<id>.
type Store struct {
	rdb client
}

// Options configures the redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// New connects to redis and verifies the connection.
func New(ctx context.Context, opts Options) (*Store, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}
	return &Store{rdb: rdb}, nil
}

func newWithClient(c client) *Store { return &Store{rdb: c} }

func recordKey(userID string) string { return recordKeyPrefix + userID }

func accountKey(email string) string { return accountKeyPrefix + strings.ToLower(email) }

func (s *Store) Load(ctx context.Context, userID string) (core.UserData, error) {
	raw, err := s.rdb.Get(ctx, recordKey(userID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return core.UserData{}, store.ErrNotFound
	}
	if err != nil {
		return core.UserData{}, fmt.Errorf("get record: %w", err)
	}
	var u core.UserData
	if err := json.Unmarshal(raw, &u); err != nil {
		return core.UserData{}, fmt.Errorf("decode record: %w", err)
	}
	u.Normalize()
	return u, nil
}

func (s *Store) Save(ctx context.Context, userID string, data core.UserData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if err := s.rdb.Set(ctx, recordKey(userID), raw, 0).Err(); err != nil {
		return fmt.Errorf("set record: %w", err)
	}
	return nil
}

type accountJSON struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash []byte    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (s *Store) CreateAccount(ctx context.Context, a store.Account) error {
	raw, err := json.Marshal(accountJSON(a))
	if err != nil {
		return fmt.Errorf("encode account: %w", err)
	}
	ok, err := s.rdb.SetNX(ctx, accountKey(a.Email), raw, 0).Result()
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	if !ok {
		return store.ErrEmailTaken
	}
	return nil
}

func (s *Store) AccountByEmail(ctx context.Context, email string) (store.Account, error) {
	raw, err := s.rdb.Get(ctx, accountKey(email)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return store.Account{}, store.ErrAccountNotFound
	}
	if err != nil {
		return store.Account{}, fmt.Errorf("get account: %w", err)
	}
	var a accountJSON
	if err := json.Unmarshal(raw, &a); err != nil {
		return store.Account{}, fmt.Errorf("decode account: %w", err)
	}
	return store.Account(a), nil
}

// Ping reports whether redis is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

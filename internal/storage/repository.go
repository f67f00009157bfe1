package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"orcamento/internal/core"
	"orcamento/internal/store"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Load implements store.RecordStore
func (r *SQLiteRepository) Load(ctx context.Context, userID string) (core.UserData, error) {
	rec, err := r.queries.GetUserRecord(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.UserData{}, store.ErrNotFound
	}
	if err != nil {
		return core.UserData{}, fmt.Errorf("get user record: %w", err)
	}

	var u core.UserData
	if err := json.Unmarshal([]byte(rec.Data), &u); err != nil {
		return core.UserData{}, fmt.Errorf("decode user record: %w", err)
	}
	u.Normalize()
	return u, nil
}

// Save implements store.RecordStore
func (r *SQLiteRepository) Save(ctx context.Context, userID string, data core.UserData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode user record: %w", err)
	}
	if err := r.queries.UpsertUserRecord(ctx, userID, string(raw)); err != nil {
		return fmt.Errorf("upsert user record: %w", err)
	}

	slog.DebugContext(ctx, "User record saved to SQLite", "user_id", userID, "bytes", len(raw))
	return nil
}

// CreateAccount implements store.AccountStore
func (r *SQLiteRepository) CreateAccount(ctx context.Context, a store.Account) error {
	err := r.queries.CreateAccount(ctx, CreateAccountParams{
		ID:           a.ID,
		Email:        strings.ToLower(a.Email),
		Name:         a.Name,
		PasswordHash: a.PasswordHash,
		CreatedAt:    a.CreatedAt,
	})
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrEmailTaken
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// AccountByEmail implements store.AccountStore
func (r *SQLiteRepository) AccountByEmail(ctx context.Context, email string) (store.Account, error) {
	a, err := r.queries.GetAccountByEmail(ctx, strings.ToLower(email))
	if errors.Is(err, sql.ErrNoRows) {
		return store.Account{}, store.ErrAccountNotFound
	}
	if err != nil {
		return store.Account{}, fmt.Errorf("get account: %w", err)
	}
	return store.Account{
		ID:           a.ID,
		Email:        a.Email,
		Name:         a.Name,
		PasswordHash: a.PasswordHash,
		CreatedAt:    a.CreatedAt,
	}, nil
}

// RecordVersion returns how many times the user's record has been saved.
func (r *SQLiteRepository) RecordVersion(ctx context.Context, userID string) (int64, error) {
	rec, err := r.queries.GetUserRecord(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, store.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get user record: %w", err)
	}
	return rec.Version, nil
}

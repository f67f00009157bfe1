package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"orcamento/internal/core"
	"orcamento/internal/store"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestRunMigrations_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.db")
	v1, err := RunMigrations(path)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	v2, err := RunMigrations(path)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if v1 != 1 || v2 != 1 {
		t.Fatalf("unexpected versions %d %d", v1, v2)
	}
}

func TestSQLiteRepository_LoadMissing(t *testing.T) {
	repo := newTestRepo(t)
	if _, err := repo.Load(context.Background(), "u1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteRepository_SaveOverwrites(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u := core.NewUserData("Ana", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	u.Salary = 5000
	if err := repo.Save(ctx, "u1", u); err != nil {
		t.Fatalf("save: %v", err)
	}
	u.Salary = 6000
	u.Goals = append(u.Goals, core.Goal{ID: "g1", Name: "Viagem", TargetAmount: 3000, Deadline: "2024-12-01"})
	if err := repo.Save(ctx, "u1", u); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := repo.Load(ctx, "u1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Salary != 6000 || len(got.Goals) != 1 || len(got.FixedExpenses) != 7 {
		t.Fatalf("unexpected record %+v", got)
	}

	v, err := repo.RecordVersion(ctx, "u1")
	if err != nil || v != 2 {
		t.Fatalf("expected version 2, got %d (%v)", v, err)
	}
}

func TestSQLiteRepository_Accounts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	a := store.Account{
		ID:           "id-1",
		Email:        "Ana@Example.com",
		Name:         "Ana",
		PasswordHash: []byte("hash"),
		CreatedAt:    time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := repo.CreateAccount(ctx, a); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.CreateAccount(ctx, a); !errors.Is(err, store.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	got, err := repo.AccountByEmail(ctx, "ana@example.com")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.ID != "id-1" || string(got.PasswordHash) != "hash" {
		t.Fatalf("unexpected account %+v", got)
	}
	if _, err := repo.AccountByEmail(ctx, "bob@example.com"); !errors.Is(err, store.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

package storage

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries holds the statements used by the repository.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type UserRecord struct {
	UserID    string
	Data      string
	Version   int64
	UpdatedAt time.Time
}

type AccountRow struct {
	ID           string
	Email        string
	Name         string
	PasswordHash []byte
	CreatedAt    time.Time
}

const getUserRecord = `
SELECT user_id, data, version, updated_at FROM user_records WHERE user_id = ?
`

func (q *Queries) GetUserRecord(ctx context.Context, userID string) (UserRecord, error) {
	row := q.db.QueryRowContext(ctx, getUserRecord, userID)
	var r UserRecord
	err := row.Scan(&r.UserID, &r.Data, &r.Version, &r.UpdatedAt)
	return r, err
}

const upsertUserRecord = `
INSERT INTO user_records (user_id, data, version, updated_at)
VALUES (?, ?, 1, CURRENT_TIMESTAMP)
ON CONFLICT(user_id) DO UPDATE SET
    data = excluded.data,
    version = user_records.version + 1,
    updated_at = CURRENT_TIMESTAMP
`

func (q *Queries) UpsertUserRecord(ctx context.Context, userID, data string) error {
	_, err := q.db.ExecContext(ctx, upsertUserRecord, userID, data)
	return err
}

const createAccount = `
INSERT INTO accounts (id, email, name, password_hash, created_at) VALUES (?, ?, ?, ?, ?)
`

type CreateAccountParams struct {
	ID           string
	Email        string
	Name         string
	PasswordHash []byte
	CreatedAt    time.Time
}

func (q *Queries) CreateAccount(ctx context.Context, arg CreateAccountParams) error {
	_, err := q.db.ExecContext(ctx, createAccount, arg.ID, arg.Email, arg.Name, arg.PasswordHash, arg.CreatedAt)
	return err
}

const getAccountByEmail = `
SELECT id, email, name, password_hash, created_at FROM accounts WHERE email = ?
`

func (q *Queries) GetAccountByEmail(ctx context.Context, email string) (AccountRow, error) {
	row := q.db.QueryRowContext(ctx, getAccountByEmail, email)
	var a AccountRow
	err := row.Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.CreatedAt)
	return a, err
}

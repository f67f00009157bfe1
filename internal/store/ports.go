package store

import (
	"context"
	"errors"
	"time"

	"orcamento/internal/core"
)

var (
	// ErrNotFound is returned by Load when no record exists for the user.
	ErrNotFound = errors.New("record not found")
	// ErrEmailTaken is returned when an account already uses the email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrAccountNotFound is returned by account lookups that match nothing.
	ErrAccountNotFound = errors.New("account not found")
)

// RecordStore keeps one UserData snapshot per user.
type RecordStore interface {
	Load(ctx context.Context, userID string) (core.UserData, error)
	// Save fully overwrites the stored snapshot.
	Save(ctx context.Context, userID string, data core.UserData) error
}

// Account is a locally managed login.
type Account struct {
	ID           string
	Email        string
	Name         string
	PasswordHash []byte
	CreatedAt    time.Time
}

// AccountStore persists accounts for backends without their own auth service.
type AccountStore interface {
	CreateAccount(ctx context.Context, a Account) error
	AccountByEmail(ctx context.Context, email string) (Account, error)
}

// Identity is the result of a successful sign-up or sign-in. AccessToken is
// set by authenticators whose record store authorizes per user, such as
// Supabase with row level security.
type Identity struct {
	UserID      string `json:"userId"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	AccessToken string `json:"-"`
}

type accessTokenKey struct{}

// WithAccessToken attaches the signed-in user's token to ctx so record stores
// and authenticators act on the user's behalf.
func WithAccessToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, accessTokenKey{}, token)
}

// AccessToken returns the token attached by WithAccessToken, or "".
func AccessToken(ctx context.Context) string {
	token, _ := ctx.Value(accessTokenKey{}).(string)
	return token
}

// Authenticator verifies credentials. Sessions are held by the caller.
type Authenticator interface {
	SignUp(ctx context.Context, name, email, password string) (Identity, error)
	SignIn(ctx context.Context, email, password string) (Identity, error)
	// SignOut revokes the user's tokens. The access token, if any, is on ctx.
	SignOut(ctx context.Context, userID string) error
	RequestPasswordReset(ctx context.Context, email string) error
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"orcamento/internal/core"
	"orcamento/internal/store"
)

// MinPasswordLength matches the hosted auth service default.
const MinPasswordLength = 6

// ErrInvalidCredentials is returned for an unknown email or a wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail accepts a bare address such as "ana@example.com".
func ValidateEmail(email string) error {
	if email == "" {
		return &core.ValidationError{Form: core.FormAccount, Field: "email", Err: core.ErrInvalidEmail}
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return &core.ValidationError{Form: core.FormAccount, Field: "email", Err: core.ErrInvalidEmail}
	}
	return nil
}

// ValidateCredentials checks the shape of an email and password pair.
func ValidateCredentials(email, password string) error {
	if err := ValidateEmail(email); err != nil {
		return err
	}
	if len(password) < MinPasswordLength {
		return &core.ValidationError{Form: core.FormAccount, Field: "password", Err: core.ErrPasswordTooShort}
	}
	return nil
}

// ValidateSignUp also checks that the password was typed twice the same way.
func ValidateSignUp(email, password, confirm string) error {
	if err := ValidateCredentials(NormalizeEmail(email), password); err != nil {
		return err
	}
	if password != confirm {
		return &core.ValidationError{Form: core.FormAccount, Field: "confirmPassword", Err: core.ErrPasswordMismatch}
	}
	return nil
}

// Local authenticates against accounts kept in an AccountStore with bcrypt hashes.
type Local struct {
	accounts store.AccountStore
	cost     int
	now      func() time.Time
}

// NewLocal creates a Local authenticator. cost 0 means bcrypt.DefaultCost.
func NewLocal(accounts store.AccountStore, cost int) *Local {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Local{accounts: accounts, cost: cost, now: time.Now}
}

func (l *Local) SignUp(ctx context.Context, name, email, password string) (store.Identity, error) {
	email = NormalizeEmail(email)
	if err := ValidateCredentials(email, password); err != nil {
		return store.Identity{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), l.cost)
	if err != nil {
		return store.Identity{}, fmt.Errorf("hash password: %w", err)
	}
	acc := store.Account{
		ID:           core.NewID(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		CreatedAt:    l.now().UTC(),
	}
	if err := l.accounts.CreateAccount(ctx, acc); err != nil {
		return store.Identity{}, fmt.Errorf("create account: %w", err)
	}
	return store.Identity{UserID: acc.ID, Email: acc.Email, Name: acc.Name}, nil
}

func (l *Local) SignIn(ctx context.Context, email, password string) (store.Identity, error) {
	acc, err := l.accounts.AccountByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, store.ErrAccountNotFound) {
		return store.Identity{}, ErrInvalidCredentials
	}
	if err != nil {
		return store.Identity{}, fmt.Errorf("find account: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword(acc.PasswordHash, []byte(password)); err != nil {
		return store.Identity{}, ErrInvalidCredentials
	}
	return store.Identity{UserID: acc.ID, Email: acc.Email, Name: acc.Name}, nil
}

// SignOut has nothing to revoke for local accounts.
func (l *Local) SignOut(context.Context, string) error { return nil }

// RequestPasswordReset has no mail transport; the request is logged and accepted.
func (l *Local) RequestPasswordReset(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	if _, err := l.accounts.AccountByEmail(ctx, email); err != nil && !errors.Is(err, store.ErrAccountNotFound) {
		return fmt.Errorf("find account: %w", err)
	}
	slog.InfoContext(ctx, "Password reset requested", "email", email)
	return nil
}

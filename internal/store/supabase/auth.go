package supabase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go/types"

	"orcamento/internal/auth"
	"orcamento/internal/store"
)

func identity(u types.User, accessToken string) store.Identity {
	name, _ := u.UserMetadata["name"].(string)
	return store.Identity{UserID: u.ID.String(), Email: u.Email, Name: name, AccessToken: accessToken}
}

// statusCode extracts the HTTP status gotrue-go puts in its error text, or 0.
func statusCode(err error) int {
	var code int
	if _, scanErr := fmt.Sscanf(err.Error(), "response status code %d", &code); scanErr != nil {
		return 0
	}
	return code
}

// mapAuthError turns GoTrue rejections into auth sentinels. Anything else,
// transport failures and 5xx included, is returned unchanged.
func mapAuthError(err error) error {
	if errors.Is(err, types.ErrInvalidTokenRequest) {
		return auth.ErrInvalidCredentials
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "already registered"), strings.Contains(msg, "already exists"):
		return store.ErrEmailTaken
	case strings.Contains(msg, "invalid_grant"), strings.Contains(msg, "invalid login credentials"),
		strings.Contains(msg, "invalid_credentials"):
		return auth.ErrInvalidCredentials
	}
	return err
}

// SignUp registers a GoTrue user with the name in its metadata. With email
// confirmation enabled no session is returned and AccessToken stays empty.
func (c *Client) SignUp(ctx context.Context, name, email, password string) (store.Identity, error) {
	email = auth.NormalizeEmail(email)
	if err := auth.ValidateCredentials(email, password); err != nil {
		return store.Identity{}, err
	}
	resp, err := c.auth.Signup(types.SignupRequest{
		Email:    email,
		Password: password,
		Data:     map[string]interface{}{"name": strings.TrimSpace(name)},
	})
	if err != nil {
		return store.Identity{}, fmt.Errorf("sign up: %w", mapAuthError(err))
	}
	if resp.User.ID == uuid.Nil {
		return store.Identity{}, fmt.Errorf("sign up: no user returned")
	}
	return identity(resp.User, resp.AccessToken), nil
}

// SignIn uses the password grant. The returned identity carries the user's
// access token for row level security.
func (c *Client) SignIn(ctx context.Context, email, password string) (store.Identity, error) {
	resp, err := c.auth.SignInWithEmailPassword(auth.NormalizeEmail(email), password)
	if err != nil {
		if statusCode(err) == http.StatusBadRequest {
			return store.Identity{}, auth.ErrInvalidCredentials
		}
		return store.Identity{}, fmt.Errorf("sign in: %w", mapAuthError(err))
	}
	if resp.User.ID == uuid.Nil || resp.AccessToken == "" {
		return store.Identity{}, auth.ErrInvalidCredentials
	}
	return identity(resp.User, resp.AccessToken), nil
}

// SignOut revokes the refresh tokens of the session whose access token is on
// ctx. An already expired token counts as signed out.
func (c *Client) SignOut(ctx context.Context, userID string) error {
	token := store.AccessToken(ctx)
	if token == "" {
		slog.DebugContext(ctx, "Supabase session closed locally", "user_id", userID)
		return nil
	}
	if err := c.auth.WithToken(token).Logout(); err != nil {
		switch statusCode(err) {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return nil
		}
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

// RequestPasswordReset asks GoTrue to email a recovery link.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	if err := c.auth.Recover(types.RecoverRequest{Email: auth.NormalizeEmail(email)}); err != nil {
		return fmt.Errorf("request password reset: %w", err)
	}
	return nil
}

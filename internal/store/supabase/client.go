package supabase

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/postgrest-go"

	"orcamento/internal/store"
)

// Config holds the project URL and keys.
type Config struct {
	URL     string
	AnonKey string
	// ServiceKey bypasses row level security. Without it record calls need
	// the signed-in user's access token on the context.
	ServiceKey string
	Table      string
	HTTPClient *http.Client
}

// Client talks to the PostgREST and GoTrue endpoints of a Supabase project.
// It is created once at startup and shared.
type Client struct {
	restURL    string
	anonKey    string
	serviceKey string
	table      string
	httpClient *http.Client
	auth       gotrue.Client
}

func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("supabase URL is required")
	}
	if cfg.AnonKey == "" {
		return nil, fmt.Errorf("supabase anon key is required")
	}
	table := cfg.Table
	if table == "" {
		table = "user_data"
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	baseURL := strings.TrimRight(cfg.URL, "/")

	return &Client{
		restURL:    baseURL + "/rest/v1",
		anonKey:    cfg.AnonKey,
		serviceKey: cfg.ServiceKey,
		table:      table,
		httpClient: httpClient,
		auth: gotrue.New("", cfg.AnonKey).
			WithCustomGoTrueURL(baseURL + "/auth/v1").
			WithClient(*httpClient),
	}, nil
}

// bearer picks the token for a PostgREST call: the user's access token when
// one is on ctx, then the service key, then the anon key.
func (c *Client) bearer(ctx context.Context) string {
	if token := store.AccessToken(ctx); token != "" {
		return token
	}
	if c.serviceKey != "" {
		return c.serviceKey
	}
	return c.anonKey
}

// rest returns a PostgREST client for one call. postgrest-go keeps the
// Authorization header on the client, so it is never shared between users.
func (c *Client) rest(ctx context.Context) *postgrest.Client {
	pc := postgrest.NewClient(c.restURL, "", map[string]string{"apikey": c.anonKey})
	pc.SetAuthToken(c.bearer(ctx))
	if c.httpClient.Transport != nil {
		pc.Transport.Parent = c.httpClient.Transport
	}
	return pc
}

// Ping checks that the REST endpoint answers.
func (c *Client) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, _, err := c.rest(ctx).From(c.table).Select("user_id", "", false).Limit(1, "").Execute()
	if err != nil {
		return fmt.Errorf("ping supabase: %w", err)
	}
	return nil
}

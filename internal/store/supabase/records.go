package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"orcamento/internal/core"
	"orcamento/internal/store"
)

// row is one line of the user data table. The whole UserData lives in data.
type row struct {
	UserID    string          `json:"user_id"`
	Data      json.RawMessage `json:"data"`
	UpdatedAt time.Time       `json:"updated_at,omitempty"`
}

// Load fetches the user's row. Under row level security a call without the
// user's token sees no rows and reports store.ErrNotFound.
func (c *Client) Load(ctx context.Context, userID string) (core.UserData, error) {
	if err := ctx.Err(); err != nil {
		return core.UserData{}, err
	}
	body, _, err := c.rest(ctx).From(c.table).
		Select("user_id,data,updated_at", "", false).
		Eq("user_id", userID).
		Execute()
	if err != nil {
		return core.UserData{}, fmt.Errorf("load record: %w", err)
	}

	var rows []row
	if err := json.Unmarshal(body, &rows); err != nil {
		return core.UserData{}, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(rows) == 0 || len(rows[0].Data) == 0 || string(rows[0].Data) == "null" {
		return core.UserData{}, store.ErrNotFound
	}

	var u core.UserData
	if err := json.Unmarshal(rows[0].Data, &u); err != nil {
		return core.UserData{}, fmt.Errorf("decode record: %w", err)
	}
	u.Normalize()
	return u, nil
}

// Save upserts the user's row keyed by user_id.
func (c *Client) Save(ctx context.Context, userID string, data core.UserData) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	payload := []row{{UserID: userID, Data: raw, UpdatedAt: time.Now().UTC()}}
	if _, _, err := c.rest(ctx).From(c.table).Upsert(payload, "user_id", "minimal", "").Execute(); err != nil {
		return fmt.Errorf("save record: %w", err)
	}
	return nil
}

package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"orcamento/internal/sheets"
)

// Store keeps exported snapshots in process. Used when no spreadsheet is configured.
type Store struct {
	mu   sync.Mutex
	rows []sheets.SnapshotRow
}

var (
	_ sheets.SnapshotExporter = (*Store)(nil)
	_ sheets.SnapshotLister   = (*Store)(nil)
)

func New() *Store { return &Store{} }

// AppendSnapshot stores the row and returns a synthetic row reference.
func (s *Store) AppendSnapshot(_ context.Context, row sheets.SnapshotRow) (string, error) {
	if row.UserID == "" {
		return "", errors.New("snapshot row has no user id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// ListSnapshots returns the rows of userID in insertion order.
func (s *Store) ListSnapshots(_ context.Context, userID string) ([]sheets.SnapshotRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []sheets.SnapshotRow
	for _, r := range s.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

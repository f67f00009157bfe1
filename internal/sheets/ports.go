package sheets

import (
	"context"
	"time"

	"orcamento/internal/core"
)

// SnapshotRow is one exported budget snapshot.
type SnapshotRow struct {
	SavedAt  time.Time
	UserID   string
	Month    int // 0-11, as stored in UserData
	Snapshot core.BudgetSnapshot
	Goals    int
}

// Ports for outbound adapters.
type (
	SnapshotExporter interface {
		AppendSnapshot(ctx context.Context, row SnapshotRow) (rowRef string, err error)
	}

	// SnapshotLister reads back the exported history of one user.
	SnapshotLister interface {
		ListSnapshots(ctx context.Context, userID string) ([]SnapshotRow, error)
	}

	SnapshotHistory interface {
		SnapshotExporter
		SnapshotLister
	}
)

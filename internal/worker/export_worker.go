package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"orcamento/internal/amqp"
	"orcamento/internal/cache"
	"orcamento/internal/core"
	"orcamento/internal/sheets"
	"orcamento/internal/store"
)

const (
	seenCacheSize = 1000
	seenCacheTTL  = time.Hour
)

// ExportWorker appends saved budget snapshots to the history sheet.
type ExportWorker struct {
	exporter sheets.SnapshotExporter
	records  store.RecordStore
	now      func() time.Time

	// seen drops redelivered messages that were already exported.
	seen *cache.LRUCache[string]
}

// NewExportWorker creates a worker. records may be nil when only AMQP
// messages are handled.
func NewExportWorker(exporter sheets.SnapshotExporter, records store.RecordStore) *ExportWorker {
	return &ExportWorker{
		exporter: exporter,
		records:  records,
		now:      time.Now,
		seen:     cache.NewLRUCache[string](seenCacheSize, seenCacheTTL),
	}
}

// SeenCache exposes the deduplication cache for periodic cleanup.
func (w *ExportWorker) SeenCache() *cache.LRUCache[string] { return w.seen }

// HandleSnapshotSaved processes a single budget.saved message from AMQP.
func (w *ExportWorker) HandleSnapshotSaved(ctx context.Context, msg *amqp.SnapshotSavedMessage) error {
	key := fmt.Sprintf("%s@%d", msg.UserID, msg.Timestamp.UnixNano())
	if ref, ok := w.seen.Get(key); ok {
		slog.InfoContext(ctx, "Snapshot already exported, skipping",
			"user_id", msg.UserID,
			"sheets_ref", ref)
		return nil
	}

	slog.InfoContext(ctx, "Processing snapshot message",
		"user_id", msg.UserID,
		"month", msg.Month)

	ref, err := w.exporter.AppendSnapshot(ctx, sheets.SnapshotRow{
		SavedAt:  msg.Timestamp,
		UserID:   msg.UserID,
		Month:    msg.Month,
		Snapshot: msg.Snapshot,
		Goals:    msg.Goals,
	})
	if err != nil {
		return fmt.Errorf("append snapshot to sheets: %w", err)
	}
	w.seen.Set(key, ref)

	slog.InfoContext(ctx, "Successfully exported snapshot",
		"user_id", msg.UserID,
		"sheets_ref", ref,
		"remaining_balance", msg.Snapshot.RemainingBalance)
	return nil
}

// ExportUser loads the stored record of userID and exports its current snapshot.
// Used to backfill history outside the message flow.
func (w *ExportWorker) ExportUser(ctx context.Context, userID string) (string, error) {
	if w.records == nil {
		return "", fmt.Errorf("export user: no record store configured")
	}
	u, err := w.records.Load(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("load user record: %w", err)
	}

	ref, err := w.exporter.AppendSnapshot(ctx, sheets.SnapshotRow{
		SavedAt:  w.now().UTC(),
		UserID:   userID,
		Month:    u.LastSavedMonth,
		Snapshot: core.Summarize(u),
		Goals:    len(u.Goals),
	})
	if err != nil {
		return "", fmt.Errorf("append snapshot to sheets: %w", err)
	}

	slog.InfoContext(ctx, "Exported stored snapshot", "user_id", userID, "sheets_ref", ref)
	return ref, nil
}

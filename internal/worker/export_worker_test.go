package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"orcamento/internal/amqp"
	"orcamento/internal/core"
	"orcamento/internal/sheets"
	sheetsmem "orcamento/internal/sheets/memory"
	"orcamento/internal/store"
	storemem "orcamento/internal/store/memory"
)

type failingExporter struct{ calls int }

func (f *failingExporter) AppendSnapshot(context.Context, sheets.SnapshotRow) (string, error) {
	f.calls++
	return "", errors.New("quota exceeded")
}

func TestExportWorker_HandleSnapshotSaved(t *testing.T) {
	ctx := context.Background()
	exp := sheetsmem.New()
	w := NewExportWorker(exp, nil)

	at := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	msg := &amqp.SnapshotSavedMessage{
		Event:     amqp.EventBudgetSaved,
		UserID:    "u1",
		Month:     5,
		Snapshot:  core.BudgetSnapshot{TotalIncome: 5000, RemainingBalance: 4750},
		Goals:     2,
		Timestamp: at,
	}

	if err := w.HandleSnapshotSaved(ctx, msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	// Redelivery of the same message is not exported twice.
	if err := w.HandleSnapshotSaved(ctx, msg); err != nil {
		t.Fatalf("handle redelivery: %v", err)
	}

	rows, _ := exp.ListSnapshots(ctx, "u1")
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Goals != 2 || rows[0].Month != 5 || !rows[0].SavedAt.Equal(at) {
		t.Errorf("unexpected row %+v", rows[0])
	}
}

func TestExportWorker_HandleSnapshotSaved_ExporterError(t *testing.T) {
	exp := &failingExporter{}
	w := NewExportWorker(exp, nil)
	msg := &amqp.SnapshotSavedMessage{Event: amqp.EventBudgetSaved, UserID: "u1", Timestamp: time.Now()}

	if err := w.HandleSnapshotSaved(context.Background(), msg); err == nil {
		t.Fatal("expected error")
	}
	// A failed export is retried on redelivery.
	_ = w.HandleSnapshotSaved(context.Background(), msg)
	if exp.calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", exp.calls)
	}
}

func TestExportWorker_ExportUser(t *testing.T) {
	ctx := context.Background()
	records := storemem.New()
	exp := sheetsmem.New()
	w := NewExportWorker(exp, records)
	w.now = func() time.Time { return time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC) }

	if _, err := w.ExportUser(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	u := core.NewUserData("Ana", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	u.Salary = 5000
	u.OneTimeExpenses = []core.OneTimeExpense{{ID: "e1", Name: "Café", Value: 50}}
	if err := records.Save(ctx, "u1", u); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := w.ExportUser(ctx, "u1"); err != nil {
		t.Fatalf("export: %v", err)
	}
	rows, _ := exp.ListSnapshots(ctx, "u1")
	if len(rows) != 1 || rows[0].Snapshot.RemainingBalance != 4950 {
		t.Fatalf("unexpected rows %+v", rows)
	}
}

func TestExportWorker_ExportUser_NoStore(t *testing.T) {
	if _, err := NewExportWorker(sheetsmem.New(), nil).ExportUser(context.Background(), "u1"); err == nil {
		t.Fatal("expected error")
	}
}

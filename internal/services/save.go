package services

import (
	"context"
	"errors"
	"fmt"

	"orcamento/internal/amqp"
	"orcamento/internal/core"
	applog "orcamento/internal/log"
)

// Save writes the session's full snapshot to the record store.
// The in-memory state is kept whatever the outcome.
func (s *BudgetService) Save(ctx context.Context, sess *Session) (core.UserData, error) {
	if err := s.save(ctx, sess); err != nil {
		return sess.Snapshot(), err
	}
	return sess.Snapshot(), nil
}

// save writes the session's snapshot. A save requested while another is in
// flight marks the session dirty and returns ErrSaveInProgress; the in-flight
// save then writes again so the later change is not lost.
func (s *BudgetService) save(ctx context.Context, sess *Session) error {
	sess.mu.Lock()
	if sess.saving {
		sess.dirty = true
		sess.mu.Unlock()
		return ErrSaveInProgress
	}
	sess.saving = true
	sess.mu.Unlock()

	for {
		snapshot, err := s.write(ctx, sess)

		sess.mu.Lock()
		if err == nil && sess.dirty {
			sess.dirty = false
			sess.mu.Unlock()
			continue
		}
		sess.saving = false
		sess.dirty = false
		sess.mu.Unlock()

		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to save budget",
				applog.FieldUserID, sess.UserID,
				applog.FieldOperation, applog.OpSave,
				applog.FieldSaveMode, s.config.SaveMode,
				applog.FieldError, err)
			return fmt.Errorf("%w: %v", ErrSaveFailed, err)
		}

		sum := core.Summarize(snapshot)
		s.events.LogSaved(ctx, sess.UserID, sum.TotalIncome, sum.TotalExpenses, sum.TotalInvested, sum.RemainingBalance)
		s.publishSaved(ctx, sess.UserID, snapshot)
		return nil
	}
}

// write stores one snapshot of the session's current data.
func (s *BudgetService) write(ctx context.Context, sess *Session) (core.UserData, error) {
	sess.mu.Lock()
	snapshot := sess.data.Clone()
	version := sess.version
	sess.mu.Unlock()

	snapshot.LastSavedMonth = core.MonthIndex(s.now())
	if err := s.records.Save(sess.storeContext(ctx), sess.UserID, snapshot); err != nil {
		return core.UserData{}, err
	}

	sess.mu.Lock()
	sess.data.LastSavedMonth = snapshot.LastSavedMonth
	sess.savedVersion = version
	sess.mu.Unlock()
	return snapshot, nil
}

// publishSaved announces the save. Failures never fail the save itself.
func (s *BudgetService) publishSaved(ctx context.Context, userID string, u core.UserData) {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "AMQP client not available, skipping snapshot message")
		return
	}
	msg := amqp.NewSnapshotSavedMessage(userID, u, s.now())
	if err := s.publisher.PublishSnapshotSaved(ctx, msg); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish snapshot message",
			applog.FieldUserID, userID,
			applog.FieldError, err)
	}
}

func saveNotice(err error) string {
	if errors.Is(err, ErrSaveInProgress) {
		return "Alteração aplicada; será salva ao fim do salvamento em andamento."
	}
	return "Alteração aplicada, mas não foi possível salvar. Tente salvar novamente."
}

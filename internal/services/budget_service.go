package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"orcamento/internal/amqp"
	"orcamento/internal/auth"
	"orcamento/internal/core"
	applog "orcamento/internal/log"
	"orcamento/internal/store"
	"orcamento/internal/tips"
)

var (
	// ErrSaveInProgress is returned when a save is requested while another
	// save of the same session has not finished.
	ErrSaveInProgress = errors.New("a save is already in progress")
	// ErrUnauthorized is returned for a missing or expired session token.
	ErrUnauthorized = errors.New("session not found or expired")
	// ErrItemNotFound is returned when a record id does not exist in the session.
	ErrItemNotFound = errors.New("item not found")
	// ErrInvalidPeriod is returned for a projection horizon that is not offered.
	ErrInvalidPeriod = errors.New("projection period must be one of 3, 6, 12 or 24 months")
	// ErrSaveFailed wraps record store failures of an explicit save.
	ErrSaveFailed = errors.New("could not save budget")
	// ErrLoadFailed wraps record store failures while signing in, and stored
	// records that fail validation.
	ErrLoadFailed = errors.New("could not load budget")
	// ErrAuthUnavailable wraps authenticator failures that are not a verdict
	// on the credentials, such as an unreachable auth service.
	ErrAuthUnavailable = errors.New("authentication service unavailable")
)

// SnapshotPublisher announces saved snapshots. *amqp.Client implements it.
type SnapshotPublisher interface {
	PublishSnapshotSaved(ctx context.Context, msg *amqp.SnapshotSavedMessage) error
}

// Config holds the tunables of a BudgetService.
type Config struct {
	SaveMode      string // "manual" or "immediate"
	SessionTTL    time.Duration
	CDIAnnualRate float64
}

const (
	SaveModeManual    = "manual"
	SaveModeImmediate = "immediate"
)

// BudgetService owns the signed-in sessions and applies every budget
// operation to the session's in-memory state.
type BudgetService struct {
	records   store.RecordStore
	auth      store.Authenticator
	tips      tips.Generator
	publisher SnapshotPublisher
	sessions  *SessionStore
	config    Config
	logger    *applog.Logger
	events    *applog.StructuredLogger
	now       func() time.Time
}

// NewBudgetService wires a service. tipGen and publisher may be nil.
func NewBudgetService(records store.RecordStore, authn store.Authenticator, tipGen tips.Generator, publisher SnapshotPublisher, cfg Config, logger *applog.Logger) *BudgetService {
	if cfg.SaveMode == "" {
		cfg.SaveMode = SaveModeManual
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 12 * time.Hour
	}
	if cfg.CDIAnnualRate <= 0 {
		cfg.CDIAnnualRate = core.DefaultCDIAnnualRate
	}
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentBudget)
	if tipGen == nil {
		tipGen = tips.NewNone()
	}
	s := &BudgetService{
		records:   records,
		auth:      authn,
		tips:      tipGen,
		publisher: publisher,
		config:    cfg,
		logger:    logger,
		events:    applog.NewStructuredLogger(logger),
		now:       time.Now,
	}
	s.sessions = NewSessionStore(cfg.SessionTTL, s.sessionExpired)
	return s
}

func (s *BudgetService) sessionExpired(sess *Session) {
	if sess.Unsaved() {
		s.logger.Warn("Session expired with unsaved changes",
			applog.FieldUserID, sess.UserID,
			applog.FieldSaveMode, s.config.SaveMode)
		return
	}
	s.logger.Debug("Session expired", applog.FieldUserID, sess.UserID)
}

// authError keeps credential verdicts and validation errors as they are and
// marks everything else as an unavailable auth service.
func authError(op string, err error) error {
	var ve *core.ValidationError
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, store.ErrEmailTaken),
		errors.As(err, &ve),
		errors.Is(err, context.Canceled):
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrAuthUnavailable, err)
}

// Sessions exposes the session store for cache maintenance.
func (s *BudgetService) Sessions() *SessionStore { return s.sessions }

// SaveMode reports whether mutations are persisted immediately.
func (s *BudgetService) SaveMode() string { return s.config.SaveMode }

// Session resolves a bearer token.
func (s *BudgetService) Session(token string) (*Session, error) {
	sess, ok := s.sessions.Get(token)
	if !ok {
		return nil, ErrUnauthorized
	}
	return sess, nil
}

// SignUp creates the account and its default budget, then opens a session.
// A failure to store the initial budget is logged only; the first save retries it.
func (s *BudgetService) SignUp(ctx context.Context, name, email, password, confirm string) (*Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &core.ValidationError{Form: core.FormAccount, Field: "name", Err: core.ErrEmptyName}
	}
	if err := auth.ValidateSignUp(email, password, confirm); err != nil {
		return nil, err
	}

	id, err := s.auth.SignUp(ctx, name, auth.NormalizeEmail(email), password)
	if err != nil {
		return nil, authError("sign up", err)
	}

	data := core.NewUserData(name, s.now())
	if err := s.records.Save(store.WithAccessToken(ctx, id.AccessToken), id.UserID, data); err != nil {
		s.logger.WarnContext(ctx, "Failed to store initial budget",
			applog.FieldUserID, id.UserID,
			applog.FieldError, err)
	}

	sess := s.sessions.Create(id, data)
	s.logger.InfoContext(ctx, "Account created",
		applog.FieldUserID, id.UserID,
		applog.FieldOperation, applog.OpSignUp)
	return sess, nil
}

// SignIn authenticates and loads the stored budget into a new session.
// A user without a stored record starts from the defaults. The month rollover
// is applied to the loaded state.
func (s *BudgetService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	id, err := s.auth.SignIn(ctx, auth.NormalizeEmail(email), password)
	if err != nil {
		return nil, authError("sign in", err)
	}

	now := s.now()
	data, err := s.records.Load(store.WithAccessToken(ctx, id.AccessToken), id.UserID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		data = core.NewUserData(id.Name, now)
	case err != nil:
		s.logger.ErrorContext(ctx, "Failed to load budget",
			applog.FieldUserID, id.UserID,
			applog.FieldOperation, applog.OpLoad,
			applog.FieldError, err)
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}
	data.Normalize()
	if data.Name == "" {
		data.Name = id.Name
	}
	if err := data.Validate(); err != nil {
		s.logger.ErrorContext(ctx, "Stored budget is invalid",
			applog.FieldUserID, id.UserID,
			applog.FieldOperation, applog.OpLoad,
			applog.FieldError, err)
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	if core.RollOver(&data, now) {
		s.logger.InfoContext(ctx, "Started a new month",
			applog.FieldUserID, id.UserID,
			applog.FieldOperation, applog.OpRollover,
			applog.FieldMonthIndex, data.LastSavedMonth)
	}

	sess := s.sessions.Create(id, data)
	s.logger.InfoContext(ctx, "Signed in",
		applog.FieldUserID, id.UserID,
		applog.FieldOperation, applog.OpSignIn)
	return sess, nil
}

// SignOut ends the session. The in-memory state is dropped without saving.
func (s *BudgetService) SignOut(ctx context.Context, sess *Session) error {
	s.sessions.Delete(sess.Token)
	if err := s.auth.SignOut(sess.storeContext(ctx), sess.UserID); err != nil {
		return authError("sign out", err)
	}
	s.logger.InfoContext(ctx, "Signed out",
		applog.FieldUserID, sess.UserID,
		applog.FieldOperation, applog.OpSignOut)
	return nil
}

// RequestPasswordReset asks the authenticator to send a reset link.
func (s *BudgetService) RequestPasswordReset(ctx context.Context, email string) error {
	email = auth.NormalizeEmail(email)
	if err := auth.ValidateEmail(email); err != nil {
		return err
	}
	if err := s.auth.RequestPasswordReset(ctx, email); err != nil {
		return authError("request password reset", err)
	}
	return nil
}

// Budget returns a copy of the session's current data.
func (s *BudgetService) Budget(sess *Session) core.UserData {
	return sess.Snapshot()
}

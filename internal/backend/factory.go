package backend

import (
	"context"
	"fmt"
	"log/slog"

	"orcamento/internal/auth"
	"orcamento/internal/storage"
	"orcamento/internal/store/memory"
	"orcamento/internal/store/redis"
	"orcamento/internal/store/supabase"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case RedisBackend:
		return f.createRedisBackend(ctx, config)
	case SupabaseBackend:
		return f.createSupabaseBackend(config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Records: repo,
		Auth:    auth.NewLocal(repo, config.BcryptCost),
		Ready:   repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createRedisBackend(ctx context.Context, config Config) (*BackendResult, error) {
	st, err := redis.New(ctx, redis.Options{
		Addr:     config.RedisAddr,
		Password: config.RedisPassword,
		DB:       config.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis store: %w", err)
	}

	f.logger.Info("Initialized redis backend", "addr", config.RedisAddr, "db", config.RedisDB)

	return &BackendResult{
		Records: st,
		Auth:    auth.NewLocal(st, config.BcryptCost),
		Ready:   st,
		Cleanup: st.Close,
	}, nil
}

func (f *DefaultFactory) createSupabaseBackend(config Config) (*BackendResult, error) {
	cli, err := supabase.New(supabase.Config{
		URL:        config.SupabaseURL,
		AnonKey:    config.SupabaseAnonKey,
		ServiceKey: config.SupabaseServiceKey,
		Table:      config.SupabaseTable,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Supabase client: %w", err)
	}

	f.logger.Info("Initialized Supabase backend",
		"url", config.SupabaseURL,
		"table", config.SupabaseTable,
		"service_key", config.SupabaseServiceKey != "")

	return &BackendResult{
		Records: cli,
		Auth:    cli,
		Ready:   cli,
		Cleanup: nil, // shared HTTP client, nothing to close
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	st := memory.New()

	f.logger.Info("Initialized memory backend")

	return &BackendResult{
		Records: st,
		Auth:    auth.NewLocal(st, config.BcryptCost),
		Cleanup: nil,
	}, nil
}

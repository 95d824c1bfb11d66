// Package bootstrap assembles the store, repositories and services from config.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"socialvibe/internal/config"
	"socialvibe/internal/observability"
	"socialvibe/internal/recordstore"
	"socialvibe/internal/repository"
	"socialvibe/internal/service"
	"socialvibe/internal/session"
)

// Runtime holds every assembled component.
type Runtime struct {
	Config     *config.Config
	Store      *recordstore.Store
	Users      repository.UserRepository
	Posts      repository.PostRepository
	Products   repository.ProductRepository
	Messages   repository.MessageRepository
	Reports    repository.ReportRepository
	Saved      repository.SavedItemsRepository
	Recent     repository.RecentSearchRepository
	Session    *session.Manager
	Moderation *service.ModerationService

	shutdownTracing func(context.Context) error
}

// OpenMedium opens the storage medium selected by cfg.StoreDriver.
func OpenMedium(ctx context.Context, cfg *config.Config) (recordstore.Medium, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		return recordstore.NewMemoryMedium(0), nil
	case config.DriverSQLite:
		return recordstore.OpenSQLite(cfg.StorePath)
	case config.DriverPostgres:
		return recordstore.OpenPostgres(cfg.DatabaseURL)
	case config.DriverRedis:
		return recordstore.OpenRedis(ctx, cfg.RedisURL, cfg.RedisNamespace)
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

// InitRuntime configures logging and tracing, opens the medium and wires
// the repositories, session manager and moderation service.
func InitRuntime(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	observability.Configure(cfg.Env, cfg.LogLevel)

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfig{
		Environment:  cfg.Env,
		StoreDriver:  cfg.StoreDriver,
		Enabled:      cfg.TracingEnabled,
		Exporter:     cfg.TracingExporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SamplerRatio: cfg.TracingSamplerRatio,
	})
	if err != nil {
		return nil, err
	}

	medium, err := OpenMedium(ctx, cfg)
	if err != nil {
		_ = shutdown(ctx)
		return nil, fmt.Errorf("store connection failed: %w", err)
	}

	rt, err := NewRuntime(ctx, cfg, medium)
	if err != nil {
		_ = medium.Close()
		_ = shutdown(ctx)
		return nil, err
	}
	rt.shutdownTracing = shutdown

	observability.Logger.InfoContext(ctx, "runtime ready",
		slog.String("driver", cfg.StoreDriver),
		slog.String("env", cfg.Env),
	)
	return rt, nil
}

// NewRuntime wires components over an already open medium.
func NewRuntime(ctx context.Context, cfg *config.Config, medium recordstore.Medium) (*Runtime, error) {
	store := recordstore.NewStore(medium,
		recordstore.WithPrefix(cfg.StoreKeyPrefix),
		recordstore.WithQuota(cfg.StoreQuotaBytes),
	)

	opts := []repository.Option{repository.WithDefaultAvatar(cfg.DefaultAvatarURL)}
	if cfg.BcryptCost != 0 {
		opts = append(opts, repository.WithBcryptCost(cfg.BcryptCost))
	}

	users := repository.NewUserRepository(store, opts...)
	posts := repository.NewPostRepository(store, users, opts...)
	reports := repository.NewReportRepository(store, opts...)

	mgr, err := session.NewManager(ctx, store, users)
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}

	return &Runtime{
		Config:     cfg,
		Store:      store,
		Users:      users,
		Posts:      posts,
		Products:   repository.NewProductRepository(store, users, opts...),
		Messages:   repository.NewMessageRepository(store, opts...),
		Reports:    reports,
		Saved:      repository.NewSavedItemsRepository(store),
		Recent:     repository.NewRecentSearchRepository(store),
		Session:    mgr,
		Moderation: service.NewModerationService(users, posts, reports),
	}, nil
}

// Close closes the medium and flushes traces.
func (r *Runtime) Close(ctx context.Context) error {
	err := r.Store.Close()
	if r.shutdownTracing != nil {
		err = errors.Join(err, r.shutdownTracing(ctx))
	}
	return err
}

// Package app assembles the storage, broker, repositories and services
// shared by the API server, the worker and clinicctl.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/dentalcare/internal/config"
	"github.com/jwalitptl/dentalcare/internal/kv"
	"github.com/jwalitptl/dentalcare/internal/repository/kvstore"
	authservice "github.com/jwalitptl/dentalcare/internal/service/auth"
	incidentservice "github.com/jwalitptl/dentalcare/internal/service/incident"
	patientservice "github.com/jwalitptl/dentalcare/internal/service/patient"
	statsservice "github.com/jwalitptl/dentalcare/internal/service/stats"
	"github.com/jwalitptl/dentalcare/internal/state"
	"github.com/jwalitptl/dentalcare/internal/storage"
	"github.com/jwalitptl/dentalcare/pkg/auth"
	"github.com/jwalitptl/dentalcare/pkg/logger"
	"github.com/jwalitptl/dentalcare/pkg/messaging"
	"github.com/jwalitptl/dentalcare/pkg/messaging/redis"
	"github.com/jwalitptl/dentalcare/pkg/metrics"
	"github.com/jwalitptl/dentalcare/pkg/security"
)

type App struct {
	Config   *config.Config
	Logger   *logger.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Location *time.Location

	KV      kv.Store
	Storage *storage.Adapter
	Broker  messaging.Broker
	Repos   *kvstore.Repositories

	State  *state.Store
	Syncer *state.Syncer

	Auth      *authservice.Service
	Patients  *patientservice.Service
	Incidents *incidentservice.Service
	// Stats reads from the state store, which the syncer keeps current.
	Stats *statsservice.Service
	// DirectStats reads straight from the repositories.
	DirectStats *statsservice.Service
}

// NewLogger builds the process logger from the log section.
func NewLogger(cfg config.LogConfig) *logger.Logger {
	return logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		JSON:       cfg.JSON,
	})
}

// New opens storage and the broker and wires every service. The state
// store starts empty; call Start to load it and follow changes.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.Log)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg, cfg.Metrics.Namespace)

	a := &App{
		Config:   cfg,
		Logger:   log,
		Registry: reg,
		Metrics:  m,
		Location: loc,
	}

	store, err := kv.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	driver := string(cfg.Storage.Driver)
	if driver == "" {
		driver = string(kv.DriverSQLite)
	}
	a.KV = kv.Instrument(store, driver, m)
	a.Storage = storage.New(a.KV, storage.WithLogger(log), storage.WithMetrics(m))

	if cfg.Clinic.Seed {
		if err := a.Storage.Seed(ctx); err != nil {
			a.KV.Close()
			return nil, fmt.Errorf("failed to seed storage: %w", err)
		}
	}

	a.Broker, err = newBroker(ctx, cfg.Broker, log)
	if err != nil {
		a.KV.Close()
		return nil, err
	}

	a.Repos = kvstore.New(a.Storage,
		kvstore.WithPublisher(a.Broker),
		kvstore.WithLogger(log),
		kvstore.WithMetrics(m),
	)

	a.State = state.NewStore(log)
	a.Syncer = state.NewSyncer(a.State, a.Repos.Patients, a.Repos.Incidents, a.Broker, log)

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		// Tools that never issue tokens still need a signer.
		secret = uuid.NewString()
		log.Warn("no JWT secret configured; using a throwaway secret")
	}
	jwtSvc, err := auth.NewJWTService(auth.Config{
		Secret: secret,
		Expiry: cfg.Auth.TokenExpiry,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Auth = authservice.NewService(a.Repos.Users, a.Repos.Session,
		security.NewBcryptHasher(cfg.Auth.BcryptCost), jwtSvc, a.State, log)
	a.Patients = patientservice.NewService(a.Repos.Patients, a.Repos.Incidents, log)
	a.Incidents = incidentservice.NewService(a.Repos.Incidents, a.Repos.Patients, a.Storage, log)

	statsOpts := []statsservice.Option{
		statsservice.WithLocation(loc),
		statsservice.WithLogger(log),
		statsservice.WithMetrics(m),
	}
	a.Stats = statsservice.NewService(statsservice.StateSource{Store: a.State}, a.Repos.Stats, statsOpts...)
	a.DirectStats = statsservice.NewService(statsservice.RepositorySource{
		PatientRepo:  a.Repos.Patients,
		IncidentRepo: a.Repos.Incidents,
	}, a.Repos.Stats, statsOpts...)

	return a, nil
}

func newBroker(ctx context.Context, cfg config.BrokerConfig, log *logger.Logger) (messaging.Broker, error) {
	switch cfg.Driver {
	case "", "memory":
		return messaging.NewMemoryBroker(), nil
	case "redis":
		b, err := redis.NewRedisBroker(ctx, redis.Config{
			URL:          cfg.RedisURL,
			MaxRetries:   cfg.MaxRetries,
			RetryBackoff: cfg.RetryBackoff,
			PoolSize:     cfg.PoolSize,
			MinIdleConns: cfg.MinIdleConns,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to broker: %w", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown broker driver %q", cfg.Driver)
	}
}

// Start restores the session, loads both collections into the state store
// and follows change events until ctx is cancelled.
func (a *App) Start(ctx context.Context) error {
	if _, err := a.Auth.Initialize(ctx); err != nil {
		a.Logger.Error(err, "failed to restore session")
	}
	if err := a.Syncer.Load(ctx); err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}
	return a.Syncer.Start(ctx)
}

func (a *App) Close() {
	if a.Broker != nil {
		if err := a.Broker.Close(); err != nil {
			a.Logger.Error(err, "failed to close broker")
		}
	}
	if a.KV != nil {
		if err := a.KV.Close(); err != nil {
			a.Logger.Error(err, "failed to close storage")
		}
	}
}

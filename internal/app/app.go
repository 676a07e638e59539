package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/dwitter-backend/internal/data/db"
	"github.com/yungbote/dwitter-backend/internal/data/graph"
	"github.com/yungbote/dwitter-backend/internal/observability"
	"github.com/yungbote/dwitter-backend/internal/pkg/logger"
	"github.com/yungbote/dwitter-backend/internal/platform/memcached"
	"github.com/yungbote/dwitter-backend/internal/platform/neo4jdb"
	"github.com/yungbote/dwitter-backend/internal/realtime/bus"
	"github.com/yungbote/dwitter-backend/internal/services"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    Repos
	Services Services
	Metrics  *observability.Metrics

	dbService    *db.Service
	bus          bus.Bus
	graphClient  *neo4jdb.Client
	graph        graph.Applier
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New(cfg Config) (*App, error) {
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return NewWithLogger(cfg, log)
}

// NewWithLogger wires every dependency. Optional backends (redis, memcached, neo4j,
// OTLP) are skipped when unconfigured; a configured backend that cannot be reached is
// an error.
func NewWithLogger(cfg Config, log *logger.Logger) (*App, error) {
	a := &App{Log: log, Cfg: cfg, Metrics: observability.NewMetrics()}
	a.otelShutdown = observability.InitOTel(context.Background(), log, cfg.Otel)

	dbService, err := db.NewService(log, cfg.DB)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init database: %w", err)
	}
	a.dbService = dbService
	a.DB = dbService.DB()
	if cfg.AutoMigrate {
		if err := a.Migrate(); err != nil {
			a.Close()
			return nil, err
		}
	}

	a.bus, err = bus.NewSocialBus(log, cfg.Redis)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init social bus: %w", err)
	}

	a.graphClient, err = neo4jdb.New(log, cfg.Neo4j)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init neo4j: %w", err)
	}
	a.graph = graph.NewSocialGraph(a.graphClient, log)

	var cache services.FollowStatsCache = services.NoopStatsCache()
	statsCache, err := memcached.NewStatsCache(log, cfg.Memcached)
	if err != nil {
		log.Warn("memcached unavailable, follow stats are uncached", "error", err)
	} else if statsCache != nil {
		cache = statsCache
	}

	a.Repos = wireRepos(a.DB, log)
	a.Services = wireServices(a.DB, log, a.Repos, a.bus, cache, a.Metrics)
	return a, nil
}

func (a *App) Migrate() error {
	if err := a.dbService.AutoMigrateAll(); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

// Start launches the graph projector. It is a no-op without a graph backend.
func (a *App) Start() error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	return graph.StartProjector(ctx, a.bus, a.graph, a.Log)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	// The bus drains queued events into the projector before its context is cancelled.
	if a.bus != nil {
		_ = a.bus.Close()
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.graphClient != nil {
		_ = a.graphClient.Close(context.Background())
	}
	if a.dbService != nil {
		_ = a.dbService.Close()
	}
	if a.otelShutdown != nil {
		_ = a.otelShutdown(context.Background())
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}

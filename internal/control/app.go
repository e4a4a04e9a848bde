package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/vietddude/netwatch/internal/core/chainclock"
	"github.com/vietddude/netwatch/internal/core/config"
	"github.com/vietddude/netwatch/internal/infra/beaconapi"
	"github.com/vietddude/netwatch/internal/infra/cache"
	redisclient "github.com/vietddude/netwatch/internal/infra/redis"
	"github.com/vietddude/netwatch/internal/infra/rpc/provider"
	"github.com/vietddude/netwatch/internal/monitoring/health"
	"github.com/vietddude/netwatch/internal/monitoring/liveness"
)

// App wires the dashboard to its data sources and the status server.
type App struct {
	cfg        *config.AppConfig
	configPath string

	dashboard   *Dashboard
	server      *health.Server
	transport   *provider.HTTPTransport
	clock       *chainclock.Clock
	redisClient *redisclient.Client
	log         *slog.Logger

	// closed when dashboard.Run returns; nil until Start
	runDone chan struct{}
}

// NewApp creates an App from cfg. configPath, when set, is watched for endpoint changes.
func NewApp(cfg *config.AppConfig, configPath string) (*App, error) {
	log := slog.Default().With("component", "app")

	var remote cache.Remote
	var redisClient *redisclient.Client
	if cfg.Redis.Enabled() {
		var err error
		redisClient, err = redisclient.NewClient(cfg.Redis)
		if err != nil {
			log.Warn("Failed to connect to Redis, using local cache only", "error", err)
		} else {
			remote = redisClient
			log.Info("Using Redis for the shared response cache")
		}
	}

	api := beaconapi.NewClient(beaconapi.Options{
		BaseURL:   cfg.API.BaseURL,
		Token:     cfg.API.Token,
		Timeout:   cfg.API.Timeout,
		RateLimit: cfg.API.RateLimit,
		Cache:     cache.New(cfg.Cache.SizeMB, remote),
		CacheTTL:  cfg.Cache.TTL,
	})

	transport := provider.NewHTTPTransport(cfg.Probe.Origin)
	prober := liveness.NewProber(transport, cfg.Probe.Timeout)

	var clock *chainclock.Clock
	var epochClock EpochClock
	if cfg.Network.GenesisTimestamp > 0 {
		clock = chainclock.New(
			time.Unix(cfg.Network.GenesisTimestamp, 0),
			cfg.Network.SecondsPerSlot,
			cfg.Network.SlotsPerEpoch,
		)
		epochClock = clock
	}

	dashboard := NewDashboard(Options{
		Source:          api,
		Prober:          prober,
		Clock:           epochClock,
		Endpoints:       cfg.Endpoints,
		Fallback:        cfg.FallbackTimeline(),
		EpochWindow:     cfg.API.EpochWindow,
		HistorySize:     cfg.Probe.HistorySize,
		RefreshInterval: cfg.Poll.RefreshInterval,
		ProbeInterval:   cfg.Poll.ProbeInterval,
		RecencyInterval: cfg.Poll.RecencyInterval,
	})

	server := health.NewServer(dashboard, health.ServerOptions{
		Port:        cfg.Server.Port,
		CORSOrigins: cfg.Server.CORSOrigins,
		Network:     cfg.Network,
		Wallet:      cfg.Wallet,
	})

	return &App{
		cfg:         cfg,
		configPath:  configPath,
		dashboard:   dashboard,
		server:      server,
		transport:   transport,
		clock:       clock,
		redisClient: redisClient,
		log:         log,
	}, nil
}

// Dashboard returns the app's dashboard.
func (a *App) Dashboard() *Dashboard {
	return a.dashboard
}

// Start starts the status server, the dashboard cycles and the config watcher.
func (a *App) Start(ctx context.Context) error {
	go func() {
		a.log.Info("Starting status server", "port", a.cfg.Server.Port)
		if err := a.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("Status server failed", "error", err)
		}
	}()

	a.runDone = make(chan struct{})
	go func() {
		defer close(a.runDone)
		if err := a.dashboard.Run(ctx); err != nil {
			a.log.Error("Dashboard stopped", "error", err)
		}
	}()

	if a.configPath != "" {
		go func() {
			err := config.Watch(ctx, a.configPath, func(cfg *config.AppConfig) {
				a.dashboard.SetEndpoints(cfg.Endpoints)
			})
			if err != nil {
				a.log.Warn("Config watcher unavailable", "path", a.configPath, "error", err)
			}
		}()
	}

	return nil
}

// Stop stops the status server, waits for the running cycles to return and releases
// connections. The context passed to Start must already be cancelled; ctx bounds the wait.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("Stopping netwatch...")

	var errs []error
	if err := a.server.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("stop server: %w", err))
	}
	if a.runDone != nil {
		select {
		case <-a.runDone:
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("wait for dashboard: %w", ctx.Err()))
		}
	}
	a.Close()
	return errors.Join(errs...)
}

// Close releases resources without touching the server. One-shot commands use it.
func (a *App) Close() {
	if a.clock != nil {
		a.clock.Stop()
	}
	_ = a.transport.Close()
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Warn("Failed to close Redis", "error", err)
		}
	}
}

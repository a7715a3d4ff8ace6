package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"oil-tank-monitor/internal/config"
	"oil-tank-monitor/internal/fleet"
	"oil-tank-monitor/internal/gauge"
	"oil-tank-monitor/internal/httpapi"
	"oil-tank-monitor/internal/scheduler"
	"oil-tank-monitor/internal/service"
	"oil-tank-monitor/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

// Serve runs the fleet read API until interrupted.
func (a *App) Serve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	coordinator := fleet.NewCoordinator(store, a.Config.Fleet.Stations, a.Logger)
	server := httpapi.NewServer(a.Config.Server, coordinator, a.Logger)

	a.Logger.Info().
		Int("stations", a.Config.Fleet.Stations).
		Str("addr", a.Config.Server.ListenAddr).
		Msg("starting fleet api")

	err = server.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("api server terminated with error")
		return err
	}

	a.Logger.Info().Msg("api server stopped")
	return nil
}

// Poll runs the gauge ingestion loop until interrupted.
func (a *App) Poll(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	gauges := gauge.NewGateway(gauge.GatewayOptions{
		BaseURL:   a.Config.Gauge.BaseURL,
		Timeout:   a.Config.Gauge.RequestTimeout,
		UserAgent: a.Config.Gauge.UserAgent,
	}, a.Logger)

	sched := scheduler.New(scheduler.Options{
		Interval:        a.Config.Poller.Interval,
		AlignToInterval: a.Config.Poller.AlignToInterval,
		StartupDelay:    a.Config.Poller.StartupDelay,
	}, a.Logger)

	poller := service.NewPoller(sched, gauges, store, a.Config.Fleet.Stations, a.Logger)

	a.Logger.Info().
		Int("stations", a.Config.Fleet.Stations).
		Dur("interval", a.Config.Poller.Interval).
		Msg("starting gauge poller")

	err = poller.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("poller terminated with error")
		return err
	}

	a.Logger.Info().Msg("poller stopped")
	return nil
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Station int
	Limit   int
}

// ExportOptions hold parameters for exporting a station's level history.
type ExportOptions struct {
	Station   int
	From      *time.Time
	To        *time.Time
	PNGPath   string
	CSVPath   string
	MaxPoints int
}

// SimulateOptions configure the synthetic reading generator.
type SimulateOptions struct {
	Station  int // 0 means every station
	Count    int
	Interval time.Duration
	Seed     int64
}

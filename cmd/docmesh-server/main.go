package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/yndnr/docmesh-go/internal/core/replica"
	_ "github.com/yndnr/docmesh-go/internal/core/replica/automerge"
	_ "github.com/yndnr/docmesh-go/internal/core/replica/oplog"
	"github.com/yndnr/docmesh-go/internal/core/service"
	"github.com/yndnr/docmesh-go/internal/infra/buildinfo"
	"github.com/yndnr/docmesh-go/internal/infra/confloader"
	"github.com/yndnr/docmesh-go/internal/infra/shutdown"
	"github.com/yndnr/docmesh-go/internal/infra/tlscert"
	"github.com/yndnr/docmesh-go/internal/relay"
	"github.com/yndnr/docmesh-go/internal/server/config"
	"github.com/yndnr/docmesh-go/internal/server/httpserver"
	"github.com/yndnr/docmesh-go/internal/server/httpserver/handler"
	"github.com/yndnr/docmesh-go/internal/telemetry/logger"
	"github.com/yndnr/docmesh-go/internal/telemetry/metric"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		addr        = flag.String("addr", "", "HTTP listen address (overrides server.http.addr)")
		logLevel    = flag.String("log-level", "", "Log level (overrides log.level)")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("docmesh-server %s\n", buildinfo.String())
		return nil
	}

	overrides := map[string]any{}
	if *addr != "" {
		overrides["server.http.addr"] = *addr
	}
	if *logLevel != "" {
		overrides["log.level"] = *logLevel
	}
	cfg, loader, err := loadConfig(*configFile, overrides)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	info := buildinfo.Get()
	log.Info("starting docmesh-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", *configFile,
		"engine", cfg.Replica.Engine)
	log.Debug("effective configuration", config.Summary(cfg)...)

	engine, err := replica.Lookup(cfg.Replica.Engine)
	if err != nil {
		return err
	}

	metrics := metric.Global()
	registry := service.NewRegistry(engine,
		service.WithLogger(log),
		service.WithMetrics(metrics),
	)
	metrics.SetSource(registry)

	gate := service.NewGate(registry, service.GateConfig{
		RequireTickets: cfg.Security.Tickets,
		TicketTTL:      cfg.Security.TicketTTL,
		Logger:         log,
		Metrics:        metrics,
	})
	docs := service.NewDocumentService(registry, gate, cfg.Security.Cost)

	reaper := service.NewReaper(registry, cfg.Reaper.Idle, cfg.Reaper.Interval,
		service.WithReaperGate(gate),
		service.WithReaperLogger(log),
	)
	reaperCtx, stopReaper := context.WithCancel(context.Background())
	reaperDone := make(chan struct{})
	go func() {
		defer close(reaperDone)
		reaper.Run(reaperCtx)
	}()

	rl := relay.New(gate, relay.Config{
		QueueSize:    cfg.Relay.Queue,
		Rate:         cfg.Relay.Rate,
		Burst:        cfg.Relay.Burst,
		MaxFrame:     cfg.Relay.MaxFrame,
		PingInterval: cfg.Relay.Ping,
		Origins:      cfg.Server.HTTP.Origins,
	},
		relay.WithLogger(log),
		relay.WithMetrics(metrics),
		relay.WithReject(handler.WriteError),
	)

	router := httpserver.NewRouter(&httpserver.RouterConfig{
		Documents:          docs,
		Stats:              registry,
		Relay:              rl,
		Metrics:            metrics,
		Logger:             log,
		CORSAllowedOrigins: cfg.Server.HTTP.Origins,
		RateLimit:          cfg.Server.HTTP.RateLimit,
		RateBurst:          cfg.Server.HTTP.RateBurst,
	})

	shutdownHandler := shutdown.NewHandler(shutdownTimeout, log)

	serverOpts := []httpserver.Option{httpserver.WithLogger(log)}
	if cfg.Server.HTTP.TLSCert != "" {
		certs, err := tlscert.New(cfg.Server.HTTP.TLSCert, cfg.Server.HTTP.TLSKey, tlscert.WithLogger(log))
		if err != nil {
			return err
		}
		serverOpts = append(serverOpts, httpserver.WithTLS(certs.TLSConfig()))

		certCtx, stopCerts := context.WithCancel(context.Background())
		go func() {
			if err := certs.Run(certCtx); err != nil {
				log.Warn("tls certificate reload disabled", "error", err)
			}
		}()
		shutdownHandler.OnShutdown("tls", func(context.Context) error {
			stopCerts()
			return nil
		})
	}
	httpServer := httpserver.New(cfg.Server.HTTP.Addr, router, serverOpts...)

	// Hooks run in reverse order of registration, so HTTP stops first.
	shutdownHandler.OnShutdown("registry", func(ctx context.Context) error {
		registry.Close()
		return waitCtx(ctx, rl.Wait)
	})
	shutdownHandler.OnShutdown("reaper", func(ctx context.Context) error {
		stopReaper()
		return waitCtx(ctx, func() { <-reaperDone })
	})

	if path := loader.FilePath(); path != "" {
		watcher, err := newWatcher(path, loader, reaper, log)
		if err != nil {
			log.Warn("configuration hot reload disabled", "error", err)
		} else {
			watchCtx, stopWatch := context.WithCancel(context.Background())
			watchDone := make(chan struct{})
			go func() {
				defer close(watchDone)
				watcher.Run(watchCtx)
			}()
			shutdownHandler.OnShutdown("watcher", func(ctx context.Context) error {
				stopWatch()
				return waitCtx(ctx, func() { <-watchDone })
			})
		}
	}

	shutdownHandler.OnShutdown("http", func(ctx context.Context) error {
		router.SetDraining(true)
		return httpServer.Shutdown(ctx)
	})

	go func() {
		if err := httpServer.ListenAndServe(); err != nil {
			log.Error("HTTP server error", "error", err)
			shutdownHandler.Trigger("http server failed")
		}
	}()

	log.Info("server started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads configuration from defaults, file, environment and
// command-line overrides.
func loadConfig(configFile string, overrides map[string]any) (*config.ServerConfig, *confloader.Loader, error) {
	cfg := config.Default()

	opts := []confloader.Option{confloader.WithOverrides(overrides)}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}
	loader := confloader.NewLoader(opts...)

	if err := loader.Load(cfg); err != nil {
		return nil, nil, err
	}
	if err := config.Verify(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, loader, nil
}

// initLogger builds the process logger and installs it as the default.
func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	lc := logger.DefaultConfig()
	lc.Level = cfg.Log.Level
	lc.Format = cfg.Log.Format
	lc.Backend = cfg.Log.Backend
	lc.File = cfg.Log.File
	lc.Output = os.Stdout

	log, err := logger.New(lc)
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)
	return log, nil
}

// newWatcher reloads the runtime-tunable settings when the config file
// changes. The caller runs it.
func newWatcher(path string, loader *confloader.Loader, reaper *service.Reaper, log logger.Logger) (*confloader.Watcher, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		w.Close()
		return nil, err
	}
	w.OnChange(func(string) {
		if err := reload(loader, reaper); err != nil {
			log.Warn("configuration reload rejected", "error", err)
			return
		}
		log.Info("configuration reloaded",
			"log_level", logger.GetLevel(),
			"reaper_idle", reaper.Idle(),
			"reaper_interval", reaper.Interval())
	})
	return w, nil
}

// reload re-reads configuration and applies log.level, reaper.idle and
// reaper.interval. Other settings need a restart.
func reload(loader *confloader.Loader, reaper *service.Reaper) error {
	cfg := config.Default()
	if err := loader.Load(cfg); err != nil {
		return err
	}
	if err := config.Verify(cfg); err != nil {
		return err
	}
	logger.SetLevel(cfg.Log.Level)
	reaper.SetIdle(cfg.Reaper.Idle)
	reaper.SetInterval(cfg.Reaper.Interval)
	return nil
}

// waitCtx runs wait and returns early if ctx expires first.
func waitCtx(ctx context.Context, wait func()) error {
	done := make(chan struct{})
	go func() {
		wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.Join(errors.New("shutdown wait abandoned"), ctx.Err())
	}
}

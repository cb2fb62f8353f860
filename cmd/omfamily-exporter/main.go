// Package main provides the entry point for omfamily-exporter.
//
// omfamily-exporter serves its metric families over HTTP: the Prometheus
// handler on the metrics path, the native OpenMetrics encoder on
// /openmetrics and a JSON listing on /families.
package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/omfamily/internal/infra/buildinfo"
	"github.com/yndnr/omfamily/internal/infra/confloader"
	"github.com/yndnr/omfamily/internal/infra/shutdown"
	"github.com/yndnr/omfamily/internal/infra/tlsroots"
	"github.com/yndnr/omfamily/internal/server/config"
	"github.com/yndnr/omfamily/internal/server/httpserver"
	"github.com/yndnr/omfamily/internal/server/localserver"
	"github.com/yndnr/omfamily/internal/telemetry/logger"
	"github.com/yndnr/omfamily/internal/telemetry/metric"
)

func main() {
	app := &cli.App{
		Name:    "omfamily-exporter",
		Usage:   "Serve OpenMetrics families over HTTP",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to configuration file",
				EnvVars: []string{"OMFAMILY_CONFIG"},
			},
		},
		Action: func(c *cli.Context) error {
			return run(c.Context, c.String("config"))
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configFile string) error {
	loader := newLoader(configFile)
	cfg, err := loadConfig(loader)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	info := buildinfo.Get()
	log.Info("starting omfamily-exporter",
		"version", info.Version,
		"commit", info.Commit,
		"config", configFile)
	log.Debug("effective configuration", "config", config.Sanitize(cfg))

	reg := metric.Global()
	if err := buildinfo.Register(reg); err != nil {
		return fmt.Errorf("register build info: %w", err)
	}
	instruments, err := httpserver.NewInstruments(reg, cfg.Family, httpserver.WithSeriesLogger(log))
	if err != nil {
		return fmt.Errorf("register http families: %w", err)
	}

	router := httpserver.NewRouter(&httpserver.RouterConfig{
		Registry:    reg,
		Logger:      log,
		MetricsPath: cfg.Server.HTTP.MetricsPath,
		BearerToken: cfg.Server.HTTP.BearerToken,
		RateLimit:   cfg.Server.RateLimit,
		Instruments: instruments,

		TrustProxyHeaders: cfg.Server.HTTP.TrustProxyHeaders,
	})
	httpServer := httpserver.New(cfg.Server.HTTP.Addr, router, cfg.Server.HTTP.ReadTimeout)

	shutdownHandler := shutdown.NewHandler(cfg.Server.ShutdownTimeout)
	shutdownHandler.SetLogger(log)

	// Hooks run in reverse order of registration.
	if s, ok := log.(interface{ Sync() error }); ok {
		shutdownHandler.OnShutdown("logger", func(context.Context) error {
			s.Sync()
			return nil
		})
	}
	if configFile != "" {
		watcher, err := watchConfig(loader, log)
		if err != nil {
			return fmt.Errorf("watch config: %w", err)
		}
		shutdownHandler.OnShutdown("config watcher", func(context.Context) error {
			return watcher.Stop()
		})
	}

	var tlsConfig *tls.Config
	if cfg.Server.HTTP.TLSCertFile != "" {
		reloader, err := tlsroots.NewReloader(cfg.Server.HTTP.TLSCertFile, cfg.Server.HTTP.TLSKeyFile,
			tlsroots.WithLogger(log),
			tlsroots.WithRegistry(reg))
		if err != nil {
			return fmt.Errorf("load certificate: %w", err)
		}
		reloader.StartAsync()
		shutdownHandler.OnShutdown("certificate reloader", func(context.Context) error {
			return reloader.Stop()
		})
		tlsConfig = reloader.TLSConfig()
	}
	shutdownHandler.OnShutdown("http server", httpServer.Shutdown)

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	if path := cfg.Server.Local.SocketPath; path != "" {
		local := localserver.New(path, httpserver.NewRouter(&httpserver.RouterConfig{
			Registry:    reg,
			Logger:      log,
			MetricsPath: cfg.Server.HTTP.MetricsPath,
			Instruments: instruments,
		}))
		if err := local.Listen(); err != nil {
			return err
		}
		shutdownHandler.OnShutdown("local server", local.Shutdown)

		go func() {
			log.Info("local server listening", "socket", local.Path())
			if err := local.Serve(); err != nil {
				log.Error("local server error", "error", err)
				cancel(err)
			}
		}()
	}

	go func() {
		httpCfg := cfg.Server.HTTP
		log.Info("HTTP server listening", "addr", httpCfg.Addr, "metrics_path", httpCfg.MetricsPath)

		var err error
		if tlsConfig != nil {
			err = httpServer.ListenAndServeTLS(tlsConfig)
		} else {
			err = httpServer.ListenAndServe()
		}
		if err != nil {
			log.Error("HTTP server error", "error", err)
			cancel(err)
		}
	}()

	if err := shutdownHandler.Wait(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}
	if err := context.Cause(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	log.Info("exporter stopped gracefully")
	return nil
}

func newLoader(configFile string) *confloader.Loader {
	var opts []confloader.Option
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}
	return confloader.NewLoader(opts...)
}

// loadConfig reads defaults, the config file and OMFAMILY_* variables.
func loadConfig(loader *confloader.Loader) (*config.ExporterConfig, error) {
	cfg := config.Default()
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}
	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func initLogger(cfg *config.ExporterConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Backend: cfg.Log.Backend,
		Output:  os.Stdout,
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)
	return log, nil
}

// watchConfig re-applies the log level whenever the config file changes.
// Other settings need a restart.
func watchConfig(loader *confloader.Loader, log logger.Logger) (*confloader.Watcher, error) {
	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(loader.FilePath()); err != nil {
		watcher.Stop()
		return nil, err
	}

	watcher.OnChange(func(path string) {
		cfg, err := loadConfig(loader)
		if err != nil {
			log.Warn("config reload rejected", "path", path, "error", err)
			return
		}
		prev, next := logger.GetLevel(), strings.ToLower(cfg.Log.Level)
		if prev != next {
			logger.SetLevel(next)
			log.Info("log level changed", "from", prev, "to", next)
		}
	})
	watcher.StartAsync()
	return watcher, nil
}

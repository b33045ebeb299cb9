package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/me/busdesk/internal/bookingapi"
	"github.com/me/busdesk/internal/config"
	"github.com/me/busdesk/internal/console"
	"github.com/me/busdesk/internal/export"
	"github.com/me/busdesk/internal/logging"
	"github.com/me/busdesk/internal/server"
	"github.com/me/busdesk/internal/store"
)

func main() {
	var (
		flagCfg    = config.DefaultServerConfig()
		configFile = flag.String("config", "", "Path to JSONC config file (default ~/.busdesk/config.jsonc if present)")
		envFile    = flag.String("env-file", ".env", "Path to .env file")
		debug      = flag.Bool("debug", false, "Shorthand for --log-level=debug")
		secure     = flag.Bool("secure-cookies", false, "Mark browser cookies Secure (serve behind TLS)")
		pageSize   = flag.Int("page-size", 0, "Rows per page (default 5)")
		pruneEvery = flag.Duration("prune-interval", 10*time.Minute, "How often to drop stale notices (0 disables)")
		noticeAge  = flag.Duration("notice-max-age", 24*time.Hour, "Age after which unread notices are dropped")
	)
	flag.StringVar(&flagCfg.Addr, "addr", flagCfg.Addr, "Listen address")
	flag.StringVar(&flagCfg.LogLevel, "log-level", flagCfg.LogLevel, "Log level (debug, info, warn, error)")
	flag.StringVar(&flagCfg.LogFormat, "log-format", flagCfg.LogFormat, "Log format (text, json, tint)")
	flag.StringVar(&flagCfg.DBPath, "db", flagCfg.DBPath, "Database path (default ~/.busdesk/busdesk.db)")
	flag.StringVar(&flagCfg.APIURL, "api-url", flagCfg.APIURL, "Booking API base URL")
	flag.StringVar(&flagCfg.Owner, "owner", flagCfg.Owner, "Default owner id for fleet pages")
	flag.DurationVar(&flagCfg.CacheTTL, "cache-ttl", flagCfg.CacheTTL, "Lifetime of a fetched collection")
	flag.StringVar(&flagCfg.Export.Bucket, "export-bucket", "", "S3 bucket for published exports (empty disables)")

	flag.Parse()

	if err := config.LoadDotEnv(*envFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	path := *configFile
	if path == "" {
		path = config.DefaultPath()
	}
	file, err := config.LoadFile(path, *configFile != "")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg := config.ApplyServerEnv(file.ApplyServer(config.DefaultServerConfig()), os.Getenv)

	// Explicit flags win over file and environment.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = flagCfg.Addr
		case "log-level":
			cfg.LogLevel = flagCfg.LogLevel
		case "log-format":
			cfg.LogFormat = flagCfg.LogFormat
		case "db":
			cfg.DBPath = flagCfg.DBPath
		case "api-url":
			cfg.APIURL = flagCfg.APIURL
		case "owner":
			cfg.Owner = flagCfg.Owner
		case "cache-ttl":
			cfg.CacheTTL = flagCfg.CacheTTL
		case "export-bucket":
			cfg.Export.Bucket = flagCfg.Export.Bucket
		}
	})
	if *debug {
		cfg.LogLevel = "debug"
	}

	logger := logging.NewLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	// Resolve database path.
	dbPath := cfg.DBPath
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "cannot determine home directory: %v\n", err)
			os.Exit(1)
		}
		dir := filepath.Join(home, ".busdesk")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "cannot create %s: %v\n", dir, err)
			os.Exit(1)
		}
		dbPath = filepath.Join(dir, "busdesk.db")
	}

	// Open store and run migrations.
	st, err := store.NewSQLiteStore(dbPath, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open database: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	if err := st.Migrate(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "migrate database: %v\n", err)
		os.Exit(1)
	}
	logger.Info("database ready", "path", dbPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	apiCfg := bookingapi.DefaultConfig().WithToken(cfg.APIToken)
	apiCfg.BaseURL = cfg.APIURL
	api := bookingapi.NewClient(apiCfg, logger)
	logger.Info("booking api", "url", cfg.APIURL, "token", cfg.APIToken != "")

	opts := []console.Option{console.WithCacheTTL(cfg.CacheTTL)}
	if *pageSize > 0 {
		opts = append(opts, console.WithPageSize(*pageSize))
	}
	if cfg.Export.Enabled() {
		pub, err := export.NewPublisher(ctx, cfg.Export, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "export publisher: %v\n", err)
			os.Exit(1)
		}
		opts = append(opts, console.WithPublisher(pub))
		logger.Info("export uploads enabled", "bucket", cfg.Export.Bucket)
	}

	svc, err := console.New(api, st, logger, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "console: %v\n", err)
		os.Exit(1)
	}
	defer svc.Close()

	srv := server.New(cfg, svc, logger, server.WithSecureCookies(*secure))
	srv.StartMaintenance(ctx, *pruneEvery, *noticeAge)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", cfg.Addr, "version", server.Version)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

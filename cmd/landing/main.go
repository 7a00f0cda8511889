// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/landing-go/internal/config"
	"github.com/olegiv/landing-go/internal/handler"
	"github.com/olegiv/landing-go/internal/logging"
	"github.com/olegiv/landing-go/internal/middleware"
	"github.com/olegiv/landing-go/internal/render"
	"github.com/olegiv/landing-go/internal/scheduler"
	"github.com/olegiv/landing-go/internal/version"
	"github.com/olegiv/landing-go/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "landing - Holding Devs marketing site\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LANDING_CSRF_SECRET         Cross-origin protection key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LANDING_SERVER_HOST         Bind host (default: localhost)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LANDING_SERVER_PORT         Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LANDING_ENV                 Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LANDING_LOG_LEVEL           debug|info|warn|error (default: info)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LANDING_LOG_FORMAT          text|json (default: text)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LANDING_CONTACT_RATE_LIMIT  Contact requests per second per IP (default: 5)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LANDING_CONTACT_RATE_BURST  Contact request burst per IP (default: 20)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LANDING_PAGE_SESSION_TTL    Idle page session lifetime (default: 30m)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LANDING_SWEEP_SCHEDULE      Cron schedule of the session sweep (default: @every 1m)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	versionInfo := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	if *showVersion {
		_, _ = fmt.Println(versionInfo.String())
		os.Exit(0)
	}

	if err := run(versionInfo); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(versionInfo version.Info) error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("parsing LANDING_LOG_LEVEL: %w", err)
	}
	logger := logging.New(os.Stdout, logLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	templatesFS, err := web.TemplateFS()
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS: templatesFS,
		IsDev:       cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	pages := handler.NewPageRegistry(logger, nil)
	rateLimiter := middleware.NewRateLimiter(cfg.ContactRateLimit, cfg.ContactRateBurst)

	sched := scheduler.New(logger)
	if err := sched.Add(scheduler.Job{
		Name:        "sweep-pages",
		Description: "Close page sessions idle longer than the configured TTL",
		Schedule:    cfg.SweepSchedule,
		Run: func(context.Context) error {
			if n := pages.Sweep(cfg.PageSessionTTL); n > 0 {
				logger.Info("swept idle page sessions", "count", n, "live", pages.Len())
			}
			return nil
		},
	}); err != nil {
		return fmt.Errorf("scheduling session sweep: %w", err)
	}
	if err := sched.Add(scheduler.Job{
		Name:        "prune-rate-limiter",
		Description: "Drop per-IP limiters once the cache outgrows its bound",
		Schedule:    "@every 10m",
		Run: func(context.Context) error {
			rateLimiter.Prune()
			return nil
		},
	}); err != nil {
		return fmt.Errorf("scheduling limiter prune: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	contactHandler := handler.NewContactHandler(renderer, pages, logger)
	healthHandler := handler.NewHealthHandler(pages, sched, versionInfo)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))                    // Gzip compression with level 5
	r.Use(chimw.GetHead)                        // Handle HEAD requests for uptime monitoring
	r.Use(middleware.Timeout(30 * time.Second)) // Covers the 5s success stream with margin
	r.Use(middleware.StripTrailingSlash)

	securityConfig := middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())
	securityConfig.ExcludePaths = []string{handler.RouteHealth}
	r.Use(middleware.SecurityHeaders(securityConfig))
	r.Use(middleware.RequestPath)

	// Health endpoints for probes and uptime monitors
	r.Get(handler.RouteHealth, healthHandler.Health)
	r.Get(handler.RouteHealthLive, healthHandler.Liveness)
	r.Get(handler.RouteHealthReady, healthHandler.Readiness)

	csrfConfig := middleware.DefaultCSRFConfig([]byte(cfg.CSRFSecret), cfg.IsDevelopment(), cfg.ServerAddr())
	csrfMiddleware := middleware.CSRF(csrfConfig)

	r.Group(func(r chi.Router) {
		r.Use(csrfMiddleware)
		r.Get(handler.RouteRoot, contactHandler.Home)

		r.Group(func(r chi.Router) {
			r.Use(rateLimiter.Middleware())
			r.Post(handler.RouteContact, contactHandler.Submit)
			r.Post(handler.RouteContactBlur, contactHandler.Blur)
			r.Post(handler.RouteContactInput, contactHandler.Input)
		})
	})

	staticFS, err := web.StaticFS()
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}
	// Static assets: cache for 1 year (31536000 seconds)
	staticHandler := middleware.StaticCache(31536000)(http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	r.Handle(handler.RouteStatic, staticHandler)

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second, // Reduced from 120s to mitigate slowloris attacks
		MaxHeaderBytes:    1 << 20,          // 1MB max header size
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", versionInfo.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()
	healthHandler.SetReady(true)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("shutting down server...")
	healthHandler.SetReady(false)

	// Release open success streams so Shutdown does not wait on them.
	pages.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

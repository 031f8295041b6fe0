package entrypoint

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shelfmark/shelfmark/internal/auth"
	"github.com/shelfmark/shelfmark/internal/config"
	"github.com/shelfmark/shelfmark/internal/database"
	"github.com/shelfmark/shelfmark/internal/database/catalog"
	"github.com/shelfmark/shelfmark/internal/database/lists"
	"github.com/shelfmark/shelfmark/internal/database/readers"
	"github.com/shelfmark/shelfmark/internal/database/reviews"
	"github.com/shelfmark/shelfmark/internal/graphql"
	http_controllers "github.com/shelfmark/shelfmark/internal/http"
	"github.com/shelfmark/shelfmark/internal/logger"
	"github.com/shelfmark/shelfmark/internal/scheduler"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT/SIGTERM, then shuts down within the
// configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	log := logger.Get()
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Info().Str("host", cfg.HTTP.Host).Int32("port", cfg.HTTP.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Dur("timeout", timeout).Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Shutdown callback first (e.g. to stop the scheduler)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server shutdown failed")
	}

	log.Info().Msg("server exiting")
}

// Run wires the application together and serves it.
func Run(cfg *config.Config, version string) {
	log := logger.Get()
	log.Info().Str("version", version).Msg("starting shelfmark")

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.Close()

	authService := auth.NewService(db.DB, cfg.Auth)
	if err := authService.EnsureAdmin(); err != nil {
		log.Fatal().Err(err).Msg("failed to bootstrap admin account")
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to access sql database")
	}
	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create session manager")
	}

	resolver := graphql.NewResolver(
		catalog.NewRepository(db.DB),
		lists.NewRepository(db.DB),
		reviews.NewRepository(db.DB),
		readers.NewRepository(db.DB),
		authService,
		sessionManager,
	)
	schema, err := graphql.NewSchema(resolver)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build graphql schema")
	}

	statsScheduler := scheduler.NewStatsScheduler(db, cfg.Stats)
	if err := statsScheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start stats scheduler")
	}

	csrfSecret := []byte(cfg.Auth.CSRFSecret)
	if len(csrfSecret) == 0 {
		log.Warn().Msg("AUTH_CSRF_SECRET is not set, CSRF protection disabled")
	} else if len(csrfSecret) < 32 {
		// gorilla/csrf wants a 32-byte key
		log.Fatal().Msg("AUTH_CSRF_SECRET must be at least 32 bytes")
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Database:       db,
		Schema:         schema,
		SessionManager: sessionManager,
		CSRFSecret:     csrfSecret,
		SecureCookies:  cfg.Auth.SecureCookies,
		Version:        version,
	})

	Serve(router, cfg, func(ctx context.Context) {
		statsScheduler.Stop()
	})
}

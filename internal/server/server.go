// Package server composes the service: it owns the configuration, logger,
// database pool, optional Redis client and the HTTP server, and builds the
// route table once at startup.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/bijuli74/devops-capstone-project/internal/command"
	"github.com/bijuli74/devops-capstone-project/internal/config"
	"github.com/bijuli74/devops-capstone-project/internal/database"
	"github.com/bijuli74/devops-capstone-project/internal/events"
	"github.com/bijuli74/devops-capstone-project/internal/handler"
	"github.com/bijuli74/devops-capstone-project/internal/models"
	"github.com/bijuli74/devops-capstone-project/internal/query"
	sharedredis "github.com/bijuli74/devops-capstone-project/internal/redis"
	"github.com/bijuli74/devops-capstone-project/internal/repository"
)

// Server is the application container. It is not the HTTP server itself.
type Server struct {
	Config *config.Config
	Logger zerolog.Logger
	DB     *sql.DB
	// Redis is nil when no Redis address is configured.
	Redis  *sharedredis.Client
	Router *gin.Engine

	httpServer *http.Server
}

// New connects to the record store (and Redis when configured), optionally
// migrates the schema and builds the route table.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	if cfg.Database.MigrateOnStart {
		if err := migrateUp(cfg.Database.URL, logger); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	var redisClient *sharedredis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = sharedredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		logger.Info().Str("address", cfg.Redis.Address).Msg("view cache and event stream enabled")
	} else {
		logger.Info().Msg("redis not configured, serving reads from postgres only")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		Config: cfg,
		Logger: logger,
		DB:     db,
		Redis:  redisClient,
	}
	s.Router = NewRouter(s.buildHandlers(), logger)
	s.httpServer = newHTTPServer(cfg.Server, s.Router)
	return s, nil
}

func newHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

func migrateUp(dbURL string, logger zerolog.Logger) error {
	migrator, err := database.NewMigrator(dbURL, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := migrator.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close migrator")
		}
	}()
	return migrator.Up()
}

// buildHandlers wires repositories, services and handlers.
func (s *Server) buildHandlers() Handlers {
	var (
		cache     *sharedredis.ViewCache[models.Account]
		publisher command.EventPublisher = events.NopPublisher{}
	)
	if s.Redis != nil {
		cache = sharedredis.NewViewCache[models.Account](s.Redis.Client, repository.AccountViewKeyPrefix, s.Config.Redis.CacheTTL, s.Logger)
		publisher = events.NewPublisher(s.Redis.Client)
	}

	writeRepo := repository.NewAccountWriteRepository(s.DB)
	readRepo := repository.NewAccountReadRepository(s.DB, cache)

	commandSvc := command.NewAccountCommandService(writeRepo, readRepo, publisher, s.Logger)
	querySvc := query.NewAccountQueryService(readRepo)

	return Handlers{
		Accounts: handler.NewAccountHandler(commandSvc, querySvc, s.Logger),
		System:   handler.NewSystemHandler(),
	}
}

// Start serves HTTP until Shutdown is called. It returns nil at once if
// Shutdown already ran.
func (s *Server) Start() error {
	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Msg("starting server")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests, then closes Redis and the database.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to shutdown HTTP server: %w", err))
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis client: %w", err))
		}
	}
	if err := s.DB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close database connection: %w", err))
	}
	return errors.Join(errs...)
}

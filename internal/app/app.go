package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/studysphere/studysphere-server/internal/auth"
	"github.com/studysphere/studysphere-server/internal/chat"
	"github.com/studysphere/studysphere-server/internal/config"
	"github.com/studysphere/studysphere-server/internal/notify"
	"github.com/studysphere/studysphere-server/internal/service/courses"
	"github.com/studysphere/studysphere-server/internal/store"
	"github.com/studysphere/studysphere-server/internal/store/sqlite"
	transporthttp "github.com/studysphere/studysphere-server/internal/transport/http"
)

// App wires together storage, services and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	store           store.Store
	broadcaster     chat.Broadcaster
	redisRunner     *chat.RedisBroadcaster
	mailerCloser    func() error
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.TokenTTL,
	}
	authService := auth.NewService(st, jwtConfig)

	a := &App{
		shutdownTimeout: cfg.ShutdownTimeout,
		store:           st,
		log:             logger,
	}

	// Single-process hub by default; Redis fans out across instances.
	a.broadcaster = chat.NewHub()
	if cfg.RedisAddr != "" {
		rdb, err := chat.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			a.cleanup()
			return nil, fmt.Errorf("init redis: %w", err)
		}
		rb := chat.NewRedisBroadcaster(rdb, logger)
		a.broadcaster = rb
		a.redisRunner = rb
		logger.Info().Str("redis_addr", cfg.RedisAddr).Msg("redis broadcaster enabled")
	}

	var mailer notify.Mailer = notify.NewConsoleMailer(logger)
	if cfg.AMQPURL != "" {
		conn, err := notify.NewAMQPConnection(cfg.AMQPURL)
		if err != nil {
			a.cleanup()
			return nil, fmt.Errorf("init amqp: %w", err)
		}
		amqpMailer := notify.NewAMQPMailer(conn, cfg.MailQueue, cfg.MailFrom)
		mailer = amqpMailer
		a.mailerCloser = amqpMailer.Close
		logger.Info().Str("queue", cfg.MailQueue).Msg("amqp mailer enabled")
	}

	courseService := courses.New(st, mailer, logger)
	pipeline := chat.NewPipeline(st)

	a.server = transporthttp.NewServer(authService, courseService, pipeline, a.broadcaster, st, cfg, logger)
	return a, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	if a.redisRunner != nil {
		go func() {
			if err := a.redisRunner.Run(ctx); err != nil && ctx.Err() == nil {
				a.log.Error().Err(err).Msg("redis subscriber stopped")
			}
		}()
	}

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes database and other resources.
func (a *App) cleanup() {
	if a.mailerCloser != nil {
		if err := a.mailerCloser(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close mailer")
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}

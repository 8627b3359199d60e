// server/main.go
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ViniZap4/nohtz-server/auth"
	"github.com/ViniZap4/nohtz-server/config"
	httphandlers "github.com/ViniZap4/nohtz-server/http"
	"github.com/ViniZap4/nohtz-server/notes"
	"github.com/ViniZap4/nohtz-server/session"
	"github.com/ViniZap4/nohtz-server/store"
	"github.com/ViniZap4/nohtz-server/ws"
)

const sessionSweepInterval = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	logger := newLogger(cfg.Log)
	logger.Info().Str("config", cfg.String()).Msg("configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := store.Migrate(cfg.Database.URL); err != nil {
		logger.Fatal().Err(err).Msg("migrate database")
	}

	pool, err := store.Open(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("open database")
	}
	defer pool.Close()

	sessionStore, closeSessions, err := newSessionStore(ctx, cfg.Session, pool)
	if err != nil {
		logger.Fatal().Err(err).Msg("open session store")
	}
	defer closeSessions()

	sessions := session.NewManager(sessionStore, cfg.Session.TTL, logger)
	go sessions.RunSweeper(ctx, sessionSweepInterval)

	hub := ws.NewHub(logger)
	go hub.Run(ctx)

	authService, err := auth.NewService(store.NewUsers(pool), sessions, cfg.Auth.BcryptCost, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("init auth")
	}
	notesService := notes.NewService(store.NewFolders(pool), store.NewNotes(pool), hub, logger)

	server := httphandlers.NewServer(authService, notesService, sessions, hub, httphandlers.Options{
		CookieName:   cfg.Session.CookieName,
		CookieSecure: cfg.Session.CookieSecure,
		CORSOrigins:  cfg.HTTP.CORSOrigins,
		PublicDir:    cfg.HTTP.PublicDir,
	}, logger)
	app := server.App()

	go func() {
		<-ctx.Done()
		logger.Info().Msg("shutting down")
		if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
			logger.Error().Err(err).Msg("shutdown")
		}
	}()

	logger.Info().Str("addr", cfg.HTTP.Addr).Str("public", cfg.HTTP.PublicDir).Msg("server starting")
	if err := app.Listen(cfg.HTTP.Addr); err != nil {
		logger.Fatal().Err(err).Msg("listen")
	}
}

func newLogger(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var out io.Writer = os.Stdout
	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func newSessionStore(ctx context.Context, cfg config.SessionConfig, pool *pgxpool.Pool) (session.Store, func(), error) {
	switch cfg.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		return session.NewRedisStore(client), func() { client.Close() }, nil
	case "memory":
		return session.NewMemoryStore(), func() {}, nil
	default:
		return store.NewSessions(pool), func() {}, nil
	}
}

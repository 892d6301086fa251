// Package app assembles the SewaBot service: persistence, inference
// gateway, detectors, the dialogue engine, the Matrix transport and the
// optional health server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"maunium.net/go/mautrix/event"

	"github.com/smartgov-sikkim/sewabot/common/redact"
	"github.com/smartgov-sikkim/sewabot/common/trace"
	"github.com/smartgov-sikkim/sewabot/internal/sewabot/cache"
	"github.com/smartgov-sikkim/sewabot/internal/sewabot/dialogue"
	"github.com/smartgov-sikkim/sewabot/internal/sewabot/gateway"
	"github.com/smartgov-sikkim/sewabot/internal/sewabot/intent"
	"github.com/smartgov-sikkim/sewabot/internal/sewabot/lang"
	"github.com/smartgov-sikkim/sewabot/internal/sewabot/matrix"
	"github.com/smartgov-sikkim/sewabot/internal/sewabot/messages"
	"github.com/smartgov-sikkim/sewabot/internal/sewabot/session"
	"github.com/smartgov-sikkim/sewabot/internal/sewabot/store"
)

// Config holds application configuration.
type Config struct {
	DatabasePath string
	Matrix       matrix.Config
	Gateway      gateway.Config

	// HTTPAddr is the TCP address for the optional health/status server
	// (e.g. ":8080"). Empty disables it.
	HTTPAddr string

	// RateLimit is the maximum number of inference calls per user per
	// minute. Zero selects gateway.DefaultRateLimit.
	RateLimit int

	// CacheTTL bounds how long detection and classification results are
	// memoized. Zero selects cache.DefaultTTL.
	CacheTTL time.Duration

	// TurnTimeout bounds one full message turn, including inference and
	// persistence. Defaults to 30 seconds when zero.
	TurnTimeout time.Duration
}

// App is the assembled service.
type App struct {
	config       *Config
	store        *store.Store
	sessions     *session.Store
	engine       *dialogue.Engine
	matrix       *matrix.Client
	catalog      *messages.Catalog
	healthServer *HealthServer
}

// New wires the application from config.
func New(config *Config) (*App, error) {
	slog.Info("opening database", "path", config.DatabasePath)
	st, err := store.New(config.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("app: initialize database: %w", err)
	}

	// Inject the DB so the Matrix client persists its sync token.
	matrixCfg := config.Matrix
	matrixCfg.DB = st.DB()
	slog.Info("connecting to Matrix", "homeserver", matrixCfg.Homeserver)
	matrixClient, err := matrix.New(&matrixCfg)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("app: initialize Matrix client: %w", err)
	}

	catalog, err := messages.Default()
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("app: load message catalog: %w", err)
	}
	form, err := dialogue.DefaultForm()
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("app: load form definition: %w", err)
	}

	provider := gateway.New(config.Gateway)
	limiter := gateway.NewRateLimiter(config.RateLimit, time.Minute)
	slog.Info("inference gateway ready",
		"base_url", config.Gateway.BaseURL, "model", config.Gateway.Model)

	detector := lang.NewDetector(provider, cache.New(config.CacheTTL, 0), limiter, slog.Default())
	classifier := intent.NewClassifier(provider, cache.New(config.CacheTTL, 0), limiter, slog.Default())
	sessions := session.NewStore()

	engine := dialogue.NewEngine(detector, classifier, sessions, st, catalog, form, slog.Default())

	var healthServer *HealthServer
	if config.HTTPAddr != "" {
		healthServer = NewHealthServer(config.HTTPAddr, st)
		slog.Info("health server configured", "addr", config.HTTPAddr)
	}

	return &App{
		config:       config,
		store:        st,
		sessions:     sessions,
		engine:       engine,
		matrix:       matrixClient,
		catalog:      catalog,
		healthServer: healthServer,
	}, nil
}

// Run starts the service and blocks until an interrupt signal.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if a.healthServer != nil {
		if err := a.healthServer.Start(ctx); err != nil {
			slog.Warn("health server failed to start; continuing without it", "err", err)
		}
	}

	slog.Info("starting Matrix sync")
	if err := a.matrix.Start(ctx, a.handleMessage); err != nil {
		return fmt.Errorf("app: start Matrix client: %w", err)
	}

	slog.Info("SewaBot is running; press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	slog.Info("shutting down")
	return nil
}

// Stop releases transport and storage resources.
func (a *App) Stop() {
	slog.Info("stopping Matrix client")
	a.matrix.Stop()

	if a.healthServer != nil {
		slog.Info("stopping health server")
		a.healthServer.Stop()
	}

	slog.Info("closing database")
	a.store.Close()
}

// handleMessage runs one citizen message through the engine. Each message
// gets its own goroutine so a slow inference call for one user never blocks
// the sync loop; per-user ordering is enforced by the engine, which holds
// the user's session lock for the whole turn.
func (a *App) handleMessage(_ context.Context, evt *event.Event) {
	msgContent := evt.Content.AsMessage()
	if msgContent == nil {
		return
	}

	userID := evt.Sender.String()
	roomID := evt.RoomID.String()
	text := msgContent.Body

	go func() {
		timeout := a.config.TurnTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		ctx = trace.WithTraceID(ctx, trace.GenerateID())

		logger := slog.With("trace_id", trace.FromContext(ctx), "user", userID, "room", roomID)
		logger.Info("message received", "text", redact.PII(text))

		a.matrix.SetTyping(ctx, roomID, true, timeout)
		defer a.matrix.SetTyping(ctx, roomID, false, 0)

		reply, err := a.engine.Advance(ctx, userID, text)
		if err != nil {
			logger.Error("turn failed", "err", err)
			sess := a.sessions.GetOrCreate(userID)
			apology := a.catalog.Get(sess.Language, messages.KeyError)
			if sendErr := a.matrix.ReplyToMessage(ctx, roomID, evt.ID.String(), apology); sendErr != nil {
				logger.Error("failed to send error reply", "err", sendErr)
			}
			return
		}

		if err := a.matrix.SendMessage(ctx, roomID, reply.Text); err != nil {
			logger.Error("failed to send reply", "err", err)
		}
	}()
}


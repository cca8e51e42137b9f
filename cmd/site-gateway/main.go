// Command site-gateway serves the DigitalEmployee.me backend: lead capture,
// auth bridge, ROI calculator, chat widget, and the realtime voice bridge.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"google.golang.org/genai"

	"github.com/digitalemployee/site-gateway/internal/dotenv"
	"github.com/digitalemployee/site-gateway/pkg/gateway/config"
	"github.com/digitalemployee/site-gateway/pkg/gateway/server"
	"github.com/digitalemployee/site-gateway/pkg/site/auth"
	"github.com/digitalemployee/site-gateway/pkg/site/chat"
	"github.com/digitalemployee/site-gateway/pkg/site/leads"
	"github.com/digitalemployee/site-gateway/pkg/site/leads/postgres"
	"github.com/digitalemployee/site-gateway/pkg/voice/gemini"
)

type gatewayDeps struct {
	loadConfig   func() (config.Config, error)
	signalNotify func(c chan<- os.Signal, sig ...os.Signal)
	signalStop   func(c chan<- os.Signal)
}

func defaultDeps() gatewayDeps {
	return gatewayDeps{
		loadConfig:   config.LoadFromEnv,
		signalNotify: signal.Notify,
		signalStop:   signal.Stop,
	}
}

func buildHTTPServer(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		IdleTimeout:       cfg.HandlerTimeout,
	}
}

// buildOptions wires the services the config enables. Returns a cleanup func
// that releases the database pool and waits out background mirror sends.
func buildOptions(ctx context.Context, cfg config.Config, logger *slog.Logger) (server.Options, func(), error) {
	opts := server.Options{Config: cfg, Logger: logger}
	var pool *pgxpool.Pool
	var leadSvc *leads.Service

	if cfg.DatabaseURL != "" {
		if cfg.Migrate {
			if err := postgres.Migrate(ctx, cfg.DatabaseURL); err != nil {
				return server.Options{}, nil, fmt.Errorf("migrate: %w", err)
			}
			logger.Info("schema migrations applied")
		}
		var err error
		pool, err = pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return server.Options{}, nil, fmt.Errorf("open database pool: %w", err)
		}

		var mirror leads.Mirror
		if cfg.SheetSyncURL != "" {
			mirror = leads.NewWebhookMirror(cfg.SheetSyncURL, &http.Client{Timeout: cfg.MirrorTimeout})
		}
		leadSvc = leads.NewService(postgres.NewStore(pool), mirror, logger, cfg.MirrorTimeout)
		opts.LeadService = leadSvc
	} else {
		logger.Warn("no database configured, lead capture disabled")
	}

	if cfg.WorkOSAPIKey != "" {
		provider := auth.NewWorkOSProvider(cfg.WorkOSAPIKey, cfg.WorkOSClientID)
		opts.AuthService = auth.NewService(provider, auth.NewBroker(), logger)
	} else {
		logger.Warn("no identity provider configured, auth disabled")
	}

	if cfg.GeminiAPIKey != "" {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.GeminiAPIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return server.Options{}, nil, fmt.Errorf("build genai client: %w", err)
		}
		opts.ChatGenerator = chat.NewGeminiGenerator(client, cfg.ChatModel)
		opts.VoiceDial = gemini.NewConnector(client, cfg.VoiceModel, logger).Dial
	} else {
		logger.Warn("no gemini api key configured, chat and voice disabled")
	}

	cleanup := func() {
		if leadSvc != nil {
			leadSvc.Wait()
		}
		if pool != nil {
			pool.Close()
		}
	}
	return opts, cleanup, nil
}

func runMain(ctx context.Context, stderr io.Writer, deps gatewayDeps) int {
	if err := dotenv.LoadFile(".env"); err != nil {
		fmt.Fprintf(stderr, "load .env: %v\n", err)
		return 1
	}

	cfg, err := deps.loadConfig()
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}

	logger := slog.New(slog.NewTextHandler(stderr, nil))
	slog.SetDefault(logger)

	opts, cleanup, err := buildOptions(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(stderr, "startup: %v\n", err)
		return 1
	}
	defer cleanup()

	gw := server.New(opts)
	httpServer := buildHTTPServer(cfg, gw.Handler())

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr)
		serveErr <- httpServer.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	deps.signalNotify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer deps.signalStop(sigCh)

	select {
	case <-ctx.Done():
	case sig := <-sigCh:
		logger.Info("shutdown signal", "signal", sig.String())
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(stderr, "serve: %v\n", err)
			return 1
		}
		return 0
	}

	// Drain: stop accepting, let live voice sessions wind down, then force
	// whatever is left.
	gw.SetDraining(true)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown incomplete", "error", err)
	}
	if !gw.WaitVoiceSessions(shutdownCtx) {
		logger.Warn("forcing voice sessions closed", "remaining", gw.VoiceSessionCount())
		gw.CancelVoiceSessions()
		waitCtx, cancelWait := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancelWait()
		gw.WaitVoiceSessions(waitCtx)
	}
	logger.Info("shutdown complete")
	return 0
}

func main() {
	ctx := context.Background()
	os.Exit(runMain(ctx, os.Stderr, defaultDeps()))
}

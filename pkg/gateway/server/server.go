// Package server wires the gateway's routes, services, and middleware.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/digitalemployee/site-gateway/pkg/gateway/config"
	"github.com/digitalemployee/site-gateway/pkg/gateway/handlers"
	"github.com/digitalemployee/site-gateway/pkg/gateway/lifecycle"
	"github.com/digitalemployee/site-gateway/pkg/gateway/mw"
	"github.com/digitalemployee/site-gateway/pkg/gateway/sessions"
	"github.com/digitalemployee/site-gateway/pkg/site/auth"
	"github.com/digitalemployee/site-gateway/pkg/site/chat"
	"github.com/digitalemployee/site-gateway/pkg/site/leads"
	"github.com/digitalemployee/site-gateway/pkg/voice/bridge"
)

// Options carries the wired services. Nil services disable their routes
// gracefully rather than at startup.
type Options struct {
	Config        config.Config
	Logger        *slog.Logger
	LeadService   *leads.Service
	AuthService   *auth.Service
	ChatGenerator chat.Generator
	VoiceDial     bridge.Dialer
}

type Server struct {
	cfg       config.Config
	logger    *slog.Logger
	mux       *http.ServeMux
	lifecycle *lifecycle.Lifecycle
	tracker   *sessions.Tracker
}

func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	s := &Server{
		cfg:       opts.Config,
		logger:    opts.Logger,
		mux:       http.NewServeMux(),
		lifecycle: lifecycle.New(),
		tracker:   sessions.NewTracker(),
	}
	s.routes(opts)
	return s
}

func (s *Server) routes(opts Options) {
	s.mux.Handle("/", handlers.NotFoundHandler{})
	s.mux.Handle("/healthz", handlers.HealthHandler{})
	s.mux.Handle("/readyz", handlers.ReadyHandler{Config: s.cfg})

	s.mux.Handle("/v1/nav/resolve", handlers.NavHandler{})
	s.mux.Handle("/v1/roi/tiers", handlers.TiersHandler{})
	s.mux.Handle("/v1/roi/estimate", handlers.EstimateHandler{})

	s.mux.Handle("/v1/leads", &handlers.LeadsHandler{Service: opts.LeadService})
	s.mux.Handle("/v1/partners", &handlers.PartnersHandler{Service: opts.LeadService})

	authHandler := &handlers.AuthHandler{Service: opts.AuthService, Logger: s.logger}
	s.mux.HandleFunc("/v1/auth/register", authHandler.Register)
	s.mux.HandleFunc("/v1/auth/login", authHandler.Login)
	s.mux.HandleFunc("/v1/auth/logout", authHandler.Logout)
	s.mux.HandleFunc("/v1/auth/password/reset-request", authHandler.ResetRequest)
	s.mux.HandleFunc("/v1/auth/password/update", authHandler.UpdatePassword)
	s.mux.HandleFunc("/v1/auth/events", authHandler.Events)

	s.mux.Handle("/v1/chat", handlers.NewChatHandler(opts.ChatGenerator, s.logger))

	s.mux.Handle("/v1/voice", &handlers.VoiceHandler{
		Config:    s.cfg,
		Dial:      opts.VoiceDial,
		Tracker:   s.tracker,
		Lifecycle: s.lifecycle,
		Logger:    s.logger,
	})
}

// Handler returns the mux wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = mw.CORS(s.cfg.CORSAllowedOrigins, h)
	h = mw.Recover(s.logger, h)
	h = mw.AccessLog(s.logger, h)
	h = mw.RequestID(h)
	return h
}

// SetDraining flips the drain flag; new voice sessions are refused while it
// is set.
func (s *Server) SetDraining(v bool) {
	s.lifecycle.SetDraining(v)
}

// WaitVoiceSessions blocks until live sessions end or ctx expires.
func (s *Server) WaitVoiceSessions(ctx context.Context) bool {
	return s.tracker.Wait(ctx)
}

// CancelVoiceSessions forces remaining sessions closed.
func (s *Server) CancelVoiceSessions() {
	s.tracker.CancelAll()
}

// VoiceSessionCount reports live sessions; used by shutdown logging.
func (s *Server) VoiceSessionCount() int {
	return s.tracker.Count()
}

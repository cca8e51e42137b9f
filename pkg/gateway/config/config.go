// Package config loads gateway settings from DE_* environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr string

	// Lead storage and mirroring.
	DatabaseURL   string
	Migrate       bool
	SheetSyncURL  string
	MirrorTimeout time.Duration

	// Identity provider.
	WorkOSAPIKey   string
	WorkOSClientID string

	// Generative backends.
	GeminiAPIKey string
	ChatModel    string
	VoiceModel   string

	// HTTP server.
	CORSAllowedOrigins map[string]struct{}
	ReadHeaderTimeout  time.Duration
	ReadTimeout        time.Duration
	HandlerTimeout     time.Duration
	ShutdownGrace      time.Duration

	// Voice session limits.
	VoiceMaxFrameBytes      int
	VoiceMaxMessageBytes    int
	VoiceHandshakeTimeout   time.Duration
	VoiceMaxSessionDuration time.Duration
	VoiceQueueSize          int
}

// LoadFromEnv builds the config from the environment, applying defaults and
// validating everything numeric.
func LoadFromEnv() (Config, error) {
	cfg := Config{
		Addr: envOr("DE_ADDR", ":8080"),

		DatabaseURL:   os.Getenv("DE_DATABASE_URL"),
		Migrate:       envBoolOr("DE_MIGRATE", false),
		SheetSyncURL:  os.Getenv("DE_SHEET_SYNC_URL"),
		MirrorTimeout: envDurationOr("DE_MIRROR_TIMEOUT", 10*time.Second),

		WorkOSAPIKey:   os.Getenv("DE_WORKOS_API_KEY"),
		WorkOSClientID: os.Getenv("DE_WORKOS_CLIENT_ID"),

		GeminiAPIKey: os.Getenv("DE_GEMINI_API_KEY"),
		ChatModel:    envOr("DE_CHAT_MODEL", "gemini-3-flash-preview"),
		VoiceModel:   envOr("DE_VOICE_MODEL", "gemini-2.5-flash-native-audio-preview-12-2025"),

		CORSAllowedOrigins: originSet(splitCSV(os.Getenv("DE_CORS_ORIGINS"))),
		ReadHeaderTimeout:  envDurationOr("DE_READ_HEADER_TIMEOUT", 10*time.Second),
		ReadTimeout:        envDurationOr("DE_READ_TIMEOUT", 30*time.Second),
		HandlerTimeout:     envDurationOr("DE_HANDLER_TIMEOUT", 60*time.Second),
		ShutdownGrace:      envDurationOr("DE_SHUTDOWN_GRACE", 15*time.Second),

		VoiceMaxFrameBytes:      envIntOr("DE_VOICE_MAX_FRAME_BYTES", 64*1024),
		VoiceMaxMessageBytes:    envIntOr("DE_VOICE_MAX_MESSAGE_BYTES", 256*1024),
		VoiceHandshakeTimeout:   envDurationOr("DE_VOICE_HANDSHAKE_TIMEOUT", 10*time.Second),
		VoiceMaxSessionDuration: envDurationOr("DE_VOICE_MAX_SESSION_DURATION", 10*time.Minute),
		VoiceQueueSize:          envIntOr("DE_VOICE_QUEUE_SIZE", 64),
	}

	if cfg.Addr == "" {
		return Config{}, fmt.Errorf("addr must not be empty")
	}
	if cfg.MirrorTimeout <= 0 {
		return Config{}, fmt.Errorf("mirror timeout must be > 0")
	}
	if cfg.ReadHeaderTimeout <= 0 || cfg.ReadTimeout <= 0 || cfg.HandlerTimeout <= 0 {
		return Config{}, fmt.Errorf("timeouts must be > 0")
	}
	if cfg.ShutdownGrace <= 0 {
		return Config{}, fmt.Errorf("shutdown grace must be > 0")
	}
	if cfg.VoiceMaxFrameBytes <= 0 {
		return Config{}, fmt.Errorf("voice max frame bytes must be > 0")
	}
	if cfg.VoiceMaxMessageBytes <= 0 {
		return Config{}, fmt.Errorf("voice max message bytes must be > 0")
	}
	if cfg.VoiceMaxFrameBytes > cfg.VoiceMaxMessageBytes {
		return Config{}, fmt.Errorf("voice max frame bytes must be <= max message bytes")
	}
	if cfg.VoiceHandshakeTimeout <= 0 {
		return Config{}, fmt.Errorf("voice handshake timeout must be > 0")
	}
	if cfg.VoiceMaxSessionDuration <= 0 {
		return Config{}, fmt.Errorf("voice max session duration must be > 0")
	}
	if cfg.VoiceQueueSize <= 0 {
		return Config{}, fmt.Errorf("voice queue size must be > 0")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envBoolOr(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func splitCSV(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func originSet(origins []string) map[string]struct{} {
	if len(origins) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		set[strings.TrimRight(o, "/")] = struct{}{}
	}
	return set
}

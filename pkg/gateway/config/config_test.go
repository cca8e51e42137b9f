package config

import (
	"testing"
	"time"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("Addr=%q", cfg.Addr)
	}
	if cfg.ChatModel != "gemini-3-flash-preview" {
		t.Fatalf("ChatModel=%q", cfg.ChatModel)
	}
	if cfg.VoiceModel != "gemini-2.5-flash-native-audio-preview-12-2025" {
		t.Fatalf("VoiceModel=%q", cfg.VoiceModel)
	}
	if cfg.VoiceMaxSessionDuration != 10*time.Minute {
		t.Fatalf("VoiceMaxSessionDuration=%v", cfg.VoiceMaxSessionDuration)
	}
	if cfg.CORSAllowedOrigins != nil {
		t.Fatalf("CORSAllowedOrigins=%v, want nil", cfg.CORSAllowedOrigins)
	}
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("DE_ADDR", ":9999")
	t.Setenv("DE_MIGRATE", "true")
	t.Setenv("DE_CORS_ORIGINS", "https://digitalemployee.me, https://www.digitalemployee.me/")
	t.Setenv("DE_VOICE_QUEUE_SIZE", "128")
	t.Setenv("DE_VOICE_MAX_SESSION_DURATION", "5m")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.Addr != ":9999" || !cfg.Migrate {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.VoiceQueueSize != 128 {
		t.Fatalf("VoiceQueueSize=%d", cfg.VoiceQueueSize)
	}
	if cfg.VoiceMaxSessionDuration != 5*time.Minute {
		t.Fatalf("VoiceMaxSessionDuration=%v", cfg.VoiceMaxSessionDuration)
	}
	if _, ok := cfg.CORSAllowedOrigins["https://digitalemployee.me"]; !ok {
		t.Fatalf("origins = %v", cfg.CORSAllowedOrigins)
	}
	// Trailing slash is normalized away.
	if _, ok := cfg.CORSAllowedOrigins["https://www.digitalemployee.me"]; !ok {
		t.Fatalf("origins = %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadFromEnvBadNumbersFallBack(t *testing.T) {
	t.Setenv("DE_VOICE_QUEUE_SIZE", "not-a-number")
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.VoiceQueueSize != 64 {
		t.Fatalf("VoiceQueueSize=%d, want default 64", cfg.VoiceQueueSize)
	}
}

func TestLoadFromEnvValidation(t *testing.T) {
	t.Setenv("DE_VOICE_MAX_FRAME_BYTES", "1048576")
	t.Setenv("DE_VOICE_MAX_MESSAGE_BYTES", "1024")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatalf("accepted frame budget larger than message budget")
	}
}

package handlers

import (
	"net/http"

	"github.com/digitalemployee/site-gateway/pkg/gateway/config"
)

type HealthHandler struct{}

func (h HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

type ReadyHandler struct {
	Config config.Config
}

func (h ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	type readyResp struct {
		OK            bool     `json:"ok"`
		LeadsEnabled  bool     `json:"leads_enabled"`
		AuthEnabled   bool     `json:"auth_enabled"`
		ChatEnabled   bool     `json:"chat_enabled"`
		VoiceEnabled  bool     `json:"voice_enabled"`
		MirrorEnabled bool     `json:"mirror_enabled"`
		Issues        []string `json:"issues,omitempty"`
	}

	issues := make([]string, 0, 4)

	if h.Config.ReadHeaderTimeout <= 0 || h.Config.ReadTimeout <= 0 || h.Config.HandlerTimeout <= 0 {
		issues = append(issues, "timeouts must be > 0")
	}
	if h.Config.VoiceMaxFrameBytes <= 0 || h.Config.VoiceMaxMessageBytes <= 0 {
		issues = append(issues, "voice frame budgets must be > 0")
	}
	if h.Config.VoiceMaxFrameBytes > h.Config.VoiceMaxMessageBytes {
		issues = append(issues, "voice frame budget must be <= message budget")
	}
	if h.Config.VoiceMaxSessionDuration <= 0 {
		issues = append(issues, "voice max session duration must be > 0")
	}
	if h.Config.GeminiAPIKey == "" {
		issues = append(issues, "gemini api key not configured, chat and voice disabled")
	}

	ok := len(issues) == 0
	status := http.StatusOK
	if !ok {
		status = http.StatusInternalServerError
	}

	writeJSON(w, status, readyResp{
		OK:            ok,
		LeadsEnabled:  h.Config.DatabaseURL != "",
		AuthEnabled:   h.Config.WorkOSAPIKey != "",
		ChatEnabled:   h.Config.GeminiAPIKey != "",
		VoiceEnabled:  h.Config.GeminiAPIKey != "",
		MirrorEnabled: h.Config.SheetSyncURL != "",
		Issues:        issues,
	})
}

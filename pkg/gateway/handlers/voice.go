package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/digitalemployee/site-gateway/pkg/gateway/config"
	"github.com/digitalemployee/site-gateway/pkg/gateway/lifecycle"
	"github.com/digitalemployee/site-gateway/pkg/gateway/sessions"
	"github.com/digitalemployee/site-gateway/pkg/voice/bridge"
	"github.com/digitalemployee/site-gateway/pkg/voice/protocol"
)

// VoiceHandler upgrades /v1/voice requests and runs the bridge session.
type VoiceHandler struct {
	Config    config.Config
	Dial      bridge.Dialer
	Tracker   *sessions.Tracker
	Lifecycle *lifecycle.Lifecycle
	Logger    *slog.Logger
}

func (h *VoiceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.Lifecycle != nil && h.Lifecycle.Draining() {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	if h.Dial == nil {
		http.Error(w, "voice is not configured", http.StatusServiceUnavailable)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     func(r *http.Request) bool { return h.originAllowed(r) },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.Warn("voice upgrade failed", "error", err)
		return
	}
	conn.SetReadLimit(int64(h.Config.VoiceMaxMessageBytes))

	// Handshake: the first frame must be a valid hello.
	_ = conn.SetReadDeadline(time.Now().Add(h.Config.VoiceHandshakeTimeout))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		_ = conn.Close()
		return
	}
	msg, err := protocol.DecodeClientMessage(raw)
	if err != nil {
		h.rejectHandshake(conn, err)
		return
	}
	hello, ok := msg.(*protocol.ClientHello)
	if !ok {
		h.rejectHandshake(conn, &protocol.DecodeError{Code: "bad_request", Message: "first frame must be hello"})
		return
	}
	if err := protocol.ValidateHello(hello); err != nil {
		h.rejectHandshake(conn, err)
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	sessionID := "vs_" + randHex(8)
	client := &wsClient{conn: conn}
	if err := client.Send(protocol.ServerHelloAck{
		Type:      protocol.TypeHelloAck,
		SessionID: sessionID,
		Limits: protocol.SessionLimits{
			MaxFrameBytes:     h.Config.VoiceMaxFrameBytes,
			MaxSessionSeconds: int(h.Config.VoiceMaxSessionDuration / time.Second),
		},
	}); err != nil {
		_ = conn.Close()
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	session := bridge.New(bridge.Dependencies{
		ID:          sessionID,
		Dial:        h.Dial,
		Client:      client,
		Logger:      h.Logger,
		QueueSize:   h.Config.VoiceQueueSize,
		MaxDuration: h.Config.VoiceMaxSessionDuration,
	})

	if h.Tracker != nil {
		unregister := h.Tracker.Register(sessionID, session.Close)
		defer unregister()
	}

	go h.readLoop(ctx, conn, session)

	if err := session.Run(ctx); err != nil && !bridge.IsSessionOver(err) && ctx.Err() == nil {
		h.Logger.Warn("voice session ended with error", "session_id", sessionID, "error", err)
	}
}

// readLoop pumps decoded client frames into the session until the socket or
// session ends.
func (h *VoiceHandler) readLoop(ctx context.Context, conn *websocket.Conn, session *bridge.Session) {
	defer session.Close()
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		msg, err := protocol.DecodeClientMessage(raw)
		if err != nil {
			h.Logger.Debug("dropping malformed voice frame", "error", err)
			continue
		}
		session.HandleFrame(ctx, msg)
	}
}

func (h *VoiceHandler) originAllowed(r *http.Request) bool {
	if len(h.Config.CORSAllowedOrigins) == 0 {
		return true
	}
	origin := strings.TrimRight(strings.TrimSpace(r.Header.Get("Origin")), "/")
	if origin == "" {
		// Non-browser clients send no Origin header.
		return true
	}
	_, ok := h.Config.CORSAllowedOrigins[origin]
	return ok
}

func (h *VoiceHandler) rejectHandshake(conn *websocket.Conn, err error) {
	code := "bad_request"
	message := err.Error()
	var derr *protocol.DecodeError
	if errors.As(err, &derr) {
		code = derr.Code
		message = derr.Message
	}
	_ = conn.WriteJSON(protocol.ServerError{
		Type:  protocol.TypeError,
		Error: protocol.WireError{Code: code, Message: message},
		Close: true,
	})
	_ = conn.Close()
}

// wsClient serializes writes to the websocket for the bridge.
type wsClient struct {
	conn *websocket.Conn

	mu        sync.Mutex
	closeOnce sync.Once
}

func (c *wsClient) Send(msg any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(msg)
}

func (c *wsClient) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.conn.Close()
	})
	return err
}

func randHex(nBytes int) string {
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return strings.Repeat("0", nBytes*2)
	}
	return hex.EncodeToString(b)
}

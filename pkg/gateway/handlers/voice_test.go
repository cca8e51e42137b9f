package handlers

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/digitalemployee/site-gateway/pkg/gateway/config"
	"github.com/digitalemployee/site-gateway/pkg/gateway/lifecycle"
	"github.com/digitalemployee/site-gateway/pkg/gateway/sessions"
	"github.com/digitalemployee/site-gateway/pkg/voice/bridge"
	"github.com/digitalemployee/site-gateway/pkg/voice/protocol"
)

type nullUpstream struct {
	events chan bridge.Event
}

func (u *nullUpstream) SendAudio(context.Context, []byte) error      { return nil }
func (u *nullUpstream) SendText(context.Context, string) error      { return nil }
func (u *nullUpstream) AckTool(context.Context, bridge.ToolCall) error { return nil }
func (u *nullUpstream) Events() <-chan bridge.Event                 { return u.events }
func (u *nullUpstream) Close() error                                 { return nil }

func voiceServer(t *testing.T) (*httptest.Server, *sessions.Tracker) {
	t.Helper()
	cfg, err := config.LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	tracker := sessions.NewTracker()
	h := &VoiceHandler{
		Config: cfg,
		Dial: func(context.Context) (bridge.Upstream, error) {
			return &nullUpstream{events: make(chan bridge.Event)}, nil
		},
		Tracker:   tracker,
		Lifecycle: lifecycle.New(),
		Logger:    discardLogger(),
	}
	return httptest.NewServer(h), tracker
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestVoiceHandshake(t *testing.T) {
	srv, tracker := voiceServer(t)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.ClientHello{
		Type:     protocol.TypeHello,
		AudioIn:  protocol.AudioFormat{Encoding: protocol.EncodingPCM16, SampleRateHz: 16000, Channels: 1},
		AudioOut: protocol.AudioFormat{Encoding: protocol.EncodingPCM16, SampleRateHz: 24000, Channels: 1},
	}
	if err := conn.WriteJSON(hello); err != nil {
		t.Fatalf("write hello: %v", err)
	}

	var ack protocol.ServerHelloAck
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&ack); err != nil {
		t.Fatalf("read ack: %v", err)
	}
	if ack.Type != protocol.TypeHelloAck || ack.SessionID == "" {
		t.Fatalf("ack = %+v", ack)
	}
	if ack.Limits.MaxFrameBytes <= 0 {
		t.Fatalf("limits = %+v", ack.Limits)
	}

	// The session registers with the tracker once active.
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) && tracker.Count() == 0 {
		time.Sleep(5 * time.Millisecond)
	}
	if tracker.Count() != 1 {
		t.Fatalf("tracker count = %d, want 1", tracker.Count())
	}
}

func TestVoiceHandshakeRejectsBadFormats(t *testing.T) {
	srv, _ := voiceServer(t)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.ClientHello{
		Type:     protocol.TypeHello,
		AudioIn:  protocol.AudioFormat{Encoding: protocol.EncodingPCM16, SampleRateHz: 44100, Channels: 1},
		AudioOut: protocol.AudioFormat{Encoding: protocol.EncodingPCM16, SampleRateHz: 24000, Channels: 1},
	}
	if err := conn.WriteJSON(hello); err != nil {
		t.Fatalf("write hello: %v", err)
	}

	var errFrame protocol.ServerError
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&errFrame); err != nil {
		t.Fatalf("read error frame: %v", err)
	}
	if errFrame.Type != protocol.TypeError || errFrame.Error.Code != "unsupported" || !errFrame.Close {
		t.Fatalf("error frame = %+v", errFrame)
	}
}

func TestVoiceHandshakeRejectsNonHelloFirstFrame(t *testing.T) {
	srv, _ := voiceServer(t)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(protocol.ClientAudioFrame{Type: protocol.TypeAudioFrame, Seq: 1, DataB64: "AAA="}); err != nil {
		t.Fatalf("write: %v", err)
	}

	var errFrame protocol.ServerError
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&errFrame); err != nil {
		t.Fatalf("read error frame: %v", err)
	}
	if errFrame.Error.Message != "first frame must be hello" {
		t.Fatalf("error frame = %+v", errFrame)
	}
}

func TestVoiceRefusedWhileDraining(t *testing.T) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	lc := lifecycle.New()
	lc.SetDraining(true)
	h := &VoiceHandler{
		Config:    cfg,
		Dial:      func(context.Context) (bridge.Upstream, error) { return nil, nil },
		Lifecycle: lc,
		Logger:    discardLogger(),
	}
	srv := httptest.NewServer(h)
	defer srv.Close()

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	if err == nil {
		t.Fatalf("dial succeeded while draining")
	}
	if resp == nil || resp.StatusCode != 503 {
		t.Fatalf("resp = %+v", resp)
	}
}

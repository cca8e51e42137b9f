// Package gemini adapts the Gemini Live API to the bridge upstream
// interface.
package gemini

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/digitalemployee/site-gateway/pkg/voice/bridge"
)

const (
	captureMIMEType = "audio/pcm;rate=16000"
	voiceName       = "Zephyr"
)

// voiceSystemPrompt drives the audit-booking conversation. The assistant
// collects exactly five answers, surfaces them through the booking tool, and
// never confirms a booking on its own.
const voiceSystemPrompt = `You are the voice concierge for DigitalEmployee.me. ` +
	`We deploy digital employees (AI agents) for small businesses. ` +
	`Office: 123 Deployment Way, phone (555) 123-4567, open Monday to Saturday ` +
	`9am-7pm, onboarding new clients through 2026. ` +
	`Your job is to book a Neural Audit. Collect, one question at a time: the ` +
	`caller's first name, their biggest operational challenges, their ` +
	`experience level with automation, their preferred day, and their ` +
	`preferred time. When you have all five answers, call showBookingSummary ` +
	`with them. Never tell the caller the booking is confirmed; the caller ` +
	`confirms on screen. If they ask to change details, resume collecting.`

var bookingDeclaration = &genai.FunctionDeclaration{
	Name:        "showBookingSummary",
	Description: "Display the collected audit booking details for on-screen confirmation.",
	Parameters: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"firstName":       {Type: genai.TypeString, Description: "Caller's first name"},
			"challenges":      {Type: genai.TypeString, Description: "Main operational challenges"},
			"experienceLevel": {Type: genai.TypeString, Description: "Experience with automation"},
			"preferredDay":    {Type: genai.TypeString, Description: "Preferred day for the audit"},
			"preferredTime":   {Type: genai.TypeString, Description: "Preferred time for the audit"},
		},
		Required: []string{"firstName", "challenges", "experienceLevel", "preferredDay", "preferredTime"},
	},
}

// Connector dials live sessions against one model.
type Connector struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

func NewConnector(client *genai.Client, model string, logger *slog.Logger) *Connector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Connector{client: client, model: model, logger: logger}
}

// Dial opens a live session and starts its receive pump.
func (c *Connector) Dial(ctx context.Context) (bridge.Upstream, error) {
	session, err := c.client.Live.Connect(ctx, c.model, &genai.LiveConnectConfig{
		ResponseModalities: []genai.Modality{genai.ModalityAudio},
		SystemInstruction:  genai.NewContentFromText(voiceSystemPrompt, genai.RoleUser),
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voiceName},
			},
		},
		OutputAudioTranscription: &genai.AudioTranscriptionConfig{},
		Tools: []*genai.Tool{
			{FunctionDeclarations: []*genai.FunctionDeclaration{bookingDeclaration}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("connect live session: %w", err)
	}

	up := &upstream{
		session: session,
		events:  make(chan bridge.Event, 32),
		logger:  c.logger,
	}
	go up.receive()
	return up, nil
}

type upstream struct {
	session *genai.Session
	events  chan bridge.Event
	logger  *slog.Logger
}

func (u *upstream) SendAudio(_ context.Context, pcm []byte) error {
	return u.session.SendRealtimeInput(genai.LiveRealtimeInput{
		Media: &genai.Blob{MIMEType: captureMIMEType, Data: pcm},
	})
}

func (u *upstream) SendText(_ context.Context, text string) error {
	return u.session.SendRealtimeInput(genai.LiveRealtimeInput{Text: text})
}

func (u *upstream) AckTool(_ context.Context, call bridge.ToolCall) error {
	return u.session.SendToolResponse(genai.LiveToolResponseInput{
		FunctionResponses: []*genai.FunctionResponse{{
			ID:       call.ID,
			Name:     call.Name,
			Response: map[string]any{"status": "summary_displayed"},
		}},
	})
}

func (u *upstream) Events() <-chan bridge.Event { return u.events }

func (u *upstream) Close() error {
	return u.session.Close()
}

// receive pumps server messages into bridge events until the session ends.
func (u *upstream) receive() {
	defer close(u.events)
	for {
		msg, err := u.session.Receive()
		if err != nil {
			u.events <- bridge.Event{Err: fmt.Errorf("live receive: %w", err)}
			return
		}
		if msg == nil {
			u.events <- bridge.Event{Closed: true}
			return
		}
		u.translate(msg)
	}
}

func (u *upstream) translate(msg *genai.LiveServerMessage) {
	if sc := msg.ServerContent; sc != nil {
		if sc.Interrupted {
			u.events <- bridge.Event{Interrupted: true}
		}
		if sc.OutputTranscription != nil && sc.OutputTranscription.Text != "" {
			u.events <- bridge.Event{Transcript: sc.OutputTranscription.Text}
		}
		if sc.ModelTurn != nil {
			for _, part := range sc.ModelTurn.Parts {
				if part.InlineData != nil && len(part.InlineData.Data) > 0 {
					u.events <- bridge.Event{Audio: part.InlineData.Data}
				}
			}
		}
	}
	if tc := msg.ToolCall; tc != nil {
		for _, fc := range tc.FunctionCalls {
			u.events <- bridge.Event{ToolCall: &bridge.ToolCall{
				ID:   fc.ID,
				Name: fc.Name,
				Args: fc.Args,
			}}
		}
	}
}

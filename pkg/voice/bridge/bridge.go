// Package bridge runs one realtime voice session: client audio up to the
// model, model audio and events back down, booking tool calls surfaced to
// the caller.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/digitalemployee/site-gateway/pkg/voice/audio"
	"github.com/digitalemployee/site-gateway/pkg/voice/protocol"
)

// State of a voice session.
type State string

const (
	StateIdle        State = "idle"
	StateConnecting  State = "connecting"
	StateActive      State = "active"
	StateInterrupted State = "interrupted"
	StateClosed      State = "closed"
	StateError       State = "error"
)

// editRequestText steers the model back into collection mode when the caller
// asks to change the booking card.
const editRequestText = "I want to change some of my booking details."

// bookingToolName is the function the model calls to surface the booking
// card.
const bookingToolName = "showBookingSummary"

// ToolCall is a function call received from the model.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// Event is one upstream notification. Exactly one field is meaningful per
// event.
type Event struct {
	Audio       []byte
	Transcript  string
	Interrupted bool
	ToolCall    *ToolCall
	Closed      bool
	Err         error
}

// Upstream is the realtime model session behind the bridge.
type Upstream interface {
	SendAudio(ctx context.Context, pcm []byte) error
	SendText(ctx context.Context, text string) error
	AckTool(ctx context.Context, call ToolCall) error
	Events() <-chan Event
	Close() error
}

// Dialer opens the upstream session.
type Dialer func(ctx context.Context) (Upstream, error)

// Client is the downstream leg (usually a websocket).
type Client interface {
	Send(msg any) error
	Close() error
}

type Dependencies struct {
	ID          string
	Dial        Dialer
	Client      Client
	Logger      *slog.Logger
	QueueSize   int
	MaxDuration time.Duration
}

// Session owns one voice call end to end.
type Session struct {
	id          string
	dial        Dialer
	client      Client
	logger      *slog.Logger
	maxDuration time.Duration

	mu      sync.Mutex
	state   State
	pending *protocol.BookingSummary
	up      Upstream
	outSeq  int64

	sendQ     chan []byte
	done      chan struct{}
	closeOnce sync.Once
	closed    chan struct{}
}

func New(deps Dependencies) *Session {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.QueueSize <= 0 {
		deps.QueueSize = 64
	}
	if deps.MaxDuration <= 0 {
		deps.MaxDuration = 10 * time.Minute
	}
	return &Session{
		id:          deps.ID,
		dial:        deps.Dial,
		client:      deps.Client,
		logger:      deps.Logger.With("session_id", deps.ID),
		maxDuration: deps.MaxDuration,
		state:       StateIdle,
		sendQ:       make(chan []byte, deps.QueueSize),
		done:        make(chan struct{}),
		closed:      make(chan struct{}),
	}
}

// State reports the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Run connects upstream and pumps events until the session ends. It always
// leaves the session cleaned up and the state back at idle.
func (s *Session) Run(ctx context.Context) error {
	defer s.Close()
	defer s.setState(StateIdle)

	s.setState(StateConnecting)
	up, err := s.dial(ctx)
	if err != nil {
		s.setState(StateError)
		s.sendError("upstream_unavailable", "could not reach the voice service", true, true)
		return fmt.Errorf("dial upstream: %w", err)
	}
	s.mu.Lock()
	s.up = up
	s.mu.Unlock()
	s.setState(StateActive)

	sendErr := make(chan error, 1)
	go s.pumpOutbound(ctx, up, sendErr)

	timer := time.NewTimer(s.maxDuration)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.sendClosed("shutdown")
			s.setState(StateClosed)
			return ctx.Err()
		case <-s.done:
			s.sendClosed("client_request")
			s.setState(StateClosed)
			return nil
		case <-timer.C:
			s.sendClosed("max_duration")
			s.setState(StateClosed)
			return nil
		case err := <-sendErr:
			s.setState(StateError)
			s.sendError("upstream_send", "voice service connection lost", true, true)
			return err
		case ev, ok := <-up.Events():
			if !ok {
				s.sendClosed("upstream_closed")
				s.setState(StateClosed)
				return nil
			}
			if err := s.handleUpstream(ctx, up, ev); err != nil {
				return err
			}
		}
	}
}

func (s *Session) handleUpstream(ctx context.Context, up Upstream, ev Event) error {
	switch {
	case ev.Err != nil:
		s.setState(StateError)
		s.sendError("upstream_error", "voice service error", true, true)
		return ev.Err
	case ev.Closed:
		s.sendClosed("upstream_closed")
		s.setState(StateClosed)
		return errSessionOver
	case ev.Interrupted:
		// The caller barged in: queued playback on the client is stale.
		s.setState(StateInterrupted)
		s.send(protocol.ServerAudioReset{Type: protocol.TypeAudioReset})
	case len(ev.Audio) > 0:
		if s.State() == StateInterrupted {
			s.setState(StateActive)
		}
		s.mu.Lock()
		s.outSeq++
		seq := s.outSeq
		s.mu.Unlock()
		s.send(protocol.ServerAudioChunk{
			Type:    protocol.TypeAudioChunk,
			Seq:     seq,
			DataB64: audio.EncodeBase64(ev.Audio),
		})
	case ev.Transcript != "":
		s.send(protocol.ServerTranscriptDelta{Type: protocol.TypeTranscriptDelta, Text: ev.Transcript})
	case ev.ToolCall != nil:
		s.handleToolCall(ctx, up, *ev.ToolCall)
	}
	return nil
}

// errSessionOver ends Run without reporting a failure to the caller.
var errSessionOver = errors.New("bridge: session over")

// IsSessionOver reports whether err is the normal end-of-session sentinel.
func IsSessionOver(err error) bool { return errors.Is(err, errSessionOver) }

func (s *Session) handleToolCall(ctx context.Context, up Upstream, call ToolCall) {
	if call.Name != bookingToolName {
		s.logger.Warn("ignoring unknown tool call", "tool", call.Name)
		if err := up.AckTool(ctx, call); err != nil {
			s.logger.Warn("tool ack failed", "error", err)
		}
		return
	}

	summary, err := summaryFromArgs(call.Args)
	if err != nil {
		s.logger.Warn("malformed booking summary", "error", err)
		s.sendError("bad_tool_call", "model sent an incomplete booking summary", false, false)
	} else {
		s.mu.Lock()
		s.pending = &summary
		s.mu.Unlock()
		s.send(protocol.ServerBookingSummary{Type: protocol.TypeBookingSummary, Summary: summary})
	}

	// The model is acked regardless so the conversation can continue.
	if err := up.AckTool(ctx, call); err != nil {
		s.logger.Warn("tool ack failed", "error", err)
	}
}

// HandleFrame processes one decoded client frame. Safe to call until Close.
func (s *Session) HandleFrame(ctx context.Context, msg any) {
	switch frame := msg.(type) {
	case *protocol.ClientAudioFrame:
		pcm, err := audio.DecodeBase64(frame.DataB64)
		if err != nil {
			s.sendError("bad_audio_frame", "audio frame payload is not valid base64", false, false)
			return
		}
		s.enqueueAudio(pcm)
	case *protocol.ClientBookingAction:
		s.handleBookingAction(ctx, frame)
	case *protocol.ClientControl:
		if frame.Op == protocol.ControlEndSession {
			s.Close()
		}
	}
}

// enqueueAudio never blocks the capture path: when the outbound queue is
// full the oldest frame is dropped.
func (s *Session) enqueueAudio(pcm []byte) {
	select {
	case <-s.done:
		return
	default:
	}
	for {
		select {
		case s.sendQ <- pcm:
			return
		default:
			select {
			case <-s.sendQ:
				s.logger.Debug("outbound audio queue full, dropping oldest frame")
			default:
			}
		}
	}
}

func (s *Session) handleBookingAction(ctx context.Context, action *protocol.ClientBookingAction) {
	s.mu.Lock()
	pending := s.pending
	up := s.up
	s.mu.Unlock()
	if pending == nil {
		s.sendError("no_booking_pending", "no booking summary is awaiting action", false, false)
		return
	}

	switch action.Op {
	case protocol.BookingConfirm:
		// Confirmation is a client-side transition; nothing goes upstream.
		s.mu.Lock()
		s.pending = nil
		s.mu.Unlock()
	case protocol.BookingCancel:
		s.mu.Lock()
		s.pending = nil
		s.mu.Unlock()
	case protocol.BookingEdit:
		text := editRequestText
		if action.Note != "" {
			text += " " + action.Note
		}
		if up != nil {
			if err := up.SendText(ctx, text); err != nil {
				s.logger.Warn("edit request failed", "error", err)
			}
		}
		s.mu.Lock()
		s.pending = nil
		s.mu.Unlock()
	}
}

// PendingSummary returns the booking card awaiting caller action, if any.
func (s *Session) PendingSummary() *protocol.BookingSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return nil
	}
	out := *s.pending
	return &out
}

func (s *Session) pumpOutbound(ctx context.Context, up Upstream, sendErr chan<- error) {
	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			return
		case pcm := <-s.sendQ:
			if err := up.SendAudio(ctx, pcm); err != nil {
				select {
				case sendErr <- err:
				default:
				}
				return
			}
		}
	}
}

// Close tears the session down. Idempotent: the second and later calls are
// no-ops, so a transport close racing a client end_session is safe.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.mu.Lock()
		up := s.up
		s.mu.Unlock()
		if up != nil {
			if err := up.Close(); err != nil {
				s.logger.Debug("upstream close", "error", err)
			}
		}
		if err := s.client.Close(); err != nil {
			s.logger.Debug("client close", "error", err)
		}
		close(s.closed)
	})
}

// Done is closed once cleanup has run.
func (s *Session) Done() <-chan struct{} { return s.closed }

func (s *Session) send(msg any) {
	if err := s.client.Send(msg); err != nil {
		s.logger.Debug("client send failed", "error", err)
	}
}

func (s *Session) sendError(code, message string, retryable, closeAfter bool) {
	s.send(protocol.ServerError{
		Type:  protocol.TypeError,
		Error: protocol.WireError{Code: code, Message: message, Retryable: retryable},
		Close: closeAfter,
	})
}

func (s *Session) sendClosed(reason string) {
	s.send(protocol.ServerClosed{Type: protocol.TypeClosed, Reason: reason})
}

func summaryFromArgs(args map[string]any) (protocol.BookingSummary, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return protocol.BookingSummary{}, err
	}
	// The model uses the declaration's camelCase parameter names.
	var parsed struct {
		FirstName       string `json:"firstName"`
		Challenges      string `json:"challenges"`
		ExperienceLevel string `json:"experienceLevel"`
		PreferredDay    string `json:"preferredDay"`
		PreferredTime   string `json:"preferredTime"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return protocol.BookingSummary{}, err
	}
	summary := protocol.BookingSummary{
		FirstName:       parsed.FirstName,
		Challenges:      parsed.Challenges,
		ExperienceLevel: parsed.ExperienceLevel,
		PreferredDay:    parsed.PreferredDay,
		PreferredTime:   parsed.PreferredTime,
	}
	if err := summary.Validate(); err != nil {
		return protocol.BookingSummary{}, err
	}
	return summary, nil
}

// Package protocol defines the JSON frames exchanged on a voice session
// socket.
package protocol

import (
	"encoding/json"
	"fmt"
)

// Audio formats are fixed for every session: PCM16 at 16 kHz mono up, PCM16
// at 24 kHz mono down.
const (
	EncodingPCM16      = "pcm_s16le"
	CaptureSampleRate  = 16000
	PlaybackSampleRate = 24000
)

// Client frame types.
const (
	TypeHello         = "hello"
	TypeAudioFrame    = "audio_frame"
	TypeBookingAction = "booking_action"
	TypeControl       = "control"
)

// Server frame types.
const (
	TypeHelloAck        = "hello_ack"
	TypeTranscriptDelta = "transcript_delta"
	TypeAudioChunk      = "audio_chunk"
	TypeAudioReset      = "audio_reset"
	TypeBookingSummary  = "booking_summary"
	TypeError           = "error"
	TypeClosed          = "closed"
)

// Booking action ops.
const (
	BookingConfirm = "confirm"
	BookingEdit    = "edit"
	BookingCancel  = "cancel"
)

// Control ops.
const ControlEndSession = "end_session"

type AudioFormat struct {
	Encoding     string `json:"encoding"`
	SampleRateHz int    `json:"sample_rate_hz"`
	Channels     int    `json:"channels"`
}

type ClientHello struct {
	Type     string      `json:"type"`
	AudioIn  AudioFormat `json:"audio_in"`
	AudioOut AudioFormat `json:"audio_out"`
}

type ClientAudioFrame struct {
	Type    string `json:"type"`
	Seq     int64  `json:"seq"`
	DataB64 string `json:"data_b64"`
}

type ClientBookingAction struct {
	Type string `json:"type"`
	Op   string `json:"op"`
	Note string `json:"note,omitempty"`
}

type ClientControl struct {
	Type string `json:"type"`
	Op   string `json:"op"`
}

type ServerHelloAck struct {
	Type      string        `json:"type"`
	SessionID string        `json:"session_id"`
	Limits    SessionLimits `json:"limits"`
}

type SessionLimits struct {
	MaxFrameBytes     int `json:"max_frame_bytes"`
	MaxSessionSeconds int `json:"max_session_seconds"`
}

type ServerTranscriptDelta struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type ServerAudioChunk struct {
	Type    string `json:"type"`
	Seq     int64  `json:"seq"`
	DataB64 string `json:"data_b64"`
}

type ServerAudioReset struct {
	Type string `json:"type"`
}

// BookingSummary is the structured booking card surfaced to the caller. All
// five fields are required.
type BookingSummary struct {
	FirstName       string `json:"first_name"`
	Challenges      string `json:"challenges"`
	ExperienceLevel string `json:"experience_level"`
	PreferredDay    string `json:"preferred_day"`
	PreferredTime   string `json:"preferred_time"`
}

type ServerBookingSummary struct {
	Type    string         `json:"type"`
	Summary BookingSummary `json:"summary"`
}

type WireError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

type ServerError struct {
	Type  string    `json:"type"`
	Error WireError `json:"error"`
	Close bool      `json:"close"`
}

type ServerClosed struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// DecodeError reports a malformed or unsupported client frame.
type DecodeError struct {
	Code    string
	Message string
	Param   string
}

func (e *DecodeError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Param)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func badRequest(message, param string) *DecodeError {
	return &DecodeError{Code: "bad_request", Message: message, Param: param}
}

func unsupported(message, param string) *DecodeError {
	return &DecodeError{Code: "unsupported", Message: message, Param: param}
}

// DecodeClientMessage parses one client frame by its type discriminator.
func DecodeClientMessage(data []byte) (any, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, badRequest("frame is not valid JSON", "")
	}

	switch envelope.Type {
	case TypeHello:
		var msg ClientHello
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, badRequest("invalid hello frame", "")
		}
		return &msg, nil
	case TypeAudioFrame:
		var msg ClientAudioFrame
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, badRequest("invalid audio frame", "")
		}
		if msg.DataB64 == "" {
			return nil, badRequest("audio frame has no payload", "data_b64")
		}
		return &msg, nil
	case TypeBookingAction:
		var msg ClientBookingAction
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, badRequest("invalid booking action", "")
		}
		switch msg.Op {
		case BookingConfirm, BookingEdit, BookingCancel:
		default:
			return nil, badRequest("unknown booking op", "op")
		}
		return &msg, nil
	case TypeControl:
		var msg ClientControl
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, badRequest("invalid control frame", "")
		}
		if msg.Op != ControlEndSession {
			return nil, badRequest("unknown control op", "op")
		}
		return &msg, nil
	case "":
		return nil, badRequest("frame has no type", "type")
	default:
		return nil, unsupported("unsupported frame type", "type")
	}
}

// ValidateHello checks the advertised formats against the fixed session
// contract.
func ValidateHello(h *ClientHello) error {
	if h.AudioIn.Encoding != EncodingPCM16 {
		return unsupported("capture encoding must be pcm_s16le", "audio_in.encoding")
	}
	if h.AudioIn.SampleRateHz != CaptureSampleRate {
		return unsupported("capture sample rate must be 16000", "audio_in.sample_rate_hz")
	}
	if h.AudioIn.Channels != 1 {
		return unsupported("capture must be mono", "audio_in.channels")
	}
	if h.AudioOut.Encoding != EncodingPCM16 {
		return unsupported("playback encoding must be pcm_s16le", "audio_out.encoding")
	}
	if h.AudioOut.SampleRateHz != PlaybackSampleRate {
		return unsupported("playback sample rate must be 24000", "audio_out.sample_rate_hz")
	}
	if h.AudioOut.Channels != 1 {
		return unsupported("playback must be mono", "audio_out.channels")
	}
	return nil
}

// Validate checks a booking summary for the five required fields, returning
// the first missing one.
func (s BookingSummary) Validate() error {
	required := []struct{ field, value string }{
		{"first_name", s.FirstName},
		{"challenges", s.Challenges},
		{"experience_level", s.ExperienceLevel},
		{"preferred_day", s.PreferredDay},
		{"preferred_time", s.PreferredTime},
	}
	for _, r := range required {
		if r.value == "" {
			return badRequest("booking summary field missing", r.field)
		}
	}
	return nil
}

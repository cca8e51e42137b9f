// Command voice-client is a terminal client for the gateway's voice bridge:
// microphone in, model audio out, booking summary confirmed on the keyboard.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/digitalemployee/site-gateway/pkg/voice/audio"
	"github.com/digitalemployee/site-gateway/pkg/voice/protocol"
)

// 20ms of capture audio per frame.
const captureFrameBytes = audio.CaptureRate / 50 * 2

func main() {
	url := flag.String("url", "ws://127.0.0.1:8080/v1/voice", "voice bridge endpoint")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(*url, logger); err != nil {
		logger.Error("voice client failed", "error", err)
		os.Exit(1)
	}
}

func run(url string, logger *slog.Logger) error {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", url, err)
	}

	if err := conn.WriteJSON(protocol.ClientHello{
		Type:     protocol.TypeHello,
		AudioIn:  protocol.AudioFormat{Encoding: protocol.EncodingPCM16, SampleRateHz: protocol.CaptureSampleRate, Channels: 1},
		AudioOut: protocol.AudioFormat{Encoding: protocol.EncodingPCM16, SampleRateHz: protocol.PlaybackSampleRate, Channels: 1},
	}); err != nil {
		conn.Close()
		return fmt.Errorf("send hello: %w", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	var ack protocol.ServerHelloAck
	if err := conn.ReadJSON(&ack); err != nil {
		conn.Close()
		return fmt.Errorf("read hello ack: %w", err)
	}
	_ = conn.SetReadDeadline(time.Time{})
	fmt.Printf("session %s active, speak when ready (ctrl-c to hang up)\n", ack.SessionID)

	mic, err := startMicCapture()
	if err != nil {
		conn.Close()
		return err
	}

	speaker := newFFPlaySpeaker()
	scheduler := audio.NewScheduler(audio.NewMonotonicClock(), speaker, audio.PlaybackRate)

	c := &client{
		conn:      conn,
		mic:       mic,
		speaker:   speaker,
		scheduler: scheduler,
		logger:    logger,
		done:      make(chan struct{}),
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			_ = c.send(protocol.ClientControl{Type: protocol.TypeControl, Op: protocol.ControlEndSession})
			c.cleanup()
		case <-c.done:
		}
	}()

	go c.pumpMic()
	c.readLoop()
	c.cleanup()
	return nil
}

type client struct {
	conn      *websocket.Conn
	mic       *micCapture
	speaker   *ffplaySpeaker
	scheduler *audio.Scheduler
	logger    *slog.Logger

	writeMu   sync.Mutex
	closeOnce sync.Once
	done      chan struct{}
}

func (c *client) send(msg any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(msg)
}

// pumpMic streams capture frames until the session ends. The read from
// ffmpeg paces the loop; a failed send ends the session rather than stalling
// capture.
func (c *client) pumpMic() {
	buf := make([]byte, captureFrameBytes)
	var seq int64
	for {
		select {
		case <-c.done:
			return
		default:
		}
		if _, err := c.mic.ReadFrame(buf); err != nil {
			return
		}
		seq++
		frame := protocol.ClientAudioFrame{
			Type:    protocol.TypeAudioFrame,
			Seq:     seq,
			DataB64: audio.EncodeBase64(buf),
		}
		if err := c.send(frame); err != nil {
			return
		}
	}
}

func (c *client) readLoop() {
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var envelope struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			continue
		}
		switch envelope.Type {
		case protocol.TypeAudioChunk:
			var chunk protocol.ServerAudioChunk
			if json.Unmarshal(raw, &chunk) != nil {
				continue
			}
			pcm, err := audio.DecodeBase64(chunk.DataB64)
			if err != nil {
				continue
			}
			if _, err := c.scheduler.Schedule(pcm); err != nil {
				return
			}
		case protocol.TypeAudioReset:
			c.scheduler.Interrupt()
		case protocol.TypeTranscriptDelta:
			var delta protocol.ServerTranscriptDelta
			if json.Unmarshal(raw, &delta) == nil {
				fmt.Print(delta.Text)
			}
		case protocol.TypeBookingSummary:
			var summary protocol.ServerBookingSummary
			if json.Unmarshal(raw, &summary) == nil {
				c.promptBooking(summary.Summary)
			}
		case protocol.TypeError:
			var errFrame protocol.ServerError
			if json.Unmarshal(raw, &errFrame) == nil {
				c.logger.Error("session error", "code", errFrame.Error.Code, "message", errFrame.Error.Message)
				if errFrame.Close {
					return
				}
			}
		case protocol.TypeClosed:
			var closed protocol.ServerClosed
			if json.Unmarshal(raw, &closed) == nil {
				fmt.Printf("\nsession closed (%s)\n", closed.Reason)
			}
			return
		}
	}
}

func (c *client) promptBooking(s protocol.BookingSummary) {
	fmt.Printf("\n--- booking summary ---\n")
	fmt.Printf("  name:       %s\n", s.FirstName)
	fmt.Printf("  challenges: %s\n", s.Challenges)
	fmt.Printf("  experience: %s\n", s.ExperienceLevel)
	fmt.Printf("  day:        %s\n", s.PreferredDay)
	fmt.Printf("  time:       %s\n", s.PreferredTime)
	fmt.Printf("confirm [c], edit [e], cancel [x]: ")

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "c":
		_ = c.send(protocol.ClientBookingAction{Type: protocol.TypeBookingAction, Op: protocol.BookingConfirm})
		fmt.Println("booking confirmed")
	case "e":
		fmt.Print("what should change? ")
		note, _ := reader.ReadString('\n')
		_ = c.send(protocol.ClientBookingAction{
			Type: protocol.TypeBookingAction,
			Op:   protocol.BookingEdit,
			Note: strings.TrimSpace(note),
		})
	default:
		_ = c.send(protocol.ClientBookingAction{Type: protocol.TypeBookingAction, Op: protocol.BookingCancel})
		fmt.Println("booking cancelled")
	}
}

// cleanup releases the mic, playback, and socket. Safe to call from both the
// signal path and the read loop.
func (c *client) cleanup() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.mic.Close()
		c.scheduler.Close()
		c.speaker.Close()
		_ = c.conn.Close()
	})
}

package main

import (
	"io"
	"os/exec"
	"strconv"
	"sync"

	"github.com/digitalemployee/site-gateway/pkg/voice/audio"
)

// ffplaySpeaker plays scheduled PCM through an ffplay child process. An
// interruption kills the process so buffered audio is discarded, then
// respawns it for the next turn.
type ffplaySpeaker struct {
	mu     sync.Mutex
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	closed bool
}

func newFFPlaySpeaker() *ffplaySpeaker {
	return &ffplaySpeaker{}
}

func (s *ffplaySpeaker) Play(src audio.Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.stdin == nil {
		if err := s.spawnLocked(); err != nil {
			return
		}
	}
	// Chunks arrive in schedule order, so sequential writes preserve the
	// gapless timeline.
	if _, err := s.stdin.Write(src.PCM); err != nil {
		s.killLocked()
	}
}

// Stop discards a scheduled source. All pending sources share one ffplay
// pipeline, so the first Stop of a purge kills it.
func (s *ffplaySpeaker) Stop(uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.killLocked()
}

// Close releases the player. Idempotent.
func (s *ffplaySpeaker) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.killLocked()
}

func (s *ffplaySpeaker) spawnLocked() error {
	cmd := exec.Command("ffplay",
		"-f", "s16le",
		"-ar", strconv.Itoa(audio.PlaybackRate),
		"-ch_layout", "mono",
		"-nodisp",
		"-autoexit",
		"-loglevel", "error",
		"-i", "pipe:0",
	)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	s.cmd = cmd
	s.stdin = stdin
	return nil
}

func (s *ffplaySpeaker) killLocked() {
	if s.stdin != nil {
		_ = s.stdin.Close()
		s.stdin = nil
	}
	if s.cmd != nil && s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
		_ = s.cmd.Wait()
	}
	s.cmd = nil
}

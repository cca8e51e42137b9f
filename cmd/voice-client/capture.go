package main

import (
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"sync"
)

// micCapture shells out to ffmpeg for raw 16 kHz mono PCM16 from the default
// input device.
type micCapture struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser

	mu     sync.Mutex
	closed bool
}

func startMicCapture() (*micCapture, error) {
	var args []string
	switch runtime.GOOS {
	case "darwin":
		args = []string{"-f", "avfoundation", "-i", ":0"}
	case "linux":
		args = []string{"-f", "pulse", "-i", "default"}
	default:
		return nil, fmt.Errorf("microphone capture not supported on %s", runtime.GOOS)
	}
	args = append(args,
		"-ac", "1",
		"-ar", "16000",
		"-f", "s16le",
		"-loglevel", "error",
		"pipe:1",
	)

	cmd := exec.Command("ffmpeg", args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}
	return &micCapture{cmd: cmd, stdout: stdout}, nil
}

// ReadFrame blocks until one capture frame is full.
func (m *micCapture) ReadFrame(buf []byte) (int, error) {
	return io.ReadFull(m.stdout, buf)
}

// Close stops the capture process. Idempotent.
func (m *micCapture) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	_ = m.stdout.Close()
	if m.cmd.Process != nil {
		_ = m.cmd.Process.Kill()
	}
	_ = m.cmd.Wait()
}

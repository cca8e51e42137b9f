package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/digitalemployee/site-gateway/pkg/gateway/config"
)

func testDeps() gatewayDeps {
	deps := defaultDeps()
	deps.signalNotify = func(chan<- os.Signal, ...os.Signal) {}
	deps.signalStop = func(chan<- os.Signal) {}
	return deps
}

func TestRunMainConfigFailure(t *testing.T) {
	deps := testDeps()
	deps.loadConfig = func() (config.Config, error) {
		return config.Config{}, errors.New("bad env")
	}

	var buf strings.Builder
	if code := runMain(context.Background(), &buf, deps); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(buf.String(), "bad env") {
		t.Fatalf("stderr = %q", buf.String())
	}
}

func TestRunMainServesAndStopsOnContext(t *testing.T) {
	deps := testDeps()
	deps.loadConfig = func() (config.Config, error) {
		cfg, err := config.LoadFromEnv()
		if err != nil {
			return config.Config{}, err
		}
		cfg.Addr = "127.0.0.1:0"
		return cfg, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan int, 1)
	var buf strings.Builder
	go func() { done <- runMain(ctx, &buf, deps) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case code := <-done:
		if code != 0 {
			t.Fatalf("exit code = %d, stderr = %s", code, buf.String())
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("runMain did not stop after context cancel")
	}
}

func TestBuildHTTPServer(t *testing.T) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	srv := buildHTTPServer(cfg, http.NotFoundHandler())
	if srv.Addr != cfg.Addr {
		t.Fatalf("Addr=%q", srv.Addr)
	}
	if srv.ReadHeaderTimeout != cfg.ReadHeaderTimeout {
		t.Fatalf("ReadHeaderTimeout=%v", srv.ReadHeaderTimeout)
	}
}

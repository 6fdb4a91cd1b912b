package daemon

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/danmuck/pomoctl/internal/alert"
	"github.com/danmuck/pomoctl/internal/client"
	"github.com/danmuck/pomoctl/internal/config"
	"github.com/danmuck/pomoctl/internal/protocol"
	"github.com/danmuck/pomoctl/internal/testutil/testlog"
	"go.uber.org/goleak"
)

func TestServiceRunContextServesUntilCancelled(t *testing.T) {
	testlog.Start(t)
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	cfg := config.Default()
	cfg.SocketPath = socketPath(t)
	cfg.MetricsAddr = "127.0.0.1:0"
	cfg.Alert.Backend = alert.BackendNone

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewServiceWithConfig(cfg).RunContext(ctx) }()

	c := client.New(client.Config{SocketPath: cfg.SocketPath})
	var resp protocol.Response
	var err error
	for i := 0; i < 100; i++ {
		resp, err = c.Send(context.Background(), protocol.GetState())
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("daemon never answered: %v", err)
	}
	if resp.Text != "Not doing anything" {
		t.Fatalf("unexpected reply %q", resp.Text)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("service did not stop")
	}
}

func TestServiceRejectsInvalidConfig(t *testing.T) {
	testlog.Start(t)
	cfg := config.Default()
	cfg.SocketPath = socketPath(t)
	cfg.SessionDuration = 0
	if err := NewServiceWithConfig(cfg).RunContext(context.Background()); !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestServiceMetricsListenFailureStopsDaemon(t *testing.T) {
	testlog.Start(t)
	cfg := config.Default()
	cfg.SocketPath = socketPath(t)
	cfg.MetricsAddr = "256.0.0.1:bad"

	svc := NewServiceWithConfig(cfg).WithPlayer(alert.NopPlayer{})
	errCh := make(chan error, 1)
	go func() { errCh <- svc.RunContext(context.Background()) }()
	select {
	case err := <-errCh:
		if err == nil {
			t.Fatalf("expected metrics listen error")
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("service kept running without metrics listener")
	}
}

func TestServiceFailsStartupWithoutAlertPlayer(t *testing.T) {
	testlog.Start(t)
	defer goleak.VerifyNone(t)
	cfg := config.Default()
	cfg.SocketPath = socketPath(t)
	cfg.Alert.Command = []string{"/nonexistent/player"}

	err := NewServiceWithConfig(cfg).RunContext(context.Background())
	if !errors.Is(err, alert.ErrPlayerUnavailable) {
		t.Fatalf("expected ErrPlayerUnavailable at startup, got %v", err)
	}
	if _, statErr := os.Stat(cfg.SocketPath); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("socket must not be bound when preflight fails, stat err=%v", statErr)
	}
}

//go:build unix

package tools

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestExecRunnerCapturesOutputAndExitCode(t *testing.T) {
	r := ExecRunner{}
	stdout, _, code, err := r.Run(context.Background(), "sh", "-c", "echo tick; exit 3")
	if err == nil {
		t.Fatalf("expected exit error")
	}
	if code != 3 {
		t.Fatalf("exit code got=%d want=3", code)
	}
	if string(stdout) != "tick\n" {
		t.Fatalf("stdout got=%q", stdout)
	}
}

func TestExecRunnerMissingBinary(t *testing.T) {
	r := ExecRunner{}
	_, _, code, err := r.Run(context.Background(), "pomoctl-definitely-missing-binary")
	if err == nil || code != 127 {
		t.Fatalf("expected exit 127, got code=%d err=%v", code, err)
	}
	if _, err := r.LookPath("pomoctl-definitely-missing-binary"); err == nil {
		t.Fatalf("expected lookpath failure")
	}
}

func TestExecRunnerCancelInterrupts(t *testing.T) {
	r := ExecRunner{WaitDelay: time.Second}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, _, _, err := r.Run(ctx, "sleep", "30")
		done <- err
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err == nil || !errors.Is(ctx.Err(), context.Canceled) {
			t.Fatalf("expected interrupted command, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("command was not interrupted")
	}
}

package alert

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/danmuck/pomoctl/internal/logging"
	"github.com/danmuck/pomoctl/internal/tools"
)

// ExecPlayer loops a local player command until stopped.
type ExecPlayer struct {
	runner  tools.CommandRunner
	argv    []string
	backoff restartBackoff
	// sound is the file played by the default command, checked up front.
	sound string
}

func NewExecPlayer(runner tools.CommandRunner, argv []string) (*ExecPlayer, error) {
	if len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
		return nil, fmt.Errorf("%w: empty player command", ErrPlayerUnavailable)
	}
	for i, arg := range argv[1:] {
		if strings.TrimSpace(arg) == "" {
			return nil, fmt.Errorf("%w: empty argument %d in player command", ErrPlayerUnavailable, i+1)
		}
	}
	out := make([]string, len(argv))
	copy(out, argv)
	return &ExecPlayer{runner: runner, argv: out, backoff: defaultRestartBackoff()}, nil
}

// Check resolves the player binary and, for the default command, the sound file.
func (p *ExecPlayer) Check() error {
	if _, err := p.runner.LookPath(p.argv[0]); err != nil {
		return fmt.Errorf("%w: %v", ErrPlayerUnavailable, err)
	}
	if p.sound != "" {
		if _, err := os.Stat(p.sound); err != nil {
			return fmt.Errorf("%w: sound file: %v", ErrPlayerUnavailable, err)
		}
	}
	return nil
}

// Start resolves the player binary and begins the playback loop.
func (p *ExecPlayer) Start() (Handle, error) {
	if _, err := p.runner.LookPath(p.argv[0]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPlayerUnavailable, err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	h := &execHandle{cancel: cancel, done: make(chan struct{})}
	go p.loop(ctx, h.done)
	return h, nil
}

func (p *ExecPlayer) loop(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	logger := logging.WithComponent("alert")
	plays, failures := 0, 0
	for {
		_, stderr, code, err := p.runner.Run(ctx, p.argv[0], p.argv[1:]...)
		if ctx.Err() != nil {
			logger.Debug().Int("plays", plays).Msg("alert.exec stopped")
			return
		}
		plays++
		if err != nil {
			failures++
			logger.Warn().
				Err(err).
				Int32("exit_code", code).
				Int("failures", failures).
				Str("stderr", strings.TrimSpace(string(stderr))).
				Msg("alert.exec player failed")
		} else {
			failures = 0
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(p.backoff.delay(failures)):
		}
	}
}

type execHandle struct {
	once   sync.Once
	cancel context.CancelFunc
	done   chan struct{}
}

func (h *execHandle) Stop() error {
	h.once.Do(func() {
		h.cancel()
		<-h.done
	})
	return nil
}

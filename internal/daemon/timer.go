package daemon

import (
	"context"
	"time"

	"github.com/danmuck/pomoctl/internal/logging"
	"github.com/danmuck/pomoctl/internal/observability"
	"github.com/danmuck/pomoctl/internal/protocol"
)

const DefaultPollInterval = time.Second

// Notifier delivers a command to the daemon. *client.Client satisfies it.
type Notifier interface {
	Send(ctx context.Context, cmd protocol.Command) (protocol.Response, error)
}

// TimerConfig parameterises one work-interval timer.
type TimerConfig struct {
	Deadline     time.Time
	Session      uint64
	PollInterval time.Duration
	Notifier     Notifier
}

// RunTimer waits for the deadline, then sends one WorkDone for cfg.Session
// through the socket. It never retries and returns early only when ctx ends.
func RunTimer(ctx context.Context, cfg TimerConfig) {
	logger := logging.WithComponent("timer").With().Uint64("session", cfg.Session).Logger()
	poll := cfg.PollInterval
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for time.Now().Before(cfg.Deadline) {
		select {
		case <-ctx.Done():
			logger.Debug().Msg("timer cancelled")
			return
		case <-ticker.C:
		}
	}

	resp, err := cfg.Notifier.Send(ctx, protocol.WorkDone(cfg.Session))
	if err != nil {
		if ctx.Err() != nil {
			logger.Debug().Err(err).Msg("timer cancelled during signal")
			return
		}
		observability.RecordTimerSignal(observability.TimerFailed)
		logger.Warn().Err(err).Msg("work-finished signal failed")
		return
	}
	if !resp.OK {
		observability.RecordTimerSignal(observability.TimerRejected)
		logger.Debug().Str("reply", resp.Text).Msg("work-finished signal rejected")
		return
	}
	observability.RecordTimerSignal(observability.TimerAccepted)
	logger.Info().Msg("work-finished signal delivered")
}

package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/danmuck/pomoctl/internal/alert"
	"github.com/danmuck/pomoctl/internal/client"
	"github.com/danmuck/pomoctl/internal/logging"
	"github.com/danmuck/pomoctl/internal/observability"
	"github.com/danmuck/pomoctl/internal/protocol"
	"github.com/danmuck/pomoctl/internal/session"
	"github.com/rs/zerolog"
)

const (
	DefaultReadTimeout = 5 * time.Second
	socketMode         = 0o600
)

var ErrNotListening = errors.New("daemon: server is not listening")

// ServerConfig configures the connection server.
type ServerConfig struct {
	SocketPath   string
	ReadTimeout  time.Duration
	PollInterval time.Duration
	Session      session.Config
	Player       alert.Player
	// Notifier carries timer signals; nil means a client on SocketPath.
	Notifier Notifier
}

// Server owns the session state and processes one connection at a time.
type Server struct {
	cfg    ServerConfig
	ln     net.Listener
	state  session.State
	timers sync.WaitGroup
	logger zerolog.Logger
}

func NewServer(cfg ServerConfig) *Server {
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Player == nil {
		cfg.Player = alert.NopPlayer{}
	}
	if cfg.Notifier == nil {
		cfg.Notifier = client.New(client.DefaultConfig(cfg.SocketPath))
	}
	return &Server{
		cfg:    cfg,
		state:  session.Idle(),
		logger: logging.WithComponent("daemon"),
	}
}

// Listen binds the unix socket, replacing a stale socket file.
func (s *Server) Listen() error {
	if err := os.Remove(s.cfg.SocketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("daemon: remove stale socket %s: %w", s.cfg.SocketPath, err)
	}
	ln, err := net.Listen("unix", s.cfg.SocketPath)
	if err != nil {
		return fmt.Errorf("daemon: listen %s: %w", s.cfg.SocketPath, err)
	}
	if err := os.Chmod(s.cfg.SocketPath, socketMode); err != nil {
		_ = ln.Close()
		return fmt.Errorf("daemon: chmod socket: %w", err)
	}
	s.ln = ln
	s.logger.Info().Str("socket", s.cfg.SocketPath).Msg("listening")
	return nil
}

// Serve runs the accept loop until ctx ends or a fatal error occurs.
func (s *Server) Serve(ctx context.Context) error {
	if s.ln == nil {
		return ErrNotListening
	}
	timerCtx, cancelTimers := context.WithCancel(context.Background())
	defer s.shutdown(cancelTimers)

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
		case <-stop:
		}
		_ = s.ln.Close()
	}()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("daemon: accept: %w", err)
		}
		if err := s.handleConn(timerCtx, conn); err != nil {
			return err
		}
	}
}

// handleConn processes one request to completion. Only errors that must stop
// the daemon are returned.
func (s *Server) handleConn(timerCtx context.Context, conn net.Conn) error {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(s.cfg.ReadTimeout))

	cmd, messageID, err := protocol.ReadCommand(conn)
	if err != nil {
		switch {
		case protocol.IsMalformed(err):
			observability.RecordMalformed()
			s.logger.Warn().Err(err).Msg("dropping malformed request")
		case errors.Is(err, io.EOF):
			s.logger.Debug().Msg("client closed without a request")
		default:
			s.logger.Warn().Err(err).Msg("read request failed")
		}
		return nil
	}

	prev := s.state
	next, resp, effect := session.Apply(prev, cmd, time.Now(), s.cfg.Session)
	next, err = s.perform(timerCtx, next, effect)
	s.state = next
	if err != nil {
		return err
	}

	observability.RecordCommand(cmd.Action.String(), resp.OK)
	s.logger.Info().
		Str("action", cmd.Action.String()).
		Str("from", prev.Phase().String()).
		Str("to", next.Phase().String()).
		Bool("ok", resp.OK).
		Str("reply", resp.Text).
		Msg("command applied")

	if err := protocol.WriteResponse(conn, messageID, resp); err != nil {
		return fmt.Errorf("daemon: write response to %s: %w", cmd.Action, err)
	}
	return nil
}

func (s *Server) perform(timerCtx context.Context, next session.State, effect session.Effect) (session.State, error) {
	switch effect.Kind {
	case session.EffectStartTimer:
		s.startTimer(timerCtx, effect)
	case session.EffectStartAudio:
		h, err := s.cfg.Player.Start()
		if err != nil {
			return next, fmt.Errorf("daemon: start alert: %w", err)
		}
		observability.SetAlertActive(true)
		return next.WithAlert(h), nil
	case session.EffectStopAudio:
		if err := stopAlert(effect.Alert); err != nil {
			return next, fmt.Errorf("daemon: stop alert: %w", err)
		}
	}
	return next, nil
}

func (s *Server) startTimer(ctx context.Context, effect session.Effect) {
	cfg := TimerConfig{
		Deadline:     effect.Deadline,
		Session:      effect.Session,
		PollInterval: s.cfg.PollInterval,
		Notifier:     s.cfg.Notifier,
	}
	s.timers.Add(1)
	go func() {
		defer s.timers.Done()
		RunTimer(ctx, cfg)
	}()
	s.logger.Debug().
		Uint64("session", effect.Session).
		Str("deadline", effect.Deadline.Local().Format(session.DeadlineLayout)).
		Msg("timer started")
}

func stopAlert(h session.Alert) error {
	if h == nil {
		return nil
	}
	observability.SetAlertActive(false)
	return h.Stop()
}

func (s *Server) shutdown(cancelTimers context.CancelFunc) {
	_ = s.ln.Close()
	if err := os.Remove(s.cfg.SocketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn().Err(err).Msg("remove socket")
	}
	cancelTimers()
	s.timers.Wait()
	if err := stopAlert(s.state.Alert()); err != nil {
		s.logger.Warn().Err(err).Msg("release alert")
	}
	s.logger.Info().Msg("stopped")
}

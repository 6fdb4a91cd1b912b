package daemon

import (
	"context"
	"fmt"
	"net"
	"os/signal"
	"syscall"
	"time"

	"github.com/danmuck/pomoctl/internal/alert"
	"github.com/danmuck/pomoctl/internal/config"
	"github.com/danmuck/pomoctl/internal/logging"
	"github.com/danmuck/pomoctl/internal/observability"
	"github.com/danmuck/pomoctl/internal/session"
	"golang.org/x/sync/errgroup"
)

// Service runs the daemon lifecycle as a standalone process.
type Service struct {
	cfg    config.Config
	player alert.Player
	server *Server
}

func NewService() *Service {
	return NewServiceWithConfig(config.Default())
}

func NewServiceWithConfig(cfg config.Config) *Service {
	return &Service{cfg: cfg}
}

// WithPlayer overrides the alert backend named in the config.
func (s *Service) WithPlayer(p alert.Player) *Service {
	s.player = p
	return s
}

// Run blocks until SIGINT/SIGTERM or a fatal error.
func (s *Service) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.RunContext(ctx)
}

func (s *Service) RunContext(ctx context.Context) error {
	if err := s.bootstrap(); err != nil {
		return err
	}
	return s.serve(ctx)
}

func (s *Service) bootstrap() error {
	if err := config.Validate(s.cfg); err != nil {
		return err
	}
	if s.player == nil {
		p, err := alert.New(s.cfg.Alert)
		if err != nil {
			return err
		}
		s.player = p
	}
	if err := alert.Preflight(s.player); err != nil {
		return fmt.Errorf("daemon: alert preflight: %w", err)
	}
	s.server = NewServer(ServerConfig{
		SocketPath:   s.cfg.SocketPath,
		ReadTimeout:  s.cfg.ReadTimeout,
		PollInterval: s.cfg.PollInterval,
		Session:      session.Config{Duration: s.cfg.SessionDuration},
		Player:       s.player,
	})
	return s.server.Listen()
}

func (s *Service) serve(ctx context.Context) error {
	logger := logging.WithComponent("daemon")
	logger.Info().
		Str("socket", s.cfg.SocketPath).
		Dur("session", s.cfg.SessionDuration).
		Str("alert", s.cfg.Alert.Backend).
		Msg("daemon started")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.server.Serve(gctx)
	})
	if s.cfg.MetricsAddr != "" {
		ln, err := net.Listen("tcp", s.cfg.MetricsAddr)
		if err != nil {
			// Serve still owns the socket; let it clean up.
			g.Go(func() error { return fmt.Errorf("daemon: metrics listen %s: %w", s.cfg.MetricsAddr, err) })
		} else {
			started := time.Now()
			g.Go(func() error {
				return observability.Serve(gctx, ln, started)
			})
		}
	}
	err := g.Wait()
	logger.Info().Err(err).Msg("daemon shutdown")
	return err
}

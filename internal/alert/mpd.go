package alert

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/danmuck/pomoctl/internal/logging"
	"github.com/fhs/gompd/v2/mpd"
)

// mpdClient is the subset of *mpd.Client the alert needs.
type mpdClient interface {
	Status() (mpd.Attrs, error)
	AddID(uri string, pos int) (int, error)
	DeleteID(id int) error
	PlayID(id int) error
	Stop() error
	Repeat(repeat bool) error
	Single(single bool) error
	Close() error
}

type mpdDialer func(network, addr, password string) (mpdClient, error)

func dialMPD(network, addr, password string) (mpdClient, error) {
	if password != "" {
		return mpd.DialAuthenticated(network, addr, password)
	}
	return mpd.Dial(network, addr)
}

// MPDPlayer queues the alert track on a Music Player Daemon and loops it.
//
// Each Start/Stop dials a fresh connection; MPD drops idle clients, and an
// alert can sound for much longer than its connection timeout.
type MPDPlayer struct {
	network  string
	address  string
	password string
	uri      string
	dial     mpdDialer
}

func NewMPDPlayer(network, address, password, uri string) (*MPDPlayer, error) {
	network = strings.TrimSpace(network)
	if network == "" {
		network = "tcp"
	}
	if network != "tcp" && network != "unix" {
		return nil, fmt.Errorf("%w: mpd network %q", ErrPlayerUnavailable, network)
	}
	if strings.TrimSpace(address) == "" {
		return nil, fmt.Errorf("%w: mpd address required", ErrPlayerUnavailable)
	}
	if strings.TrimSpace(uri) == "" {
		return nil, fmt.Errorf("%w: mpd uri required", ErrPlayerUnavailable)
	}
	return &MPDPlayer{
		network:  network,
		address:  strings.TrimSpace(address),
		password: password,
		uri:      strings.TrimSpace(uri),
		dial:     dialMPD,
	}, nil
}

// Check dials MPD and reads its status.
func (p *MPDPlayer) Check() error {
	c, err := p.dial(p.network, p.address, p.password)
	if err != nil {
		return fmt.Errorf("%w: dial mpd %s: %v", ErrPlayerUnavailable, p.address, err)
	}
	defer c.Close()
	if _, err := c.Status(); err != nil {
		return fmt.Errorf("%w: mpd status: %v", ErrPlayerUnavailable, err)
	}
	return nil
}

func (p *MPDPlayer) Start() (Handle, error) {
	c, err := p.dial(p.network, p.address, p.password)
	if err != nil {
		return nil, fmt.Errorf("%w: dial mpd %s: %v", ErrPlayerUnavailable, p.address, err)
	}
	defer c.Close()

	status, err := c.Status()
	if err != nil {
		return nil, fmt.Errorf("alert: mpd status: %w", err)
	}
	h := &mpdHandle{
		player:     p,
		prevRepeat: status["repeat"] == "1",
		prevSingle: status["single"] == "1",
	}
	h.id, err = c.AddID(p.uri, -1)
	if err != nil {
		return nil, fmt.Errorf("alert: mpd addid %q: %w", p.uri, err)
	}
	if err := startLoop(c, h.id); err != nil {
		_ = c.DeleteID(h.id)
		_ = h.restore(c)
		return nil, err
	}

	logger := logging.WithComponent("alert")
	logger.Info().Str("addr", p.address).Int("song_id", h.id).Msg("alert.mpd playing")
	return h, nil
}

func startLoop(c mpdClient, id int) error {
	if err := c.Repeat(true); err != nil {
		return fmt.Errorf("alert: mpd repeat: %w", err)
	}
	if err := c.Single(true); err != nil {
		return fmt.Errorf("alert: mpd single: %w", err)
	}
	if err := c.PlayID(id); err != nil {
		return fmt.Errorf("alert: mpd playid %d: %w", id, err)
	}
	return nil
}

type mpdHandle struct {
	player     *MPDPlayer
	id         int
	prevRepeat bool
	prevSingle bool

	once sync.Once
	err  error
}

// Stop halts playback, removes the queued track and restores repeat/single.
func (h *mpdHandle) Stop() error {
	h.once.Do(func() {
		c, err := h.player.dial(h.player.network, h.player.address, h.player.password)
		if err != nil {
			h.err = fmt.Errorf("%w: dial mpd %s: %v", ErrPlayerUnavailable, h.player.address, err)
			return
		}
		defer c.Close()
		h.err = errors.Join(
			c.Stop(),
			c.DeleteID(h.id),
			h.restore(c),
		)
		if h.err == nil {
			logger := logging.WithComponent("alert")
			logger.Info().Int("song_id", h.id).Msg("alert.mpd stopped")
		}
	})
	return h.err
}

func (h *mpdHandle) restore(c mpdClient) error {
	return errors.Join(c.Repeat(h.prevRepeat), c.Single(h.prevSingle))
}

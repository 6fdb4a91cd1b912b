// Package alert plays the end-of-work sound.
//
// A Player starts looping playback and returns a Handle; the Handle stops it.
// Backends: exec (a local player command), mpd (a running Music Player Daemon)
// and none (log only).
package alert

import (
	"errors"
	"fmt"
	"strings"

	"github.com/danmuck/pomoctl/internal/tools"
)

const (
	BackendExec = "exec"
	BackendMPD  = "mpd"
	BackendNone = "none"
)

var (
	ErrUnknownBackend    = errors.New("alert: unknown backend")
	ErrPlayerUnavailable = errors.New("alert: player unavailable")
)

// Player starts looping playback of the alert.
type Player interface {
	Start() (Handle, error)
}

// Handle is one live playback. Stop is safe to call more than once.
type Handle interface {
	Stop() error
}

// Checker is implemented by players that can verify their backend is usable
// before the first alert is due.
type Checker interface {
	Check() error
}

// Preflight runs p's Check when it has one.
func Preflight(p Player) error {
	if c, ok := p.(Checker); ok {
		return c.Check()
	}
	return nil
}

// Config selects and parameterises a backend.
type Config struct {
	Backend string
	Command []string
	Sound   string

	MPDNetwork  string
	MPDAddress  string
	MPDPassword string
	MPDURI      string
}

// New builds the Player named by cfg.Backend.
func New(cfg Config) (Player, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case BackendExec, "":
		if len(cfg.Command) > 0 {
			p, err := NewExecPlayer(tools.ExecRunner{}, cfg.Command)
			if err != nil {
				return nil, err
			}
			return p, nil
		}
		p, err := NewExecPlayer(tools.ExecRunner{}, []string{"paplay", cfg.Sound})
		if err != nil {
			return nil, err
		}
		p.sound = cfg.Sound
		return p, nil
	case BackendMPD:
		p, err := NewMPDPlayer(cfg.MPDNetwork, cfg.MPDAddress, cfg.MPDPassword, cfg.MPDURI)
		if err != nil {
			return nil, err
		}
		return p, nil
	case BackendNone:
		return NopPlayer{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

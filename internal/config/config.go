// Package config loads the daemon and client settings from TOML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/pomoctl/internal/alert"
)

const (
	DefaultSocketPath = "/tmp/pomodoro.sock"
	DefaultSound      = "/usr/share/sounds/freedesktop/stereo/complete.oga"
	appDir            = "pomoctl"
	fileName          = "config.toml"
)

var ErrInvalidConfig = errors.New("config: invalid")

// Config is the effective runtime configuration.
type Config struct {
	SocketPath      string
	SessionDuration time.Duration
	PollInterval    time.Duration
	ReadTimeout     time.Duration
	MetricsAddr     string
	Alert           alert.Config
}

func Default() Config {
	return Config{
		SocketPath:      DefaultSocketPath,
		SessionDuration: 25 * time.Minute,
		PollInterval:    time.Second,
		ReadTimeout:     5 * time.Second,
		Alert: alert.Config{
			Backend:    alert.BackendExec,
			Sound:      DefaultSound,
			MPDNetwork: "tcp",
			MPDAddress: "localhost:6600",
		},
	}
}

// DefaultPath is $XDG_CONFIG_HOME/pomoctl/config.toml or the platform equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: locate user config dir: %w", err)
	}
	return filepath.Join(dir, appDir, fileName), nil
}

type fileConfig struct {
	SocketPath      string    `toml:"socket_path"`
	SessionDuration string    `toml:"session_duration"`
	PollInterval    string    `toml:"poll_interval"`
	ReadTimeout     string    `toml:"read_timeout"`
	MetricsAddr     string    `toml:"metrics_addr"`
	Alert           fileAlert `toml:"alert"`
}

type fileAlert struct {
	Backend     string   `toml:"backend"`
	Command     []string `toml:"command"`
	Sound       string   `toml:"sound"`
	MPDNetwork  string   `toml:"mpd_network"`
	MPDAddress  string   `toml:"mpd_address"`
	MPDPassword string   `toml:"mpd_password"`
	MPDURI      string   `toml:"mpd_uri"`
}

// Load reads path over the defaults. When allowMissing is set a missing file
// yields the defaults.
func Load(path string, allowMissing bool) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		if allowMissing && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}

	if meta.IsDefined("socket_path") {
		cfg.SocketPath = strings.TrimSpace(raw.SocketPath)
	}
	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"session_duration", raw.SessionDuration, &cfg.SessionDuration},
		{"poll_interval", raw.PollInterval, &cfg.PollInterval},
		{"read_timeout", raw.ReadTimeout, &cfg.ReadTimeout},
	}
	for _, d := range durations {
		if !meta.IsDefined(d.key) {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = v
	}
	if meta.IsDefined("metrics_addr") {
		cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	}

	if meta.IsDefined("alert", "backend") {
		cfg.Alert.Backend = strings.ToLower(strings.TrimSpace(raw.Alert.Backend))
	}
	if meta.IsDefined("alert", "command") {
		cfg.Alert.Command = raw.Alert.Command
	}
	if meta.IsDefined("alert", "sound") {
		cfg.Alert.Sound = strings.TrimSpace(raw.Alert.Sound)
	}
	if meta.IsDefined("alert", "mpd_network") {
		cfg.Alert.MPDNetwork = strings.TrimSpace(raw.Alert.MPDNetwork)
	}
	if meta.IsDefined("alert", "mpd_address") {
		cfg.Alert.MPDAddress = strings.TrimSpace(raw.Alert.MPDAddress)
	}
	if meta.IsDefined("alert", "mpd_password") {
		cfg.Alert.MPDPassword = raw.Alert.MPDPassword
	}
	if meta.IsDefined("alert", "mpd_uri") {
		cfg.Alert.MPDURI = strings.TrimSpace(raw.Alert.MPDURI)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%w: unknown key %q in %s", ErrInvalidConfig, undecoded[0].String(), path)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.SocketPath) == "" {
		return fmt.Errorf("%w: socket_path is required", ErrInvalidConfig)
	}
	if cfg.SessionDuration <= 0 {
		return fmt.Errorf("%w: session_duration must be positive", ErrInvalidConfig)
	}
	if cfg.PollInterval <= 0 {
		return fmt.Errorf("%w: poll_interval must be positive", ErrInvalidConfig)
	}
	if cfg.ReadTimeout <= 0 {
		return fmt.Errorf("%w: read_timeout must be positive", ErrInvalidConfig)
	}
	return validateAlert(cfg.Alert)
}

func validateAlert(cfg alert.Config) error {
	switch cfg.Backend {
	case alert.BackendExec:
		if len(cfg.Command) == 0 && strings.TrimSpace(cfg.Sound) == "" {
			return fmt.Errorf("%w: alert.sound or alert.command is required", ErrInvalidConfig)
		}
		for i, arg := range cfg.Command {
			if strings.TrimSpace(arg) == "" {
				return fmt.Errorf("%w: alert.command[%d] is empty", ErrInvalidConfig, i)
			}
		}
	case alert.BackendMPD:
		if cfg.MPDNetwork != "tcp" && cfg.MPDNetwork != "unix" {
			return fmt.Errorf("%w: alert.mpd_network must be tcp or unix", ErrInvalidConfig)
		}
		if cfg.MPDAddress == "" || cfg.MPDURI == "" {
			return fmt.Errorf("%w: alert.mpd_address and alert.mpd_uri are required", ErrInvalidConfig)
		}
	case alert.BackendNone:
	default:
		return fmt.Errorf("%w: unknown alert.backend %q", ErrInvalidConfig, cfg.Backend)
	}
	return nil
}

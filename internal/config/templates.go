package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// WriteTemplate writes the commented default config to path.
func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("config dir: %w", err)
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

// Render encodes the effective config in the file format. The MPD password
// is masked.
func Render(cfg Config) ([]byte, error) {
	view := fileConfig{
		SocketPath:      cfg.SocketPath,
		SessionDuration: cfg.SessionDuration.String(),
		PollInterval:    cfg.PollInterval.String(),
		ReadTimeout:     cfg.ReadTimeout.String(),
		MetricsAddr:     cfg.MetricsAddr,
		Alert: fileAlert{
			Backend:    cfg.Alert.Backend,
			Command:    cfg.Alert.Command,
			Sound:      cfg.Alert.Sound,
			MPDNetwork: cfg.Alert.MPDNetwork,
			MPDAddress: cfg.Alert.MPDAddress,
			MPDURI:     cfg.Alert.MPDURI,
		},
	}
	if cfg.Alert.MPDPassword != "" {
		view.Alert.MPDPassword = "********"
	}
	return toml.Marshal(view)
}

const template = `# pomoctl configuration

socket_path = "/tmp/pomodoro.sock"
session_duration = "25m"
poll_interval = "1s"
read_timeout = "5s"

# Serve /metrics and /health, e.g. "127.0.0.1:9464". Empty disables.
metrics_addr = ""

[alert]
# exec | mpd | none
backend = "exec"
sound = "/usr/share/sounds/freedesktop/stereo/complete.oga"
# command = ["paplay", "/usr/share/sounds/freedesktop/stereo/complete.oga"]

mpd_network = "tcp"
mpd_address = "localhost:6600"
mpd_password = ""
mpd_uri = ""
`

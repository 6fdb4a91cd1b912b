package alert

import "github.com/danmuck/pomoctl/internal/logging"

// NopPlayer only logs; for machines without audio.
type NopPlayer struct{}

func (NopPlayer) Start() (Handle, error) {
	logger := logging.WithComponent("alert")
	logger.Info().Msg("alert.none start")
	return nopHandle{}, nil
}

type nopHandle struct{}

func (nopHandle) Stop() error {
	logger := logging.WithComponent("alert")
	logger.Info().Msg("alert.none stop")
	return nil
}

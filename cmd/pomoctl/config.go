package main

import "github.com/danmuck/pomoctl/internal/config"

func configPath(opts options) (string, error) {
	if opts.configPath != "" {
		return opts.configPath, nil
	}
	return config.DefaultPath()
}

// loadConfig resolves the config file and applies flag overrides. A missing
// file is only tolerated at the default location.
func loadConfig(opts options) (config.Config, string, error) {
	path, err := configPath(opts)
	if err != nil {
		return config.Config{}, "", err
	}
	cfg, err := config.Load(path, opts.configPath == "")
	if err != nil {
		return config.Config{}, "", err
	}
	if opts.socketPath != "" {
		cfg.SocketPath = opts.socketPath
	}
	return cfg, path, config.Validate(cfg)
}

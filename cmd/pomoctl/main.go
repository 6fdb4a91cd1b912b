package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/danmuck/pomoctl/internal/client"
	"github.com/danmuck/pomoctl/internal/config"
	"github.com/danmuck/pomoctl/internal/daemon"
	"github.com/danmuck/pomoctl/internal/logging"
	"github.com/danmuck/pomoctl/internal/protocol"
	flag "github.com/spf13/pflag"
)

var ErrUnknownAction = errors.New("unknown action")

const usage = `usage: pomoctl [flags] [work|break|stop]
       pomoctl [flags] daemon
       pomoctl [flags] config init|show

With no action, prints the current session state.

flags:
`

type options struct {
	configPath string
	socketPath string
	timeout    time.Duration
	force      bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var opts options
	fs := flag.NewFlagSet("pomoctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "path to config file (default $XDG_CONFIG_HOME/pomoctl/config.toml)")
	fs.StringVar(&opts.socketPath, "socket", "", "daemon socket path (overrides config)")
	fs.DurationVar(&opts.timeout, "timeout", 5*time.Second, "client request timeout")
	fs.BoolVar(&opts.force, "force", false, "config init: overwrite an existing file")
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	logging.ConfigureRuntime()
	if err := dispatch(fs.Args(), opts, stdout); err != nil {
		fmt.Fprintf(stderr, "pomoctl: %v\n", err)
		return 1
	}
	return 0
}

func dispatch(args []string, opts options, stdout io.Writer) error {
	if len(args) > 0 {
		switch args[0] {
		case "daemon":
			if len(args) > 1 {
				return fmt.Errorf("daemon takes no arguments")
			}
			return runDaemon(opts)
		case "config":
			return runConfig(args[1:], opts, stdout)
		}
	}
	if len(args) > 1 {
		return fmt.Errorf("expected at most one action, got %q", strings.Join(args, " "))
	}
	name := ""
	if len(args) == 1 {
		name = args[0]
	}
	cmd, err := parseAction(name)
	if err != nil {
		return err
	}
	return runClient(cmd, opts, stdout)
}

// parseAction maps a CLI word to a command; the empty word queries state.
func parseAction(name string) (protocol.Command, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return protocol.GetState(), nil
	case "work":
		return protocol.Work(), nil
	case "break":
		return protocol.Break(), nil
	case "stop":
		return protocol.Stop(), nil
	default:
		return protocol.Command{}, fmt.Errorf("%w %q (want work, break or stop)", ErrUnknownAction, name)
	}
}

func runClient(cmd protocol.Command, opts options, stdout io.Writer) error {
	cfg, _, err := loadConfig(opts)
	if err != nil {
		return err
	}
	c := client.New(client.Config{SocketPath: cfg.SocketPath, ExchangeTimeout: opts.timeout})
	resp, err := c.Send(context.Background(), cmd)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, resp.Text)
	return nil
}

func runDaemon(opts options) error {
	cfg, path, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger := logging.WithComponent("cli")
	logger.Info().Str("config", path).Msg("starting daemon")
	return daemon.NewServiceWithConfig(cfg).Run()
}

func runConfig(args []string, opts options, stdout io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("config: want init or show")
	}
	switch args[0] {
	case "init":
		path, err := configPath(opts)
		if err != nil {
			return err
		}
		if err := config.WriteTemplate(path, opts.force); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "wrote config template to %s\n", path)
		return nil
	case "show":
		cfg, _, err := loadConfig(opts)
		if err != nil {
			return err
		}
		out, err := config.Render(cfg)
		if err != nil {
			return err
		}
		_, err = stdout.Write(out)
		return err
	default:
		return fmt.Errorf("config: unknown subcommand %q", args[0])
	}
}

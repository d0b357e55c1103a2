package cli

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dmdmdm-nz/connmon/internal/config"
	"github.com/dmdmdm-nz/connmon/internal/connectivity"
	"github.com/dmdmdm-nz/connmon/internal/netmon"
	"github.com/dmdmdm-nz/connmon/pkg/version"
)

// Config holds the application configuration from CLI flags and the
// optional config file.
type Config struct {
	ConfigFile   string
	Port         int
	Host         string
	LogLevel     string
	Debounce     time.Duration
	Message      string
	Source       string
	PollInterval time.Duration
	ShowVersion  bool
}

// ParseFlags parses command line arguments and returns a Config. It exits
// on -version and on invalid input.
func ParseFlags() *Config {
	cfg, err := Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if cfg.ShowVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	return cfg
}

// Parse parses args into a Config. Flags given explicitly win over values
// from the config file, which win over defaults.
func Parse(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{}

	fs.StringVar(&cfg.ConfigFile, "config", config.DefaultFile, "Path to an optional YAML config file")
	fs.IntVar(&cfg.Port, "port", 60106, "Port to listen on")
	fs.StringVar(&cfg.Host, "host", "127.0.0.1", "Host to bind to")
	fs.StringVar(&cfg.LogLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	fs.DurationVar(&cfg.Debounce, "debounce", connectivity.DefaultDebounce, "Minimum interval between listener notifications in the same direction")
	fs.StringVar(&cfg.Message, "message", connectivity.DefaultNoConnectionMessage, "Message shown when an action needs a connection")
	fs.StringVar(&cfg.Source, "source", netmon.SourceAuto, "Connectivity source (auto, netlink, route, poll)")
	fs.DurationVar(&cfg.PollInterval, "poll-interval", netmon.DefaultPollInterval, "Interface poll interval for the poll source")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	file, err := config.Load(cfg.ConfigFile)
	if err != nil {
		return nil, err
	}
	cfg.apply(file, set)

	if cfg.Debounce < 0 {
		return nil, fmt.Errorf("debounce must not be negative")
	}
	return cfg, nil
}

func (c *Config) apply(file *config.Config, set map[string]bool) {
	if file.API.Host != "" && !set["host"] {
		c.Host = file.API.Host
	}
	if file.API.Port != 0 && !set["port"] {
		c.Port = file.API.Port
	}
	if file.Log.Level != "" && !set["log-level"] {
		c.LogLevel = file.Log.Level
	}
	if file.Tracker.Debounce != 0 && !set["debounce"] {
		c.Debounce = time.Duration(file.Tracker.Debounce)
	}
	if file.Tracker.Message != "" && !set["message"] {
		c.Message = file.Tracker.Message
	}
	if file.Source.Kind != "" && !set["source"] {
		c.Source = file.Source.Kind
	}
	if file.Source.PollInterval != 0 && !set["poll-interval"] {
		c.PollInterval = time.Duration(file.Source.PollInterval)
	}
}

// String returns a string representation of the Config
func (c *Config) String() string {
	return fmt.Sprintf("Host: %s, Port: %d, LogLevel: %s, Debounce: %s, Source: %s, PollInterval: %s",
		c.Host, c.Port, c.LogLevel, c.Debounce, c.Source, c.PollInterval)
}

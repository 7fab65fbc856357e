// Package config loads treetop settings with priority defaults < YAML file <
// command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/srodi/treetop/pkg/collector/procfs"
	"github.com/srodi/treetop/pkg/types"
)

// Config holds the application configuration.
type Config struct {
	Interval    time.Duration `yaml:"interval"`
	ProcRoot    string        `yaml:"proc_root"`
	TraceIO     bool          `yaml:"trace_io"`
	TraceObject string        `yaml:"trace_object"`
	LogFile     string        `yaml:"log_file"`
	Once        bool          `yaml:"once"`
	Rows        int           `yaml:"rows"`

	// Parsed from command line (not YAML)
	ConfigPath string `yaml:"-"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Interval:    types.DefaultInterval,
		ProcRoot:    procfs.DefaultRoot,
		TraceObject: "bpf/file_io.o",
		LogFile:     "treetop.log",
		ConfigPath:  "treetop.yaml",
	}
}

// Load parses args (without the program name). A missing config file is not
// an error; a malformed one is.
func Load(args []string) (*Config, error) {
	cfg := Default()
	flagged := *cfg

	flags := flag.NewFlagSet("treetop", flag.ContinueOnError)
	flags.StringVar(&flagged.ConfigPath, "config", cfg.ConfigPath, "path to the YAML config file")
	flags.DurationVar(&flagged.Interval, "interval", cfg.Interval, "refresh interval (e.g. 1s, 500ms)")
	flags.StringVar(&flagged.ProcRoot, "proc-root", cfg.ProcRoot, "procfs mount point")
	flags.BoolVar(&flagged.TraceIO, "trace-io", cfg.TraceIO, "trace read/write syscalls with eBPF")
	flags.StringVar(&flagged.TraceObject, "trace-object", cfg.TraceObject, "compiled eBPF object used by -trace-io")
	flags.StringVar(&flagged.LogFile, "log-file", cfg.LogFile, "log destination while the screen is active (empty discards)")
	flags.BoolVar(&flagged.Once, "once", cfg.Once, "print one snapshot and exit")
	flags.IntVar(&flagged.Rows, "rows", cfg.Rows, "number of processes printed by -once (0 uses the terminal height)")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	cfg.ConfigPath = flagged.ConfigPath
	if err := cfg.loadFile(cfg.ConfigPath); err != nil {
		return nil, err
	}

	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "interval":
			cfg.Interval = flagged.Interval
		case "proc-root":
			cfg.ProcRoot = flagged.ProcRoot
		case "trace-io":
			cfg.TraceIO = flagged.TraceIO
		case "trace-object":
			cfg.TraceObject = flagged.TraceObject
		case "log-file":
			cfg.LogFile = flagged.LogFile
		case "once":
			cfg.Once = flagged.Once
		case "rows":
			cfg.Rows = flagged.Rows
		}
	})

	cfg.normalize()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func (c *Config) normalize() {
	if c.Interval <= 0 {
		c.Interval = types.DefaultInterval
	}
	c.ProcRoot = strings.TrimSpace(c.ProcRoot)
	if c.ProcRoot == "" {
		c.ProcRoot = procfs.DefaultRoot
	}
	c.LogFile = strings.TrimSpace(c.LogFile)
	if c.Rows < 0 {
		c.Rows = 0
	}
}

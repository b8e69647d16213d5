package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/atomicstack/termcord/internal/app"
)

// Config captures runtime configuration for the application.
type Config struct {
	App     app.Config
	Logging Logging
	// File is the configuration file that was read, if any.
	File  string
	Flags map[string]string
	Args  []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

const (
	envPrefix = "TERMCORD_"
	redacted  = "<redacted>"

	defaultPollInterval    = 25 * time.Millisecond
	defaultShutdownTimeout = 3 * time.Second
	defaultRetryDelay      = time.Second
	defaultRequestInterval = 100 * time.Millisecond
)

// Flags holds the values bound to a FlagSet by RegisterFlags.
type Flags struct {
	config          *string
	spoolDir        *string
	user            *string
	token           *string
	width           *int
	height          *int
	historyLimit    *int
	pollInterval    *time.Duration
	shutdownTimeout *time.Duration
	retryDelay      *time.Duration
	requestInterval *time.Duration
	logFile         *string
	trace           *bool
}

// RegisterFlags defines every option on fs.
func RegisterFlags(fs *pflag.FlagSet) *Flags {
	return &Flags{
		config:          fs.String("config", "", "path to a YAML config file (default $XDG_CONFIG_HOME/termcord/config.yaml)"),
		spoolDir:        fs.String("spool-dir", "", "spool directory holding servers and channels (default $XDG_DATA_HOME/termcord/spool)"),
		user:            fs.String("user", "", "name messages are sent as (default $USER)"),
		token:           fs.String("token", "", "credential checked against the spool's .token file"),
		width:           fs.Int("width", 0, "viewport width in cells (0 uses terminal width)"),
		height:          fs.Int("height", 0, "viewport height in rows (0 uses terminal height)"),
		historyLimit:    fs.Int("history-limit", 0, "messages kept per channel (0 keeps everything)"),
		pollInterval:    fs.Duration("poll-interval", defaultPollInterval, "how often the event loop checks the terminal size when idle"),
		shutdownTimeout: fs.Duration("shutdown-timeout", defaultShutdownTimeout, "how long to wait for the logout acknowledgement"),
		retryDelay:      fs.Duration("retry-delay", defaultRetryDelay, "pause after a failed event stream read"),
		requestInterval: fs.Duration("request-interval", defaultRequestInterval, "minimum spacing between backend requests (negative disables)"),
		logFile:         fs.String("log-file", "", "path to the log file"),
		trace:           fs.Bool("trace", false, "enable verbose JSON trace logging"),
	}
}

// LoadArgs parses args and resolves the result against environ.
func LoadArgs(args []string, environ []string) (Config, error) {
	fs := pflag.NewFlagSet("termcord", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	flags := RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg, err := Resolve(fs, flags, environ)
	if err != nil {
		return Config{}, err
	}
	cfg.Args = append([]string(nil), args...)
	return cfg, nil
}

// Resolve fills every option not set on the command line, first from
// TERMCORD_* environment variables and then from the config file, and
// builds the Config. fs must already be parsed.
func Resolve(fs *pflag.FlagSet, flags *Flags, environ []string) (Config, error) {
	env := parseEnv(environ)

	path, explicit := *flags.config, fs.Changed("config")
	if !explicit {
		if v, ok := env[envName("config")]; ok && v != "" {
			path, explicit = v, true
		} else {
			path = defaultConfigPath(env)
		}
	}
	file, err := readFile(path, explicit)
	if err != nil {
		return Config{}, err
	}
	if file == nil {
		path = ""
	}

	var resolveErr error
	fs.VisitAll(func(f *pflag.Flag) {
		if resolveErr != nil || f.Name == "config" || f.Changed {
			return
		}
		if v, ok := env[envName(f.Name)]; ok {
			if err := fs.Set(f.Name, v); err != nil {
				resolveErr = fmt.Errorf("%s: %w", envName(f.Name), err)
			}
			return
		}
		if v, ok := file[f.Name]; ok {
			if err := fs.Set(f.Name, v); err != nil {
				resolveErr = fmt.Errorf("%s: %s: %w", path, f.Name, err)
			}
		}
	})
	if resolveErr != nil {
		return Config{}, resolveErr
	}

	spoolDir := *flags.spoolDir
	if spoolDir == "" {
		spoolDir = defaultSpoolDir(env)
	}
	user := *flags.user
	if user == "" {
		user = env["USER"]
	}

	cfg := Config{
		App: app.Config{
			SpoolDir:        spoolDir,
			User:            user,
			Token:           *flags.token,
			Width:           *flags.width,
			Height:          *flags.height,
			HistoryLimit:    *flags.historyLimit,
			PollInterval:    *flags.pollInterval,
			ShutdownTimeout: *flags.shutdownTimeout,
			RetryDelay:      *flags.retryDelay,
			RequestInterval: *flags.requestInterval,
		},
		Logging: Logging{
			FilePath: *flags.logFile,
			Trace:    *flags.trace,
		},
		File:  path,
		Flags: flagValues(fs),
		Args:  fs.Args(),
	}
	cfg.Flags["spool-dir"] = spoolDir
	cfg.Flags["user"] = user
	return cfg, nil
}

func flagValues(fs *pflag.FlagSet) map[string]string {
	values := make(map[string]string)
	fs.VisitAll(func(f *pflag.Flag) {
		v := f.Value.String()
		if f.Name == "token" && v != "" {
			v = redacted
		}
		values[f.Name] = v
	})
	return values
}

// readFile loads a flat YAML map of option names to values. A missing file
// is only an error when it was asked for explicitly.
func readFile(path string, explicit bool) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !explicit {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	values := map[string]string{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	var unknown []string
	for name := range values {
		if !knownOption(name) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("config %s: unknown options %s", path, strings.Join(unknown, ", "))
	}
	return values, nil
}

func knownOption(name string) bool {
	fs := pflag.NewFlagSet("known", pflag.ContinueOnError)
	RegisterFlags(fs)
	return name != "config" && fs.Lookup(name) != nil
}

func envName(flag string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}

func defaultConfigPath(env map[string]string) string {
	base := env["XDG_CONFIG_HOME"]
	if base == "" {
		home := env["HOME"]
		if home == "" {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "termcord", "config.yaml")
}

func defaultSpoolDir(env map[string]string) string {
	base := env["XDG_DATA_HOME"]
	if base == "" {
		home := env["HOME"]
		if home == "" {
			return ""
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "termcord", "spool")
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

// Validate ensures required minimum configuration is present.
func Validate(cfg Config) error {
	a := cfg.App
	switch {
	case a.SpoolDir == "":
		return errors.New("spool-dir is required (set --spool-dir, TERMCORD_SPOOL_DIR or HOME)")
	case a.User == "":
		return errors.New("user is required (set --user, TERMCORD_USER or USER)")
	case strings.ContainsAny(a.User, "\n\r"):
		return fmt.Errorf("user must be a single line (got %q)", a.User)
	case a.Width < 0:
		return fmt.Errorf("width must be >= 0 (got %d)", a.Width)
	case a.Height < 0:
		return fmt.Errorf("height must be >= 0 (got %d)", a.Height)
	case a.HistoryLimit < 0:
		return fmt.Errorf("history-limit must be >= 0 (got %d)", a.HistoryLimit)
	case a.PollInterval <= 0:
		return fmt.Errorf("poll-interval must be > 0 (got %s)", a.PollInterval)
	case a.ShutdownTimeout <= 0:
		return fmt.Errorf("shutdown-timeout must be > 0 (got %s)", a.ShutdownTimeout)
	case a.RetryDelay <= 0:
		return fmt.Errorf("retry-delay must be > 0 (got %s)", a.RetryDelay)
	}
	return nil
}

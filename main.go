package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/atomicstack/termcord/internal/app"
	"github.com/atomicstack/termcord/internal/config"
	"github.com/atomicstack/termcord/internal/logging"
	"github.com/atomicstack/termcord/internal/logging/events"
)

var version = "dev"

// configError marks failures that exit with status 2.
type configError struct {
	err error
}

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

func main() {
	os.Exit(run(os.Args[1:], os.Environ(), app.Run))
}

func run(args, environ []string, start func(app.Config) error) int {
	cmd := newRootCommand(args, environ, start)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		var cfgErr *configError
		if errors.As(err, &cfgErr) {
			fmt.Fprintf(os.Stderr, "Configuration error: %v\n", cfgErr.err)
			return 2
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCommand(args, environ []string, start func(app.Config) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "termcord",
		Short:         "A terminal chat client",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(_ *cobra.Command, rest []string) error {
			if len(rest) > 0 {
				return &configError{fmt.Errorf("unexpected arguments: %v", rest)}
			}
			return nil
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &configError{err}
	})
	flags := config.RegisterFlags(cmd.Flags())
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		return execute(cmd.Flags(), flags, args, environ, start)
	}
	return cmd
}

func execute(fs *pflag.FlagSet, flags *config.Flags, args, environ []string, start func(app.Config) error) error {
	runtimeCfg, err := config.Resolve(fs, flags, environ)
	if err != nil {
		return &configError{err}
	}
	runtimeCfg.Args = append([]string(nil), args...)
	if err := config.Validate(runtimeCfg); err != nil {
		return &configError{err}
	}
	logging.Configure(runtimeCfg.Logging.FilePath)
	defer logging.Close()
	logging.SetTraceEnabled(runtimeCfg.Logging.Trace)

	traceStartup(runtimeCfg)

	if err := start(runtimeCfg.App); err != nil {
		logging.Error(err)
		return err
	}
	return nil
}

func traceStartup(cfg config.Config) {
	events.App.Start(startupTracePayload(cfg))
}

// startupTracePayload bundles runtime context for trace logging. The token
// never appears in it.
func startupTracePayload(cfg config.Config) map[string]interface{} {
	flags := make(map[string]interface{}, len(cfg.Flags))
	for k, v := range cfg.Flags {
		flags[k] = v
	}
	flags["trace"] = cfg.Logging.Trace
	payload := map[string]interface{}{
		"argv":    redactArgs(cfg.Args),
		"flags":   flags,
		"config":  cfg,
		"file":    cfg.File,
		"version": version,
	}
	if exe, err := os.Executable(); err == nil {
		payload["executable"] = exe
	} else {
		payload["executableError"] = err.Error()
	}
	if cwd, err := os.Getwd(); err == nil {
		payload["cwd"] = cwd
	} else {
		payload["cwdError"] = err.Error()
	}
	payload["tty"] = collectTTYDetails()
	return payload
}

func redactArgs(args []string) []string {
	out := make([]string, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--token" && i+1 < len(args):
			out[i] = arg
			i++
			out[i] = "<redacted>"
			continue
		case strings.HasPrefix(arg, "--token="):
			arg = "--token=<redacted>"
		}
		out[i] = arg
	}
	return out
}

type ttyDetails struct {
	Detected    *ttyDetected    `json:"detected,omitempty"`
	Descriptors []ttyDescriptor `json:"descriptors"`
}

type ttyDetected struct {
	Source string `json:"source"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type ttyDescriptor struct {
	Name       string `json:"name"`
	IsTerminal bool   `json:"is_terminal"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	Error      string `json:"error,omitempty"`
}

// collectTTYDetails inspects standard descriptors for terminal support and dimensions.
func collectTTYDetails() ttyDetails {
	fds := []struct {
		name string
		fd   uintptr
	}{
		{"stdin", os.Stdin.Fd()},
		{"stdout", os.Stdout.Fd()},
		{"stderr", os.Stderr.Fd()},
	}
	results := make([]ttyDescriptor, 0, len(fds))
	var detected *ttyDetected
	for _, fd := range fds {
		entry := ttyDescriptor{Name: fd.name}
		n := int(fd.fd)
		if n >= 0 && term.IsTerminal(n) {
			entry.IsTerminal = true
			if width, height, err := term.GetSize(n); err == nil {
				entry.Width = width
				entry.Height = height
				if detected == nil {
					detected = &ttyDetected{Source: fd.name, Width: width, Height: height}
				}
			} else {
				entry.Error = err.Error()
			}
		} else {
			entry.IsTerminal = false
		}
		results = append(results, entry)
	}
	return ttyDetails{Detected: detected, Descriptors: results}
}

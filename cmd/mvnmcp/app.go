// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/invowk/mvnmcp/internal/config"
	"github.com/invowk/mvnmcp/internal/issue"
	"github.com/invowk/mvnmcp/internal/logging"

	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/log"
	"golang.org/x/term"
)

type (
	// App wires CLI services and shared dependencies. All Cobra handlers
	// receive an App reference.
	App struct {
		Config ConfigProvider
		stdin  io.Reader
		stdout io.Writer
		stderr io.Writer

		environ   []string
		rcFiles   []string
		configDir string

		flags globalFlags
	}

	// Dependencies defines the injection points for building an App. Nil fields
	// are replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
		// Environ replaces os.Environ() as the configuration source.
		Environ []string
		// RCFiles replaces the default mavenrc locations.
		RCFiles []string
		// ConfigDir replaces the per-user configuration directory.
		ConfigDir string
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	globalFlags struct {
		configPath string
		verbose    bool
		logLevel   string
	}
)

// NewApp creates an App, filling unset dependencies with production defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config:    deps.Config,
		stdin:     deps.Stdin,
		stdout:    deps.Stdout,
		stderr:    deps.Stderr,
		environ:   deps.Environ,
		rcFiles:   deps.RCFiles,
		configDir: deps.ConfigDir,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.stdin == nil {
		app.stdin = os.Stdin
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

func (a *App) loadOptions() config.LoadOptions {
	return config.LoadOptions{
		ConfigFilePath: a.flags.configPath,
		ConfigDirPath:  a.configDir,
		Environ:        a.environ,
		RCFiles:        a.rcFiles,
	}
}

// loadConfig loads configuration and reports failures to stderr. The returned
// error is an *ExitError ready to hand back to Cobra.
func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, a.loadOptions())
	if err != nil {
		return nil, a.fail(err)
	}
	return cfg, nil
}

// newLogger builds the logger for one command run. --verbose wins over
// --log-level, which wins over the configured level.
func (a *App) newLogger(cfg *config.Config) *log.Logger {
	level := cfg.Log.Level
	if a.flags.logLevel != "" {
		level = a.flags.logLevel
	}
	if a.flags.verbose {
		level = "debug"
	}
	return logging.New(logging.Options{Writer: a.stderr, Level: level, Prefix: "mvnmcp"})
}

// fail prints err, plus the matching remediation text when it carries an
// issue ID, and returns an already-reported exit error.
func (a *App) fail(err error) error {
	_, _ = fmt.Fprintln(a.stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, a.flags.verbose))
	if id := issue.IssueOf(err); id != 0 {
		if known := issue.Get(id); known != nil {
			if rendered, renderErr := known.Render(markdownStyle(a.stderr)); renderErr == nil {
				_, _ = fmt.Fprint(a.stderr, rendered)
			}
		}
	}
	return &ExitError{Code: 1}
}

// markdownStyle picks the glamour style for w: colors on a terminal, plain
// text everywhere else.
func markdownStyle(w io.Writer) string {
	if f, ok := w.(interface{ Fd() uintptr }); ok && term.IsTerminal(int(f.Fd())) {
		return styles.DarkStyle
	}
	return styles.NoTTYStyle
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

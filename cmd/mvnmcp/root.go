// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/invowk/mvnmcp/internal/engine"
	"github.com/invowk/mvnmcp/internal/maven"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

type buildFlags struct {
	baseDir  string
	compile  bool
	test     bool
	testName string
}

// examples is shown in the help text, which is also printed when no action is given.
const examples = `  mvnmcp clean compile
  mvnmcp --compile
  mvnmcp test
  mvnmcp --test
  mvnmcp test -Dtest=SomeTestName
  mvnmcp --test-name SomeTestName
  mvnmcp -- -q dependency:tree`

// NewRootCommand builds the command tree bound to app.
func NewRootCommand(app *App) *cobra.Command {
	var flags buildFlags

	rootCmd := &cobra.Command{
		Use:   "mvnmcp [flags] [maven-args...]",
		Short: "Run Maven builds locally or for MCP clients",
		Long: TitleStyle.Render("mvnmcp") + SubtitleStyle.Render(" - Maven launcher and MCP server") + `

mvnmcp finds a way to run Maven for the current project: M2_HOME, the
Maven wrapper under .mvn/wrapper (downloaded on first use), or mvn on PATH.
The project root is the nearest directory containing .mvn, or MAVEN_BASEDIR.`,
		Example:       examples,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runBuild(cmd, flags, args)
		},
	}
	rootCmd.SetIn(app.stdin)
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&app.flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/mvnmcp/config.cue)")
	pf.BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable verbose output")
	pf.StringVar(&app.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")

	f := rootCmd.Flags()
	// Everything from the first Maven argument on is passed through untouched.
	f.SetInterspersed(false)
	f.StringVar(&flags.baseDir, "base-dir", "", "override MAVEN_BASEDIR")
	f.BoolVar(&flags.compile, "compile", false, "run Maven compile (equivalent to mvnw clean compile)")
	f.BoolVar(&flags.test, "test", false, "run Maven tests (equivalent to mvnw test)")
	f.StringVar(&flags.testName, "test-name", "", "run a specific test (equivalent to mvnw test -Dtest=TestName)")
	rootCmd.MarkFlagsMutuallyExclusive("compile", "test")
	rootCmd.MarkFlagsMutuallyExclusive("compile", "test-name")

	rootCmd.AddCommand(newServeCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI. This is called by main.main().
func Execute() {
	rootCmd := NewRootCommand(NewApp(Dependencies{}))
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(func(w io.Writer, styles fang.Styles, err error) {
			var exitErr *ExitError
			if errors.As(err, &exitErr) && exitErr.Err == nil {
				return
			}
			fang.DefaultErrorHandler(w, styles, err)
		}),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

func (a *App) runBuild(cmd *cobra.Command, flags buildFlags, args []string) error {
	ctx := cmd.Context()

	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return err
	}
	cfg = cfg.WithBaseDir(flags.baseDir)
	logger := a.newLogger(cfg)

	eng := engine.New(cfg,
		engine.WithOutput(a.stdout),
		engine.WithInput(a.stdin),
		engine.WithInteractive(true),
		engine.WithLogger(logger),
	)

	base, err := eng.BaseDir()
	if err != nil {
		return a.fail(fmt.Errorf("resolve Maven base directory: %w", err))
	}
	fmt.Fprintf(a.stdout, "Using Maven base directory: %s\n", base)

	svc := maven.NewService(eng, logger)
	var ok bool
	switch {
	case flags.compile:
		fmt.Fprintln(a.stdout, "Running Maven compile...")
		ok = svc.Compile(ctx).Success
	case flags.test || flags.testName != "":
		if flags.testName != "" {
			fmt.Fprintf(a.stdout, "Running Maven test for %s...\n", flags.testName)
		} else {
			fmt.Fprintln(a.stdout, "Running all Maven tests...")
		}
		ok = svc.Test(ctx, flags.testName).Success
	case len(args) > 0:
		fmt.Fprintf(a.stdout, "Executing Maven command: %s\n", strings.Join(args, " "))
		ok = eng.Execute(ctx, args).Success()
	default:
		return cmd.Help()
	}

	if !ok {
		return &ExitError{Code: 1}
	}
	return nil
}

// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/invowk/mvnmcp/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `mvnmcp config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect mvnmcp configuration",
		Long: `Inspect mvnmcp configuration.

Configuration is read from, in increasing priority: built-in defaults, the
config file, /etc/mavenrc and ~/.mavenrc (unless MAVEN_SKIP_RC is set), and
the process environment.

The config file is stored in:
  - Linux: ~/.config/mvnmcp/config.cue
  - macOS: ~/Library/Application Support/mvnmcp/config.cue
  - Windows: %APPDATA%\mvnmcp\config.cue`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.showConfig(cmd.Context())
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.FilePath(app.loadOptions())
			if err != nil {
				return app.fail(err)
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func (a *App) showConfig(ctx context.Context) error {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return err
	}

	w := a.stdout
	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	source := SubtitleStyle.Render("(using defaults)")
	if cfg.Source != "" {
		source = cfg.Source
	}
	printKV(w, "Config file", source)
	rc := "read"
	if cfg.SkipRC {
		rc = "skipped (MAVEN_SKIP_RC)"
	}
	printKV(w, "mavenrc", rc)
	fmt.Fprintln(w)

	printKV(w, "base_dir", orUnset(cfg.BaseDir))
	printKV(w, "maven_home", orUnset(cfg.MavenHome))
	printKV(w, "java_home", orUnset(cfg.JavaHome))
	printKV(w, "maven_opts", orUnset(cfg.MavenOpts))
	printKV(w, "maven_debug_opts", orUnset(cfg.MavenDebugOpts))
	printKV(w, "batch_echo", string(cfg.BatchEcho))
	printKV(w, "batch_pause", string(cfg.BatchPause))
	printKV(w, "wrapper.wrapper_url", cfg.Wrapper.WrapperURL)
	printKV(w, "wrapper.distribution_url", cfg.Wrapper.DistributionURL)
	printKV(w, "wrapper.sha256", orUnset(cfg.Wrapper.SHA256))
	printKV(w, "log.level", cfg.Log.Level)
	printKV(w, "server.host", cfg.Server.Host)
	printKV(w, "server.port", strconv.Itoa(cfg.Server.Port))
	token := "(unset)"
	if cfg.Server.Token != "" {
		token = "(set)"
	}
	printKV(w, "server.token", token)

	return nil
}

func printKV(w io.Writer, key, value string) {
	fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render(key), SuccessStyle.Render(value))
}

func orUnset(v string) string {
	if v == "" {
		return "(unset)"
	}
	return v
}

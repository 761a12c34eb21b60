// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/invowk/mvnmcp/internal/basedir"
	"github.com/invowk/mvnmcp/internal/config"
	"github.com/invowk/mvnmcp/internal/engine"
	"github.com/invowk/mvnmcp/internal/issue"
	"github.com/invowk/mvnmcp/internal/maven"
	"github.com/invowk/mvnmcp/internal/mcpserver"
	"github.com/invowk/mvnmcp/internal/project"
	"github.com/invowk/mvnmcp/internal/sshserver"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

type serveFlags struct {
	baseDir string
	ssh     bool
	sshHost string
	sshPort int
	token   string
}

// newServeCommand creates the `mvnmcp serve` command.
func newServeCommand(app *App) *cobra.Command {
	var flags serveFlags

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve Maven builds over the Model Context Protocol",
		Long: `Serve Maven builds over the Model Context Protocol.

By default the protocol is spoken on stdin/stdout and build output goes to
stderr. With --ssh, each SSH session without a command becomes one MCP
session; clients authenticate with a token as the password.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runServe(cmd.Context(), cmd, flags)
		},
	}

	f := serveCmd.Flags()
	f.StringVar(&flags.baseDir, "base-dir", "", "override MAVEN_BASEDIR")
	f.BoolVar(&flags.ssh, "ssh", false, "serve over SSH instead of stdio")
	f.StringVar(&flags.sshHost, "ssh-host", "", "SSH listen address (default from config, 127.0.0.1)")
	f.IntVar(&flags.sshPort, "ssh-port", 0, "SSH listen port (default from config, 0 picks a free port)")
	f.StringVar(&flags.token, "token", "", "fixed SSH access token (default from config or MVNMCP_TOKEN; generated when empty)")

	return serveCmd
}

func (a *App) runServe(ctx context.Context, cmd *cobra.Command, flags serveFlags) error {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return err
	}
	cfg = cfg.WithBaseDir(flags.baseDir)
	logger := a.newLogger(cfg)

	srv, err := newMCPServer(cfg, a, logger)
	if err != nil {
		return a.fail(err)
	}

	if !flags.ssh {
		if err := srv.Serve(ctx, a.stdin, a.stdout); err != nil {
			return a.fail(err)
		}
		return nil
	}

	sshCfg := sshConfig(cfg, flags, cmd)
	if err := a.serveSSH(ctx, sshCfg, srv, logger); err != nil {
		return a.fail(issue.NewErrorContext().
			WithOperation("start SSH server").
			WithResource(fmt.Sprintf("%s:%d", sshCfg.Host, sshCfg.Port)).
			WithSuggestion("Pick another port with --ssh-port").
			WithIssue(issue.SSHServerStartFailedId).
			Wrap(err).
			BuildError())
	}
	return nil
}

// newMCPServer composes the build stack for protocol use. Build output goes
// to stderr so stdout stays reserved for the protocol.
func newMCPServer(cfg *config.Config, a *App, logger *log.Logger) (*mcpserver.Server, error) {
	resolver := basedir.NewResolver(cfg.BaseDir)
	eng := engine.New(cfg,
		engine.WithOutput(a.stderr),
		engine.WithInteractive(false),
		engine.WithLogger(logger),
		engine.WithBaseDirResolver(resolver),
	)
	return mcpserver.New(
		maven.NewService(eng, logger),
		project.NewReader(resolver),
		mcpserver.Options{Version: Version, Logger: logger},
	)
}

// sshConfig merges configured server settings with flags given explicitly.
func sshConfig(cfg *config.Config, flags serveFlags, cmd *cobra.Command) sshserver.Config {
	out := sshserver.DefaultConfig()
	if cfg.Server.Host != "" {
		out.Host = sshserver.HostAddress(cfg.Server.Host)
	}
	out.Port = sshserver.ListenPort(cfg.Server.Port)
	out.Token = sshserver.TokenValue(cfg.Server.Token)

	if cmd.Flags().Changed("ssh-host") {
		out.Host = sshserver.HostAddress(flags.sshHost)
	}
	if cmd.Flags().Changed("ssh-port") {
		out.Port = sshserver.ListenPort(flags.sshPort)
	}
	if cmd.Flags().Changed("token") {
		out.Token = sshserver.TokenValue(flags.token)
	}
	return out
}

// serveSSH runs the SSH transport until ctx is canceled or the server fails.
func (a *App) serveSSH(ctx context.Context, cfg sshserver.Config, handler sshserver.SessionHandler, logger *log.Logger) error {
	srv, err := sshserver.New(cfg, handler, sshserver.WithLogger(logger))
	if err != nil {
		return err
	}
	if err := srv.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = srv.Stop() }()

	host, port := srv.Host(), srv.Port()
	fmt.Fprintf(a.stderr, "%s ssh -p %d %s@%s\n", CmdStyle.Render("Connect with:"), port, sshserver.DefaultUser, host)
	if cfg.Token == "" {
		info, err := srv.GetConnectionInfo("cli")
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stderr, "%s %s (expires %s)\n",
			CmdStyle.Render("Token:"), info.Token, info.ExpireAt.Format("15:04:05"))
	}

	select {
	case <-ctx.Done():
		return nil
	case err, ok := <-srv.Err():
		if !ok {
			return nil
		}
		return err
	}
}

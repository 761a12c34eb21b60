// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/invowk/mvnmcp/internal/basedir"
	"github.com/invowk/mvnmcp/internal/config"
	"github.com/invowk/mvnmcp/internal/issue"
	"github.com/invowk/mvnmcp/internal/logging"
	"github.com/invowk/mvnmcp/internal/toolchain"
	"github.com/invowk/mvnmcp/internal/wrapper"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// notRecognizedPhrase is what cmd.exe prints for a missing program. Matching
// it only selects a hint; it never decides success.
const notRecognizedPhrase = "not recognized as an internal or external command"

type (
	// BaseDirResolver supplies the project root. *basedir.Resolver satisfies it.
	BaseDirResolver interface {
		Resolve() (string, error)
	}

	// Toolchain picks the program to run. *toolchain.Resolver satisfies it.
	Toolchain interface {
		FindJava() (string, error)
		Resolve(ctx context.Context, baseDir string) toolchain.Selection
	}

	// Engine executes Maven builds one at a time.
	Engine struct {
		mu          sync.Mutex
		cfg         *config.Config
		baseDir     BaseDirResolver
		toolchain   Toolchain
		out         io.Writer
		in          io.Reader
		interactive bool
		logger      *log.Logger
	}

	// Option configures an Engine during construction.
	Option func(*Engine)
)

// WithOutput sets where build stdout and user-facing messages go.
// Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(e *Engine) {
		e.out = w
	}
}

// WithInput sets the reader used for MAVEN_BATCH_PAUSE. Defaults to os.Stdin.
func WithInput(r io.Reader) Option {
	return func(e *Engine) {
		e.in = r
	}
}

// WithInteractive enables MAVEN_BATCH_PAUSE handling. Protocol-driven use
// leaves it off.
func WithInteractive(on bool) Option {
	return func(e *Engine) {
		e.interactive = on
	}
}

// WithLogger sets the logger. Nil keeps log.Default().
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		e.logger = logging.OrDefault(l)
	}
}

// WithBaseDirResolver replaces the base directory resolver.
func WithBaseDirResolver(r BaseDirResolver) Option {
	return func(e *Engine) {
		e.baseDir = r
	}
}

// WithToolchain replaces the toolchain resolver.
func WithToolchain(t Toolchain) Option {
	return func(e *Engine) {
		e.toolchain = t
	}
}

// New creates an Engine for cfg. Unless overridden, the base directory comes
// from cfg.BaseDir or .mvn discovery, and the toolchain provisions the wrapper
// with cfg.Wrapper.
func New(cfg *config.Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:    cfg,
		out:    os.Stdout,
		in:     os.Stdin,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.baseDir == nil {
		e.baseDir = basedir.NewResolver(cfg.BaseDir)
	}
	if e.toolchain == nil {
		e.toolchain = toolchain.NewResolver(cfg,
			toolchain.WithProvisioner(wrapper.NewProvisioner(cfg.Wrapper, wrapper.WithLogger(e.logger))),
			toolchain.WithLogger(e.logger),
		)
	}
	return e
}

// BaseDir returns the resolved project root.
func (e *Engine) BaseDir() (string, error) {
	return e.baseDir.Resolve()
}

// Execute runs Maven with args appended verbatim to the resolved command line.
// It never returns an error or panics on build problems; everything is
// reported on the Result.
func (e *Engine) Execute(ctx context.Context, args []string) *Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	res := &Result{ExecutionID: uuid.NewString()}
	logger := e.logger.With("execution", res.ExecutionID)

	if _, err := e.toolchain.FindJava(); err != nil {
		logger.Error("Java not found", "error", err)
		return e.fail(res, 1, err, issue.JavaNotFoundId)
	}

	base, err := e.baseDir.Resolve()
	if err != nil {
		logger.Error("cannot resolve Maven base directory", "error", err)
		return e.fail(res, 1, err, issue.BuildFailedId)
	}
	res.BaseDir = base

	sel := e.toolchain.Resolve(ctx, base)
	res.Selection = sel
	res.Argv = sel.Argv(args...)

	if e.cfg.BatchEcho.Enabled() {
		fmt.Fprintln(e.out, strings.Join(res.Argv, " "))
	}
	logger.Info("running Maven", "kind", sel.Kind, "dir", base, "argv", res.Argv)

	var stdout, stderr bytes.Buffer
	// Builds are not cancellable, so ctx is not attached to the process.
	cmd := exec.Command(res.Argv[0], res.Argv[1:]...)
	cmd.Dir = base
	cmd.Env = e.childEnv(base)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()

	if res.Stdout != "" {
		fmt.Fprint(e.out, res.Stdout)
	}

	var exitErr *exec.ExitError
	switch {
	case runErr == nil:
		res.ExitCode = 0
	case errors.As(runErr, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		if res.ExitCode < 0 {
			// Killed by a signal.
			res.ExitCode = 1
		}
	default:
		res.ExitCode = 1
		res.Err = &StartError{Program: res.Argv[0], Kind: sel.Kind, Cause: runErr}
	}

	if res.Stderr != "" {
		logger.Warn("Maven wrote to stderr", "stderr", strings.TrimRight(res.Stderr, "\n"))
	}

	if !res.Success() {
		res.Hint = classify(res)
		logger.Error("Maven command failed", "exit_code", res.ExitCode, "error", res.Err, "hint", res.Hint)
		fmt.Fprintln(e.out, issue.Get(res.Hint).Summary())
	}

	e.pause()
	return res
}

func (e *Engine) fail(res *Result, code int, err error, hint issue.Id) *Result {
	res.ExitCode = code
	res.Err = err
	res.Hint = hint
	fmt.Fprintln(e.out, issue.Get(hint).Summary())
	return res
}

// classify picks the hint for a failed build.
func classify(res *Result) issue.Id {
	if res.Err != nil && (errors.Is(res.Err, exec.ErrNotFound) || res.Selection.Kind == toolchain.KindFallback) {
		return issue.MavenNotFoundId
	}
	if strings.Contains(res.Stdout, notRecognizedPhrase) || strings.Contains(res.Stderr, notRecognizedPhrase) {
		return issue.MavenNotFoundId
	}
	return issue.BuildFailedId
}

func (e *Engine) pause() {
	if !e.interactive || !e.cfg.BatchPause.Enabled() {
		return
	}
	fmt.Fprint(e.out, "Press Enter to continue...")
	_, _ = bufio.NewReader(e.in).ReadString('\n')
}

// childEnv is the environment captured in the config snapshot with values
// that came from a config or mavenrc file applied on top, so the launched mvn
// script sees the same PATH and settings as the resolver.
func (e *Engine) childEnv(base string) []string {
	overrides := map[string]string{
		"JAVA_HOME":        e.cfg.JavaHome,
		"M2_HOME":          e.cfg.MavenHome,
		"MAVEN_OPTS":       e.cfg.MavenOpts,
		"MAVEN_DEBUG_OPTS": e.cfg.MavenDebugOpts,
		"PWD":              base,
	}

	env := e.cfg.Environ
	out := make([]string, 0, len(env)+len(overrides))
	for _, kv := range env {
		k, _, _ := strings.Cut(kv, "=")
		if v, ok := overrides[k]; ok && v != "" {
			continue
		}
		out = append(out, kv)
	}
	for k, v := range overrides {
		if v != "" {
			out = append(out, k+"="+v)
		}
	}
	return out
}

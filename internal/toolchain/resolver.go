// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/invowk/mvnmcp/internal/config"
	"github.com/invowk/mvnmcp/internal/logging"
	"github.com/invowk/mvnmcp/internal/platform"
	"github.com/invowk/mvnmcp/internal/wrapper"

	"github.com/charmbracelet/log"
	"mvdan.cc/sh/v3/shell"
)

type (
	// Provisioner materializes a missing wrapper artifact.
	// *wrapper.Provisioner satisfies it.
	Provisioner interface {
		Ensure(ctx context.Context, baseDir string) bool
	}

	// Resolver picks the Maven invocation for a project.
	Resolver struct {
		cfg         *config.Config
		searcher    platform.Searcher
		provisioner Provisioner
		logger      *log.Logger
	}

	// Option configures a Resolver during construction.
	Option func(*Resolver)
)

// WithSearcher replaces the search-path lookup.
func WithSearcher(s platform.Searcher) Option {
	return func(r *Resolver) {
		r.searcher = s
	}
}

// WithProvisioner sets the wrapper provisioner. Nil disables provisioning.
func WithProvisioner(p Provisioner) Option {
	return func(r *Resolver) {
		r.provisioner = p
	}
}

// WithLogger sets the logger. Nil keeps log.Default().
func WithLogger(l *log.Logger) Option {
	return func(r *Resolver) {
		r.logger = logging.OrDefault(l)
	}
}

// NewResolver creates a Resolver over cfg. By default it searches
// cfg.SearchPath and provisions the wrapper with cfg.Wrapper.
func NewResolver(cfg *config.Config, opts ...Option) *Resolver {
	r := &Resolver{
		cfg:    cfg,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.searcher == nil {
		r.searcher = platform.NewPathSearcher(cfg.SearchPath, cfg.PathExt)
	}
	return r
}

// Resolve returns the first usable Maven invocation for baseDir. It never
// fails: when nothing is found it returns a KindFallback selection whose
// execution reports the problem.
func (r *Resolver) Resolve(ctx context.Context, baseDir string) Selection {
	var skipped []error

	if home := r.cfg.MavenHome; home != "" {
		exe := filepath.Join(home, "bin", platform.MavenBinary())
		if platform.IsFile(exe) {
			r.logger.Debug("using Maven from M2_HOME", "path", exe)
			return Selection{Kind: KindMavenHome, Program: exe}
		}
		skipped = append(skipped, fmt.Errorf("M2_HOME=%s: %w", home, &platform.NotFoundError{Name: exe}))
		r.logger.Warn("M2_HOME does not contain a Maven executable", "maven_home", home, "expected", exe)
	}

	artifact := wrapper.ArtifactFor(baseDir)
	if !artifact.HasJar() {
		switch {
		case r.provisioner == nil:
			skipped = append(skipped, fmt.Errorf("wrapper jar %s: %w", artifact.JarPath, &platform.NotFoundError{Name: wrapper.JarName}))
		case !r.provisioner.Ensure(ctx, baseDir):
			skipped = append(skipped, fmt.Errorf("wrapper jar %s could not be provisioned", artifact.JarPath))
		}
	}
	if artifact.HasJar() {
		sel, err := r.wrapperSelection(baseDir, artifact.JarPath)
		if err == nil {
			r.logger.Debug("using Maven wrapper", "jar", artifact.JarPath)
			sel.Skipped = skipped
			return sel
		}
		skipped = append(skipped, err)
		r.logger.Warn("Maven wrapper present but Java is unavailable", "error", err)
	}

	mvn := platform.MavenBinary()
	exe, err := r.searcher.LookPath(mvn)
	if err == nil {
		r.logger.Debug("using Maven from PATH", "path", exe)
		return Selection{Kind: KindSystem, Program: exe, Args: []string{projectDirArg(baseDir)}, Skipped: skipped}
	}
	skipped = append(skipped, err)

	r.logger.Warn("Maven not found. Please install Maven or set M2_HOME.")
	return Selection{Kind: KindFallback, Program: mvn, Args: []string{projectDirArg(baseDir)}, Skipped: skipped}
}

func (r *Resolver) wrapperSelection(baseDir, jar string) (Selection, error) {
	java, err := r.FindJava()
	if err != nil {
		return Selection{}, err
	}

	args := r.splitOpts("MAVEN_OPTS", r.cfg.MavenOpts)
	args = append(args, r.splitOpts("MAVEN_DEBUG_OPTS", r.cfg.MavenDebugOpts)...)
	args = append(args,
		projectDirArg(baseDir),
		"-classpath", jar,
		wrapper.MainClass,
	)
	return Selection{Kind: KindWrapper, Program: java, Args: args}, nil
}

// splitOpts splits JVM option strings with shell quoting rules. Values that
// need command substitution are split on whitespace instead.
func (r *Resolver) splitOpts(name, value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	fields, err := shell.Fields(value, r.cfg.Getenv)
	if err != nil {
		r.logger.Warn("cannot parse JVM options, splitting on whitespace", "var", name, "error", err)
		return strings.Fields(value)
	}
	return fields
}

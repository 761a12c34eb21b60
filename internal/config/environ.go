// SPDX-License-Identifier: MPL-2.0

package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// DefaultRCFiles returns the mavenrc files in the order they are applied.
// Later files override earlier ones.
func DefaultRCFiles() []string {
	files := []string{"/etc/mavenrc"}
	if home, err := os.UserHomeDir(); err == nil {
		files = append(files, filepath.Join(home, ".mavenrc"))
	}
	return files
}

// captureCommand is run after the mavenrc files to read the resulting
// variables from inside the interpreter.
const captureCommand = "mvnmcp-capture-env"

// readRCFiles sources each existing file, in order, in one shell interpreter
// seeded with environ, and returns the values of the bound variables the files
// set or changed. External commands are refused and no file other than the
// null device can be opened. A non-zero exit status from a file is ignored;
// a syntax error is not. Missing files are skipped.
func readRCFiles(ctx context.Context, files []string, environ []string) (map[string]string, error) {
	before := parseEnviron(environ)
	vars := make(map[string]string)

	capture := func(ctx context.Context) {
		env := interp.HandlerCtx(ctx).Env
		for _, b := range envBindings {
			for _, name := range b.vars {
				vr := env.Get(name)
				if !vr.IsSet() || vr.Kind != expand.String {
					continue
				}
				if old, had := before[name]; had && old == vr.String() {
					continue
				}
				vars[name] = vr.String()
			}
		}
	}

	runner, err := interp.New(
		interp.Env(expand.ListEnviron(environ...)),
		interp.StdIO(nil, io.Discard, io.Discard),
		interp.ExecHandlers(func(interp.ExecHandlerFunc) interp.ExecHandlerFunc {
			return func(ctx context.Context, args []string) error {
				if len(args) == 1 && args[0] == captureCommand {
					capture(ctx)
					return nil
				}
				return interp.ExitStatus(127)
			}
		}),
		interp.OpenHandler(nullOnlyOpen),
	)
	if err != nil {
		return nil, fmt.Errorf("create mavenrc interpreter: %w", err)
	}

	parser := syntax.NewParser()
	sourced := false
	for _, f := range files {
		if !fileExists(f) {
			continue
		}
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f, err)
		}
		prog, err := parser.Parse(bytes.NewReader(data), f)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", f, err)
		}
		if err := runner.Run(ctx, prog); err != nil {
			var status interp.ExitStatus
			if !errors.As(err, &status) {
				return nil, fmt.Errorf("source %s: %w", f, err)
			}
		}
		sourced = true
	}
	if !sourced {
		return vars, nil
	}

	prog, err := parser.Parse(strings.NewReader(captureCommand+"\n"), "capture")
	if err != nil {
		return nil, fmt.Errorf("parse capture: %w", err)
	}
	if err := runner.Run(ctx, prog); err != nil {
		// A mavenrc file may have ended the shell with exit.
		var status interp.ExitStatus
		if !errors.As(err, &status) {
			return nil, fmt.Errorf("capture mavenrc variables: %w", err)
		}
	}
	return vars, nil
}

func nullOnlyOpen(ctx context.Context, path string, flag int, perm os.FileMode) (io.ReadWriteCloser, error) {
	if path != os.DevNull {
		return nil, fmt.Errorf("mavenrc may not open %s", path)
	}
	return interp.DefaultOpenHandler()(ctx, path, flag, perm)
}

func parseEnviron(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		env[k] = v
	}
	return env
}

func lookupNonEmpty(vars map[string]string, name string) (string, bool) {
	v, ok := vars[name]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

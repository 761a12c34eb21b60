// SPDX-License-Identifier: MPL-2.0

package maven

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/invowk/mvnmcp/internal/engine"
	"github.com/invowk/mvnmcp/internal/toolchain"

	"github.com/charmbracelet/log"
)

// recorder builds a full argv the way the engine does and records it.
type recorder struct {
	sel      toolchain.Selection
	exitCode int
	argv     []string
	calls    int
}

func (r *recorder) Execute(_ context.Context, args []string) *engine.Result {
	r.calls++
	r.argv = r.sel.Argv(args...)
	return &engine.Result{Argv: r.argv, ExitCode: r.exitCode}
}

func newRecorder(exitCode int) *recorder {
	return &recorder{
		sel: toolchain.Selection{
			Kind:    toolchain.KindSystem,
			Program: "/usr/bin/mvn",
			Args:    []string{"-Dmaven.multiModuleProjectDirectory=/p"},
		},
		exitCode: exitCode,
	}
}

func newTestService(r *recorder) *Service {
	return NewService(r, log.New(&bytes.Buffer{}))
}

func TestDispatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		op          Operation
		params      Params
		exitCode    int
		wantArgs    []string
		wantMessage string
	}{
		{
			name:        "compile",
			op:          OpCompile,
			wantArgs:    []string{"clean", "compile"},
			wantMessage: "Maven compile completed successfully.",
		},
		{
			name:        "compile failure",
			op:          OpCompile,
			exitCode:    1,
			wantArgs:    []string{"clean", "compile"},
			wantMessage: "Maven compile failed. Check logs for details.",
		},
		{
			name:        "all tests",
			op:          OpTest,
			wantArgs:    []string{"test"},
			wantMessage: "Maven tests completed successfully.",
		},
		{
			name:        "single test",
			op:          OpTest,
			params:      Params{TestName: "FooTest"},
			wantArgs:    []string{"test", "-Dtest=FooTest"},
			wantMessage: "Maven test for FooTest completed successfully.",
		},
		{
			name:        "single test failure",
			op:          OpTest,
			params:      Params{TestName: "FooTest"},
			exitCode:    1,
			wantArgs:    []string{"test", "-Dtest=FooTest"},
			wantMessage: "Maven test for FooTest failed. Check logs for details.",
		},
		{
			name:        "package",
			op:          OpPackage,
			wantArgs:    []string{"package"},
			wantMessage: "Maven package completed successfully.",
		},
		{
			name:        "package skip tests",
			op:          OpPackage,
			params:      Params{SkipTests: true},
			wantArgs:    []string{"package", "-DskipTests"},
			wantMessage: "Maven package completed successfully.",
		},
		{
			name:        "run",
			op:          OpRun,
			params:      Params{Command: "  dependency:tree   -Dverbose "},
			wantArgs:    []string{"dependency:tree", "-Dverbose"},
			wantMessage: "Maven command '  dependency:tree   -Dverbose ' completed successfully.",
		},
		{
			name:        "run failure",
			op:          OpRun,
			params:      Params{Command: "verify"},
			exitCode:    2,
			wantArgs:    []string{"verify"},
			wantMessage: "Maven command 'verify' failed. Check logs for details.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := newRecorder(tt.exitCode)
			out, err := newTestService(rec).Dispatch(context.Background(), tt.op, tt.params)
			if err != nil {
				t.Fatalf("Dispatch() error = %v", err)
			}
			wantArgv := append(rec.sel.Argv(), tt.wantArgs...)
			if !slices.Equal(rec.argv, wantArgv) {
				t.Errorf("argv = %q, want %q", rec.argv, wantArgv)
			}
			if out.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", out.Message, tt.wantMessage)
			}
			if out.Success != (tt.exitCode == 0) {
				t.Errorf("Success = %v, want %v", out.Success, tt.exitCode == 0)
			}
		})
	}
}

func TestTest_ArgvEndsWithSelector(t *testing.T) {
	t.Parallel()

	rec := newRecorder(0)
	newTestService(rec).Test(context.Background(), "FooTest")

	n := len(rec.argv)
	if n < 2 || rec.argv[n-2] != "test" || rec.argv[n-1] != "-Dtest=FooTest" {
		t.Errorf("argv = %q, want it to end with [test -Dtest=FooTest]", rec.argv)
	}
}

func TestRun_EmptyCommand(t *testing.T) {
	t.Parallel()

	for _, cmd := range []string{"", "   ", "\t\n"} {
		rec := newRecorder(0)
		_, err := newTestService(rec).Dispatch(context.Background(), OpRun, Params{Command: cmd})
		if !errors.Is(err, ErrCommandRequired) {
			t.Errorf("Dispatch(run, %q) error = %v, want ErrCommandRequired", cmd, err)
		}
		if rec.calls != 0 {
			t.Errorf("Dispatch(run, %q) executed Maven", cmd)
		}
	}
}

func TestDispatch_UnknownOperation(t *testing.T) {
	t.Parallel()

	rec := newRecorder(0)
	_, err := newTestService(rec).Dispatch(context.Background(), Operation("deploy"), Params{})
	if !errors.Is(err, ErrUnknownOperation) {
		t.Fatalf("Dispatch() error = %v, want ErrUnknownOperation", err)
	}
	var uoe *UnknownOperationError
	if !errors.As(err, &uoe) || uoe.Name != "deploy" {
		t.Errorf("error = %#v", err)
	}
	if rec.calls != 0 {
		t.Error("unknown operation must not execute Maven")
	}
}

func TestParseOperation(t *testing.T) {
	t.Parallel()

	for _, op := range Operations() {
		got, err := ParseOperation(string(op))
		if err != nil || got != op {
			t.Errorf("ParseOperation(%q) = %q, %v", op, got, err)
		}
	}
	if _, err := ParseOperation("Compile"); !errors.Is(err, ErrUnknownOperation) {
		t.Errorf("ParseOperation is case-sensitive, got %v", err)
	}
}

// SPDX-License-Identifier: MPL-2.0

// Package maven maps the named build operations (compile, test, package,
// run) onto Maven goals and turns execution results into short messages.
package maven

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/invowk/mvnmcp/internal/engine"
	"github.com/invowk/mvnmcp/internal/logging"

	"github.com/charmbracelet/log"
)

const (
	OpCompile Operation = "compile"
	OpTest    Operation = "test"
	OpPackage Operation = "package"
	OpRun     Operation = "run"
)

var (
	// ErrUnknownOperation is the sentinel error wrapped by UnknownOperationError.
	ErrUnknownOperation = errors.New("unknown operation")
	// ErrCommandRequired is returned by Run for an empty command.
	ErrCommandRequired = errors.New("command is required")
)

type (
	// Operation names a build operation.
	Operation string

	// UnknownOperationError is returned for an operation name that is not
	// one of compile, test, package or run.
	UnknownOperationError struct {
		Name string
	}

	// Executor runs Maven with extra arguments. *engine.Engine satisfies it.
	Executor interface {
		Execute(ctx context.Context, args []string) *engine.Result
	}

	// Params carries the optional inputs of an operation.
	Params struct {
		TestName  string
		SkipTests bool
		Command   string
	}

	// Outcome is the user-facing result of an operation.
	Outcome struct {
		Success bool
		Message string
		Result  *engine.Result
	}

	// Service runs build operations.
	Service struct {
		exec   Executor
		logger *log.Logger
	}
)

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("unknown operation %q (valid: compile, test, package, run)", e.Name)
}

func (e *UnknownOperationError) Unwrap() error { return ErrUnknownOperation }

// Operations lists every supported operation.
func Operations() []Operation {
	return []Operation{OpCompile, OpTest, OpPackage, OpRun}
}

// ParseOperation validates an operation name.
func ParseOperation(name string) (Operation, error) {
	op := Operation(name)
	switch op {
	case OpCompile, OpTest, OpPackage, OpRun:
		return op, nil
	default:
		return "", &UnknownOperationError{Name: name}
	}
}

// NewService creates a Service. A nil logger means log.Default().
func NewService(exec Executor, logger *log.Logger) *Service {
	return &Service{exec: exec, logger: logging.OrDefault(logger)}
}

// CompileArgs returns the goals run by Compile.
func CompileArgs() []string {
	return []string{"clean", "compile"}
}

// TestArgs returns the goals run by Test.
func TestArgs(testName string) []string {
	if testName == "" {
		return []string{"test"}
	}
	return []string{"test", "-Dtest=" + testName}
}

// PackageArgs returns the goals run by Package.
func PackageArgs(skipTests bool) []string {
	if skipTests {
		return []string{"package", "-DskipTests"}
	}
	return []string{"package"}
}

// RunArgs splits a free-form command on whitespace.
func RunArgs(command string) ([]string, error) {
	args := strings.Fields(command)
	if len(args) == 0 {
		return nil, ErrCommandRequired
	}
	return args, nil
}

// Compile runs "clean compile".
func (s *Service) Compile(ctx context.Context) Outcome {
	s.logger.Info("running Maven compile")
	return s.run(ctx, CompileArgs(), "Maven compile")
}

// Test runs all tests, or only testName when it is set.
func (s *Service) Test(ctx context.Context, testName string) Outcome {
	if testName == "" {
		s.logger.Info("running all Maven tests")
		return s.run(ctx, TestArgs(""), "Maven tests")
	}
	s.logger.Info("running Maven test", "test", testName)
	return s.run(ctx, TestArgs(testName), "Maven test for "+testName)
}

// Package runs "package", optionally skipping tests.
func (s *Service) Package(ctx context.Context, skipTests bool) Outcome {
	s.logger.Info("running Maven package", "skip_tests", skipTests)
	return s.run(ctx, PackageArgs(skipTests), "Maven package")
}

// Run runs a free-form Maven command line.
func (s *Service) Run(ctx context.Context, command string) (Outcome, error) {
	args, err := RunArgs(command)
	if err != nil {
		return Outcome{}, err
	}
	s.logger.Info("running Maven command", "command", command)
	return s.run(ctx, args, fmt.Sprintf("Maven command '%s'", command)), nil
}

// Dispatch runs op with p.
func (s *Service) Dispatch(ctx context.Context, op Operation, p Params) (Outcome, error) {
	switch op {
	case OpCompile:
		return s.Compile(ctx), nil
	case OpTest:
		return s.Test(ctx, p.TestName), nil
	case OpPackage:
		return s.Package(ctx, p.SkipTests), nil
	case OpRun:
		return s.Run(ctx, p.Command)
	default:
		return Outcome{}, &UnknownOperationError{Name: string(op)}
	}
}

func (s *Service) run(ctx context.Context, args []string, subject string) Outcome {
	res := s.exec.Execute(ctx, args)
	if res.Success() {
		return Outcome{Success: true, Message: subject + " completed successfully.", Result: res}
	}
	return Outcome{Success: false, Message: subject + " failed. Check logs for details.", Result: res}
}

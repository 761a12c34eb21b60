// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/invowk/mvnmcp/internal/testutil"
)

type testApp struct {
	app       *App
	base      string
	configDir string
	stdout    bytes.Buffer
	stderr    bytes.Buffer
}

// newTestApp builds an App whose configuration comes only from the given
// environment: M2_HOME points at a fake mvn running mvnBody and JAVA_HOME
// at a fake java.
func newTestApp(t *testing.T, mvnBody string, stdin string) *testApp {
	t.Helper()
	testutil.SkipOnWindows(t)

	root := t.TempDir()
	ta := &testApp{
		base:      filepath.Join(root, "project"),
		configDir: filepath.Join(root, "config"),
	}
	testutil.MustMkdirAll(t, ta.base, 0o755)
	mavenHome := testutil.FakeMavenHome(t, filepath.Join(root, "maven"), mvnBody)
	javaHome := testutil.FakeJavaHome(t, filepath.Join(root, "java"), "exit 0")

	ta.app = NewApp(Dependencies{
		Stdin:  strings.NewReader(stdin),
		Stdout: &ta.stdout,
		Stderr: &ta.stderr,
		Environ: []string{
			"M2_HOME=" + mavenHome,
			"JAVA_HOME=" + javaHome,
			"PATH=" + filepath.Join(root, "empty"),
		},
		RCFiles:   []string{},
		ConfigDir: ta.configDir,
	})
	return ta
}

func (ta *testApp) run(args ...string) error {
	root := NewRootCommand(ta.app)
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func TestGetVersionString(t *testing.T) {
	// Not parallel: subtests mutate package-level Version/Commit/BuildDate vars.

	t.Run("ldflags version takes priority", func(t *testing.T) {
		origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
		t.Cleanup(func() {
			Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
		})

		Version = "v1.2.3"
		Commit = "abc1234"
		BuildDate = "2025-06-15T10:00:00Z"

		got := getVersionString()
		want := "v1.2.3 (commit: abc1234, built: 2025-06-15T10:00:00Z)"
		if got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})

	t.Run("fallback to dev", func(t *testing.T) {
		origVersion := Version
		t.Cleanup(func() { Version = origVersion })

		Version = "dev"
		if got := getVersionString(); got != "dev (built from source)" {
			t.Errorf("getVersionString() = %q", got)
		}
	})
}

func TestRoot_Actions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		args      func(base string) []string
		wantLines []string
	}{
		{
			name: "compile",
			args: func(base string) []string { return []string{"--base-dir", base, "--compile"} },
			wantLines: []string{
				"Running Maven compile...",
				"clean",
				"compile",
			},
		},
		{
			name: "all tests",
			args: func(base string) []string { return []string{"--base-dir", base, "--test"} },
			wantLines: []string{
				"Running all Maven tests...",
				"test",
			},
		},
		{
			name: "test name implies test",
			args: func(base string) []string { return []string{"--base-dir", base, "--test-name", "FooTest"} },
			wantLines: []string{
				"Running Maven test for FooTest...",
				"test",
				"-Dtest=FooTest",
			},
		},
		{
			name: "raw arguments",
			args: func(base string) []string { return []string{"--base-dir", base, "--", "-q", "dependency:tree"} },
			wantLines: []string{
				"Executing Maven command: -q dependency:tree",
				"-q",
				"dependency:tree",
			},
		},
		{
			name: "maven property after goal",
			args: func(base string) []string { return []string{"--base-dir", base, "test", "-Dtest=SomeTestName"} },
			wantLines: []string{
				"Executing Maven command: test -Dtest=SomeTestName",
				"test",
				"-Dtest=SomeTestName",
			},
		},
		{
			name: "maven flags after goals",
			args: func(base string) []string { return []string{"--base-dir", base, "clean", "install", "-DskipTests", "-X"} },
			wantLines: []string{
				"Executing Maven command: clean install -DskipTests -X",
				"install",
				"-DskipTests",
				"-X",
			},
		},
		{
			name: "own flags after goal go to maven",
			args: func(base string) []string { return []string{"--base-dir", base, "verify", "--compile"} },
			wantLines: []string{
				"Executing Maven command: verify --compile",
				"verify",
				"--compile",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ta := newTestApp(t, testutil.EchoArgsScript, "")
			if err := ta.run(tt.args(ta.base)...); err != nil {
				t.Fatalf("run() error = %v\nstderr: %s", err, ta.stderr.String())
			}

			lines := strings.Split(ta.stdout.String(), "\n")
			if lines[0] != "Using Maven base directory: "+ta.base {
				t.Errorf("first line = %q, want base directory banner", lines[0])
			}
			for _, want := range tt.wantLines {
				found := false
				for _, line := range lines {
					if line == want {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("stdout missing line %q:\n%s", want, ta.stdout.String())
				}
			}
		})
	}
}

func TestRoot_BuildFailureExitsOne(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t, "exit 3", "")
	err := ta.run("--base-dir", ta.base, "--compile")

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("run() error = %v, want *ExitError", err)
	}
	if exitErr.Code != 1 {
		t.Errorf("Code = %d, want 1", exitErr.Code)
	}
	if !strings.Contains(ta.stdout.String(), "Maven build failed") {
		t.Errorf("stdout = %q, want the build failure hint", ta.stdout.String())
	}
}

func TestRoot_NoActionShowsHelp(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t, testutil.EchoArgsScript, "")
	if err := ta.run("--base-dir", ta.base); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	out := ta.stdout.String()
	for _, want := range []string{"Using Maven base directory: ", "Usage:", "mvnmcp --test-name SomeTestName"} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout missing %q:\n%s", want, out)
		}
	}
}

func TestRoot_CompileAndTestAreExclusive(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t, testutil.EchoArgsScript, "")
	if err := ta.run("--base-dir", ta.base, "--compile", "--test"); err == nil {
		t.Fatal("run() with --compile and --test should fail")
	}
}

func TestRoot_MissingConfigFile(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t, testutil.EchoArgsScript, "")
	err := ta.run("--config", filepath.Join(ta.configDir, "missing.cue"), "--base-dir", ta.base, "--compile")

	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Err != nil {
		t.Fatalf("run() error = %v, want reported *ExitError", err)
	}
	if !strings.Contains(ta.stderr.String(), "Error:") {
		t.Errorf("stderr = %q, want an error report", ta.stderr.String())
	}
	if !strings.Contains(ta.stderr.String(), "Failed to load configuration!") {
		t.Errorf("stderr = %q, want the remediation text", ta.stderr.String())
	}
	if strings.Contains(ta.stderr.String(), "\x1b[") {
		t.Errorf("stderr = %q, want no escape sequences when not a terminal", ta.stderr.String())
	}
	if strings.Contains(ta.stdout.String(), "Running Maven compile") {
		t.Error("build ran despite the configuration error")
	}
}

func TestExitError(t *testing.T) {
	t.Parallel()

	if got := (&ExitError{Code: 2}).Error(); got != "exit status 2" {
		t.Errorf("Error() = %q", got)
	}
	cause := errors.New("boom")
	err := &ExitError{Code: 1, Err: cause}
	if err.Error() != "boom" || !errors.Is(err, cause) {
		t.Errorf("ExitError should present and wrap its cause, got %v", err)
	}
}

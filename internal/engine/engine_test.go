// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/invowk/mvnmcp/internal/config"
	"github.com/invowk/mvnmcp/internal/issue"
	"github.com/invowk/mvnmcp/internal/testutil"
	"github.com/invowk/mvnmcp/internal/toolchain"

	"github.com/charmbracelet/log"
)

type harness struct {
	base string
	bin  string
	cfg  *config.Config
	out  bytes.Buffer
	logs bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	testutil.SkipOnWindows(t)

	h := &harness{
		base: t.TempDir(),
		bin:  t.TempDir(),
	}
	h.cfg = &config.Config{
		BaseDir:    h.base,
		SearchPath: h.bin,
		Environ:    []string{"PATH=" + os.Getenv("PATH")},
	}
	return h
}

func (h *harness) withJava(t *testing.T) *harness {
	t.Helper()
	testutil.WriteExecutable(t, h.bin, "java", "exit 0")
	return h
}

func (h *harness) withMaven(t *testing.T, body string) *harness {
	t.Helper()
	testutil.WriteExecutable(t, h.bin, "mvn", body)
	return h
}

func (h *harness) engine(opts ...Option) *Engine {
	logger := log.New(&h.logs)
	base := []Option{
		WithOutput(&h.out),
		WithLogger(logger),
		WithToolchain(toolchain.NewResolver(h.cfg, toolchain.WithLogger(logger))),
	}
	return New(h.cfg, append(base, opts...)...)
}

func lines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

func TestExecute_JavaMissingFailsWithoutSpawning(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	marker := filepath.Join(h.base, "spawned")
	h.withMaven(t, "touch "+marker)

	// Default toolchain: no overrides, no wrapper jar, no Java anywhere.
	e := New(h.cfg, WithOutput(&h.out), WithLogger(log.New(&h.logs)))
	res := e.Execute(context.Background(), []string{"compile"})

	if res.Success() {
		t.Fatal("Execute() should fail without Java")
	}
	if !errors.Is(res.Err, toolchain.ErrJavaNotFound) {
		t.Errorf("Err = %v, want ErrJavaNotFound", res.Err)
	}
	if res.Hint != issue.JavaNotFoundId {
		t.Errorf("Hint = %d, want JavaNotFoundId", res.Hint)
	}
	if !strings.Contains(h.out.String(), "ERROR: Java not found. Please install Java or set JAVA_HOME.") {
		t.Errorf("output = %q, want Java message", h.out.String())
	}
	if res.Argv != nil {
		t.Errorf("Argv = %q, want nil", res.Argv)
	}
	if _, err := os.Stat(marker); err == nil {
		t.Error("no process should be spawned when Java is missing")
	}
}

func TestExecute_WorkingDirectoryUnchangedAfterFailure(t *testing.T) {
	t.Parallel()

	h := newHarness(t).withJava(t).withMaven(t, "exit 3")
	before := testutil.MustGetwd(t)

	res := h.engine().Execute(context.Background(), []string{"verify"})

	if after := testutil.MustGetwd(t); after != before {
		t.Errorf("working directory changed: before %q, after %q", before, after)
	}
	if res.Success() || res.ExitCode != 3 {
		t.Errorf("ExitCode = %d, Success = %v, want 3/false", res.ExitCode, res.Success())
	}
	if res.Err != nil {
		t.Errorf("Err = %v, want nil for a build that ran", res.Err)
	}
	if res.Hint != issue.BuildFailedId {
		t.Errorf("Hint = %d, want BuildFailedId", res.Hint)
	}
	if !strings.Contains(h.out.String(), "Maven build failed") {
		t.Errorf("output = %q, want build failure hint", h.out.String())
	}
}

func TestExecute_RunsInBaseDir(t *testing.T) {
	t.Parallel()

	h := newHarness(t).withJava(t).withMaven(t, "pwd")

	res := h.engine().Execute(context.Background(), nil)
	if !res.Success() {
		t.Fatalf("Execute() failed: %+v", res)
	}
	got := testutil.MustEvalSymlinks(t, strings.TrimSpace(res.Stdout))
	if want := testutil.MustEvalSymlinks(t, h.base); got != want {
		t.Errorf("child working directory = %q, want %q", got, want)
	}
	if res.BaseDir != h.base {
		t.Errorf("BaseDir = %q, want %q", res.BaseDir, h.base)
	}
}

func TestExecute_ArgsAppendedVerbatim(t *testing.T) {
	t.Parallel()

	h := newHarness(t).withJava(t).withMaven(t, testutil.EchoArgsScript)
	args := []string{"clean", "-Dname=a b", "$HOME", "; rm -rf /"}

	res := h.engine().Execute(context.Background(), args)
	if !res.Success() {
		t.Fatalf("Execute() failed: %+v", res)
	}

	want := append([]string{"-Dmaven.multiModuleProjectDirectory=" + h.base}, args...)
	if got := lines(res.Stdout); !slices.Equal(got, want) {
		t.Errorf("child argv =\n%q\nwant\n%q", got, want)
	}
	if res.Selection.Kind != toolchain.KindSystem {
		t.Errorf("Selection.Kind = %v, want system", res.Selection.Kind)
	}
	if res.Argv[0] != filepath.Join(h.bin, "mvn") {
		t.Errorf("Argv[0] = %q", res.Argv[0])
	}
	if !strings.Contains(h.out.String(), "; rm -rf /") {
		t.Error("stdout should be written to the output writer")
	}
	if res.Hint != 0 {
		t.Errorf("Hint = %d, want 0 on success", res.Hint)
	}
}

func TestExecute_BatchEcho(t *testing.T) {
	t.Parallel()

	h := newHarness(t).withJava(t).withMaven(t, "exit 0")
	h.cfg.BatchEcho = "On"

	res := h.engine().Execute(context.Background(), []string{"package"})
	if got, want := lines(h.out.String())[0], strings.Join(res.Argv, " "); got != want {
		t.Errorf("echoed %q, want %q", got, want)
	}
}

func TestExecute_NotRecognizedHint(t *testing.T) {
	t.Parallel()

	h := newHarness(t).withJava(t).withMaven(t,
		`echo "'mvn' is not recognized as an internal or external command," >&2; exit 1`)

	res := h.engine().Execute(context.Background(), nil)
	if res.Hint != issue.MavenNotFoundId {
		t.Errorf("Hint = %d, want MavenNotFoundId", res.Hint)
	}
	if !strings.Contains(h.logs.String(), "not recognized") {
		t.Errorf("stderr should be logged, got %q", h.logs.String())
	}
}

func TestExecute_FallbackCannotStart(t *testing.T) {
	// Modifies the process PATH, so it cannot run in parallel.
	h := newHarness(t).withJava(t)
	t.Setenv("PATH", t.TempDir())

	res := h.engine().Execute(context.Background(), []string{"compile"})

	if res.Selection.Kind != toolchain.KindFallback {
		t.Fatalf("Selection.Kind = %v, want fallback", res.Selection.Kind)
	}
	if res.Success() {
		t.Fatal("Execute() should fail")
	}
	if !errors.Is(res.Err, ErrStartFailed) {
		t.Errorf("Err = %v, want ErrStartFailed", res.Err)
	}
	var se *StartError
	if !errors.As(res.Err, &se) || se.Kind != toolchain.KindFallback {
		t.Errorf("Err = %#v, want *StartError for fallback", res.Err)
	}
	if res.Hint != issue.MavenNotFoundId {
		t.Errorf("Hint = %d, want MavenNotFoundId", res.Hint)
	}
	if !strings.Contains(h.out.String(), "Maven not found") {
		t.Errorf("output = %q", h.out.String())
	}
}

func TestExecute_StderrOnSuccessIsWarning(t *testing.T) {
	t.Parallel()

	h := newHarness(t).withJava(t).withMaven(t, `echo "deprecated flag" >&2`)

	res := h.engine().Execute(context.Background(), nil)
	if !res.Success() {
		t.Fatalf("Execute() failed: %+v", res)
	}
	if res.Stderr != "deprecated flag\n" {
		t.Errorf("Stderr = %q", res.Stderr)
	}
	if !strings.Contains(h.logs.String(), "WARN") || !strings.Contains(h.logs.String(), "deprecated flag") {
		t.Errorf("logs = %q, want stderr as a warning", h.logs.String())
	}
}

func TestExecute_StderrOnFailureIsWarning(t *testing.T) {
	t.Parallel()

	h := newHarness(t).withJava(t).withMaven(t, `echo "compilation error" >&2; exit 2`)

	res := h.engine().Execute(context.Background(), nil)
	if res.Success() {
		t.Fatal("Execute() should fail")
	}

	var stderrLine, summaryLine string
	for _, line := range lines(h.logs.String()) {
		switch {
		case strings.Contains(line, "compilation error"):
			stderrLine = line
		case strings.Contains(line, "Maven command failed"):
			summaryLine = line
		}
	}
	if !strings.Contains(stderrLine, "WARN") {
		t.Errorf("stderr log line = %q, want WARN level", stderrLine)
	}
	if !strings.Contains(summaryLine, "ERRO") {
		t.Errorf("failure log line = %q, want ERROR level", summaryLine)
	}
}

func TestExecute_ChildEnvironmentFromSnapshot(t *testing.T) {
	t.Parallel()

	h := newHarness(t).withJava(t).withMaven(t, `echo "opts=$MAVEN_OPTS"; echo "only=$SNAPSHOT_ONLY"; echo "home=${HOME-unset}"`)
	h.cfg.Environ = append(h.cfg.Environ, "SNAPSHOT_ONLY=yes", "MAVEN_OPTS=-Xmx1g")
	h.cfg.MavenOpts = "-Xmx2g"

	res := h.engine().Execute(context.Background(), nil)
	if !res.Success() {
		t.Fatalf("Execute() failed: %+v", res)
	}
	want := []string{"opts=-Xmx2g", "only=yes", "home=unset"}
	if got := lines(res.Stdout); !slices.Equal(got, want) {
		t.Errorf("child saw %q, want %q", got, want)
	}
}

func TestExecute_BatchPause(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		interactive bool
		wantPrompt  bool
	}{
		{name: "interactive", interactive: true, wantPrompt: true},
		{name: "protocol", interactive: false, wantPrompt: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t).withJava(t).withMaven(t, "exit 0")
			h.cfg.BatchPause = config.SwitchOn

			h.engine(WithInteractive(tt.interactive), WithInput(strings.NewReader("\n"))).
				Execute(context.Background(), nil)

			if got := strings.Contains(h.out.String(), "Press Enter to continue..."); got != tt.wantPrompt {
				t.Errorf("prompt shown = %v, want %v", got, tt.wantPrompt)
			}
		})
	}
}

func TestExecute_Serialized(t *testing.T) {
	t.Parallel()

	// The fake build fails if another build holds the lock directory.
	h := newHarness(t).withJava(t).withMaven(t, "mkdir lock || exit 9; sleep 0.05; rmdir lock")
	e := h.engine()

	var wg sync.WaitGroup
	results := make([]*Result, 4)
	for i := range results {
		wg.Go(func() {
			results[i] = e.Execute(context.Background(), nil)
		})
	}
	wg.Wait()

	ids := make(map[string]bool)
	for i, res := range results {
		if !res.Success() {
			t.Errorf("build %d failed with exit code %d; builds overlapped", i, res.ExitCode)
		}
		ids[res.ExecutionID] = true
	}
	if len(ids) != len(results) {
		t.Errorf("execution IDs not unique: %v", ids)
	}
}

type failingBaseDir struct{ err error }

func (f failingBaseDir) Resolve() (string, error) { return "", f.err }

func TestExecute_BaseDirError(t *testing.T) {
	t.Parallel()

	h := newHarness(t).withJava(t).withMaven(t, "exit 0")
	boom := errors.New("cwd removed")

	res := h.engine(WithBaseDirResolver(failingBaseDir{err: boom})).Execute(context.Background(), nil)
	if !errors.Is(res.Err, boom) || res.Success() {
		t.Errorf("Err = %v, want %v", res.Err, boom)
	}
}

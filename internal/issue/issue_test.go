// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"strings"
	"testing"
)

func TestValues_OrderedAndComplete(t *testing.T) {
	t.Parallel()

	values := Values()
	if len(values) != len(issues) {
		t.Fatalf("len(Values()) = %d, want %d", len(values), len(issues))
	}
	for i, v := range values {
		if v.Id() != Id(i+1) {
			t.Errorf("Values()[%d].Id() = %d, want %d", i, v.Id(), i+1)
		}
		if v.Summary() == "" {
			t.Errorf("issue %d has an empty summary", v.Id())
		}
		if v.MarkdownMsg() == "" {
			t.Errorf("issue %d has an empty markdown message", v.Id())
		}
	}
}

func TestGet_Unknown(t *testing.T) {
	t.Parallel()

	if got := Get(0); got != nil {
		t.Errorf("Get(0) = %v, want nil", got)
	}
}

func TestJavaNotFound_Summary(t *testing.T) {
	t.Parallel()

	want := "ERROR: Java not found. Please install Java or set JAVA_HOME."
	if got := Get(JavaNotFoundId).Summary(); got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
}

func TestIssue_DocLinksIsClone(t *testing.T) {
	t.Parallel()

	links := Get(MavenNotFoundId).DocLinks()
	if len(links) == 0 {
		t.Fatal("MavenNotFound should have doc links")
	}
	links[0] = "modified"
	if Get(MavenNotFoundId).DocLinks()[0] == "modified" {
		t.Error("DocLinks() should return a copy")
	}
}

func TestIssue_Render(t *testing.T) {
	// Replaces the package-level renderer.
	original := render
	t.Cleanup(func() { render = original })

	var gotIn string
	render = func(in, _ string) (string, error) {
		gotIn = in
		return "rendered", nil
	}

	out, err := Get(WrapperProvisionFailedId).Render("dark")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if out != "rendered" {
		t.Errorf("Render() = %q, want %q", out, "rendered")
	}
	if !strings.Contains(gotIn, "Failed to provision the Maven wrapper") {
		t.Errorf("renderer input missing title: %q", gotIn)
	}
	if !strings.Contains(gotIn, "See also") || !strings.Contains(gotIn, "https://maven.apache.org/wrapper/") {
		t.Errorf("renderer input missing doc links: %q", gotIn)
	}

	render = func(string, string) (string, error) { return "", errors.New("boom") }
	if _, err := Get(BuildFailedId).Render("dark"); err == nil {
		t.Error("Render() should propagate renderer errors")
	}
}

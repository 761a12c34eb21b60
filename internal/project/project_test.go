// SPDX-License-Identifier: MPL-2.0

package project

import (
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/invowk/mvnmcp/internal/testutil"
)

type staticBase struct {
	dir string
	err error
}

func (s staticBase) Resolve() (string, error) { return s.dir, s.err }

const multiModulePom = `<?xml version="1.0" encoding="UTF-8"?>
<project xmlns="http://maven.apache.org/POM/4.0.0">
  <modelVersion>4.0.0</modelVersion>
  <groupId>com.example</groupId>
  <artifactId>parent</artifactId>
  <modules>
    <module>core</module>
    <module> api </module>
    <module></module>
  </modules>
</project>
`

func TestRead_Project(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	got, err := NewReader(staticBase{dir: dir}).Read(URIProject)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	want := "Maven project information:\nBase directory: " + dir + "\n"
	if got != want {
		t.Errorf("Read() = %q, want %q", got, want)
	}
}

func TestRead_Pom(t *testing.T) {
	t.Parallel()

	t.Run("present", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		testutil.MustWriteFile(t, filepath.Join(dir, PomFile), multiModulePom)

		got, err := NewReader(staticBase{dir: dir}).Read(URIPom)
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if got != multiModulePom {
			t.Errorf("Read() = %q, want the POM contents", got)
		}
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()
		got, err := NewReader(staticBase{dir: t.TempDir()}).Read(URIPom)
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if got != "POM file not found. Make sure this is a Maven project." {
			t.Errorf("Read() = %q", got)
		}
	})

	t.Run("unreadable", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		testutil.MustMkdirAll(t, filepath.Join(dir, PomFile), 0o755)

		got, err := NewReader(staticBase{dir: dir}).Read(URIPom)
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if !strings.HasPrefix(got, "Error reading POM file: ") {
			t.Errorf("Read() = %q, want an error message", got)
		}
	})
}

func TestRead_Modules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup func(t *testing.T, dir string)
		want  string
	}{
		{
			name:  "empty project",
			setup: func(*testing.T, string) {},
			want:  "Maven project modules:\n",
		},
		{
			name: "source sets",
			setup: func(t *testing.T, dir string) {
				testutil.MustMkdirAll(t, filepath.Join(dir, "src", "main"), 0o755)
				testutil.MustMkdirAll(t, filepath.Join(dir, "src", "test"), 0o755)
			},
			want: "Maven project modules:\nmain\ntest",
		},
		{
			name: "test only",
			setup: func(t *testing.T, dir string) {
				testutil.MustMkdirAll(t, filepath.Join(dir, "src", "test"), 0o755)
			},
			want: "Maven project modules:\ntest",
		},
		{
			name: "pom modules not listed",
			setup: func(t *testing.T, dir string) {
				testutil.MustMkdirAll(t, filepath.Join(dir, "src", "main"), 0o755)
				testutil.MustWriteFile(t, filepath.Join(dir, PomFile), multiModulePom)
			},
			want: "Maven project modules:\nmain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			tt.setup(t, dir)

			got, err := NewReader(staticBase{dir: dir}).Read(URIModules)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Read() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRead_UnknownURI(t *testing.T) {
	t.Parallel()

	_, err := NewReader(staticBase{dir: t.TempDir()}).Read("maven://settings")
	if !errors.Is(err, ErrUnknownResource) {
		t.Fatalf("Read() error = %v, want ErrUnknownResource", err)
	}
	if err.Error() != "Invalid URI scheme: maven://settings" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestReader_BaseDirError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	r := NewReader(staticBase{err: boom})
	if _, err := r.Read(URIProject); !errors.Is(err, boom) {
		t.Errorf("Read() error = %v, want wrapped boom", err)
	}
	if _, err := r.List(); !errors.Is(err, boom) {
		t.Errorf("List() error = %v, want wrapped boom", err)
	}
}

func TestList(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	got, err := NewReader(staticBase{dir: dir}).List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	uris := make([]string, 0, len(got))
	for _, r := range got {
		uris = append(uris, r.URI)
	}
	if want := []string{URIProject, URIPom, URIModules}; !slices.Equal(uris, want) {
		t.Errorf("URIs = %q, want %q", uris, want)
	}
	if got[0].Description != "Maven project at "+dir {
		t.Errorf("project description = %q", got[0].Description)
	}
	if got[1].MIMEType != "text/xml" {
		t.Errorf("pom MIME type = %q", got[1].MIMEType)
	}
}

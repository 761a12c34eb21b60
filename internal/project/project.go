// SPDX-License-Identifier: MPL-2.0

// Package project exposes read-only views of the Maven project in the base
// directory: a summary, the POM, and the module list.
package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/invowk/mvnmcp/internal/issue"
	"github.com/invowk/mvnmcp/internal/platform"
)

const (
	URIProject = "maven://project"
	URIPom     = "maven://pom"
	URIModules = "maven://modules"

	// PomFile is the project descriptor looked up in the base directory.
	PomFile = "pom.xml"
)

// ErrUnknownResource is the sentinel error wrapped by UnknownResourceError.
var ErrUnknownResource = errors.New("unknown resource")

type (
	// BaseDirResolver supplies the project root. *basedir.Resolver satisfies it.
	BaseDirResolver interface {
		Resolve() (string, error)
	}

	// Resource describes one readable resource.
	Resource struct {
		URI         string
		Name        string
		Description string
		MIMEType    string
	}

	// UnknownResourceError is returned by Read for a URI it does not serve.
	UnknownResourceError struct {
		URI string
	}

	// Reader serves the project resources.
	Reader struct {
		baseDir BaseDirResolver
	}
)

func (e *UnknownResourceError) Error() string {
	return "Invalid URI scheme: " + e.URI
}

func (e *UnknownResourceError) Unwrap() error { return ErrUnknownResource }

// NewReader creates a Reader rooted at the resolver's base directory.
func NewReader(baseDir BaseDirResolver) *Reader {
	return &Reader{baseDir: baseDir}
}

// List returns the resources in a stable order.
func (r *Reader) List() ([]Resource, error) {
	base, err := r.baseDir.Resolve()
	if err != nil {
		return nil, fmt.Errorf("resolve base directory: %w", err)
	}
	return Resources(base), nil
}

// Resources returns the resource descriptors for base.
func Resources(base string) []Resource {
	return []Resource{
		{
			URI:         URIProject,
			Name:        "Maven Project",
			Description: "Maven project at " + base,
			MIMEType:    "text/plain",
		},
		{
			URI:         URIPom,
			Name:        "Maven POM",
			Description: "Project Object Model (POM) file",
			MIMEType:    "text/xml",
		},
		{
			URI:         URIModules,
			Name:        "Maven Modules",
			Description: "Maven project modules",
			MIMEType:    "text/plain",
		},
	}
}

// Read returns the text of the resource at uri. Problems reading the POM are
// reported in the returned text; errors are reserved for unknown URIs and base
// directory failures.
func (r *Reader) Read(uri string) (string, error) {
	switch uri {
	case URIProject, URIPom, URIModules:
	default:
		return "", &UnknownResourceError{URI: uri}
	}

	base, err := r.baseDir.Resolve()
	if err != nil {
		return "", fmt.Errorf("resolve base directory: %w", err)
	}

	switch uri {
	case URIProject:
		return Summary(base), nil
	case URIPom:
		return Pom(base), nil
	default:
		return "Maven project modules:\n" + strings.Join(Modules(base), "\n"), nil
	}
}

// Summary renders the project information text.
func Summary(base string) string {
	return "Maven project information:\nBase directory: " + base + "\n"
}

// Pom returns the contents of base/pom.xml or a message explaining why it
// could not be read.
func Pom(base string) string {
	data, err := os.ReadFile(filepath.Join(base, PomFile))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return issue.Get(issue.PomNotFoundId).Summary()
	case err != nil:
		return fmt.Sprintf("Error reading POM file: %v", err)
	default:
		return string(data)
	}
}

// Modules lists "main" and "test" when src/main and src/test exist. The POM
// is not parsed.
func Modules(base string) []string {
	var modules []string
	for _, name := range []string{"main", "test"} {
		if platform.IsDir(filepath.Join(base, "src", name)) {
			modules = append(modules, name)
		}
	}
	return modules
}

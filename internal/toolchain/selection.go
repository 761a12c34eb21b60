// SPDX-License-Identifier: MPL-2.0

package toolchain

import "strings"

const (
	// KindMavenHome runs <MavenHome>/bin/mvn.
	KindMavenHome Kind = iota + 1
	// KindWrapper runs java with the wrapper launcher jar on the classpath.
	KindWrapper
	// KindSystem runs mvn found on the search path.
	KindSystem
	// KindFallback runs a bare mvn that was not found; it is expected to fail.
	KindFallback
)

// ProjectDirProperty is the system property naming the Maven base directory.
const ProjectDirProperty = "maven.multiModuleProjectDirectory"

type (
	// Kind tags how a Selection starts Maven.
	Kind int

	// Selection is one resolved way to start Maven. It is rebuilt for every
	// resolution and never cached.
	Selection struct {
		Kind    Kind
		Program string
		Args    []string
		// Skipped explains why earlier resolution steps were not used.
		Skipped []error
	}
)

func (k Kind) String() string {
	switch k {
	case KindMavenHome:
		return "maven-home"
	case KindWrapper:
		return "wrapper"
	case KindSystem:
		return "system"
	case KindFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Argv returns the program, the selection's arguments and extra, in order,
// as a new slice.
func (s Selection) Argv(extra ...string) []string {
	argv := make([]string, 0, 1+len(s.Args)+len(extra))
	argv = append(argv, s.Program)
	argv = append(argv, s.Args...)
	return append(argv, extra...)
}

// String renders the selection as a command line for display only.
func (s Selection) String() string {
	return strings.Join(s.Argv(), " ")
}

func projectDirArg(baseDir string) string {
	return "-D" + ProjectDirProperty + "=" + baseDir
}

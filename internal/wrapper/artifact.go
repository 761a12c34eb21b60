// SPDX-License-Identifier: MPL-2.0

package wrapper

import (
	"path/filepath"

	"github.com/invowk/mvnmcp/internal/platform"
)

const (
	// DirName is the wrapper directory relative to the base directory.
	DirName = ".mvn/wrapper"
	// JarName is the launcher jar file name.
	JarName = "maven-wrapper.jar"
	// PropertiesName is the launcher properties file name.
	PropertiesName = "maven-wrapper.properties"
	// MainClass is the launcher entry point.
	MainClass = "org.apache.maven.wrapper.MavenWrapperMain"
)

// Artifact locates the wrapper files of one project.
type Artifact struct {
	Dir            string
	JarPath        string
	PropertiesPath string
}

// ArtifactFor returns the wrapper artifact paths under baseDir.
func ArtifactFor(baseDir string) Artifact {
	dir := filepath.Join(baseDir, filepath.FromSlash(DirName))
	return Artifact{
		Dir:            dir,
		JarPath:        filepath.Join(dir, JarName),
		PropertiesPath: filepath.Join(dir, PropertiesName),
	}
}

// HasJar reports whether the launcher jar exists.
func (a Artifact) HasJar() bool {
	return platform.IsFile(a.JarPath)
}

// HasProperties reports whether the properties file exists.
func (a Artifact) HasProperties() bool {
	return platform.IsFile(a.PropertiesPath)
}

// Complete reports whether both files exist.
func (a Artifact) Complete() bool {
	return a.HasJar() && a.HasProperties()
}

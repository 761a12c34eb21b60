// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

// Id identifies a catalog entry. The zero value means "no issue".
type Id int

const (
	JavaNotFoundId Id = iota + 1
	MavenNotFoundId
	BuildFailedId
	WrapperProvisionFailedId
	PomNotFoundId
	ConfigLoadFailedId
	SSHServerStartFailedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	summary  string      // one-line plain text form for non-terminal output
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
}

func (i *Issue) Id() Id {
	return i.id
}

// Summary returns the plain text line printed next to build output.
func (i *Issue) Summary() string {
	return i.summary
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 {
		extraMd += "\n\n## See also\n"
		for _, link := range i.docLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	javaNotFoundIssue = &Issue{
		id:      JavaNotFoundId,
		summary: "ERROR: Java not found. Please install Java or set JAVA_HOME.",
		mdMsg: `
# Java not found!

Maven needs a Java runtime, and none was found in JAVA_HOME or on your PATH.

## Things you can try:
- Install a JDK (17 or newer is a safe choice)
- Point JAVA_HOME at it:
~~~
$ export JAVA_HOME=/usr/lib/jvm/temurin-17
~~~
- Or make sure ` + "`java`" + ` is on your PATH:
~~~
$ java -version
~~~`,
		docLinks: []HttpLink{"https://adoptium.net/installation/"},
	}

	mavenNotFoundIssue = &Issue{
		id:      MavenNotFoundId,
		summary: "Maven not found. Please install Maven, set M2_HOME, or provide a Maven wrapper (.mvn/wrapper/maven-wrapper.jar).",
		mdMsg: `
# Maven not found!

No Maven installation could be started. The following were tried, in order:

1. ` + "`$M2_HOME/bin/mvn`" + `
2. The Maven wrapper jar in ` + "`.mvn/wrapper/`" + `
3. ` + "`mvn`" + ` on your PATH

## Things you can try:
- Install Maven and make sure ` + "`mvn`" + ` is on your PATH
- Set M2_HOME to an existing Maven installation
- Allow the wrapper jar to be downloaded, or copy it into ` + "`.mvn/wrapper/maven-wrapper.jar`",
		docLinks: []HttpLink{"https://maven.apache.org/install.html"},
	}

	buildFailedIssue = &Issue{
		id:      BuildFailedId,
		summary: "Maven build failed. Check logs for details.",
		mdMsg: `
# Maven build failed!

Maven started but exited with a non-zero status.

## Things you can try:
- Read the Maven output above for the failing goal
- Re-run with debug output:
~~~
$ mvnmcp -- -X <goals>
~~~`,
	}

	wrapperProvisionFailedIssue = &Issue{
		id:      WrapperProvisionFailedId,
		summary: "Failed to provision the Maven wrapper.",
		mdMsg: `
# Failed to provision the Maven wrapper!

The wrapper jar could not be downloaded into ` + "`.mvn/wrapper/`" + `.

## Things you can try:
- Check your network connection and proxy settings
- Check ` + "`wrapperUrl`" + ` and ` + "`wrapperSha256Sum`" + ` in ` + "`.mvn/wrapper/maven-wrapper.properties`" + `
- Download the jar manually into ` + "`.mvn/wrapper/maven-wrapper.jar`",
		docLinks: []HttpLink{"https://maven.apache.org/wrapper/"},
	}

	pomNotFoundIssue = &Issue{
		id:      PomNotFoundId,
		summary: "POM file not found. Make sure this is a Maven project.",
		mdMsg: `
# POM file not found!

There is no ` + "`pom.xml`" + ` in the Maven base directory.

## Things you can try:
- Run mvnmcp from inside your project, or pass ` + "`--base-dir`" + `
- Set MAVEN_BASEDIR to the project root
- Create a ` + "`.mvn`" + ` directory at the project root so it can be found from subdirectories`,
	}

	configLoadFailedIssue = &Issue{
		id:      ConfigLoadFailedId,
		summary: "Failed to load configuration.",
		mdMsg: `
# Failed to load configuration!

The configuration file could not be read or does not match the schema.

## Things you can try:
- Check the file for CUE syntax errors
- Show where mvnmcp looks for it:
~~~
$ mvnmcp config path
~~~`,
	}

	sshServerStartFailedIssue = &Issue{
		id:      SSHServerStartFailedId,
		summary: "Failed to start the SSH server.",
		mdMsg: `
# Failed to start the SSH server!

## Things you can try:
- Pick another port with ` + "`--ssh-port`" + ` (0 selects a free one)
- Bind to a different address with ` + "`--ssh-host`",
	}

	issues = map[Id]*Issue{
		javaNotFoundIssue.Id():           javaNotFoundIssue,
		mavenNotFoundIssue.Id():          mavenNotFoundIssue,
		buildFailedIssue.Id():            buildFailedIssue,
		wrapperProvisionFailedIssue.Id(): wrapperProvisionFailedIssue,
		pomNotFoundIssue.Id():            pomNotFoundIssue,
		configLoadFailedIssue.Id():       configLoadFailedIssue,
		sshServerStartFailedIssue.Id():   sshServerStartFailedIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	values := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		values = append(values, i)
	}
	slices.SortFunc(values, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return values
}

// Get returns the catalog entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}

// SPDX-License-Identifier: MPL-2.0

package config

import (
	"strings"
)

const (
	// SwitchOn enables a batch flag.
	SwitchOn Switch = "on"
	// SwitchOff disables a batch flag.
	SwitchOff Switch = "off"

	// DefaultWrapperURL is the pinned Maven wrapper launcher jar.
	DefaultWrapperURL = "https://repo.maven.apache.org/maven2/org/apache/maven/wrapper/maven-wrapper/3.2.0/maven-wrapper-3.2.0.jar"
	// DefaultDistributionURL is the pinned Maven distribution the wrapper installs.
	DefaultDistributionURL = "https://repo.maven.apache.org/maven2/org/apache/maven/apache-maven/3.9.6/apache-maven-3.9.6-bin.zip"

	// DefaultServerHost is the SSH listen address.
	DefaultServerHost = "127.0.0.1"
	// DefaultServerPort is the SSH listen port. Zero picks a free port.
	DefaultServerPort = 0
)

type (
	// Switch is a batch-file style on/off flag. Only "on", compared
	// case-insensitively, enables it.
	Switch string

	// WrapperConfig configures the Maven wrapper provisioner.
	WrapperConfig struct {
		// WrapperURL is the launcher jar download URL, used when the
		// properties file does not name one.
		WrapperURL string `json:"wrapper_url" mapstructure:"wrapper_url"`
		// DistributionURL is written into newly created properties files.
		DistributionURL string `json:"distribution_url" mapstructure:"distribution_url"`
		// SHA256 is the expected launcher jar checksum. Empty disables verification
		// unless the properties file sets wrapperSha256Sum.
		SHA256 string `json:"sha256,omitempty" mapstructure:"sha256"`
	}

	// LogConfig configures logging.
	LogConfig struct {
		Level string `json:"level" mapstructure:"level"`
	}

	// ServerConfig configures the optional SSH transport.
	ServerConfig struct {
		Host  string `json:"host" mapstructure:"host"`
		Port  int    `json:"port" mapstructure:"port"`
		Token string `json:"token,omitempty" mapstructure:"token"`
	}

	// Config is the environment snapshot. It is read once and then passed by
	// value or pointer into the resolvers and the engine; nothing mutates it
	// after Load returns.
	Config struct {
		// BaseDir is the explicit base directory override (MAVEN_BASEDIR).
		BaseDir string `json:"base_dir,omitempty" mapstructure:"base_dir"`
		// MavenHome is the Maven installation directory (M2_HOME, MAVEN_HOME).
		MavenHome string `json:"maven_home,omitempty" mapstructure:"maven_home"`
		// JavaHome is the Java installation directory (JAVA_HOME).
		JavaHome string `json:"java_home,omitempty" mapstructure:"java_home"`
		// MavenOpts are extra JVM options (MAVEN_OPTS).
		MavenOpts string `json:"maven_opts,omitempty" mapstructure:"maven_opts"`
		// MavenDebugOpts are extra JVM debug options (MAVEN_DEBUG_OPTS).
		MavenDebugOpts string `json:"maven_debug_opts,omitempty" mapstructure:"maven_debug_opts"`
		// BatchEcho echoes the command line before running (MAVEN_BATCH_ECHO).
		BatchEcho Switch `json:"batch_echo,omitempty" mapstructure:"batch_echo"`
		// BatchPause waits for Enter after a build (MAVEN_BATCH_PAUSE).
		BatchPause Switch `json:"batch_pause,omitempty" mapstructure:"batch_pause"`

		Wrapper WrapperConfig `json:"wrapper" mapstructure:"wrapper"`
		Log     LogConfig     `json:"log" mapstructure:"log"`
		Server  ServerConfig  `json:"server" mapstructure:"server"`

		// SkipRC reports whether MAVEN_SKIP_RC suppressed the mavenrc files.
		SkipRC bool `json:"-" mapstructure:"-"`
		// SearchPath is PATH as captured at load time.
		SearchPath string `json:"-" mapstructure:"-"`
		// PathExt is PATHEXT as captured at load time (Windows only).
		PathExt string `json:"-" mapstructure:"-"`
		// Source is the config file that was loaded, if any.
		Source string `json:"-" mapstructure:"-"`
		// Environ is the process environment captured at load time, in
		// os.Environ form.
		Environ []string `json:"-" mapstructure:"-"`
	}
)

// Enabled reports whether the switch is on.
func (s Switch) Enabled() bool {
	return strings.EqualFold(strings.TrimSpace(string(s)), string(SwitchOn))
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchEcho:  SwitchOff,
		BatchPause: SwitchOff,
		Wrapper: WrapperConfig{
			WrapperURL:      DefaultWrapperURL,
			DistributionURL: DefaultDistributionURL,
		},
		Log: LogConfig{Level: "info"},
		Server: ServerConfig{
			Host: DefaultServerHost,
			Port: DefaultServerPort,
		},
	}
}

// WithBaseDir returns a copy of the snapshot whose base directory override is
// dir. An empty dir keeps the snapshot's own value.
func (c *Config) WithBaseDir(dir string) *Config {
	clone := *c
	if dir != "" {
		clone.BaseDir = dir
	}
	return &clone
}

// Getenv returns the value of name in the captured environment, or "".
func (c *Config) Getenv(name string) string {
	prefix := name + "="
	for i := len(c.Environ) - 1; i >= 0; i-- {
		if v, ok := strings.CutPrefix(c.Environ[i], prefix); ok {
			return v
		}
	}
	return ""
}

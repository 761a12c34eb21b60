// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/invowk/mvnmcp/internal/issue"
	"github.com/invowk/mvnmcp/internal/platform"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "mvnmcp"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"

	// maxConfigFileSize bounds the config file read into memory.
	maxConfigFileSize = 1 << 20
)

//go:embed config_schema.cue
var configSchema string

// envBindings maps config keys to the environment variables that set them.
// When a key has several variables the first one present wins.
var envBindings = []struct {
	key  string
	vars []string
}{
	{key: "base_dir", vars: []string{"MAVEN_BASEDIR"}},
	{key: "maven_home", vars: []string{"M2_HOME", "MAVEN_HOME"}},
	{key: "java_home", vars: []string{"JAVA_HOME"}},
	{key: "maven_opts", vars: []string{"MAVEN_OPTS"}},
	{key: "maven_debug_opts", vars: []string{"MAVEN_DEBUG_OPTS"}},
	{key: "batch_echo", vars: []string{"MAVEN_BATCH_ECHO"}},
	{key: "batch_pause", vars: []string{"MAVEN_BATCH_PAUSE"}},
	{key: "log.level", vars: []string{"MVNMCP_LOG_LEVEL"}},
	{key: "server.token", vars: []string{"MVNMCP_TOKEN"}},
}

// ConfigDir returns the mvnmcp configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case platform.Windows:
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case platform.Darwin:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// FilePath returns the config file Load would read for opts, whether or not
// it exists.
func FilePath(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		return opts.ConfigFilePath, nil
	}
	dir := opts.ConfigDirPath
	if dir == "" {
		var err error
		if dir, err = ConfigDir(); err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, ConfigFileName+"."+ConfigFileExt), nil
}

// loadWithOptions performs option-driven config loading without touching any
// package-level state.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("batch_echo", defaults.BatchEcho)
	v.SetDefault("batch_pause", defaults.BatchPause)
	v.SetDefault("wrapper.wrapper_url", defaults.Wrapper.WrapperURL)
	v.SetDefault("wrapper.distribution_url", defaults.Wrapper.DistributionURL)
	v.SetDefault("wrapper.sha256", defaults.Wrapper.SHA256)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("server.host", defaults.Server.Host)
	v.SetDefault("server.port", defaults.Server.Port)
	v.SetDefault("server.token", defaults.Server.Token)

	resolvedPath := ""
	cfgPath, err := FilePath(opts)
	if err != nil {
		return nil, err
	}
	switch {
	case fileExists(cfgPath):
		if err := loadCUEIntoViper(v, cfgPath); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(cfgPath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError()
		}
		resolvedPath = cfgPath
	case opts.ConfigFilePath != "":
		return nil, issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(opts.ConfigFilePath).
			WithSuggestion("Verify the file path is correct").
			WithSuggestion("Use 'mvnmcp config show' to see the default configuration").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
			BuildError()
	}

	environ := slices.Clone(opts.environ())
	env := parseEnviron(environ)
	_, skipRC := lookupNonEmpty(env, "MAVEN_SKIP_RC")

	vars := make(map[string]string)
	if !skipRC {
		rc, err := readRCFiles(ctx, opts.rcFiles(), environ)
		if err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("read mavenrc").
				WithSuggestion("Set MAVEN_SKIP_RC=1 to ignore mavenrc files").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError()
		}
		for k, val := range rc {
			vars[k] = val
		}
	}
	for k, val := range env {
		vars[k] = val
	}

	for _, b := range envBindings {
		for _, name := range b.vars {
			if val, ok := lookupNonEmpty(vars, name); ok {
				v.Set(b.key, val)
				break
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.SkipRC = skipRC
	cfg.SearchPath = env["PATH"]
	cfg.PathExt = env["PATHEXT"]
	cfg.Source = resolvedPath
	cfg.Environ = environ

	return &cfg, nil
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if len(data) > maxConfigFileSize {
		return fmt.Errorf("%s: file size %d exceeds limit of %d bytes", path, len(data), maxConfigFileSize)
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return formatCUEError(userValue.Err(), path)
	}

	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return formatCUEError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return formatCUEError(err, path)
	}

	// Merge into Viper (preserves defaults, allows env overrides)
	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

func formatCUEError(err error, path string) error {
	details := strings.TrimSpace(cueerrors.Details(err, nil))
	return fmt.Errorf("%s: invalid configuration:\n%s", path, details)
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// GenerateCUE generates a CUE representation of the configuration.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// mvnmcp configuration file\n\n")

	writeOptional := func(indent, key, value string) {
		if value != "" {
			fmt.Fprintf(&sb, "%s%s: %q\n", indent, key, value)
		}
	}

	writeOptional("", "base_dir", cfg.BaseDir)
	writeOptional("", "maven_home", cfg.MavenHome)
	writeOptional("", "java_home", cfg.JavaHome)
	writeOptional("", "maven_opts", cfg.MavenOpts)
	writeOptional("", "maven_debug_opts", cfg.MavenDebugOpts)
	writeOptional("", "batch_echo", string(cfg.BatchEcho))
	writeOptional("", "batch_pause", string(cfg.BatchPause))

	sb.WriteString("\nwrapper: {\n")
	writeOptional("\t", "wrapper_url", cfg.Wrapper.WrapperURL)
	writeOptional("\t", "distribution_url", cfg.Wrapper.DistributionURL)
	writeOptional("\t", "sha256", cfg.Wrapper.SHA256)
	sb.WriteString("}\n")

	sb.WriteString("\nlog: {\n")
	writeOptional("\t", "level", cfg.Log.Level)
	sb.WriteString("}\n")

	sb.WriteString("\nserver: {\n")
	writeOptional("\t", "host", cfg.Server.Host)
	fmt.Fprintf(&sb, "\tport: %d\n", cfg.Server.Port)
	if cfg.Server.Token != "" {
		sb.WriteString("\t// token is set but not shown\n")
	}
	sb.WriteString("}\n")

	return sb.String()
}

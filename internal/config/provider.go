// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"os"
)

// LoadOptions defines explicit configuration loading inputs.
type LoadOptions struct {
	// ConfigFilePath forces loading from a specific config file when set.
	// A missing forced file is an error; a missing default file is not.
	ConfigFilePath string
	// ConfigDirPath overrides the config directory lookup when set.
	ConfigDirPath string
	// Environ is the environment in os.Environ form. Nil means os.Environ().
	Environ []string
	// RCFiles lists mavenrc files to read. Nil means DefaultRCFiles().
	RCFiles []string
}

// Provider loads configuration from explicit options.
type Provider interface {
	Load(ctx context.Context, opts LoadOptions) (*Config, error)
}

type fileProvider struct{}

// NewProvider creates a configuration provider.
func NewProvider() Provider {
	return &fileProvider{}
}

// Load reads configuration from the requested source.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	return loadWithOptions(ctx, opts)
}

func (o LoadOptions) environ() []string {
	if o.Environ == nil {
		return os.Environ()
	}
	return o.Environ
}

func (o LoadOptions) rcFiles() []string {
	if o.RCFiles == nil {
		return DefaultRCFiles()
	}
	return o.RCFiles
}

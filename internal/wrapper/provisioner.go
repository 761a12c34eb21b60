// SPDX-License-Identifier: MPL-2.0

package wrapper

import (
	"context"
	"os"

	"github.com/invowk/mvnmcp/internal/config"
	"github.com/invowk/mvnmcp/internal/issue"
	"github.com/invowk/mvnmcp/internal/logging"

	"github.com/charmbracelet/log"
)

type (
	// Provisioner materializes the wrapper artifact of a project.
	Provisioner struct {
		cfg        config.WrapperConfig
		downloader *Downloader
		logger     *log.Logger
	}

	// ProvisionerOption configures a Provisioner during construction.
	ProvisionerOption func(*Provisioner)
)

// WithDownloader replaces the default Downloader.
func WithDownloader(d *Downloader) ProvisionerOption {
	return func(p *Provisioner) {
		p.downloader = d
	}
}

// WithLogger sets the logger. Nil keeps log.Default().
func WithLogger(l *log.Logger) ProvisionerOption {
	return func(p *Provisioner) {
		p.logger = logging.OrDefault(l)
	}
}

// NewProvisioner creates a Provisioner. Empty URLs in cfg fall back to the
// pinned defaults.
func NewProvisioner(cfg config.WrapperConfig, opts ...ProvisionerOption) *Provisioner {
	if cfg.WrapperURL == "" {
		cfg.WrapperURL = config.DefaultWrapperURL
	}
	if cfg.DistributionURL == "" {
		cfg.DistributionURL = config.DefaultDistributionURL
	}
	p := &Provisioner{
		cfg:        cfg,
		downloader: NewDownloader(),
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ensure makes sure both wrapper files exist under baseDir and reports
// whether they do afterwards. Failures are logged, never returned. Existing
// files are never overwritten.
func (p *Provisioner) Ensure(ctx context.Context, baseDir string) bool {
	if err := p.Provision(ctx, baseDir); err != nil {
		p.logger.Error("failed to provision Maven wrapper", "base", baseDir, "error", err)
		return false
	}
	return true
}

// Provision is Ensure with the failure cause returned.
func (p *Provisioner) Provision(ctx context.Context, baseDir string) error {
	a := ArtifactFor(baseDir)

	if err := os.MkdirAll(a.Dir, 0o755); err != nil {
		return p.fail("create wrapper directory", a.Dir, err)
	}

	created, err := writePropertiesOnce(a.PropertiesPath, Properties{
		DistributionURL: p.cfg.DistributionURL,
		WrapperURL:      p.cfg.WrapperURL,
	})
	if err != nil {
		return p.fail("write wrapper properties", a.PropertiesPath, err)
	}
	if created {
		p.logger.Info("created Maven wrapper properties", "path", a.PropertiesPath)
	}

	if a.HasJar() {
		return nil
	}

	props, err := ReadProperties(a.PropertiesPath)
	if err != nil {
		return p.fail("read wrapper properties", a.PropertiesPath, err)
	}
	jarURL := props.WrapperURL
	if jarURL == "" {
		jarURL = p.cfg.WrapperURL
	}
	sum := props.WrapperSHA256
	if sum == "" {
		sum = p.cfg.SHA256
	}

	p.logger.Info("downloading Maven wrapper", "url", redactURL(jarURL))
	tmp, err := p.downloader.DownloadToTemp(ctx, jarURL, a.Dir)
	if err != nil {
		return p.fail("download wrapper jar", redactURL(jarURL), err)
	}
	renamed := false
	defer func() {
		if !renamed {
			_ = os.Remove(tmp)
		}
	}()

	if sum != "" {
		if err := VerifyFile(tmp, sum); err != nil {
			return p.fail("verify wrapper jar", redactURL(jarURL), err)
		}
	}

	if err := os.Rename(tmp, a.JarPath); err != nil {
		return p.fail("install wrapper jar", a.JarPath, err)
	}
	renamed = true

	p.logger.Info("downloaded Maven wrapper", "path", a.JarPath)
	return nil
}

func (p *Provisioner) fail(op, resource string, err error) error {
	return issue.NewErrorContext().
		WithOperation(op).
		WithResource(resource).
		WithIssue(issue.WrapperProvisionFailedId).
		Wrap(err).
		BuildError()
}

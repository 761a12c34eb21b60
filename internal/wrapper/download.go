// SPDX-License-Identifier: MPL-2.0

package wrapper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
)

// ErrDownloadFailed is wrapped by every Downloader error.
var ErrDownloadFailed = errors.New("download failed")

type (
	// Downloader fetches launcher jars over HTTP.
	Downloader struct {
		httpClient *http.Client
		userAgent  string
	}

	// DownloadError reports a failed download. It wraps ErrDownloadFailed.
	DownloadError struct {
		URL        string // redacted
		StatusCode int    // zero when no response was received
		Cause      error
	}

	// DownloaderOption configures a Downloader during construction.
	DownloaderOption func(*Downloader)
)

func (e *DownloadError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("downloading %s: unexpected status %d", e.URL, e.StatusCode)
	case e.Cause != nil:
		return fmt.Sprintf("downloading %s: %v", e.URL, e.Cause)
	default:
		return "downloading " + e.URL
	}
}

func (e *DownloadError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrDownloadFailed}
	}
	return []error{ErrDownloadFailed, e.Cause}
}

// WithHTTPClient sets a custom HTTP client, useful for tests or proxy configurations.
func WithHTTPClient(c *http.Client) DownloaderOption {
	return func(d *Downloader) {
		d.httpClient = c
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) DownloaderOption {
	return func(d *Downloader) {
		d.userAgent = ua
	}
}

// NewDownloader creates a Downloader using http.DefaultClient.
func NewDownloader(opts ...DownloaderOption) *Downloader {
	d := &Downloader{
		httpClient: http.DefaultClient,
		userAgent:  "mvnmcp/dev",
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DownloadToTemp downloads rawURL into a new temporary file in dir and
// returns its path. The caller owns the file. On error nothing is left behind.
func (d *Downloader) DownloadToTemp(ctx context.Context, rawURL, dir string) (_ string, err error) {
	redacted := redactURL(rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return "", &DownloadError{URL: redacted, Cause: err}
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", &DownloadError{URL: redacted, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }() // read-only HTTP response body

	if resp.StatusCode != http.StatusOK {
		return "", &DownloadError{URL: redacted, StatusCode: resp.StatusCode}
	}

	tmp, err := os.CreateTemp(dir, "maven-wrapper-*.jar.part")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if closeErr := tmp.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		return "", &DownloadError{URL: redacted, Cause: err}
	}

	return tmp.Name(), nil
}

// redactURL strips credentials, query parameters and fragments from a URL
// for safe inclusion in logs and error messages.
func redactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid-url>"
	}
	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

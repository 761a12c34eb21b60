// SPDX-License-Identifier: MPL-2.0

package wrapper

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/magiconair/properties"
)

const (
	keyDistributionURL = "distributionUrl"
	keyWrapperURL      = "wrapperUrl"
	keyWrapperSHA256   = "wrapperSha256Sum"
)

// Properties holds the keys of maven-wrapper.properties this package reads.
type Properties struct {
	DistributionURL string
	WrapperURL      string
	WrapperSHA256   string
}

// Render returns the file content for p.
func (p Properties) Render() string {
	return keyDistributionURL + "=" + p.DistributionURL + "\n" +
		keyWrapperURL + "=" + p.WrapperURL + "\n"
}

// ReadProperties parses a maven-wrapper.properties file.
func ReadProperties(path string) (Properties, error) {
	p, err := properties.LoadFile(path, properties.UTF8)
	if err != nil {
		return Properties{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Properties{
		DistributionURL: p.GetString(keyDistributionURL, ""),
		WrapperURL:      p.GetString(keyWrapperURL, ""),
		WrapperSHA256:   p.GetString(keyWrapperSHA256, ""),
	}, nil
}

// writePropertiesOnce creates path with content unless it already exists.
// It reports whether the file was created.
func writePropertiesOnce(path string, p Properties) (created bool, err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if _, err := f.WriteString(p.Render()); err != nil {
		return false, err
	}
	return true, nil
}

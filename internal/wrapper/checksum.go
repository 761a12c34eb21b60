// SPDX-License-Identifier: MPL-2.0

package wrapper

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrChecksumMismatch indicates the computed SHA256 hash does not match the expected hash.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// ChecksumError provides details about a checksum verification failure.
// It wraps ErrChecksumMismatch so callers can use errors.Is for classification.
type ChecksumError struct {
	Filename string
	Expected string
	Got      string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum verification failed for %s\nExpected: %s\nGot:      %s", e.Filename, e.Expected, e.Got)
}

// Unwrap returns ErrChecksumMismatch so callers can use errors.Is.
func (e *ChecksumError) Unwrap() error { return ErrChecksumMismatch }

// VerifyFile compares the SHA256 of the file at path with expectedHash,
// case-insensitively.
func VerifyFile(path, expectedHash string) error {
	got, err := ComputeFileHash(path)
	if err != nil {
		return err
	}
	if !strings.EqualFold(got, strings.TrimSpace(expectedHash)) {
		return &ChecksumError{
			Filename: path,
			Expected: strings.ToLower(strings.TrimSpace(expectedHash)),
			Got:      got,
		}
	}
	return nil
}

// ComputeFileHash returns the lowercase hex-encoded SHA256 digest of the file at path.
func ComputeFileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }() // read-only

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing file %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// SPDX-License-Identifier: MPL-2.0

package selfupdate

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	// ErrChecksumMismatch indicates a downloaded file does not match its
	// published SHA-256 digest.
	ErrChecksumMismatch = errors.New("checksum mismatch")
	// ErrAssetNotFound indicates a release lacks an expected file.
	ErrAssetNotFound = errors.New("asset not found")
)

// ChecksumError wraps ErrChecksumMismatch with both digests.
type ChecksumError struct {
	Filename string
	Expected string
	Got      string
}

// Error implements error.
func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum verification failed for %s\nExpected: %s\nGot:      %s", e.Filename, e.Expected, e.Got)
}

// Unwrap returns ErrChecksumMismatch.
func (e *ChecksumError) Unwrap() error { return ErrChecksumMismatch }

// ParseChecksums reads sha256sum output ("<hex>  <file>" per line, the file
// optionally prefixed with '*' for binary mode) into a file -> digest map.
// Malformed lines are skipped.
func ParseChecksums(r io.Reader) (map[string]string, error) {
	sums := make(map[string]string)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) != 2 || !isSHA256Hex(fields[0]) {
			continue
		}
		sums[strings.TrimPrefix(fields[1], "*")] = strings.ToLower(fields[0])
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading checksums: %w", err)
	}
	if len(sums) == 0 {
		return nil, errors.New("no valid checksum entries found")
	}
	return sums, nil
}

// VerifyFile checks the SHA-256 digest of the file at path.
func VerifyFile(path, expected string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("hashing %s: %w", path, err)
	}

	got := hex.EncodeToString(h.Sum(nil))
	if !strings.EqualFold(got, expected) {
		return &ChecksumError{Filename: path, Expected: strings.ToLower(expected), Got: got}
	}
	return nil
}

func isSHA256Hex(s string) bool {
	if len(s) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

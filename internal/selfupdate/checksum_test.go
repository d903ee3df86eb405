// SPDX-License-Identifier: MPL-2.0

package selfupdate

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func sha256Hex(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

func TestParseChecksums(t *testing.T) {
	t.Parallel()

	a := sha256Hex("a")
	b := strings.ToUpper(sha256Hex("b"))
	input := a + "  qakit_1.0.0_linux_amd64.tar.gz\n" +
		"\n" +
		"not-a-digest  junk.txt\n" +
		b + " *qakit_1.0.0_darwin_arm64.tar.gz\n" +
		"too many fields here\n"

	sums, err := ParseChecksums(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseChecksums: %v", err)
	}
	if len(sums) != 2 {
		t.Fatalf("got %d entries, want 2: %v", len(sums), sums)
	}
	if sums["qakit_1.0.0_linux_amd64.tar.gz"] != a {
		t.Errorf("linux digest = %q", sums["qakit_1.0.0_linux_amd64.tar.gz"])
	}
	if sums["qakit_1.0.0_darwin_arm64.tar.gz"] != strings.ToLower(b) {
		t.Errorf("darwin digest = %q, want lower-case", sums["qakit_1.0.0_darwin_arm64.tar.gz"])
	}
}

func TestParseChecksums_Empty(t *testing.T) {
	t.Parallel()

	if _, err := ParseChecksums(strings.NewReader("nothing useful\n")); err == nil {
		t.Error("expected an error for a file with no entries")
	}
}

func TestVerifyFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "blob")
	if err := os.WriteFile(path, []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := VerifyFile(path, strings.ToUpper(sha256Hex("payload"))); err != nil {
		t.Errorf("VerifyFile with matching digest: %v", err)
	}

	err := VerifyFile(path, sha256Hex("other"))
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("err = %v, want ErrChecksumMismatch", err)
	}
	var ce *ChecksumError
	if !errors.As(err, &ce) || ce.Got != sha256Hex("payload") {
		t.Errorf("ChecksumError = %+v", ce)
	}

	if err := VerifyFile(filepath.Join(t.TempDir(), "missing"), sha256Hex("x")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: err = %v", err)
	}
}

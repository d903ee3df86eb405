// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMustWriteFile_CreatesParents(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a", "b", "file.txt")
	if got := MustWriteFile(t, path, "hello"); got != path {
		t.Errorf("MustWriteFile returned %q, want %q", got, path)
	}
	if got := MustReadFile(t, path); got != "hello" {
		t.Errorf("content = %q", got)
	}
}

func TestSetHomeDir(t *testing.T) {
	dir := t.TempDir()
	SetHomeDir(t, dir)

	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("UserHomeDir: %v", err)
	}
	if home != dir {
		t.Errorf("UserHomeDir() = %q, want %q", home, dir)
	}
}

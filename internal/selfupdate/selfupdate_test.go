// SPDX-License-Identifier: MPL-2.0

package selfupdate

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

type fakeRepo struct {
	releases []Release
	files    map[string][]byte
}

func (f *fakeRepo) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/repos/McEwann/QAkit/releases":
		_ = json.NewEncoder(w).Encode(f.releases)
	case strings.HasPrefix(r.URL.Path, "/download/"):
		data, ok := f.files[strings.TrimPrefix(r.URL.Path, "/download/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(data)
	default:
		for _, rel := range f.releases {
			if r.URL.Path == "/repos/McEwann/QAkit/releases/tags/"+rel.TagName {
				_ = json.NewEncoder(w).Encode(rel)
				return
			}
		}
		http.NotFound(w, r)
	}
}

func tarball(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, content := range files {
		if err := tw.WriteHeader(&tar.Header{Name: name, Mode: 0o755, Size: int64(len(content)), Typeflag: tar.TypeReg}); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newUpdater(t *testing.T, repo *fakeRepo, current string, opts ...Option) (*Updater, string) {
	t.Helper()

	srv := httptest.NewServer(repo)
	t.Cleanup(srv.Close)
	for i := range repo.releases {
		for j := range repo.releases[i].Assets {
			a := &repo.releases[i].Assets[j]
			a.BrowserDownloadURL = srv.URL + "/download/" + a.Name
		}
	}
	client := NewClient("McEwann", "QAkit", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	return New(client, current, opts...), srv.URL
}

func TestCheck(t *testing.T) {
	t.Parallel()

	releases := []Release{{TagName: "v1.2.0"}, {TagName: "v1.1.0"}, {TagName: "v1.3.0-beta", Prerelease: true}}

	tests := []struct {
		name      string
		current   string
		target    string
		available bool
		message   string
	}{
		{"older", "1.1.0", "", true, "A newer version (v1.2.0) is available!"},
		{"same", "v1.2.0", "", false, MsgUpToDate},
		{"ahead", "v1.3.0-beta", "", false, "You are running v1.3.0-beta, which is newer than the latest release (v1.2.0)."},
		{"dev build", "dev", "", true, "A newer version (v1.2.0) is available!"},
		{"pinned downgrade", "v1.2.0", "1.1.0", true, "Version v1.1.0 is available."},
		{"pinned current", "v1.2.0", "v1.2.0", false, MsgUpToDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			u, _ := newUpdater(t, &fakeRepo{releases: releases}, tt.current)
			res, err := u.Check(context.Background(), tt.target)
			if err != nil {
				t.Fatalf("Check: %v", err)
			}
			if res.Available != tt.available {
				t.Errorf("Available = %v, want %v", res.Available, tt.available)
			}
			if res.Message != tt.message {
				t.Errorf("Message = %q, want %q", res.Message, tt.message)
			}
		})
	}
}

func TestCheck_NoReleases(t *testing.T) {
	t.Parallel()

	u, _ := newUpdater(t, &fakeRepo{releases: []Release{}}, "v1.0.0")
	if _, err := u.Check(context.Background(), ""); !errors.Is(err, ErrNoReleases) {
		t.Errorf("err = %v, want ErrNoReleases", err)
	}
}

func TestAssetName(t *testing.T) {
	t.Parallel()

	u := New(NewClient("o", "r"), "v1.0.0", WithPlatform("darwin", "arm64"))
	if got := u.AssetName("v2.1.0"); got != "qakit_2.1.0_darwin_arm64.tar.gz" {
		t.Errorf("AssetName = %q", got)
	}
}

func TestApply_ReplacesBinary(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("rename over a running binary is not tested on windows")
	}

	dir := t.TempDir()
	exe := filepath.Join(dir, "qakit")
	if err := os.WriteFile(exe, []byte("old"), 0o755); err != nil {
		t.Fatal(err)
	}

	archiveName := fmt.Sprintf("qakit_1.2.0_%s_%s.tar.gz", runtime.GOOS, runtime.GOARCH)
	archive := tarball(t, map[string]string{"README.md": "docs", "qakit_1.2.0/qakit": "new binary"})
	sums := fmt.Sprintf("%s  %s\n", sha256Hex(string(archive)), archiveName)

	repo := &fakeRepo{
		releases: []Release{{
			TagName: "v1.2.0",
			Assets:  []Asset{{Name: archiveName}, {Name: ChecksumsAsset}},
		}},
		files: map[string][]byte{archiveName: archive, ChecksumsAsset: []byte(sums)},
	}
	u, _ := newUpdater(t, repo, "v1.1.0", WithExecutable(func() (string, error) { return exe, nil }))

	res, err := u.Check(context.Background(), "")
	if err != nil || !res.Available {
		t.Fatalf("Check: %+v, %v", res, err)
	}
	path, err := u.Apply(context.Background(), res.Release)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	wantPath, _ := filepath.EvalSymlinks(exe)
	if path != wantPath {
		t.Errorf("replaced %q, want %q", path, wantPath)
	}
	data, _ := os.ReadFile(exe)
	if string(data) != "new binary" {
		t.Errorf("binary content = %q", data)
	}
	info, _ := os.Stat(exe)
	if info.Mode().Perm()&0o100 == 0 {
		t.Errorf("binary is not executable: %v", info.Mode())
	}

	leftovers, _ := filepath.Glob(filepath.Join(dir, ".qakit-*"))
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}

func TestApply_ChecksumMismatchKeepsBinary(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	exe := filepath.Join(dir, "qakit")
	if err := os.WriteFile(exe, []byte("old"), 0o755); err != nil {
		t.Fatal(err)
	}

	archiveName := "qakit_1.2.0_linux_amd64.tar.gz"
	archive := tarball(t, map[string]string{"qakit": "tampered"})
	repo := &fakeRepo{
		releases: []Release{{TagName: "v1.2.0", Assets: []Asset{{Name: archiveName}, {Name: ChecksumsAsset}}}},
		files: map[string][]byte{
			archiveName:    archive,
			ChecksumsAsset: []byte(sha256Hex("something else") + "  " + archiveName + "\n"),
		},
	}
	u, _ := newUpdater(t, repo, "v1.0.0",
		WithPlatform("linux", "amd64"),
		WithExecutable(func() (string, error) { return exe, nil }))

	_, err := u.Apply(context.Background(), &repo.releases[0])
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("err = %v, want ErrChecksumMismatch", err)
	}
	if data, _ := os.ReadFile(exe); string(data) != "old" {
		t.Errorf("binary was modified: %q", data)
	}
}

func TestApply_MissingAssets(t *testing.T) {
	t.Parallel()

	u := New(NewClient("o", "r"), "v1.0.0", WithPlatform("linux", "amd64"))

	_, err := u.Apply(context.Background(), &Release{TagName: "v1.2.0"})
	if !errors.Is(err, ErrAssetNotFound) {
		t.Errorf("no archive: err = %v", err)
	}

	_, err = u.Apply(context.Background(), &Release{
		TagName: "v1.2.0",
		Assets:  []Asset{{Name: "qakit_1.2.0_linux_amd64.tar.gz"}},
	})
	if !errors.Is(err, ErrAssetNotFound) {
		t.Errorf("no checksums: err = %v", err)
	}
}

func TestApply_BinaryNotInArchive(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	archiveName := "qakit_1.2.0_linux_amd64.tar.gz"
	archive := tarball(t, map[string]string{"other-tool": "x"})
	repo := &fakeRepo{
		releases: []Release{{TagName: "v1.2.0", Assets: []Asset{{Name: archiveName}, {Name: ChecksumsAsset}}}},
		files: map[string][]byte{
			archiveName:    archive,
			ChecksumsAsset: []byte(sha256Hex(string(archive)) + "  " + archiveName + "\n"),
		},
	}
	u, _ := newUpdater(t, repo, "v1.0.0",
		WithPlatform("linux", "amd64"),
		WithExecutable(func() (string, error) { return filepath.Join(dir, "qakit"), nil }))

	if _, err := u.Apply(context.Background(), &repo.releases[0]); !errors.Is(err, ErrBinaryNotInArchive) {
		t.Errorf("err = %v, want ErrBinaryNotInArchive", err)
	}
}

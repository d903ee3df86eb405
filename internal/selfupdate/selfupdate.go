// SPDX-License-Identifier: MPL-2.0

package selfupdate

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/mod/semver"
)

const (
	// ChecksumsAsset is the name of the digest file attached to each release.
	ChecksumsAsset = "checksums.txt"

	// MsgUpdateAvailable is printed when a newer release exists.
	MsgUpdateAvailable = "A newer version (%s) is available!"
	// MsgUpToDate is printed when the running version is the newest.
	MsgUpToDate = "You are using the latest version."
	// MsgAhead is printed when the running version is newer than any stable release.
	MsgAhead = "You are running %s, which is newer than the latest release (%s)."

	// MsgTargetAvailable is printed when an older pinned release is requested.
	MsgTargetAvailable = "Version %s is available."

	binaryName       = "qakit"
	maxBinaryBytes   = 500 << 20
	maxChecksumBytes = 1 << 20
	devVersion       = "v0.0.0"
)

var (
	// ErrNoReleases is returned when the repository has no stable release.
	ErrNoReleases = errors.New("no stable releases found")
	// ErrBinaryNotInArchive is returned when the archive lacks the binary.
	ErrBinaryNotInArchive = errors.New("binary not found in archive")
	// ErrRestartUnsupported is returned where a process cannot replace itself.
	ErrRestartUnsupported = errors.New("restart is not supported on this platform")
)

type (
	// CheckResult describes how the running version relates to a release.
	CheckResult struct {
		Current   string
		Latest    string
		Release   *Release
		Available bool
		Message   string
	}

	// Updater checks for and installs new releases.
	Updater struct {
		client     *Client
		current    string
		logger     *log.Logger
		executable func() (string, error)
		goos       string
		goarch     string
	}

	// Option configures an Updater.
	Option func(*Updater)
)

// WithLogger sets the logger for progress messages.
func WithLogger(l *log.Logger) Option {
	return func(u *Updater) { u.logger = l }
}

// WithExecutable overrides how the path of the running binary is found.
func WithExecutable(fn func() (string, error)) Option {
	return func(u *Updater) { u.executable = fn }
}

// WithPlatform overrides the target OS and architecture.
func WithPlatform(goos, goarch string) Option {
	return func(u *Updater) {
		u.goos = goos
		u.goarch = goarch
	}
}

// New creates an Updater for the running version current. Versions that are
// not valid semver, such as "dev", compare as v0.0.0.
func New(client *Client, current string, opts ...Option) *Updater {
	u := &Updater{
		client:     client,
		current:    current,
		logger:     log.New(io.Discard),
		executable: os.Executable,
		goos:       runtime.GOOS,
		goarch:     runtime.GOARCH,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Check compares the running version with target, or with the newest stable
// release when target is empty.
func (u *Updater) Check(ctx context.Context, target string) (*CheckResult, error) {
	var rel *Release
	if target != "" {
		r, err := u.client.ReleaseByTag(ctx, canonical(target))
		if err != nil {
			return nil, err
		}
		rel = r
	} else {
		releases, err := u.client.ListReleases(ctx)
		if err != nil {
			return nil, err
		}
		if len(releases) == 0 {
			return nil, fmt.Errorf("%s: %w", u.client.Repo(), ErrNoReleases)
		}
		rel = &releases[0]
	}

	current := canonical(u.current)
	if !semver.IsValid(current) {
		current = devVersion
	}
	latest := canonical(rel.TagName)

	res := &CheckResult{Current: current, Latest: latest, Release: rel}
	switch cmp := semver.Compare(latest, current); {
	case target != "" && cmp < 0:
		res.Available = true
		res.Message = fmt.Sprintf(MsgTargetAvailable, latest)
	case cmp > 0:
		res.Available = true
		res.Message = fmt.Sprintf(MsgUpdateAvailable, latest)
	case cmp < 0:
		res.Message = fmt.Sprintf(MsgAhead, current, latest)
	default:
		res.Message = MsgUpToDate
	}
	return res, nil
}

// AssetName returns the archive name for version on this platform, e.g.
// qakit_1.2.0_linux_amd64.tar.gz.
func (u *Updater) AssetName(version string) string {
	return fmt.Sprintf("%s_%s_%s_%s.tar.gz", binaryName, strings.TrimPrefix(version, "v"), u.goos, u.goarch)
}

// Apply downloads rel, verifies it against the release checksums and
// replaces the running binary. It returns the path that was replaced.
func (u *Updater) Apply(ctx context.Context, rel *Release) (string, error) {
	archiveName := u.AssetName(canonical(rel.TagName))
	archive := findAsset(rel, archiveName)
	if archive == nil {
		return "", fmt.Errorf("%s in %s: %w", archiveName, rel.TagName, ErrAssetNotFound)
	}
	sumsAsset := findAsset(rel, ChecksumsAsset)
	if sumsAsset == nil {
		return "", fmt.Errorf("%s in %s: %w", ChecksumsAsset, rel.TagName, ErrAssetNotFound)
	}

	exe, err := u.executable()
	if err != nil {
		return "", fmt.Errorf("locating running binary: %w", err)
	}
	if resolved, evalErr := filepath.EvalSymlinks(exe); evalErr == nil {
		exe = resolved
	}
	dir := filepath.Dir(exe)

	expected, err := u.expectedSum(ctx, sumsAsset, archiveName)
	if err != nil {
		return "", err
	}

	u.logger.Debug("downloading release", "asset", archiveName, "size", archive.Size)
	archivePath, err := u.download(ctx, archive, dir)
	if err != nil {
		return "", err
	}
	defer func() { _ = os.Remove(archivePath) }()

	if err := VerifyFile(archivePath, expected); err != nil {
		return "", err
	}

	staged, err := u.extract(archivePath, dir)
	if err != nil {
		return "", err
	}
	if err := os.Rename(staged, exe); err != nil {
		_ = os.Remove(staged)
		return "", fmt.Errorf("replacing %s: %w", exe, err)
	}
	u.logger.Info("updated binary", "path", exe, "version", rel.TagName)
	return exe, nil
}

func (u *Updater) expectedSum(ctx context.Context, asset *Asset, archiveName string) (string, error) {
	body, err := u.client.Download(ctx, asset.BrowserDownloadURL)
	if err != nil {
		return "", err
	}
	defer func() { _ = body.Close() }()

	sums, err := ParseChecksums(io.LimitReader(body, maxChecksumBytes))
	if err != nil {
		return "", err
	}
	sum, ok := sums[archiveName]
	if !ok {
		return "", fmt.Errorf("checksum for %s: %w", archiveName, ErrAssetNotFound)
	}
	return sum, nil
}

// download stores the asset in dir so the final rename stays on one filesystem.
func (u *Updater) download(ctx context.Context, asset *Asset, dir string) (string, error) {
	body, err := u.client.Download(ctx, asset.BrowserDownloadURL)
	if err != nil {
		return "", err
	}
	defer func() { _ = body.Close() }()

	f, err := os.CreateTemp(dir, ".qakit-download-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := io.Copy(f, io.LimitReader(body, maxBinaryBytes)); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("writing %s: %w", asset.Name, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// extract copies the qakit binary out of the archive into an executable temp
// file in dir.
func (u *Updater) extract(archivePath, dir string) (string, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return "", fmt.Errorf("opening archive: %w", err)
	}
	defer func() { _ = gz.Close() }()

	want := binaryName
	if u.goos == "windows" {
		want += ".exe"
	}

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("%s: %w", want, ErrBinaryNotInArchive)
		}
		if err != nil {
			return "", fmt.Errorf("reading archive: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg || filepath.Base(hdr.Name) != want {
			continue
		}
		if hdr.Size > maxBinaryBytes {
			return "", fmt.Errorf("%s is %d bytes, over the %d byte limit", want, hdr.Size, maxBinaryBytes)
		}
		return writeStaged(tr, dir)
	}
}

func writeStaged(r io.Reader, dir string) (string, error) {
	out, err := os.CreateTemp(dir, ".qakit-new-*")
	if err != nil {
		return "", fmt.Errorf("creating staged binary: %w", err)
	}
	name := out.Name()
	if _, err := io.Copy(out, io.LimitReader(r, maxBinaryBytes)); err != nil {
		_ = out.Close()
		_ = os.Remove(name)
		return "", fmt.Errorf("extracting binary: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(name)
		return "", err
	}
	if err := os.Chmod(name, 0o755); err != nil {
		_ = os.Remove(name)
		return "", err
	}
	return name, nil
}

func findAsset(rel *Release, name string) *Asset {
	for i := range rel.Assets {
		if rel.Assets[i].Name == name {
			return &rel.Assets[i]
		}
	}
	return nil
}

// canonical adds the "v" prefix semver expects.
func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

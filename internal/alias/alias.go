// SPDX-License-Identifier: MPL-2.0

package alias

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	"mvdan.cc/sh/v3/syntax"
)

const (
	// BeginMarker opens the managed block.
	BeginMarker = "# >>> qakit alias >>>"
	// EndMarker closes the managed block.
	EndMarker = "# <<< qakit alias <<<"
)

var (
	// ErrUnsupportedShell is returned when no rc file is known for a shell.
	ErrUnsupportedShell = errors.New("unsupported shell")
	// ErrInvalidName is returned for alias names that are not shell words.
	ErrInvalidName = errors.New("invalid alias name")
	// ErrUnterminatedBlock is returned when the begin marker has no end marker.
	ErrUnterminatedBlock = errors.New("alias block has no end marker")

	namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)
)

type (
	// Installer manages the alias block of one rc file.
	Installer struct {
		rcFile string
		name   string
		fish   bool
		logger *log.Logger
	}

	// Option configures an Installer.
	Option func(*Installer)
)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(i *Installer) { i.logger = l }
}

// DetectRCFile returns the startup file for shell, given as a name or path
// such as $SHELL ("/usr/bin/zsh").
func DetectRCFile(shell, home string) (string, error) {
	switch filepath.Base(shell) {
	case "bash":
		return filepath.Join(home, ".bashrc"), nil
	case "zsh":
		return filepath.Join(home, ".zshrc"), nil
	case "fish":
		return filepath.Join(home, ".config", "fish", "config.fish"), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedShell, shell)
	}
}

// ExpandHome replaces a leading "~" with home.
func ExpandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		return filepath.Join(home, rest)
	}
	return path
}

// New creates an Installer writing alias name into rcFile. Files named
// config.fish get fish syntax.
func New(rcFile, name string, opts ...Option) (*Installer, error) {
	if !namePattern.MatchString(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	i := &Installer{
		rcFile: rcFile,
		name:   name,
		fish:   filepath.Ext(rcFile) == ".fish",
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// RCFile returns the managed file.
func (i *Installer) RCFile() string { return i.rcFile }

// Line returns the alias definition for target.
func (i *Installer) Line(target string) (string, error) {
	quoted, err := syntax.Quote(target, syntax.LangBash)
	if err != nil {
		return "", fmt.Errorf("quoting %q: %w", target, err)
	}
	if i.fish {
		if strings.HasPrefix(quoted, "$'") {
			return "", fmt.Errorf("quoting %q: control characters cannot be written for fish", target)
		}
		return fmt.Sprintf("alias %s %s", i.name, quoted), nil
	}
	return fmt.Sprintf("alias %s=%s", i.name, quoted), nil
}

// Install writes the alias block for target, replacing any previous block.
// It reports whether the file changed.
func (i *Installer) Install(target string) (bool, error) {
	line, err := i.Line(target)
	if err != nil {
		return false, err
	}

	path, err := i.resolve()
	if err != nil {
		return false, err
	}
	old, mode, err := read(path)
	if err != nil {
		return false, err
	}
	rest, _, err := stripBlock(old)
	if err != nil {
		return false, err
	}

	var b strings.Builder
	b.WriteString(rest)
	if rest != "" && !strings.HasSuffix(rest, "\n") {
		b.WriteByte('\n')
	}
	b.WriteString(BeginMarker + "\n" + line + "\n" + EndMarker + "\n")

	if b.String() == old {
		i.logger.Debug("alias already installed", "file", i.rcFile)
		return false, nil
	}
	if err := writeAtomic(path, b.String(), mode); err != nil {
		return false, err
	}
	i.logger.Info("installed alias", "name", i.name, "file", i.rcFile)
	return true, nil
}

// Remove deletes the alias block. It reports whether a block was found.
func (i *Installer) Remove() (bool, error) {
	path, err := i.resolve()
	if err != nil {
		return false, err
	}
	old, mode, err := read(path)
	if err != nil {
		return false, err
	}
	rest, found, err := stripBlock(old)
	if err != nil || !found {
		return false, err
	}
	if err := writeAtomic(path, rest, mode); err != nil {
		return false, err
	}
	i.logger.Info("removed alias", "file", i.rcFile)
	return true, nil
}

// Installed returns the alias line currently in the block, if any.
func (i *Installer) Installed() (string, bool, error) {
	content, _, err := read(i.rcFile)
	if err != nil {
		return "", false, err
	}
	_, after, ok := strings.Cut(content, BeginMarker+"\n")
	if !ok {
		return "", false, nil
	}
	body, _, ok := strings.Cut(after, EndMarker)
	if !ok {
		return "", false, ErrUnterminatedBlock
	}
	return strings.TrimSpace(body), true, nil
}

// resolve returns the file to rewrite: the final target when the rc file is a
// symlink, so the link survives and the linked file gets the block.
func (i *Installer) resolve() (string, error) {
	path, err := filepath.EvalSymlinks(i.rcFile)
	switch {
	case err == nil:
		return path, nil
	case errors.Is(err, fs.ErrNotExist):
		return i.rcFile, nil
	default:
		return "", fmt.Errorf("resolving %s: %w", i.rcFile, err)
	}
}

// read returns the file content and mode; a missing file is empty.
func read(path string) (string, fs.FileMode, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", 0o644, nil
	}
	if err != nil {
		return "", 0, fmt.Errorf("reading %s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", 0, err
	}
	return string(data), info.Mode().Perm(), nil
}

// stripBlock removes the managed block from content.
func stripBlock(content string) (string, bool, error) {
	var (
		b       strings.Builder
		inBlock bool
		found   bool
	)
	for line := range strings.Lines(content) {
		trimmed := strings.TrimRight(line, "\r\n")
		switch {
		case !inBlock && trimmed == BeginMarker:
			inBlock, found = true, true
		case inBlock && trimmed == EndMarker:
			inBlock = false
		case !inBlock:
			b.WriteString(line)
		}
	}
	if inBlock {
		return content, false, ErrUnterminatedBlock
	}
	return b.String(), found, nil
}

// writeAtomic replaces path through a temp file in the same directory.
func writeAtomic(path, content string, mode fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".qakit-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	name := tmp.Name()
	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return err
	}
	if err := os.Chmod(name, mode); err != nil {
		_ = os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// Package git reads the repository name and branch of a working directory
// through the git CLI. Every command targets the directory via "git -C".
package git

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
)

// Repository is a working directory that may or may not be inside a git
// repository.
type Repository struct {
	dir string
	log *slog.Logger
}

// NewRepository returns a Repository targeting dir. A nil logger uses
// slog.Default.
func NewRepository(dir string, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{dir: dir, log: logger}
}

// Dir returns the directory commands run in.
func (r *Repository) Dir() string {
	return r.dir
}

// Run executes git with args in the repository and returns trimmed stdout.
// Stderr is included in the error on failure.
func (r *Repository) Run(ctx context.Context, args ...string) (string, error) {
	fullArgs := append([]string{"-C", r.dir}, args...)
	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, "git", fullArgs...)
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return "", fmt.Errorf("git %s in %s: %w (stderr: %s)",
			strings.Join(args, " "), r.dir, err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Context returns the repository name (basename of the top-level
// directory) and the current branch. A detached HEAD is reported as the
// abbreviated commit hash. ok is false outside a repository or when git is
// unavailable.
func (r *Repository) Context(ctx context.Context) (repo, branch string, ok bool) {
	top, err := r.Run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		r.log.Debug("not a git repository", slog.String("dir", r.dir), slog.Any("error", err))
		return "", "", false
	}
	branch, err = r.Branch(ctx)
	if err != nil {
		r.log.Debug("cannot resolve branch", slog.String("dir", r.dir), slog.Any("error", err))
		return "", "", false
	}
	repo = filepath.Base(top)
	if repo == "" || repo == "." || repo == string(filepath.Separator) {
		return "", "", false
	}
	return repo, branch, true
}

// Branch returns the checked out branch, or the short commit hash when
// HEAD is detached.
func (r *Repository) Branch(ctx context.Context) (string, error) {
	branch, err := r.Run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	if branch != "HEAD" {
		return branch, nil
	}
	return r.Run(ctx, "rev-parse", "--short", "HEAD")
}

// GitDir returns the absolute path of the repository's .git directory.
func (r *Repository) GitDir(ctx context.Context) (string, error) {
	return r.Run(ctx, "rev-parse", "--absolute-git-dir")
}

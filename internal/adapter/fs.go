// Package adapter contains filesystem and persistence adapters for the
// sift CLI.
package adapter

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	m "github.com/mouse-blink/sift/internal/model"
)

// FileInfo is the directory walker's view of one file: enough metadata
// for the engine to schedule fingerprinting without touching the disk
// again.
type FileInfo struct {
	Path    m.Path
	Size    int64
	ModTime time.Time
}

// ScanFS abstracts the filesystem operations the decision engine needs.
// It hides direct `os` access so the domain logic can be tested without
// touching the disk.
type ScanFS interface {
	// Walk traverses the tree rooted at root and calls fn for every
	// regular file. Entries that cannot be stat'ed are skipped with a
	// log entry rather than aborting the walk.
	Walk(ctx context.Context, root m.Path, fn func(info FileInfo) error) error

	// Open returns a reader over the file's contents for digesting.
	Open(path m.Path) (io.ReadCloser, error)
}

// LocalScanFS is the ScanFS implementation backed by the local
// filesystem.
type LocalScanFS struct{}

// NewLocalScanFS constructs a LocalScanFS ready to be wired into the
// workflow.
func NewLocalScanFS() *LocalScanFS {
	return &LocalScanFS{}
}

// Walk iterates over regular files under root in lexical order.
func (a *LocalScanFS) Walk(ctx context.Context, root m.Path, fn func(info FileInfo) error) error {
	return filepath.WalkDir(string(root), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			slog.Warn("walk entry error", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			slog.Warn("stat failed, skipping", "path", path, "error", infoErr)
			return nil
		}

		return fn(FileInfo{
			Path:    m.Path(path),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	})
}

// Open returns a reader over the file at path.
func (a *LocalScanFS) Open(path m.Path) (io.ReadCloser, error) {
	return os.Open(string(path))
}

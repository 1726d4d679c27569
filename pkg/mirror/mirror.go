package mirror

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/sidkik/foldersync/pkg/errors"
)

// Reconciler converges a replica folder with a source folder.
type Reconciler struct {
	fs  afero.Fs
	log logrus.FieldLogger
}

// New returns a Reconciler that accesses both trees through `fs` and records
// every change to `log`.
func New(fs afero.Fs, log logrus.FieldLogger) Reconciler {
	return Reconciler{fs: fs, log: log}
}

// Result describes the outcome of a single pass.
type Result struct {
	FoldersCreated int
	FilesCopied    int
	FoldersRemoved int
	FilesRemoved   int

	// Err is the reason the pass ended early. Changes made before the error
	// are kept.
	Err error
}

// Changed returns whether the pass modified the replica.
func (res Result) Changed() bool {
	return res.FoldersCreated+res.FilesCopied+res.FoldersRemoved+res.FilesRemoved > 0
}

func (res Result) String() string {
	return fmt.Sprintf("%d folders created, %d files copied, %d folders removed, %d files removed",
		res.FoldersCreated, res.FilesCopied, res.FoldersRemoved, res.FilesRemoved)
}

// Synchronize runs one pass: it first adds whatever is missing from the
// replica, then removes whatever is no longer in the source.
func (r Reconciler) Synchronize(ctx context.Context, source, replica string) Result {
	var res Result
	res.Err = r.synchronize(ctx, filepath.Clean(source), filepath.Clean(replica), &res)
	return res
}

func (r Reconciler) synchronize(ctx context.Context, source, replica string, res *Result) error {
	if err := ValidateRoots(source, replica); err != nil {
		return err
	}

	srcInfo, err := r.fs.Stat(source)
	switch {
	case os.IsNotExist(err):
		return r.removeOrphanedReplica(replica, source, res)
	case err != nil:
		return errors.WithContext(err, "stat source")
	case !srcInfo.IsDir():
		return errors.Newf("source %q is not a folder", source)
	}

	if err := r.addMissing(ctx, source, replica, res); err != nil {
		return errors.WithContext(err, "add missing entries")
	}

	if err := r.removeExtra(ctx, source, replica, res); err != nil {
		return errors.WithContext(err, "remove extra entries")
	}
	return nil
}

// removeOrphanedReplica handles a source root that has disappeared. The
// replica root mirrors it directly, so the replica goes too.
func (r Reconciler) removeOrphanedReplica(replica, source string, res *Result) error {
	info, _, err := r.lstat(replica)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.WithContext(errors.FileNotFound{Path: source}, "stat source")
		}
		return errors.WithContext(err, "stat replica")
	}

	if !info.IsDir() {
		return r.removeFile(replica, res)
	}
	return r.removeFolder(replica, res)
}

// ValidateRoots returns an error if mirroring `source` into `replica` would
// feed the replica back into itself, or delete the source.
func ValidateRoots(source, replica string) error {
	source, replica = filepath.Clean(source), filepath.Clean(replica)
	if source == replica {
		return errors.Newf("source and replica are the same folder (%q)", source)
	}

	if isWithin(replica, source) {
		return errors.Newf("replica %q is inside source %q", replica, source)
	}

	if isWithin(source, replica) {
		return errors.Newf("source %q is inside replica %q", source, replica)
	}
	return nil
}

// isWithin returns true if `path` is a descendant of `dir`.
func isWithin(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// lstat stats `path` without following a trailing symlink when the
// filesystem supports it.
func (r Reconciler) lstat(path string) (os.FileInfo, bool, error) {
	if lstater, ok := r.fs.(afero.Lstater); ok {
		return lstater.LstatIfPossible(path)
	}
	info, err := r.fs.Stat(path)
	return info, false, err
}

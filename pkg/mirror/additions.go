package mirror

import (
	"context"
	"os"
	"path/filepath"

	"github.com/sidkik/foldersync/pkg/errors"
)

// addMissing walks the source tree and creates every folder and file that
// doesn't exist in the replica yet.
func (r Reconciler) addMissing(ctx context.Context, source, replica string, res *Result) error {
	if err := r.prepareReplicaRoot(replica, res); err != nil {
		return errors.WithContext(err, "create replica root")
	}

	// Paths relative to the roots. Children are pushed in reverse order so
	// that they're popped, and logged, in name order.
	pending := []string{"."}
	for len(pending) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		rel := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		children, err := readFolder(r.fs, filepath.Join(source, rel))
		if err != nil {
			return errors.WithContext(err, "read source folder")
		}

		var subfolders []string
		for _, child := range children {
			childRel := filepath.Join(rel, child.Name())
			srcPath := filepath.Join(source, childRel)
			dstPath := filepath.Join(replica, childRel)

			if child.IsDir() {
				descend, err := r.createFolder(dstPath, res)
				if err != nil {
					return err
				}
				if descend {
					subfolders = append(subfolders, childRel)
				}
				continue
			}

			if err := r.copyIfMissing(srcPath, dstPath, child, res); err != nil {
				return err
			}
		}

		for i := len(subfolders) - 1; i >= 0; i-- {
			pending = append(pending, subfolders[i])
		}
	}
	return nil
}

// prepareReplicaRoot makes sure the replica root is a folder that can be
// walked. The root mirrors the source root, so a file in its place is
// replaced by a folder. Links to folders are followed.
func (r Reconciler) prepareReplicaRoot(replica string, res *Result) error {
	info, err := r.fs.Stat(replica)
	switch {
	case err == nil && info.IsDir():
		return nil
	case err == nil:
		if err := r.removeFile(replica, res); err != nil {
			return err
		}
	case !os.IsNotExist(err):
		return errors.WithContext(err, "stat replica root")
	}

	descend, err := r.createFolder(replica, res)
	if err != nil {
		return err
	}
	if !descend {
		return errors.Newf("replica %q is not a folder", replica)
	}
	return nil
}

// createFolder creates `path`, along with any missing parents, if nothing
// exists there. It returns whether `path` is a folder that should be walked.
func (r Reconciler) createFolder(path string, res *Result) (bool, error) {
	info, _, err := r.lstat(path)
	switch {
	case err == nil && info.IsDir():
		return true, nil
	case err == nil:
		r.log.WithField("path", path).Debug("Skipping folder because a file is in its place")
		return false, nil
	case !os.IsNotExist(err):
		return false, errors.WithContext(err, "stat replica folder")
	}

	if err := r.fs.MkdirAll(path, 0755); err != nil {
		return false, errors.WithContext(err, "create folder")
	}
	res.FoldersCreated++
	r.log.Infof("Folder created: %s", path)
	return true, nil
}

// copyIfMissing copies the source file at `src` to `dst` unless an entry
// already exists at `dst`.
func (r Reconciler) copyIfMissing(src, dst string, srcInfo os.FileInfo, res *Result) error {
	if srcInfo.Mode()&os.ModeSymlink != 0 {
		target, err := r.fs.Stat(src)
		if err != nil || !target.Mode().IsRegular() {
			r.log.WithField("path", src).Debug("Skipping link that doesn't point to a regular file")
			return nil
		}
		srcInfo = target
	} else if !srcInfo.Mode().IsRegular() {
		r.log.WithField("path", src).Debug("Skipping irregular file")
		return nil
	}

	_, _, err := r.lstat(dst)
	switch {
	case err == nil:
		return nil
	case !os.IsNotExist(err):
		return errors.WithContext(err, "stat replica file")
	}

	if err := copyFile(r.fs, src, dst, srcInfo); err != nil {
		return errors.WithContext(err, "copy "+src)
	}
	res.FilesCopied++
	r.log.Infof("File copied: %s -> %s", src, dst)
	return nil
}

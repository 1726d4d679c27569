package mirror

import (
	"context"
	"os"
	"path/filepath"

	"github.com/sidkik/foldersync/pkg/errors"
)

// removeExtra walks the replica tree and removes every folder and file that
// no longer has a counterpart of the same kind in the source.
func (r Reconciler) removeExtra(ctx context.Context, source, replica string, res *Result) error {
	pending := []string{"."}
	for len(pending) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		rel := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		children, err := readFolder(r.fs, filepath.Join(replica, rel))
		if err != nil {
			return errors.WithContext(err, "read replica folder")
		}

		var subfolders []string
		for _, child := range children {
			childRel := filepath.Join(rel, child.Name())
			srcPath := filepath.Join(source, childRel)
			dstPath := filepath.Join(replica, childRel)

			srcInfo, err := r.fs.Stat(srcPath)
			if err != nil && !os.IsNotExist(err) {
				return errors.WithContext(err, "stat source")
			}
			inSource := err == nil

			if child.IsDir() {
				if inSource && srcInfo.IsDir() {
					subfolders = append(subfolders, childRel)
					continue
				}
				if err := r.removeFolder(dstPath, res); err != nil {
					return err
				}
				continue
			}

			if inSource && !srcInfo.IsDir() {
				continue
			}
			if err := r.removeFile(dstPath, res); err != nil {
				return err
			}
		}

		for i := len(subfolders) - 1; i >= 0; i-- {
			pending = append(pending, subfolders[i])
		}
	}
	return nil
}

// removeFolder removes the folder at `path` and everything beneath it. The
// folder's immediate children are logged first so that there's a record of
// what was removed.
func (r Reconciler) removeFolder(path string, res *Result) error {
	r.log.Infof("Removing folder: %s", path)

	children, err := readFolder(r.fs, path)
	if err != nil {
		return errors.WithContext(err, "list folder")
	}
	for _, child := range children {
		r.log.Infof("Files in %s: %s", path, child.Name())
	}

	if err := r.fs.RemoveAll(path); err != nil {
		return errors.WithContext(err, "remove folder")
	}
	res.FoldersRemoved++
	r.log.Infof("Folder removed: %s", path)
	return nil
}

func (r Reconciler) removeFile(path string, res *Result) error {
	if err := r.fs.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.WithContext(err, "remove file")
	}
	res.FilesRemoved++
	r.log.Infof("File removed: %s", path)
	return nil
}

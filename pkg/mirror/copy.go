package mirror

import (
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/sidkik/foldersync/pkg/errors"
)

// tempFilePattern names partially copied files. A copy is written under this
// name and renamed into place once complete, so an interrupted copy never
// looks like an up-to-date replica file. Leftovers have no counterpart in the
// source, so the deletion phase removes them.
const tempFilePattern = ".foldersync-*.tmp"

// readFolder returns the entries of the folder at `path`, sorted by name. A
// folder that has already been removed has no entries.
func readFolder(fs afero.Fs, path string) ([]os.FileInfo, error) {
	children, err := afero.ReadDir(fs, path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	return children, err
}

// copyFile copies the contents, permission bits and modification time of
// `src` to `dst`.
func copyFile(fs afero.Fs, src, dst string, srcInfo os.FileInfo) error {
	in, err := fs.Open(src)
	if err != nil {
		return errors.WithContext(err, "open source")
	}
	defer in.Close()

	out, err := afero.TempFile(fs, filepath.Dir(dst), tempFilePattern)
	if err != nil {
		return errors.WithContext(err, "create temporary file")
	}

	tempPath := out.Name()
	defer func() {
		if tempPath != "" {
			fs.Remove(tempPath)
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.WithContext(err, "write")
	}

	if err := out.Close(); err != nil {
		return errors.WithContext(err, "close")
	}

	if err := fs.Chmod(tempPath, srcInfo.Mode().Perm()); err != nil {
		return errors.WithContext(err, "set file mode")
	}

	// Change the modification time as the last step before the rename so that
	// it doesn't get reset by other file operations.
	if err := fs.Chtimes(tempPath, srcInfo.ModTime(), srcInfo.ModTime()); err != nil {
		return errors.WithContext(err, "set file modtime")
	}

	if err := fs.Rename(tempPath, dst); err != nil {
		return errors.WithContext(err, "rename into place")
	}
	tempPath = ""
	return nil
}

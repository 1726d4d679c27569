// Package fswatch notifies when anything beneath a folder changes. It's used
// to start a pass early rather than waiting for the full interval.
package fswatch

import (
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/sidkik/foldersync/pkg/errors"
)

var fs = afero.NewOsFs()

// Watcher sends on Changes whenever a file or folder beneath the watched root
// is created, written, removed or renamed. Bursts of events are combined, so
// at most one notification is pending at a time.
type Watcher struct {
	Changes chan struct{}

	watcher *fsnotify.Watcher
	log     log.FieldLogger
}

// Watch starts watching `root` and all of its subfolders.
func Watch(root string, logger log.FieldLogger) (*Watcher, error) {
	paths, err := getFoldersToWatch(root)
	if err != nil {
		return nil, errors.WithContext(err, "get paths")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WithContext(err, "create watcher")
	}

	for _, path := range paths {
		if err := watcher.Add(path); err != nil {
			// Close the watcher so that we release the file handlers for the
			// previously added paths.
			if err := watcher.Close(); err != nil {
				logger.WithError(err).Warn("Failed to close file watcher")
			}

			return nil, errors.WithContext(err, fmt.Sprintf("watch %q", path))
		}
	}

	w := &Watcher{watcher: watcher, log: logger}
	w.Changes = combineUpdates(watcher.Events, w.watchNewFolders)
	go w.logErrors()
	return w, nil
}

// Close stops watching. Changes is closed once pending events are drained.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// watchNewFolders adds folders that were created after Watch was called,
// since fsnotify doesn't watch directories recursively.
func (w *Watcher) watchNewFolders(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) {
		return
	}

	fi, err := fs.Stat(event.Name)
	if err != nil || !fi.IsDir() {
		return
	}

	paths, err := getFoldersToWatch(event.Name)
	if err != nil {
		w.log.WithError(err).WithField("path", event.Name).Warn(
			"Failed to list new folder. Changes within it will be picked up by the next scheduled pass.")
		return
	}

	for _, path := range paths {
		if err := w.watcher.Add(path); err != nil {
			w.log.WithError(err).WithField("path", path).Warn("Failed to watch new folder")
		}
	}
}

func (w *Watcher) logErrors() {
	for err := range w.watcher.Errors {
		w.log.WithError(err).Warn("File watcher error")
	}
}

func combineUpdates(updates <-chan fsnotify.Event, onEvent func(fsnotify.Event)) chan struct{} {
	combined := make(chan struct{}, 1)
	go func() {
		defer close(combined)
		for event := range updates {
			onEvent(event)
			select {
			case combined <- struct{}{}:
			default:
			}
		}
	}()
	return combined
}

// getFoldersToWatch returns `root` and every folder beneath it. Watching a
// folder also reports changes to the files directly inside it.
func getFoldersToWatch(root string) (paths []string, err error) {
	fi, err := fs.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileNotFound{Path: root}
		}
		return nil, errors.WithContext(err, "stat")
	}

	if !fi.IsDir() {
		return nil, errors.Newf("%q is not a folder", root)
	}

	err = afero.Walk(fs, root, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return errors.WithContext(err, "walk error")
		}

		if fi.IsDir() {
			paths = append(paths, path)
		}
		return nil
	})
	return paths, err
}

package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sidkik/foldersync/pkg/errors"
	"github.com/sidkik/foldersync/pkg/mirror"
)

// NumArgs is the number of positional arguments the sync command takes.
const NumArgs = 4

// Sync is the configuration given by the positional arguments.
type Sync struct {
	// Source is the folder that's mirrored. It's never modified.
	Source string

	// Replica is the folder that's kept identical to Source.
	Replica string

	// Interval is the time to wait between the end of one pass and the
	// start of the next.
	Interval time.Duration

	// LogPath is the file that every change is appended to.
	LogPath string
}

// ParseArgs validates the positional arguments
// `<source> <replica> <interval> <log_file>`.
func ParseArgs(args []string) (Sync, error) {
	if len(args) != NumArgs {
		return Sync{}, errors.NewFriendlyError(
			"Expected %d arguments, got %d.", NumArgs, len(args))
	}

	var cfg Sync
	var err error
	if cfg.Source, err = absPath(args[0]); err != nil {
		return Sync{}, errors.WithContext(err, "source path")
	}

	if cfg.Replica, err = absPath(args[1]); err != nil {
		return Sync{}, errors.WithContext(err, "replica path")
	}

	seconds, err := strconv.Atoi(args[2])
	if err != nil {
		return Sync{}, errors.NewFriendlyError(
			"The interval must be a whole number of seconds, got %q.", args[2])
	}
	if seconds <= 0 {
		return Sync{}, errors.NewFriendlyError(
			"The interval must be at least one second, got %d.", seconds)
	}
	cfg.Interval = time.Duration(seconds) * time.Second

	if cfg.LogPath, err = absPath(args[3]); err != nil {
		return Sync{}, errors.WithContext(err, "log path")
	}

	fi, err := fs.Stat(cfg.Source)
	switch {
	case os.IsNotExist(err):
		return Sync{}, errors.NewFriendlyError(
			"The source folder %q doesn't exist.", cfg.Source)
	case err != nil:
		return Sync{}, errors.WithContext(err, "stat source")
	case !fi.IsDir():
		return Sync{}, errors.NewFriendlyError(
			"The source %q is not a folder.", cfg.Source)
	}

	if fi, err := fs.Stat(cfg.Replica); err == nil && !fi.IsDir() {
		return Sync{}, errors.NewFriendlyError(
			"The replica %q is not a folder.", cfg.Replica)
	}

	if err := mirror.ValidateRoots(cfg.Source, cfg.Replica); err != nil {
		return Sync{}, errors.NewFriendlyError("Invalid folders: %s.", err)
	}
	return cfg, nil
}

// absPath expands `~` and makes `path` absolute.
func absPath(path string) (string, error) {
	expanded, err := homedirExpand(path)
	if err != nil {
		return "", errors.WithContext(err, "expand")
	}
	return filepath.Abs(expanded)
}

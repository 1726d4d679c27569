// Package changelog builds the logger that records every change made to the
// replica. Each record is written to the console and appended to a log file
// that survives restarts.
package changelog

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/sidkik/foldersync/pkg/errors"
)

// fs is used for mock tests. It will be overridden by afero.NewMemMapFs()
// in the tests.
var fs = afero.NewOsFs()

// Options tweak how the change log is rendered.
type Options struct {
	// Verbose enables Debug records, such as per-pass summaries.
	Verbose bool

	// Color highlights the severity on the console. The log file is never
	// colored.
	Color bool
}

// New creates a logger that writes to `console` and appends to the file at
// `path`. The file is created if it doesn't exist, and is never truncated.
func New(path string, console io.Writer, opts Options) (*logrus.Logger, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return nil, errors.WithContext(err, "create log directory")
		}
	}

	logFile, err := fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.WithContext(err, "open log file")
	}

	logger := logrus.New()
	logger.SetOutput(console)
	logger.SetFormatter(&Formatter{Colors: opts.Color})
	logger.AddHook(newFileHook(logFile, &Formatter{}))

	logger.SetLevel(logrus.InfoLevel)
	if opts.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger, nil
}

// RedirectStandard sends records from the package-level logrus logger, such
// as panic reports, to the same console and log file as `logger`.
func RedirectStandard(logger *logrus.Logger) {
	std := logrus.StandardLogger()
	std.SetOutput(logger.Out)
	std.SetFormatter(logger.Formatter)
	std.ReplaceHooks(logger.Hooks)
}

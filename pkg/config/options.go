package config

import (
	"github.com/sidkik/foldersync/pkg/errors"
)

const (
	// DefaultOptionsPath is where options are read from when no path is
	// given on the command line.
	DefaultOptionsPath = "~/.foldersync.yaml"

	// InitialOptionsVersion is the version assumed for options files that
	// don't specify one.
	InitialOptionsVersion = "1.0"

	// SupportedOptionsVersions is the range of options file versions that
	// this binary understands.
	SupportedOptionsVersions = ">= 1.0, < 2.0"
)

// Options are optional settings that aren't part of the positional
// arguments.
type Options struct {
	Version string `json:"version,omitempty"`

	// Watch starts a pass as soon as the source changes, rather than only
	// when the interval elapses.
	Watch bool `json:"watch,omitempty"`

	// Verbose logs a summary after every pass.
	Verbose bool `json:"verbose,omitempty"`

	// Color highlights severities in the console output.
	Color bool `json:"color,omitempty"`
}

func (opts Options) getVersion() string {
	return opts.Version
}

// ParseOptions reads the options file at `path`. If `path` is empty, the
// default location is used, and a missing file is not an error.
func ParseOptions(path string) (Options, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultOptionsPath
	}

	path, err := homedirExpand(path)
	if err != nil {
		return Options{}, errors.WithContext(err, "expand options path")
	}

	opts := Options{Version: InitialOptionsVersion}
	if err := parseConfig(path, &opts, SupportedOptionsVersions); err != nil {
		if _, ok := err.(errors.FileNotFound); ok {
			if !explicit {
				return Options{Version: InitialOptionsVersion}, nil
			}
			return Options{}, errors.NewFriendlyError(
				"The options file %q doesn't exist.", path)
		}
		return Options{}, errors.WithContext(err, "parse")
	}
	return opts, nil
}

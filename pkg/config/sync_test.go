package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"

	"github.com/sidkik/foldersync/pkg/errors"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		expConfig Sync
		expError  error
	}{
		{
			name: "Valid",
			args: []string{"/data/src", "/backup/replica", "30", "/var/log/sync.log"},
			expConfig: Sync{
				Source:   "/data/src",
				Replica:  "/backup/replica",
				Interval: 30 * time.Second,
				LogPath:  "/var/log/sync.log",
			},
		},
		{
			name: "Home directory is expanded",
			args: []string{"~/src", "~/replica/", "1", "~/sync.log"},
			expConfig: Sync{
				Source:   "/home/user/src",
				Replica:  "/home/user/replica",
				Interval: time.Second,
				LogPath:  "/home/user/sync.log",
			},
		},
		{
			name:     "Too few arguments",
			args:     []string{"/data/src", "/backup/replica", "30"},
			expError: errors.NewFriendlyError("Expected 4 arguments, got 3."),
		},
		{
			name: "Interval isn't a number",
			args: []string{"/data/src", "/backup/replica", "ten", "/sync.log"},
			expError: errors.NewFriendlyError(
				"The interval must be a whole number of seconds, got \"ten\"."),
		},
		{
			name: "Interval isn't positive",
			args: []string{"/data/src", "/backup/replica", "0", "/sync.log"},
			expError: errors.NewFriendlyError(
				"The interval must be at least one second, got 0."),
		},
		{
			name: "Source doesn't exist",
			args: []string{"/data/missing", "/backup/replica", "5", "/sync.log"},
			expError: errors.NewFriendlyError(
				"The source folder \"/data/missing\" doesn't exist."),
		},
		{
			name: "Source is a file",
			args: []string{"/data/file", "/backup/replica", "5", "/sync.log"},
			expError: errors.NewFriendlyError(
				"The source \"/data/file\" is not a folder."),
		},
		{
			name: "Replica is a file",
			args: []string{"/data/src", "/data/file", "5", "/sync.log"},
			expError: errors.NewFriendlyError(
				"The replica \"/data/file\" is not a folder."),
		},
		{
			name: "Replica inside source",
			args: []string{"/data/src", "/data/src/replica", "5", "/sync.log"},
			expError: errors.NewFriendlyError("Invalid folders: replica " +
				"\"/data/src/replica\" is inside source \"/data/src\"."),
		},
	}

	fs = afero.NewMemMapFs()
	assert.NoError(t, fs.MkdirAll("/data/src", 0755))
	assert.NoError(t, fs.MkdirAll("/home/user/src", 0755))
	assert.NoError(t, afero.WriteFile(fs, "/data/file", []byte("file"), 0644))
	homedirExpand = func(path string) (string, error) {
		return strings.Replace(path, "~", "/home/user", 1), nil
	}

	for _, test := range tests {
		config, err := ParseArgs(test.args)
		assert.Equal(t, test.expConfig, config, test.name)
		assert.Equal(t, test.expError, err, test.name)
	}
}

package errors

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithContext(t *testing.T) {
	assert.NoError(t, WithContext(nil, "ignored"))

	err := WithContext(WithContext(FileNotFound{Path: "/src"}, "stat"), "walk")
	assert.EqualError(t, err, `walk: stat: "/src" does not exist`)
	assert.Equal(t, FileNotFound{Path: "/src"}, RootCause(err))
}

func TestRootCauseUnwrapped(t *testing.T) {
	err := New("permission denied")
	assert.Equal(t, err, RootCause(err))
}

func TestStandardLibraryUnwrap(t *testing.T) {
	err := WithContext(&os.PathError{Op: "open", Path: "x", Err: os.ErrNotExist}, "copy")
	assert.True(t, Is(err, os.ErrNotExist))

	var pathErr *os.PathError
	assert.True(t, As(err, &pathErr))
	assert.Equal(t, "x", pathErr.Path)
}

func TestFriendlyError(t *testing.T) {
	err := NewFriendlyError("interval must be positive, got %d", -1)
	assert.Equal(t, "interval must be positive, got -1", err.Error())
	assert.Equal(t, err.Error(), err.FriendlyMessage())
}

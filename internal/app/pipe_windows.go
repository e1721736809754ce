//go:build windows

package app

import (
	"errors"
	"io"

	"golang.org/x/sys/windows"
)

func isClosedPipe(err error) bool {
	return errors.Is(err, windows.ERROR_BROKEN_PIPE) ||
		errors.Is(err, windows.ERROR_NO_DATA) ||
		errors.Is(err, io.ErrClosedPipe)
}

// No SIGPIPE on windows; a broken pipe already surfaces as the write error.
func ignoreSigpipe() {}

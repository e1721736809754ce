//go:build unix

package app

import (
	"errors"
	"io"
	"os/signal"
	"syscall"
)

func isClosedPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrClosedPipe)
}

// ignoreSigpipe stops a consumer hangup from killing the process outright.
// The runtime escalates EPIPE on stdout and stderr to a fatal SIGPIPE unless
// the signal is ignored or handled; ignored, the write itself fails with
// EPIPE and isClosedPipe sees it.
func ignoreSigpipe() {
	signal.Ignore(syscall.SIGPIPE)
}

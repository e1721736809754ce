package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// errPipeClosed marks the consumer going away, which for a prompt feeder is
// a normal shutdown, not a failure.
var errPipeClosed = errors.New("output pipe closed")

// sink serializes line emission. Writes are unbuffered on purpose: each line
// must reach the consumer when emitted, not when the process exits.
type sink struct {
	mu sync.Mutex
	w  io.Writer
}

func newSink(w io.Writer) *sink {
	return &sink{w: w}
}

// newStdoutSink builds the sink every status line goes through. SIGPIPE must
// be ignored before the first write: without that the runtime turns a closed
// stdout into a fatal signal and the errPipeClosed mapping never runs.
func newStdoutSink() *sink {
	ignoreSigpipe()
	return newSink(os.Stdout)
}

func (s *sink) WriteLine(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintln(s.w, line); err != nil {
		if isClosedPipe(err) {
			return errPipeClosed
		}
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

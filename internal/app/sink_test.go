package app

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"testing"
	"time"
)

// TestMain doubles as the child half of the stdout hangup test: with the
// marker variable set the process streams status lines instead of running
// the suite.
func TestMain(m *testing.M) {
	if os.Getenv("GIT_STATUS_WATCH_STDOUT_CHILD") == "1" {
		streamUntilHangup()
	}
	os.Exit(m.Run())
}

// streamUntilHangup emits through the real stdout sink and exits with the
// status the process promises consumers: 0 when the reader hangs up, 1 on
// any other write failure.
func streamUntilHangup() {
	out := newStdoutSink()
	for {
		if err := out.WriteLine(`{"branch":"main"}`); err != nil {
			if errors.Is(err, errPipeClosed) {
				os.Exit(0)
			}
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		time.Sleep(time.Millisecond)
	}
}

type failWriter struct{ err error }

func (w failWriter) Write([]byte) (int, error) { return 0, w.err }

func TestSinkWriteLine(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := newSink(&buf)
	for _, line := range []string{"first", "second"} {
		if err := s.WriteLine(line); err != nil {
			t.Fatalf("WriteLine(%q) error = %v", line, err)
		}
	}
	if got, want := buf.String(), "first\nsecond\n"; got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestSinkClosedPipe(t *testing.T) {
	t.Parallel()

	r, w := io.Pipe()
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	err := newSink(w).WriteLine("status")
	if !errors.Is(err, errPipeClosed) {
		t.Fatalf("WriteLine() error = %v, want errPipeClosed", err)
	}
}

func TestSinkWrapsOtherWriteErrors(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk full")
	err := newSink(failWriter{err: cause}).WriteLine("status")
	if err == nil {
		t.Fatal("WriteLine() error = nil, want non-nil")
	}
	if errors.Is(err, errPipeClosed) {
		t.Fatalf("WriteLine() error = %v, should not be errPipeClosed", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("WriteLine() error = %v, want wrapped %v", err, cause)
	}
}

// A consumer closing the real stdout pipe mid-stream must end the process
// with status 0, not with a SIGPIPE death. Needs a separate process because
// only writes to the process's own fd 1 take the runtime's SIGPIPE path.
func TestSinkStdoutHangupExitsZero(t *testing.T) {
	t.Parallel()

	child := exec.Command(os.Args[0])
	child.Env = append(os.Environ(), "GIT_STATUS_WATCH_STDOUT_CHILD=1")
	child.Stderr = os.Stderr
	stdout, err := child.StdoutPipe()
	if err != nil {
		t.Fatal(err)
	}
	if err := child.Start(); err != nil {
		t.Fatal(err)
	}
	watchdog := time.AfterFunc(10*time.Second, func() { child.Process.Kill() })
	defer watchdog.Stop()

	// One line proves the stream is live; closing the read end is the
	// consumer going away mid-run.
	if _, err := bufio.NewReader(stdout).ReadString('\n'); err != nil {
		t.Fatalf("read first line: %v", err)
	}
	if err := stdout.Close(); err != nil {
		t.Fatal(err)
	}

	if err := child.Wait(); err != nil {
		t.Fatalf("child exited with %v, want status 0", err)
	}
}

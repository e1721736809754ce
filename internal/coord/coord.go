// Package coord implements single-leader coordination between instances
// watching the same repository. The leader holds a non-blocking advisory
// file lock and publishes every rendered line to a state file; followers
// re-emit the state file and take the lock over when it frees up.
package coord

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Identity derives the stable per-repository key that names the lock and
// state files. Symlinked paths collapse to one identity, so two instances
// reaching the same repository through different paths coordinate instead of
// computing twice.
func Identity(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	sum := sha256.Sum256([]byte(abs))
	return hex.EncodeToString(sum[:]), nil
}

// StateFile is the rendezvous for one repository identity: the leader writes
// every rendered line here and followers re-emit it verbatim.
type StateFile struct {
	path string
}

func NewStateFile(dir, identity string) StateFile {
	return StateFile{path: filepath.Join(dir, identity)}
}

func (s StateFile) Path() string { return s.path }

// LockPath names the leader lock next to the state file. The lock must be a
// separate file: Write replaces the state file's inode on every update,
// which would silently detach a lock held on it.
func (s StateFile) LockPath() string { return s.path + ".lock" }

// Write replaces the content atomically: temp file in the same directory,
// then rename. Readers never observe a half-written line, and concurrent
// writers cannot interleave.
func (s StateFile) Write(line string) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("state file: %w", err)
	}
	_, werr := tmp.WriteString(line)
	// CreateTemp opens 0600; followers under other accounts sharing the
	// state dir must be able to read what the leader publishes, same as
	// the 0644 lock file.
	merr := tmp.Chmod(0o644)
	cerr := tmp.Close()
	if werr != nil || merr != nil || cerr != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("state file: %w", errors.Join(werr, merr, cerr))
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("state file: %w", err)
	}
	return nil
}

// Read returns the current content. A missing file surfaces as
// os.ErrNotExist, meaning no leader has published yet.
func (s StateFile) Read() (string, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

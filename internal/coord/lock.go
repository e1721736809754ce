package coord

import (
	"errors"
	"os"
)

// ErrLocked reports that another process currently holds the leader lock.
var ErrLocked = errors.New("leader lock held by another process")

// Lock is a held advisory file lock. The OS releases it when the process
// exits by any means, so a crashed leader never wedges its followers.
type Lock struct {
	f *os.File
}

// TryLock attempts a non-blocking exclusive lock on path, creating the file
// if needed. It returns ErrLocked when the lock is held elsewhere and never
// waits.
func TryLock(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	if err := lockFileNB(f); err != nil {
		f.Close()
		return nil, err
	}
	return &Lock{f: f}, nil
}

// Release unlocks and closes the underlying file. The lock file itself stays
// on disk for the next leader.
func (l *Lock) Release() error {
	err := unlockFile(l.f)
	return errors.Join(err, l.f.Close())
}

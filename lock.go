// OS-level file locking for cross-process coordination.
//
// fileLock wraps flock(2) / LockFileEx around the lock file a FileKV
// keeps in its directory, so two processes pointed at the same
// directory cannot interleave writes. The mutex serialises flock
// syscalls so Fd() cannot race with Close() on the same *os.File.
package shelf

import (
	"os"
	"sync"
)

// LockMode selects shared (read) or exclusive (write) locking.
type LockMode int

const (
	LockShared LockMode = iota
	LockExclusive
)

// fileLock coordinates OS-level locks on a single lock file.
type fileLock struct {
	mu sync.Mutex
	f  *os.File
}

// Lock acquires a shared or exclusive flock, blocking until granted.
func (l *fileLock) Lock(mode LockMode) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	return l.lock(mode)
}

// Unlock releases the flock.
func (l *fileLock) Unlock() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	return l.unlock()
}

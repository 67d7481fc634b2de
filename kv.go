// Host key-value store abstraction.
//
// The store adapter treats the host as a flat map of string keys to
// string values with a bounded capacity. Two implementations are
// provided: MemoryKV models the browser storage quota for tests and
// embedding, FileKV keeps one file per key inside a sandboxed
// directory. Writes on both are single-shot replacements: a failed
// Set leaves the prior value intact, so partial corruption is
// structurally impossible.
package shelf

import (
	"io"
	"os"
	"strings"
	"sync"
)

// KV is the host key-value store. Get reports whether the key exists.
// Set must either replace the value completely or fail without
// touching it. Implementations must be safe for concurrent use.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// MemoryKV is a map-backed store with an optional byte quota summed
// over all keys and values. A Set that would exceed the quota fails
// with ErrQuotaExceeded and leaves the prior value in place.
type MemoryKV struct {
	mu    sync.RWMutex
	data  map[string]string
	used  int
	quota int // 0 means unlimited
}

// NewMemoryKV returns an in-memory store. quota caps the total bytes
// held (keys plus values); pass 0 for no cap.
func NewMemoryKV(quota int) *MemoryKV {
	return &MemoryKV{
		data:  make(map[string]string),
		quota: quota,
	}
}

// Get returns the value for key, if present.
func (m *MemoryKV) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set replaces the value for key, enforcing the quota first.
func (m *MemoryKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	used := m.used
	if old, ok := m.data[key]; ok {
		used -= len(key) + len(old)
	}
	used += len(key) + len(value)

	if m.quota > 0 && used > m.quota {
		return ErrQuotaExceeded
	}

	m.data[key] = value
	m.used = used
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (m *MemoryKV) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.data[key]; ok {
		m.used -= len(key) + len(old)
		delete(m.data, key)
	}
	return nil
}

// FileKV stores one file per key inside an os.Root-sandboxed
// directory. Set writes a temporary file and renames it over the key,
// so readers never observe a torn value. An OS-level lock file
// coordinates writers across processes.
type FileKV struct {
	root *os.Root
	lock *fileLock
	lf   *os.File
	mu   sync.RWMutex
}

// lockName is the coordination file kept alongside the key files.
const lockName = ".lock"

// NewFileKV opens (or creates) dir as a file-backed store.
func NewFileKV(dir string) (*FileKV, error) {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, err
	}

	lf, err := root.OpenFile(lockName, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		root.Close()
		return nil, err
	}

	return &FileKV{
		root: root,
		lock: &fileLock{f: lf},
		lf:   lf,
	}, nil
}

// Close releases the directory and lock handles.
func (f *FileKV) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var errs []error
	if err := f.lf.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := f.root.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// validKey rejects keys that would escape the directory or collide
// with the store's own files.
func validKey(key string) bool {
	return key != "" &&
		key != lockName &&
		!strings.ContainsAny(key, `/\`) &&
		key != "." && key != ".."
}

// Get returns the value for key, if present.
func (f *FileKV) Get(key string) (string, bool, error) {
	if !validKey(key) {
		return "", false, ErrInvalidKey
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if err := f.lock.Lock(LockShared); err != nil {
		return "", false, err
	}
	defer f.lock.Unlock()

	file, err := f.root.Open(key)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

// Set replaces the value for key via a temp file and rename.
func (f *FileKV) Set(key, value string) error {
	if !validKey(key) {
		return ErrInvalidKey
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.lock.Lock(LockExclusive); err != nil {
		return err
	}
	defer f.lock.Unlock()

	tmp := key + ".tmp"
	file, err := f.root.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := file.WriteString(value); err != nil {
		file.Close()
		f.root.Remove(tmp)
		return err
	}
	if err := file.Sync(); err != nil {
		file.Close()
		f.root.Remove(tmp)
		return err
	}
	if err := file.Close(); err != nil {
		f.root.Remove(tmp)
		return err
	}

	return f.root.Rename(tmp, key)
}

// Delete removes key. Deleting a missing key is not an error.
func (f *FileKV) Delete(key string) error {
	if !validKey(key) {
		return ErrInvalidKey
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.lock.Lock(LockExclusive); err != nil {
		return err
	}
	defer f.lock.Unlock()

	err := f.root.Remove(key)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

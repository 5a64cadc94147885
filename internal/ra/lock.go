package ra

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	lockRetryDelay = 200 * time.Millisecond
	lockTimeout    = 30 * time.Second
	lockStaleAfter = 10 * time.Minute
	lockMu         sync.RWMutex // guards the lock tunables for tests
)

// acquireFileLock serializes cross-process access to a message base using a
// .BSY file in the base root. The returned function drops the lock.
func acquireFileLock(root string) (func(), error) {
	lockPath := filepath.Join(root, LockFile)

	lockMu.RLock()
	timeout := lockTimeout
	retryDelay := lockRetryDelay
	staleAfter := lockStaleAfter
	lockMu.RUnlock()

	deadline := time.Now().Add(timeout)

	for {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			_, _ = fmt.Fprintf(f, "pid=%d time=%s\n", os.Getpid(), time.Now().Format(time.RFC3339))
			_ = f.Close()
			break
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("%w: %s: %v", ErrBaseOpen, lockPath, err)
		}

		if info, statErr := os.Stat(lockPath); statErr == nil {
			if time.Since(info.ModTime()) > staleAfter {
				_ = os.Remove(lockPath)
				continue
			}
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s", ErrLocked, lockPath)
		}
		time.Sleep(retryDelay)
	}
	return func() {
		_ = os.Remove(lockPath)
	}, nil
}

// Touch refreshes the lock file's modification time. Long runs call it as
// they go so the lock is not taken for stale while it is held.
func (b *Base) Touch() error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	now := time.Now()
	if err := os.Chtimes(filepath.Join(b.Root, LockFile), now, now); err != nil {
		return fmt.Errorf("ra: refresh lock: %w", err)
	}
	return nil
}

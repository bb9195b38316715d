// Package shutdown coordinates graceful termination. Long running parts of
// the app register hooks that run when a termination signal arrives, and
// request handlers can consult CheckShutdown to refuse new work while the
// hooks drain.
package shutdown

import (
	"sync"
)

var (
	isShutdown bool
	mu         sync.RWMutex
)

// CheckShutdown reports whether a shutdown is in progress
func CheckShutdown() bool {
	mu.RLock()
	defer mu.RUnlock()
	return isShutdown
}

// setShutdown sets the shutdown flag
func setShutdown() {
	mu.Lock()
	isShutdown = true
	mu.Unlock()
}

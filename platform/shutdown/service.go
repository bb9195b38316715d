package shutdown

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rohanthewiz/logger"
)

const gracePeriod = 15 * time.Second

// HookFunc receives the grace period it has to finish its cleanup
type HookFunc func(duration time.Duration) error

type shutdownHooks struct {
	hooks []HookFunc
	lock  sync.Mutex
}

var hooks shutdownHooks

// RegisterHook adds fn to the set of hooks run on SIGINT or SIGTERM
func RegisterHook(fn HookFunc) {
	hooks.lock.Lock()
	defer hooks.lock.Unlock()
	hooks.hooks = append(hooks.hooks, fn)
	logger.Debug("Registered shutdown hook", "count", len(hooks.hooks))
}

// InitShutdownService watches for termination signals. When one arrives it
// flips the shutdown flag, runs every registered hook concurrently, and
// closes done so the caller can exit.
func InitShutdownService(done chan struct{}) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer close(done)

		sig := <-sigChan
		logger.Info("Received shutdown signal", "signal", sig)
		setShutdown()

		hooks.lock.Lock()
		pending := make([]HookFunc, len(hooks.hooks))
		copy(pending, hooks.hooks)
		hooks.lock.Unlock()

		logger.Info("Running shutdown hooks", "count", len(pending), "grace", gracePeriod)

		wg := sync.WaitGroup{}
		for _, hook := range pending {
			wg.Add(1)
			go func(fn HookFunc) {
				defer wg.Done()
				if err := fn(gracePeriod); err != nil {
					logger.LogErr(err, "shutdown hook failed")
				}
			}(hook)
		}

		finished := make(chan struct{})
		go func() {
			wg.Wait()
			close(finished)
		}()

		select {
		case <-finished:
			logger.Info("All shutdown hooks completed")
		case <-time.After(gracePeriod):
			logger.Warn("Shutdown hooks timed out", "grace", gracePeriod)
		}
	}()
}

package serverapp

import (
	"context"
	"log/slog"
	"sync"
)

// cleanupStack tracks cleanup functions and runs them LIFO, so resources are
// released in the reverse order of acquisition.
type cleanupStack struct {
	mu    sync.Mutex
	funcs []namedCleanup
}

type namedCleanup struct {
	name string
	fn   func(context.Context) error
}

func (s *cleanupStack) push(name string, fn func(context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.funcs = append(s.funcs, namedCleanup{name: name, fn: fn})
}

func (s *cleanupStack) run(ctx context.Context, logger *slog.Logger) error {
	s.mu.Lock()
	funcs := s.funcs
	s.funcs = nil
	s.mu.Unlock()

	var firstErr error
	for i := len(funcs) - 1; i >= 0; i-- {
		c := funcs[i]
		if err := c.fn(ctx); err != nil {
			logger.Error("cleanup failed",
				slog.String("resource", c.name),
				slog.String("error", err.Error()),
			)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		logger.Debug("cleanup complete", slog.String("resource", c.name))
	}
	return firstErr
}

// Shutdown releases all acquired resources. It is safe to call more than
// once; only the first call runs the cleanup stack.
func (a *App) Shutdown(ctx context.Context) error {
	var err error
	a.shutdownOnce.Do(func() {
		a.logger.Info("shutting down")
		err = a.cleanup.run(ctx, a.logger.Logger)
		if err == nil {
			a.logger.Info("shutdown complete")
		}
	})
	return err
}

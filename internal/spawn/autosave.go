package spawn

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultAutosaveInterval is used when the configured interval is not positive.
const DefaultAutosaveInterval = time.Minute

// Autosaver periodically persists changed worlds of a Service.
type Autosaver struct {
	service  *Service
	interval time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewAutosaver creates autosaver
func NewAutosaver(service *Service, interval time.Duration) *Autosaver {
	if interval <= 0 {
		interval = DefaultAutosaveInterval
	}
	return &Autosaver{
		service:  service,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start runs the save loop (blocks until context is canceled or Stop is called).
// A final save is made on the way out.
func (a *Autosaver) Start(ctx context.Context) error {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	slog.Info("spawn autosave started", "interval", a.interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("spawn autosave stopping")
			a.flush(context.WithoutCancel(ctx))
			return ctx.Err()

		case <-a.stopCh:
			a.flush(ctx)
			slog.Info("spawn autosave stopped")
			return nil

		case <-ticker.C:
			a.flush(ctx)
		}
	}
}

// Stop stops autosaver
func (a *Autosaver) Stop() {
	a.stopOnce.Do(func() { close(a.stopCh) })
}

func (a *Autosaver) flush(ctx context.Context) {
	if err := a.service.SaveAll(ctx); err != nil {
		slog.Error("spawn autosave failed", "error", err)
	}
}

// services/scheduler.go
package services

import (
	"context"
	"time"

	"eco-cycle-game/logger"

	"github.com/go-co-op/gocron/v2"
)

// StartRefreshScheduler refreshes the catalog cache every interval until the
// returned scheduler is shut down.
func (s *CatalogService) StartRefreshScheduler(ctx context.Context, interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			refreshCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()
			if err := s.Refresh(refreshCtx); err != nil {
				logger.Log.Errorw("[Scheduler] Catalog refresh failed", "error", err)
			}
		}),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, err
	}

	sched.Start()
	logger.Log.Infow("⏰ Catalog refresh scheduled", "interval", interval)
	return sched, nil
}

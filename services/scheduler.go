// services/scheduler.go
package services

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartSnapshotScheduler publishes leaderboard snapshots on a fixed
// interval. Call only when R2 is configured.
func (s *ScoreboardService) StartSnapshotScheduler(interval time.Duration) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := s.PublishSnapshots(ctx); err != nil {
				log.Printf("[Scheduler] Snapshot publish failed: %v", err)
				return
			}
			log.Println("✅ Published scoreboard snapshots")
		}),
	)
}

package workers

import (
	"context"
	"errors"
	"log"
	"time"

	"wargame-progression-system/models"
	"wargame-progression-system/services"
	"wargame-progression-system/store"
)

// AccessReconciler periodically re-asserts the channel grant implied by each
// participant's recorded level. The submission flow's access cascade is
// best-effort, so a grant can fail after the score already advanced; the
// progressions table is the source of truth and this worker closes the gap.
// It only re-grants; it never revokes and never touches scores.
type AccessReconciler struct {
	Store  *store.Manager
	Access services.ChannelAccess
}

func NewAccessReconciler(m *store.Manager, access services.ChannelAccess) *AccessReconciler {
	return &AccessReconciler{Store: m, Access: access}
}

// Run polls until the context is cancelled.
func (r *AccessReconciler) Run(ctx context.Context, interval time.Duration) {
	log.Println("Starting access reconciler...")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Access reconciler stopped.")
			return
		case <-ticker.C:
			if err := r.reconcile(ctx); err != nil {
				log.Printf("❌ Access reconcile pass failed: %v", err)
			}
		}
	}
}

func (r *AccessReconciler) reconcile(ctx context.Context) error {
	db, err := r.Store.Conn(ctx)
	if err != nil {
		return err
	}

	var progressions []models.Progression
	if err := db.WithContext(ctx).Find(&progressions).Error; err != nil {
		return err
	}

	regranted := 0
	for _, prog := range progressions {
		for _, wargame := range models.Wargames() {
			level := prog.Level(wargame)
			if level == 0 {
				// Entry channel; nothing was ever revoked.
				continue
			}
			// Past the final level the participant keeps the last channel.
			if level > wargame.MaxLevel() {
				level = wargame.MaxLevel()
			}

			channel := wargame.ChannelName(level)
			if err := r.Access.SetVisibility(ctx, channel, prog.Identity, true); err != nil {
				if errors.Is(err, services.ErrResourceNotFound) {
					log.Printf("⚠️ Reconciler: channel %s missing for %s, check channel provisioning", channel, prog.Identity)
					continue
				}
				log.Printf("⚠️ Reconciler: re-granting %s for %s failed: %v", channel, prog.Identity, err)
				continue
			}
			regranted++
		}
	}

	log.Printf("Access reconcile pass done: %d grant(s) re-asserted for %d participant(s)", regranted, len(progressions))
	return nil
}

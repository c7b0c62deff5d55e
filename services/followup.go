package services

import (
	"context"
	"os"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/modernwebbuilds/forkitt-api/initializers"
	"github.com/modernwebbuilds/forkitt-api/models"
)

func followupGrace() time.Duration {
	if v := os.Getenv("FOLLOWUP_GRACE_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * time.Minute
		}
	}
	return 10 * time.Minute
}

// SweepFollowups finds orders whose pickup time plus the grace period has
// elapsed while still in an active, non-terminal status and sends one
// follow-up each. It only reads and flags, never transitions status, so it
// is safe to run alongside normal order writes. Returns the number of
// follow-ups sent.
func SweepFollowups(db *gorm.DB, dispatcher *Dispatcher) int {
	cutoff := time.Now().UTC().Add(-followupGrace()).Format(time.RFC3339)

	var orders []models.Order
	err := db.Where("followup_sent = ?", false).
		Where("status IN ?", []string{models.StatusPending, models.StatusConfirmed, models.StatusReady}).
		Where("pickup_time <= ?", cutoff).
		Limit(20).
		Find(&orders).Error
	if err != nil {
		initializers.Log.Errorw("followup sweep query failed", "error", err)
		return 0
	}

	sent := 0
	for _, order := range orders {
		var restaurant models.Restaurant
		if err := db.First(&restaurant, order.RestaurantID).Error; err == nil {
			dispatcher.NotifyFollowup(&order, restaurant.Name)
		}
		// Flag regardless of send outcome: one follow-up per order, ever.
		if err := db.Model(&models.Order{}).Where("id = ?", order.ID).
			Update("followup_sent", true).Error; err != nil {
			initializers.Log.Errorw("failed to flag followup", "order_number", order.OrderNumber, "error", err)
			continue
		}
		sent++
	}
	return sent
}

// RunFollowupSweeper runs SweepFollowups on a ticker until the context is
// cancelled.
func RunFollowupSweeper(ctx context.Context, db *gorm.DB, dispatcher *Dispatcher, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	initializers.Log.Infow("followup sweeper started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			initializers.Log.Info("followup sweeper stopped")
			return
		case <-ticker.C:
			if n := SweepFollowups(db, dispatcher); n > 0 {
				initializers.Log.Infow("followups sent", "count", n)
			}
		}
	}
}

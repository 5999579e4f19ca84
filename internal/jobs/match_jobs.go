package jobs

import (
	"context"

	"fieldmatch-backend/internal/logger"
)

// ExpireMatchRequests persists EXPIRED on open requests past their expiry.
// Reads already treat them as expired; this makes the stored state agree.
func (jr *JobRunner) ExpireMatchRequests() {
	jr.runWithRecovery("ExpireMatchRequests", func(ctx context.Context) {
		count, err := jr.matchSvc.ExpireOldRequests(ctx)
		if err != nil {
			logger.Error("Failed to expire match requests", "error", err)
			return
		}
		logger.Info("Expired match requests", "count", count)
	})
}

// SyncMatchedBookings retries marking bookings as having an opponent for
// matches whose booking update failed after commit.
func (jr *JobRunner) SyncMatchedBookings() {
	jr.runWithRecovery("SyncMatchedBookings", func(ctx context.Context) {
		count, err := jr.matchSvc.SyncMatchedBookings(ctx, jr.config.Matching.SyncBatch)
		if err != nil {
			logger.Error("Failed to sync matched bookings", "error", err)
			return
		}
		logger.Info("Synced matched bookings", "count", count)
	})
}

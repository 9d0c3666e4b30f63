package jobs

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"gorm.io/gorm"
)

// ClaimPurgeJob deletes rejected payment claims past their retention window.
// Pending and approved claims are never touched.
type ClaimPurgeJob struct {
	db        *gorm.DB
	logger    *slog.Logger
	retention time.Duration
}

// NewClaimPurgeJob creates a new rejected-claim purge job.
func NewClaimPurgeJob(db *gorm.DB, logger *slog.Logger, retention time.Duration) *ClaimPurgeJob {
	return &ClaimPurgeJob{
		db:        db,
		logger:    logger,
		retention: retention,
	}
}

// Name returns the job name.
func (j *ClaimPurgeJob) Name() string {
	return "rejected_claim_purge"
}

// Execute removes rejected claims older than the retention window.
func (j *ClaimPurgeJob) Execute(ctx context.Context) error {
	cutoff := time.Now().Add(-j.retention)

	result := j.db.WithContext(ctx).
		Exec(`DELETE FROM payment_claims WHERE status = 'rejected' AND updated_at < ?`, cutoff)
	if result.Error != nil {
		return fmt.Errorf("purge rejected claims: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		j.logger.Info("purged rejected payment claims",
			"count", result.RowsAffected,
			"cutoff", cutoff.Format(time.RFC3339))
	}

	return nil
}

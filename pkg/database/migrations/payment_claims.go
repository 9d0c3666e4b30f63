package migrations

import "gorm.io/gorm"

func init() {
	// One active (pending or approved) claim per learner and course. GORM's
	// auto-migration cannot express partial indexes, so this runs as a
	// registered migration after the schema sync.
	Register("payment_claims_active_unique_index", func(db *gorm.DB) error {
		return db.Exec(
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_payment_claims_active
			 ON payment_claims (user_id, course_id)
			 WHERE status IN ('pending', 'approved')`,
		).Error
	})
}

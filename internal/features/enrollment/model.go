package enrollment

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillbridge/marketplace-server-go/pkg/pagination"
	"github.com/skillbridge/marketplace-server-go/pkg/types"
)

// PaymentClaim records a learner's manual payment submission for a course.
// At most one pending or approved claim may exist per (user, course) pair,
// enforced by a partial unique index alongside the application-level check.
type PaymentClaim struct {
	types.BaseModel

	UserID        uuid.UUID           `gorm:"type:uuid;not null;index;column:user_id" json:"userId"`
	CourseID      uuid.UUID           `gorm:"type:uuid;not null;index;column:course_id" json:"courseId"`
	TransactionID string              `gorm:"type:varchar(100);not null;column:transaction_id" json:"transactionId"`
	Amount        types.Money         `gorm:"type:numeric(12,2);not null;default:0" json:"amount"`
	Status        types.PaymentStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
}

// TableName overrides the default table name.
func (PaymentClaim) TableName() string { return "payment_claims" }

// ClaimDetails is a claim joined with learner and course context for the
// admin review queue.
type ClaimDetails struct {
	PaymentClaim
	UserFullName string `json:"userFullName"`
	UserEmail    string `json:"userEmail"`
	CourseTitle  string `json:"courseTitle"`
}

// Get retrieves a claim by ID.
func Get(db *gorm.DB, id uuid.UUID) (PaymentClaim, error) {
	var claim PaymentClaim
	if err := db.First(&claim, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return claim, ErrClaimNotFound
		}
		return claim, err
	}
	return claim, nil
}

// FindActiveClaim returns the pending or approved claim for a (user, course)
// pair. The partial unique index guarantees there is at most one.
func FindActiveClaim(db *gorm.DB, userID, courseID uuid.UUID) (PaymentClaim, error) {
	var claim PaymentClaim
	err := db.Where("user_id = ? AND course_id = ? AND status IN ?",
		userID, courseID,
		[]types.PaymentStatus{types.PaymentStatusPending, types.PaymentStatusApproved},
	).First(&claim).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return claim, ErrClaimNotFound
		}
		return claim, err
	}
	return claim, nil
}

// ListByStatus returns paginated claims in a given state, joined with learner
// and course context, newest first.
func ListByStatus(db *gorm.DB, status types.PaymentStatus, params pagination.Params) ([]ClaimDetails, int64, error) {
	base := db.Model(&PaymentClaim{}).Where("payment_claims.status = ?", status)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var claims []ClaimDetails
	err := base.
		Select("payment_claims.*, user_profiles.full_name AS user_full_name, user_profiles.email AS user_email, courses.title AS course_title").
		Joins("LEFT JOIN user_profiles ON user_profiles.id = payment_claims.user_id").
		Joins("LEFT JOIN courses ON courses.id = payment_claims.course_id").
		Order("payment_claims.created_at DESC").
		Offset(params.Skip).
		Limit(params.Limit).
		Find(&claims).Error

	return claims, total, err
}

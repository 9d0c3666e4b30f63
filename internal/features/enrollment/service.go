package enrollment

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/skillbridge/marketplace-server-go/internal/features/course"
	"github.com/skillbridge/marketplace-server-go/internal/features/user"
	"github.com/skillbridge/marketplace-server-go/pkg/types"
)

// pgUniqueViolation is the Postgres error code for unique constraint violations.
const pgUniqueViolation = "23505"

// ResolveAccess determines a learner's access level for a course. Resolution
// order: profile enrollment set first, then an approved claim (which is
// written back into the profile so later checks short-circuit), then a
// pending claim, then the default. The write-back is an atomic set-add, so
// repeated resolutions stay idempotent.
func ResolveAccess(db *gorm.DB, usr *user.User, courseID uuid.UUID) (types.AccessStatus, error) {
	if usr.IsEnrolled(courseID) {
		return types.AccessEnrolled, nil
	}

	claim, err := FindActiveClaim(db, usr.ID, courseID)
	if err != nil {
		if errors.Is(err, ErrClaimNotFound) {
			return types.AccessNotEnrolled, nil
		}
		return types.AccessNotEnrolled, err
	}

	switch claim.Status {
	case types.PaymentStatusApproved:
		if _, err := user.AddEnrollment(db, usr.ID, courseID); err != nil {
			return types.AccessNotEnrolled, err
		}
		return types.AccessEnrolled, nil
	case types.PaymentStatusPending:
		return types.AccessPaymentPending, nil
	}

	return types.AccessNotEnrolled, nil
}

// SubmitClaim records a learner's manual payment for a course as a pending
// claim, snapshotting the course price. A second submission while a pending
// or approved claim exists is rejected; the partial unique index turns a
// concurrent double-submit into the same conflict error.
func SubmitClaim(db *gorm.DB, usr *user.User, courseID uuid.UUID, transactionID string) (PaymentClaim, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return PaymentClaim{}, ErrTransactionIDRequired
	}

	crs, err := course.Get(db, courseID)
	if err != nil {
		return PaymentClaim{}, err
	}

	if usr.IsEnrolled(courseID) {
		return PaymentClaim{}, ErrAlreadyEnrolled
	}

	if _, err := FindActiveClaim(db, usr.ID, courseID); err == nil {
		return PaymentClaim{}, ErrDuplicateClaim
	} else if !errors.Is(err, ErrClaimNotFound) {
		return PaymentClaim{}, err
	}

	claim := PaymentClaim{
		UserID:        usr.ID,
		CourseID:      courseID,
		TransactionID: transactionID,
		Amount:        types.NewMoneyFromInt(int64(crs.Price)),
		Status:        types.PaymentStatusPending,
	}

	if err := db.Create(&claim).Error; err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && string(pgErr.Code) == pgUniqueViolation {
			return PaymentClaim{}, ErrDuplicateClaim
		}
		return PaymentClaim{}, err
	}

	return claim, nil
}

// Approve flips a pending claim to approved and enrolls the learner, both in
// one transaction: if either step fails, neither takes effect.
func Approve(db *gorm.DB, claimID uuid.UUID) (PaymentClaim, error) {
	var claim PaymentClaim

	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		claim, err = getForUpdate(tx, claimID)
		if err != nil {
			return err
		}

		if !claim.Status.CanTransitionTo(types.PaymentStatusApproved) {
			return ErrInvalidTransition
		}

		if _, err := user.AddEnrollment(tx, claim.UserID, claim.CourseID); err != nil {
			return err
		}

		claim.Status = types.PaymentStatusApproved
		return tx.Save(&claim).Error
	})
	if err != nil {
		return PaymentClaim{}, err
	}

	return claim, nil
}

// Reject flips a pending claim to rejected. No enrollment effect.
func Reject(db *gorm.DB, claimID uuid.UUID) (PaymentClaim, error) {
	var claim PaymentClaim

	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		claim, err = getForUpdate(tx, claimID)
		if err != nil {
			return err
		}

		if !claim.Status.CanTransitionTo(types.PaymentStatusRejected) {
			return ErrInvalidTransition
		}

		claim.Status = types.PaymentStatusRejected
		return tx.Save(&claim).Error
	})
	if err != nil {
		return PaymentClaim{}, err
	}

	return claim, nil
}

// MyEnrollments resolves a learner's enrollment set to course records,
// newest first.
func MyEnrollments(db *gorm.DB, usr *user.User) ([]course.Course, error) {
	courses := make([]course.Course, 0, len(usr.EnrolledCourses))
	if len(usr.EnrolledCourses) == 0 {
		return courses, nil
	}

	ids := make([]uuid.UUID, 0, len(usr.EnrolledCourses))
	for _, raw := range usr.EnrolledCourses {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	err := db.Where("id IN ?", ids).
		Order("created_at DESC").
		Find(&courses).Error
	return courses, err
}

func getForUpdate(tx *gorm.DB, claimID uuid.UUID) (PaymentClaim, error) {
	var claim PaymentClaim
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&claim, "id = ?", claimID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return claim, ErrClaimNotFound
		}
		return claim, err
	}
	return claim, nil
}

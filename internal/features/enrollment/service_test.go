package enrollment

import (
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/skillbridge/marketplace-server-go/internal/features/course"
	"github.com/skillbridge/marketplace-server-go/internal/features/user"
	"github.com/skillbridge/marketplace-server-go/pkg/types"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Discard,
	})
	require.NoError(t, err)

	return db, mock
}

func claimColumns() []string {
	return []string{"id", "created_at", "updated_at", "user_id", "course_id", "transaction_id", "amount", "status"}
}

func claimRow(id, userID, courseID uuid.UUID, status types.PaymentStatus) *sqlmock.Rows {
	return sqlmock.NewRows(claimColumns()).
		AddRow(id, time.Now(), time.Now(), userID, courseID, "TXN-1234", "499", status)
}

func courseRow(id uuid.UUID, price int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "created_at", "updated_at",
		"title", "description", "author", "user_id", "label", "tags", "price", "duration",
	}).AddRow(
		id, time.Now(), time.Now(),
		"Intro to Go", "", "Jane Doe", uuid.New(), "teacher", "{golang}", price, "6 weeks",
	)
}

func testUser(enrolled ...uuid.UUID) *user.User {
	ids := make(pq.StringArray, 0, len(enrolled))
	for _, id := range enrolled {
		ids = append(ids, id.String())
	}

	usr := &user.User{
		FullName:        "Sam Learner",
		Email:           "sam@example.com",
		Role:            types.RoleStudent,
		EnrolledCourses: ids,
		Active:          true,
	}
	usr.ID = uuid.New()
	return usr
}

func TestResolveAccessEnrolledViaProfile(t *testing.T) {
	db, mock := newMockDB(t)
	courseID := uuid.New()

	// No queries expected: the profile set answers directly.
	status, err := ResolveAccess(db, testUser(courseID), courseID)
	require.NoError(t, err)
	require.Equal(t, types.AccessEnrolled, status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveAccessApprovedClaimWritesBack(t *testing.T) {
	db, mock := newMockDB(t)
	usr := testUser()
	courseID := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM "payment_claims"`).
		WillReturnRows(claimRow(uuid.New(), usr.ID, courseID, types.PaymentStatusApproved))
	mock.ExpectExec(`UPDATE user_profiles`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	status, err := ResolveAccess(db, usr, courseID)
	require.NoError(t, err)
	require.Equal(t, types.AccessEnrolled, status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveAccessApprovedClaimIdempotent(t *testing.T) {
	db, mock := newMockDB(t)
	usr := testUser()
	courseID := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM "payment_claims"`).
		WillReturnRows(claimRow(uuid.New(), usr.ID, courseID, types.PaymentStatusApproved))
	// Set-add matched no rows: the course was already present.
	mock.ExpectExec(`UPDATE user_profiles`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	status, err := ResolveAccess(db, usr, courseID)
	require.NoError(t, err)
	require.Equal(t, types.AccessEnrolled, status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveAccessPendingClaim(t *testing.T) {
	db, mock := newMockDB(t)
	usr := testUser()
	courseID := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM "payment_claims"`).
		WillReturnRows(claimRow(uuid.New(), usr.ID, courseID, types.PaymentStatusPending))

	status, err := ResolveAccess(db, usr, courseID)
	require.NoError(t, err)
	require.Equal(t, types.AccessPaymentPending, status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveAccessNoClaim(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT (.+) FROM "payment_claims"`).
		WillReturnRows(sqlmock.NewRows(claimColumns()))

	status, err := ResolveAccess(db, testUser(), uuid.New())
	require.NoError(t, err)
	require.Equal(t, types.AccessNotEnrolled, status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitClaimRequiresTransactionID(t *testing.T) {
	db, mock := newMockDB(t)

	_, err := SubmitClaim(db, testUser(), uuid.New(), "   ")
	require.ErrorIs(t, err, ErrTransactionIDRequired)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitClaimUnknownCourse(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT (.+) FROM "courses"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := SubmitClaim(db, testUser(), uuid.New(), "TXN-1")
	require.ErrorIs(t, err, course.ErrCourseNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitClaimAlreadyEnrolled(t *testing.T) {
	db, mock := newMockDB(t)
	courseID := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM "courses"`).
		WillReturnRows(courseRow(courseID, 499))

	_, err := SubmitClaim(db, testUser(courseID), courseID, "TXN-1")
	require.ErrorIs(t, err, ErrAlreadyEnrolled)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitClaimRejectsDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	usr := testUser()
	courseID := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM "courses"`).
		WillReturnRows(courseRow(courseID, 499))
	mock.ExpectQuery(`SELECT (.+) FROM "payment_claims"`).
		WillReturnRows(claimRow(uuid.New(), usr.ID, courseID, types.PaymentStatusPending))

	_, err := SubmitClaim(db, usr, courseID, "TXN-2")
	require.ErrorIs(t, err, ErrDuplicateClaim)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitClaimMapsUniqueViolation(t *testing.T) {
	db, mock := newMockDB(t)
	usr := testUser()
	courseID := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM "courses"`).
		WillReturnRows(courseRow(courseID, 499))
	mock.ExpectQuery(`SELECT (.+) FROM "payment_claims"`).
		WillReturnRows(sqlmock.NewRows(claimColumns()))
	// Concurrent double-submit: the partial unique index fires on insert.
	mock.ExpectQuery(`INSERT INTO "payment_claims"`).
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := SubmitClaim(db, usr, courseID, "TXN-3")
	require.ErrorIs(t, err, ErrDuplicateClaim)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitClaimSnapshotsPrice(t *testing.T) {
	db, mock := newMockDB(t)
	usr := testUser()
	courseID := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM "courses"`).
		WillReturnRows(courseRow(courseID, 750))
	mock.ExpectQuery(`SELECT (.+) FROM "payment_claims"`).
		WillReturnRows(sqlmock.NewRows(claimColumns()))
	mock.ExpectQuery(`INSERT INTO "payment_claims"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))

	claim, err := SubmitClaim(db, usr, courseID, " TXN-4 ")
	require.NoError(t, err)
	require.Equal(t, "TXN-4", claim.TransactionID)
	require.True(t, claim.Amount.Equal(types.NewMoneyFromInt(750)))
	require.Equal(t, types.PaymentStatusPending, claim.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveEnrollsAndFlipsStatus(t *testing.T) {
	db, mock := newMockDB(t)
	claimID := uuid.New()
	userID := uuid.New()
	courseID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "payment_claims" (.+) FOR UPDATE`).
		WillReturnRows(claimRow(claimID, userID, courseID, types.PaymentStatusPending))
	mock.ExpectExec(`UPDATE user_profiles`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "payment_claims"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	claim, err := Approve(db, claimID)
	require.NoError(t, err)
	require.Equal(t, types.PaymentStatusApproved, claim.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveRejectsTerminalClaim(t *testing.T) {
	db, mock := newMockDB(t)
	claimID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "payment_claims" (.+) FOR UPDATE`).
		WillReturnRows(claimRow(claimID, uuid.New(), uuid.New(), types.PaymentStatusRejected))
	mock.ExpectRollback()

	_, err := Approve(db, claimID)
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveUnknownClaim(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "payment_claims" (.+) FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(claimColumns()))
	mock.ExpectRollback()

	_, err := Approve(db, uuid.New())
	require.ErrorIs(t, err, ErrClaimNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRejectFlipsStatusWithoutEnrollment(t *testing.T) {
	db, mock := newMockDB(t)
	claimID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "payment_claims" (.+) FOR UPDATE`).
		WillReturnRows(claimRow(claimID, uuid.New(), uuid.New(), types.PaymentStatusPending))
	// No user_profiles update: rejection never grants access.
	mock.ExpectExec(`UPDATE "payment_claims"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	claim, err := Reject(db, claimID)
	require.NoError(t, err)
	require.Equal(t, types.PaymentStatusRejected, claim.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRejectApprovedClaimFails(t *testing.T) {
	db, mock := newMockDB(t)
	claimID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "payment_claims" (.+) FOR UPDATE`).
		WillReturnRows(claimRow(claimID, uuid.New(), uuid.New(), types.PaymentStatusApproved))
	mock.ExpectRollback()

	_, err := Reject(db, claimID)
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMyEnrollmentsEmptySet(t *testing.T) {
	db, mock := newMockDB(t)

	courses, err := MyEnrollments(db, testUser())
	require.NoError(t, err)
	require.Empty(t, courses)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMyEnrollmentsSkipsMalformedIDs(t *testing.T) {
	db, mock := newMockDB(t)
	courseID := uuid.New()

	usr := testUser(courseID)
	usr.EnrolledCourses = append(usr.EnrolledCourses, "not-a-uuid")

	mock.ExpectQuery(`SELECT (.+) FROM "courses"`).
		WillReturnRows(courseRow(courseID, 499))

	courses, err := MyEnrollments(db, usr)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

package user

import (
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

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

func TestIsEnrolled(t *testing.T) {
	courseID := uuid.New()
	usr := User{EnrolledCourses: pq.StringArray{courseID.String()}}

	require.True(t, usr.IsEnrolled(courseID))
	require.False(t, usr.IsEnrolled(uuid.New()))

	empty := User{EnrolledCourses: pq.StringArray{}}
	require.False(t, empty.IsEnrolled(courseID))
}

func TestComparePassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cretpass"), bcrypt.MinCost)
	require.NoError(t, err)

	usr := User{Password: string(hash)}
	require.True(t, usr.ComparePassword("s3cretpass"))
	require.False(t, usr.ComparePassword("wrong"))
}

func TestAddEnrollmentNewCourse(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`UPDATE user_profiles`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	added, err := AddEnrollment(db, uuid.New(), uuid.New())
	require.NoError(t, err)
	require.True(t, added)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddEnrollmentAlreadyPresent(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`UPDATE user_profiles`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	added, err := AddEnrollment(db, uuid.New(), uuid.New())
	require.NoError(t, err)
	require.False(t, added)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveEnrollmentUnknownUser(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`UPDATE user_profiles`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := RemoveEnrollment(db, uuid.New(), uuid.New())
	require.ErrorIs(t, err, ErrUserNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRejectsTakenEmail(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "user_profiles"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, err := Create(db, CreateInput{
		FullName: "Jane Doe",
		Email:    "Jane@Example.com",
		Password: "s3cretpass",
		Role:     types.RoleStudent,
	})
	require.ErrorIs(t, err, ErrEmailTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDefaultsToStudent(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "user_profiles"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`INSERT INTO "user_profiles"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))

	usr, err := Create(db, CreateInput{
		FullName: "  Jane Doe  ",
		Email:    "JANE@example.com",
		Password: "s3cretpass",
	})
	require.NoError(t, err)
	require.Equal(t, "Jane Doe", usr.FullName)
	require.Equal(t, "jane@example.com", usr.Email)
	require.Equal(t, types.RoleStudent, usr.Role)
	require.True(t, usr.Active)
	require.NotEqual(t, "s3cretpass", usr.Password)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUnknownUser(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT (.+) FROM "user_profiles"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := Get(db, uuid.New())
	require.ErrorIs(t, err, ErrUserNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

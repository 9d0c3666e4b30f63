package course

import (
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/skillbridge/marketplace-server-go/pkg/types"
)

func intPtr(v int) *int { return &v }

func validCreateInput() CreateInput {
	return CreateInput{
		Title:    "Intro to Go",
		Author:   "Jane Doe",
		UserID:   uuid.New(),
		Label:    types.RoleTeacher,
		Tags:     []string{"golang", "backend"},
		Price:    intPtr(499),
		Duration: "6 weeks",
	}
}

// Validation runs before any database access, so a nil db is safe here.
func TestCreateValidation(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(in *CreateInput)
		wantErr error
	}{
		{"missing title", func(in *CreateInput) { in.Title = "  " }, ErrMissingFields},
		{"missing author", func(in *CreateInput) { in.Author = "" }, ErrMissingFields},
		{"missing duration", func(in *CreateInput) { in.Duration = "" }, ErrMissingFields},
		{"no tags", func(in *CreateInput) { in.Tags = nil }, ErrMissingFields},
		{"no price", func(in *CreateInput) { in.Price = nil }, ErrMissingFields},
		{"negative price", func(in *CreateInput) { in.Price = intPtr(-1) }, ErrNegativePrice},
		{"invalid tag", func(in *CreateInput) { in.Tags = []string{"!"} }, ErrInvalidTags},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validCreateInput()
			tc.mutate(&input)

			_, err := Create(nil, input)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestCreateNormalizesTags(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`INSERT INTO "courses"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))

	input := validCreateInput()
	input.Tags = []string{"Go Lang", "Backend", "go-lang"}

	crs, err := Create(db, input)
	require.NoError(t, err)
	require.Equal(t, []string{"go-lang", "backend"}, []string(crs.Tags))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCascadeCollectsVideoPaths(t *testing.T) {
	db, mock := newMockDB(t)
	courseID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "courses"`).
		WillReturnRows(courseRows(courseID))
	mock.ExpectQuery(`SELECT "video_path" FROM "lessons"`).
		WillReturnRows(sqlmock.NewRows([]string{"video_path"}).
			AddRow("courses/a/lessons/one.mp4").
			AddRow("courses/a/lessons/two.mp4"))
	mock.ExpectExec(`DELETE FROM "lessons"`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM "payment_claims"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE user_profiles`).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM "courses"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	paths, err := DeleteCascade(db, courseID)
	require.NoError(t, err)
	require.Equal(t, []string{"courses/a/lessons/one.mp4", "courses/a/lessons/two.mp4"}, paths)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCascadeUnknownCourse(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "courses"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := DeleteCascade(db, uuid.New())
	require.ErrorIs(t, err, ErrCourseNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

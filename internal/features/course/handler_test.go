package course

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"log/slog"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/skillbridge/marketplace-server-go/internal/features/user"
	"github.com/skillbridge/marketplace-server-go/pkg/types"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func postJSON(t *testing.T, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/courses", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func actorWithRole(role types.Role) *user.User {
	usr := &user.User{FullName: "Jane Doe", Email: "jane@example.com", Role: role, Active: true}
	usr.ID = uuid.New()
	return usr
}

func TestCreateRejectsStudents(t *testing.T) {
	h := NewHandler(nil, discardLogger(), nil, nil)

	c, w := postJSON(t, `{"title":"Intro to Go"}`)
	c.Set("user", actorWithRole(types.RoleStudent))

	h.Create(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateRequiresAuthentication(t *testing.T) {
	h := NewHandler(nil, discardLogger(), nil, nil)

	c, w := postJSON(t, `{"title":"Intro to Go"}`)

	h.Create(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateAllowsTeachers(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewHandler(db, discardLogger(), nil, nil)

	mock.ExpectQuery(`INSERT INTO "courses"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))

	c, w := postJSON(t, `{"title":"Intro to Go","author":"Jane Doe","tags":["golang"],"price":499,"duration":"6 weeks"}`)
	c.Set("user", actorWithRole(types.RoleTeacher))

	h.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDefaultsAuthorToActor(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewHandler(db, discardLogger(), nil, nil)

	mock.ExpectQuery(`INSERT INTO "courses"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))

	c, w := postJSON(t, `{"title":"Intro to Go","tags":["golang"],"price":499,"duration":"6 weeks"}`)
	c.Set("user", actorWithRole(types.RoleTeacher))

	h.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, w.Body.String(), `"author":"Jane Doe"`)
	require.NoError(t, mock.ExpectationsWereMet())
}

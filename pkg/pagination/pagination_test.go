package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T, target string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c
}

func TestExtractDefaults(t *testing.T) {
	params := Extract(testContext(t, "/courses"))
	require.Equal(t, DefaultPage, params.Page)
	require.Equal(t, DefaultLimit, params.Limit)
	require.Equal(t, 0, params.Skip)
}

func TestExtractComputesSkip(t *testing.T) {
	params := Extract(testContext(t, "/courses?page=3&limit=25"))
	require.Equal(t, 3, params.Page)
	require.Equal(t, 25, params.Limit)
	require.Equal(t, 50, params.Skip)
}

func TestExtractClampsLimit(t *testing.T) {
	params := Extract(testContext(t, "/courses?limit=5000"))
	require.Equal(t, MaxLimit, params.Limit)
}

func TestExtractRejectsGarbage(t *testing.T) {
	params := Extract(testContext(t, "/courses?page=abc&limit=-5"))
	require.Equal(t, DefaultPage, params.Page)
	require.Equal(t, DefaultLimit, params.Limit)
}

func TestMetadataFrom(t *testing.T) {
	meta := MetadataFrom(45, Params{Page: 2, Limit: 20, Skip: 20})
	require.Equal(t, int64(45), meta.TotalItems)
	require.Equal(t, 3, meta.TotalPages)
	require.True(t, meta.HasNextPage)
	require.True(t, meta.HasPrevPage)

	last := MetadataFrom(45, Params{Page: 3, Limit: 20, Skip: 40})
	require.False(t, last.HasNextPage)

	empty := MetadataFrom(0, Params{Page: 1, Limit: 20})
	require.Equal(t, 0, empty.TotalPages)
	require.False(t, empty.HasNextPage)
	require.False(t, empty.HasPrevPage)
}

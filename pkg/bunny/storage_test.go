package bunny

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUploadStream(t *testing.T) {
	var gotMethod, gotPath, gotKey, gotContentType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotKey = r.Header.Get("AccessKey")
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewStorageClient("zone", "key", server.URL, "cdn.example.net")

	url, err := client.UploadStream(context.Background(), "courses/x/lessons/a.mp4", strings.NewReader("data"), "video/mp4")
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.net/courses/x/lessons/a.mp4", url)
	require.Equal(t, http.MethodPut, gotMethod)
	require.Equal(t, "/zone/courses/x/lessons/a.mp4", gotPath)
	require.Equal(t, "key", gotKey)
	require.Equal(t, "video/mp4", gotContentType)
}

func TestUploadStreamSurfacesError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewStorageClient("zone", "bad-key", server.URL, "cdn.example.net")

	_, err := client.UploadStream(context.Background(), "a.mp4", strings.NewReader("data"), "video/mp4")
	require.Error(t, err)
	require.Contains(t, err.Error(), "status=401")
}

func TestDeleteFile(t *testing.T) {
	var gotMethod, gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewStorageClient("zone", "key", server.URL, "cdn.example.net")

	require.NoError(t, client.DeleteFile(context.Background(), "courses/x/lessons/a.mp4"))
	require.Equal(t, http.MethodDelete, gotMethod)
	require.Equal(t, "/zone/courses/x/lessons/a.mp4", gotPath)
}

func TestExtractRelativePath(t *testing.T) {
	client := NewStorageClient("zone", "key", "https://storage.bunnycdn.com", "cdn.example.net")

	require.Equal(t, "courses/x/lessons/a.mp4",
		client.ExtractRelativePath("https://cdn.example.net/courses/x/lessons/a.mp4"))

	// Already-relative paths pass through.
	require.Equal(t, "courses/x/lessons/a.mp4",
		client.ExtractRelativePath("courses/x/lessons/a.mp4"))

	// Unknown hosts are left untouched.
	require.Equal(t, "https://other.example.net/a.mp4",
		client.ExtractRelativePath("https://other.example.net/a.mp4"))
}

package bunny

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const userAgent = "Marketplace-Server-Go/1.0.0"

// StorageClient handles Bunny Storage (CDN) operations for lesson videos.
type StorageClient struct {
	zoneName   string
	password   string
	baseURL    string
	hostname   string
	httpClient *http.Client
}

// NewStorageClient creates a new Bunny Storage client.
func NewStorageClient(zoneName, password, baseURL, hostname string) *StorageClient {
	return &StorageClient{
		zoneName: zoneName,
		password: password,
		baseURL:  baseURL,
		hostname: hostname,
		httpClient: &http.Client{
			// Video uploads stream through this client, so the timeout must
			// cover the full transfer, not just the handshake.
			Timeout: 10 * time.Minute,
		},
	}
}

// UploadStream uploads a file from an io.Reader stream to Bunny Storage and
// returns the public CDN URL.
func (c *StorageClient) UploadStream(ctx context.Context, remotePath string, reader io.Reader, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url := fmt.Sprintf("%s/%s/%s", c.baseURL, c.zoneName, remotePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, reader)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("AccessKey", c.password)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("bunny storage error: status=%d, body=%s", resp.StatusCode, string(bodyBytes))
	}

	return c.GetPublicURL(remotePath), nil
}

// DeleteFile deletes a file from Bunny Storage.
func (c *StorageClient) DeleteFile(ctx context.Context, remotePath string) error {
	url := fmt.Sprintf("%s/%s/%s", c.baseURL, c.zoneName, remotePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("AccessKey", c.password)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("bunny storage error: status=%d, body=%s", resp.StatusCode, string(bodyBytes))
	}

	return nil
}

// DeleteFolder deletes a folder and its contents from Bunny Storage. Bunny
// treats a trailing slash on the path as a recursive folder delete.
func (c *StorageClient) DeleteFolder(ctx context.Context, folderPath string) error {
	return c.DeleteFile(ctx, folderPath+"/")
}

// GetPublicURL constructs the public CDN URL for a file.
func (c *StorageClient) GetPublicURL(remotePath string) string {
	return fmt.Sprintf("https://%s/%s", c.hostname, remotePath)
}

// ExtractRelativePath extracts the relative storage path from a full CDN URL,
// e.g. "https://cdn.example.net/courses/<id>/lessons/file.mp4" becomes
// "courses/<id>/lessons/file.mp4". Paths that are already relative pass
// through unchanged.
func (c *StorageClient) ExtractRelativePath(cdnURL string) string {
	prefix := fmt.Sprintf("https://%s/", c.hostname)
	if len(cdnURL) > len(prefix) && cdnURL[:len(prefix)] == prefix {
		return cdnURL[len(prefix):]
	}
	return cdnURL
}

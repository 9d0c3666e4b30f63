package cleanup

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/skillbridge/marketplace-server-go/pkg/bunny"
)

// DeleteVideoFile removes a single lesson video from the file store.
// Failures are logged, never propagated: the database row is already gone.
func DeleteVideoFile(ctx context.Context, storageClient *bunny.StorageClient, logger *slog.Logger, lessonID uuid.UUID, videoPath string) {
	if storageClient == nil || videoPath == "" {
		return
	}

	relativePath := storageClient.ExtractRelativePath(videoPath)
	if err := storageClient.DeleteFile(ctx, relativePath); err != nil {
		logger.Error("failed to delete lesson video file",
			"lessonId", lessonID,
			"path", relativePath,
			"error", err)
		return
	}

	logger.Info("deleted lesson video file",
		"lessonId", lessonID,
		"path", relativePath)
}

// BulkDeleteVideoFiles removes multiple video files from the file store,
// continuing past individual failures.
func BulkDeleteVideoFiles(ctx context.Context, storageClient *bunny.StorageClient, logger *slog.Logger, videoPaths []string, contextMsg string) {
	if storageClient == nil || len(videoPaths) == 0 {
		return
	}

	successCount := 0
	for _, path := range videoPaths {
		relativePath := storageClient.ExtractRelativePath(path)
		if err := storageClient.DeleteFile(ctx, relativePath); err != nil {
			logger.Error("failed to delete video file in bulk cleanup",
				"context", contextMsg,
				"path", relativePath,
				"error", err)
		} else {
			successCount++
		}
	}

	if successCount > 0 {
		logger.Info("bulk deleted video files",
			"context", contextMsg,
			"count", successCount)
	}
}

package lesson

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillbridge/marketplace-server-go/internal/features/course"
	"github.com/skillbridge/marketplace-server-go/internal/features/enrollment"
	"github.com/skillbridge/marketplace-server-go/internal/features/user"
	"github.com/skillbridge/marketplace-server-go/internal/middleware"
	"github.com/skillbridge/marketplace-server-go/pkg/bunny"
	"github.com/skillbridge/marketplace-server-go/pkg/cache"
	"github.com/skillbridge/marketplace-server-go/pkg/cleanup"
	"github.com/skillbridge/marketplace-server-go/pkg/response"
	"github.com/skillbridge/marketplace-server-go/pkg/types"
)

// maxVideoSize caps lesson uploads at 100MB.
const maxVideoSize = 100 << 20

// Handler processes lesson HTTP requests.
type Handler struct {
	db            *gorm.DB
	logger        *slog.Logger
	storageClient *bunny.StorageClient
	cache         cache.Client
}

// NewHandler constructs a lesson handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger, storageClient *bunny.StorageClient, cacheClient cache.Client) *Handler {
	return &Handler{
		db:            db,
		logger:        logger,
		storageClient: storageClient,
		cache:         cacheClient,
	}
}

// lessonView is the redacted shape served to learners without access: titles
// are public, video URLs are not.
type lessonView struct {
	ID       uuid.UUID `json:"id"`
	CourseID uuid.UUID `json:"courseId"`
	Title    string    `json:"title"`
}

// List returns the lessons of a course. Video URLs are included only when the
// caller is enrolled, owns the course, or is an admin.
func (h *Handler) List(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return
	}

	crs, err := course.Get(h.db, courseID)
	if err != nil {
		if errors.Is(err, course.ErrCourseNotFound) {
			response.ErrorWithLog(h.logger, c, http.StatusNotFound, "Course not found.", err)
			return
		}
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load course", err)
		return
	}

	actor, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	lessons, err := ListByCourse(h.db, courseID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list lessons", err)
		return
	}

	if h.hasVideoAccess(c, actor, crs) {
		response.Success(c, http.StatusOK, lessons, "", nil)
		return
	}

	views := make([]lessonView, 0, len(lessons))
	for _, les := range lessons {
		views = append(views, lessonView{ID: les.ID, CourseID: les.CourseID, Title: les.Title})
	}
	response.Success(c, http.StatusOK, views, "", nil)
}

// Create uploads a lesson video and inserts the lesson. Only the owning
// instructor may add lessons to a course.
func (h *Handler) Create(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return
	}

	actor, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	crs, err := course.Get(h.db, courseID)
	if err != nil {
		if errors.Is(err, course.ErrCourseNotFound) {
			response.ErrorWithLog(h.logger, c, http.StatusNotFound, "Course not found.", err)
			return
		}
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load course", err)
		return
	}

	if crs.UserID != actor.ID {
		response.ErrorWithLog(h.logger, c, http.StatusForbidden, "You do not own this course.", nil)
		return
	}

	title := c.PostForm("title")
	if err := validateTitle(title); err != nil {
		h.respondError(c, err, "invalid lesson title")
		return
	}

	file, fileHeader, err := c.Request.FormFile("video")
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "Video file is required.", err)
		return
	}
	defer file.Close()

	if fileHeader.Size > maxVideoSize {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "Video file exceeds the 100MB limit.", ErrVideoTooLarge)
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "video/") {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "Uploaded file must be a video.", ErrNotVideoFile)
		return
	}

	ext := ""
	if idx := strings.LastIndex(fileHeader.Filename, "."); idx != -1 {
		ext = fileHeader.Filename[idx:]
	}
	remotePath := fmt.Sprintf("courses/%s/lessons/%s%s", courseID.String(), uuid.New().String(), ext)

	videoURL, err := h.storageClient.UploadStream(c.Request.Context(), remotePath, file, contentType)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "Failed to upload video to storage.", err)
		return
	}

	les, err := Create(h.db, CreateInput{
		CourseID:  courseID,
		Title:     title,
		VideoURL:  videoURL,
		VideoPath: remotePath,
	})
	if err != nil {
		// Orphaned upload: remove the stored file since no row references it.
		if delErr := h.storageClient.DeleteFile(c.Request.Context(), remotePath); delErr != nil {
			h.logger.Error("failed to clean up video after lesson creation failure",
				"path", remotePath,
				"error", delErr)
		}
		h.respondError(c, err, "failed to create lesson")
		return
	}

	course.InvalidateCatalog(c.Request.Context(), h.cache, h.logger)
	response.Created(c, les, "Lesson added.")
}

// Update renames a lesson. The video reference is immutable.
func (h *Handler) Update(c *gin.Context) {
	lessonID, err := uuid.Parse(c.Param("lessonId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid lesson id", err)
		return
	}

	les, err := Get(h.db, lessonID)
	if err != nil {
		h.respondError(c, err, "failed to load lesson")
		return
	}

	if !h.canManage(c, les.CourseID) {
		return
	}

	var req struct {
		Title string `json:"title" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid lesson payload", err)
		return
	}

	les, err = UpdateTitle(h.db, lessonID, req.Title)
	if err != nil {
		h.respondError(c, err, "failed to update lesson")
		return
	}

	course.InvalidateCatalog(c.Request.Context(), h.cache, h.logger)
	response.Success(c, http.StatusOK, les, "", nil)
}

// Delete removes a lesson and its stored video file (best-effort).
func (h *Handler) Delete(c *gin.Context) {
	lessonID, err := uuid.Parse(c.Param("lessonId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid lesson id", err)
		return
	}

	les, err := Get(h.db, lessonID)
	if err != nil {
		h.respondError(c, err, "failed to load lesson")
		return
	}

	if !h.canManage(c, les.CourseID) {
		return
	}

	if err := Delete(h.db, lessonID); err != nil {
		h.respondError(c, err, "failed to delete lesson")
		return
	}

	cleanup.DeleteVideoFile(c.Request.Context(), h.storageClient, h.logger, les.ID, les.VideoPath)

	course.InvalidateCatalog(c.Request.Context(), h.cache, h.logger)
	response.Success(c, http.StatusOK, true, "Lesson deleted.", nil)
}

// hasVideoAccess resolves whether the actor may see video URLs for the course.
func (h *Handler) hasVideoAccess(c *gin.Context, actor *user.User, crs course.Course) bool {
	if actor.Role == types.RoleAdmin || crs.UserID == actor.ID {
		return true
	}

	status, err := enrollment.ResolveAccess(h.db, actor, crs.ID)
	if err != nil {
		h.logger.Error("failed to resolve course access",
			"userId", actor.ID,
			"courseId", crs.ID,
			"error", err)
		return false
	}

	return status == types.AccessEnrolled
}

// canManage enforces the owner-or-admin precondition for lesson mutations.
func (h *Handler) canManage(c *gin.Context, courseID uuid.UUID) bool {
	actor, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return false
	}

	crs, err := course.Get(h.db, courseID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load course", err)
		return false
	}

	if actor.Role == types.RoleAdmin || crs.UserID == actor.ID {
		return true
	}

	response.ErrorWithLog(h.logger, c, http.StatusForbidden, "You do not own this course.", nil)
	return false
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrLessonNotFound):
		status = http.StatusNotFound
		message = "Lesson not found."
	case errors.Is(err, ErrTitleRequired):
		status = http.StatusBadRequest
		message = "Lesson title is required."
	case errors.Is(err, ErrTitleLength):
		status = http.StatusBadRequest
		message = "Lesson title must be between 3 and 120 characters."
	case errors.Is(err, ErrVideoRequired):
		status = http.StatusBadRequest
		message = "Video file is required."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}

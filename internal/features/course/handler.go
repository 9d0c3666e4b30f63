package course

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillbridge/marketplace-server-go/internal/features/user"
	"github.com/skillbridge/marketplace-server-go/internal/middleware"
	"github.com/skillbridge/marketplace-server-go/pkg/bunny"
	"github.com/skillbridge/marketplace-server-go/pkg/cache"
	"github.com/skillbridge/marketplace-server-go/pkg/cleanup"
	"github.com/skillbridge/marketplace-server-go/pkg/pagination"
	"github.com/skillbridge/marketplace-server-go/pkg/request"
	"github.com/skillbridge/marketplace-server-go/pkg/response"
	"github.com/skillbridge/marketplace-server-go/pkg/types"
)

// CatalogCacheKey holds the cached public catalog (list with lesson summaries).
const CatalogCacheKey = "catalog:with-lessons"

const catalogCacheTTL = 5 * time.Minute

// Handler processes course HTTP requests.
type Handler struct {
	db            *gorm.DB
	logger        *slog.Logger
	storageClient *bunny.StorageClient
	cache         cache.Client
}

// NewHandler constructs a course handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger, storageClient *bunny.StorageClient, cacheClient cache.Client) *Handler {
	return &Handler{
		db:            db,
		logger:        logger,
		storageClient: storageClient,
		cache:         cacheClient,
	}
}

type courseWithLessons struct {
	Course
	Lessons []lessonSummary `gorm:"foreignKey:CourseID" json:"lessons"`
}

// lessonSummary deliberately omits video fields: the public catalog lists
// lesson titles, video access is resolved per enrollment.
type lessonSummary struct {
	ID       uuid.UUID `json:"id"`
	CourseID uuid.UUID `json:"courseId"`
	Title    string    `json:"title"`
}

func (lessonSummary) TableName() string {
	return "lessons"
}

// InvalidateCatalog drops the cached catalog after a course or lesson mutation.
func InvalidateCatalog(ctx context.Context, cacheClient cache.Client, logger *slog.Logger) {
	if cacheClient == nil {
		return
	}
	if err := cacheClient.Delete(ctx, CatalogCacheKey); err != nil {
		logger.Warn("failed to invalidate catalog cache", "error", err)
	}
}

// List returns the public course catalog, paginated with optional keyword search.
// With withLessons=true it returns every course with its lesson summaries,
// served from cache when available.
func (h *Handler) List(c *gin.Context) {
	if strings.EqualFold(c.Query("withLessons"), "true") {
		h.listWithLessons(c)
		return
	}

	params := pagination.Extract(c)
	keyword := c.Query("filterKeyword")

	courses, total, err := List(h.db, ListFilters{Keyword: keyword}, params)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list courses", err)
		return
	}

	response.Success(c, http.StatusOK, courses, "", pagination.MetadataFrom(total, params))
}

func (h *Handler) listWithLessons(c *gin.Context) {
	ctx := c.Request.Context()

	if h.cache != nil {
		if cached, err := h.cache.Get(ctx, CatalogCacheKey); err == nil && cached != "" {
			var courses []courseWithLessons
			if err := json.Unmarshal([]byte(cached), &courses); err == nil {
				response.SuccessWithCache(c, http.StatusOK, courses, "", int(catalogCacheTTL.Seconds()))
				return
			}
		}
	}

	courses := make([]courseWithLessons, 0)
	err := h.db.Model(&Course{}).
		Order("created_at DESC").
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "course_id", "title").Order("created_at ASC")
		}).
		Find(&courses).Error
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load catalog", err)
		return
	}

	if h.cache != nil {
		if data, err := json.Marshal(courses); err == nil {
			if err := h.cache.Set(ctx, CatalogCacheKey, string(data), catalogCacheTTL); err != nil {
				h.logger.Warn("failed to cache catalog", "error", err)
			}
		}
	}

	response.SuccessWithCache(c, http.StatusOK, courses, "", int(catalogCacheTTL.Seconds()))
}

// GetByID fetches a single course with its lesson summaries.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return
	}

	var result courseWithLessons
	err = h.db.Model(&Course{}).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "course_id", "title").Order("created_at ASC")
		}).
		First(&result, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.respondError(c, ErrCourseNotFound, "failed to load course")
			return
		}
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load course", err)
		return
	}

	response.Success(c, http.StatusOK, result, "", nil)
}

// Create publishes a new course. Only teachers and admins may publish.
func (h *Handler) Create(c *gin.Context) {
	actor, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	if !actor.Role.CanAuthor() {
		response.ErrorWithLog(h.logger, c, http.StatusForbidden, "Only instructors can publish courses.", nil)
		return
	}

	var req struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Author      string   `json:"author"`
		Tags        []string `json:"tags"`
		Price       *int     `json:"price"`
		Duration    string   `json:"duration"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course payload", err)
		return
	}

	author := strings.TrimSpace(req.Author)
	if author == "" {
		author = actor.FullName
	}

	course, err := Create(h.db, CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Author:      author,
		UserID:      actor.ID,
		Label:       actor.Role,
		Tags:        req.Tags,
		Price:       req.Price,
		Duration:    req.Duration,
	})
	if err != nil {
		h.respondError(c, err, "failed to create course")
		return
	}

	InvalidateCatalog(c.Request.Context(), h.cache, h.logger)
	response.Created(c, course, "Course published.")
}

// Update modifies an existing course. Only the owning instructor or an admin may update.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return
	}

	existing, err := Get(h.db, id)
	if err != nil {
		h.respondError(c, err, "failed to load course")
		return
	}

	if !h.canManage(c, existing) {
		return
	}

	body := map[string]interface{}{}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course payload", err)
		return
	}

	input := UpdateInput{}

	if value, ok := body["title"]; ok {
		str, err := request.ReadString(value)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "title must be a string", err)
			return
		}
		input.Title = &str
	}

	if value, ok := body["description"]; ok {
		input.DescProvided = true
		if value != nil {
			str, err := request.ReadString(value)
			if err != nil {
				response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "description must be a string", err)
				return
			}
			input.Description = &str
		}
	}

	if value, ok := body["author"]; ok {
		str, err := request.ReadString(value)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "author must be a string", err)
			return
		}
		input.Author = &str
	}

	if value, ok := body["tags"]; ok {
		input.TagsProvided = true
		tags, err := request.ReadStringSlice(value)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "tags must be an array of strings", err)
			return
		}
		input.Tags = tags
	}

	if value, ok := body["price"]; ok {
		val, err := request.ReadInt(value)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "price must be an integer", err)
			return
		}
		input.Price = &val
	}

	if value, ok := body["duration"]; ok {
		str, err := request.ReadString(value)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "duration must be a string", err)
			return
		}
		input.Duration = &str
	}

	course, err := Update(h.db, id, input)
	if err != nil {
		h.respondError(c, err, "failed to update course")
		return
	}

	InvalidateCatalog(c.Request.Context(), h.cache, h.logger)
	response.Success(c, http.StatusOK, course, "", nil)
}

// Delete removes a course and everything hanging off it: lessons, their stored
// video files, payment claims, and learner enrollments. The database rows go in
// one transaction; file store cleanup is best-effort after commit.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return
	}

	existing, err := Get(h.db, id)
	if err != nil {
		h.respondError(c, err, "failed to load course")
		return
	}

	if !h.canManage(c, existing) {
		return
	}

	videoPaths, err := DeleteCascade(h.db, id)
	if err != nil {
		h.respondError(c, err, "failed to delete course")
		return
	}

	cleanup.BulkDeleteVideoFiles(c.Request.Context(), h.storageClient, h.logger, videoPaths, "course_"+id.String())

	if h.storageClient != nil {
		if err := h.storageClient.DeleteFolder(c.Request.Context(), "courses/"+id.String()); err != nil {
			h.logger.Warn("failed to delete course folder from storage", "course_id", id, "error", err)
		}
	}

	InvalidateCatalog(c.Request.Context(), h.cache, h.logger)
	response.Success(c, http.StatusOK, true, "Course deleted.", nil)
}

// EnrolledStudents lists the learners enrolled in a course. Only the owning
// instructor or an admin may view the roster.
func (h *Handler) EnrolledStudents(c *gin.Context) {
	id, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return
	}

	existing, err := Get(h.db, id)
	if err != nil {
		h.respondError(c, err, "failed to load course")
		return
	}

	if !h.canManage(c, existing) {
		return
	}

	students, err := user.ListEnrolledInCourse(h.db, id)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list enrolled students", err)
		return
	}

	response.Success(c, http.StatusOK, students, "", nil)
}

// canManage enforces the owner-or-admin precondition, writing the error
// response itself when the check fails.
func (h *Handler) canManage(c *gin.Context, course Course) bool {
	actor, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return false
	}

	if actor.Role == types.RoleAdmin || course.UserID == actor.ID {
		return true
	}

	response.ErrorWithLog(h.logger, c, http.StatusForbidden, "You do not own this course.", nil)
	return false
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrCourseNotFound):
		status = http.StatusNotFound
		message = "Course not found."
	case errors.Is(err, ErrMissingFields):
		status = http.StatusBadRequest
		message = "Title, author, tags, price and duration are required."
	case errors.Is(err, ErrNegativePrice):
		status = http.StatusBadRequest
		message = "Price cannot be negative."
	case errors.Is(err, ErrInvalidTags):
		status = http.StatusBadRequest
		message = "One or more tags are invalid."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}

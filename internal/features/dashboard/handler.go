package dashboard

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/skillbridge/marketplace-server-go/internal/features/course"
	"github.com/skillbridge/marketplace-server-go/internal/features/enrollment"
	"github.com/skillbridge/marketplace-server-go/internal/features/lesson"
	"github.com/skillbridge/marketplace-server-go/internal/features/user"
	"github.com/skillbridge/marketplace-server-go/internal/middleware"
	"github.com/skillbridge/marketplace-server-go/pkg/apperrors"
	"github.com/skillbridge/marketplace-server-go/pkg/response"
	"github.com/skillbridge/marketplace-server-go/pkg/types"
)

type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

// GetAdminDashboard returns marketplace-wide moderation statistics.
// GET /dashboard/admin
func (h *Handler) GetAdminDashboard(c *gin.Context) {
	sevenDaysAgo := time.Now().AddDate(0, 0, -7)

	var totalUsers int64
	if err := h.db.Model(&user.User{}).Count(&totalUsers).Error; err != nil {
		h.logger.Error("failed to count users", "error", err)
		response.Error(c, http.StatusInternalServerError, "Failed to retrieve dashboard data", nil)
		return
	}

	studentsCount, err := user.CountByRole(h.db, types.RoleStudent)
	if err != nil {
		h.logger.Error("failed to count students", "error", err)
	}

	teachersCount, err := user.CountByRole(h.db, types.RoleTeacher)
	if err != nil {
		h.logger.Error("failed to count teachers", "error", err)
	}

	var recentSignups int64
	if err := h.db.Model(&user.User{}).Where("created_at >= ?", sevenDaysAgo).Count(&recentSignups).Error; err != nil {
		h.logger.Error("failed to count recent signups", "error", err)
	}

	var coursesCount int64
	if err := h.db.Model(&course.Course{}).Count(&coursesCount).Error; err != nil {
		h.logger.Error("failed to count courses", "error", err)
	}

	var lessonsCount int64
	if err := h.db.Model(&lesson.Lesson{}).Count(&lessonsCount).Error; err != nil {
		h.logger.Error("failed to count lessons", "error", err)
	}

	enrollmentsCount, err := user.CountEnrollments(h.db)
	if err != nil {
		h.logger.Error("failed to count enrollments", "error", err)
	}

	var pendingPayments int64
	if err := h.db.Model(&enrollment.PaymentClaim{}).
		Where("status = ?", types.PaymentStatusPending).
		Count(&pendingPayments).Error; err != nil {
		h.logger.Error("failed to count pending payments", "error", err)
	}

	response.SuccessNoCache(c, http.StatusOK, gin.H{
		"usersCount":           totalUsers,
		"studentsCount":        studentsCount,
		"teachersCount":        teachersCount,
		"recentSignupsCount":   recentSignups,
		"coursesCount":         coursesCount,
		"lessonsCount":         lessonsCount,
		"enrollmentsCount":     enrollmentsCount,
		"pendingPaymentsCount": pendingPayments,
	}, "")
}

// GetInstructorDashboard returns statistics scoped to the caller's courses.
// GET /dashboard/instructor
func (h *Handler) GetInstructorDashboard(c *gin.Context) {
	actor, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	if !actor.Role.CanAuthor() {
		response.Error(c, http.StatusForbidden, "Instructor access required.", nil)
		return
	}

	var courseIDs []string
	if err := h.db.Model(&course.Course{}).
		Where("user_id = ?", actor.ID).
		Pluck("id", &courseIDs).Error; err != nil {
		h.logger.Error("failed to load instructor courses", "userId", actor.ID, "error", err)
		response.Error(c, http.StatusInternalServerError, "Failed to retrieve dashboard data", nil)
		return
	}

	var lessonsCount int64
	var studentsCount int64
	var pendingPayments int64

	if len(courseIDs) > 0 {
		if err := h.db.Model(&lesson.Lesson{}).
			Where("course_id IN ?", courseIDs).
			Count(&lessonsCount).Error; err != nil {
			h.logger.Error("failed to count instructor lessons", "userId", actor.ID, "error", err)
		}

		// Each (student, course) pair counts once.
		if err := h.db.Model(&user.User{}).
			Select("COALESCE(SUM(cardinality(ARRAY(SELECT unnest(enrolled_courses) INTERSECT SELECT unnest(?::uuid[])))), 0)", pq.Array(courseIDs)).
			Scan(&studentsCount).Error; err != nil {
			h.logger.Error("failed to count enrolled students", "userId", actor.ID, "error", err)
		}

		if err := h.db.Model(&enrollment.PaymentClaim{}).
			Where("course_id IN ? AND status = ?", courseIDs, types.PaymentStatusPending).
			Count(&pendingPayments).Error; err != nil {
			h.logger.Error("failed to count pending payments", "userId", actor.ID, "error", err)
		}
	}

	response.Success(c, http.StatusOK, gin.H{
		"coursesCount":         len(courseIDs),
		"lessonsCount":         lessonsCount,
		"studentsCount":        studentsCount,
		"pendingPaymentsCount": pendingPayments,
	}, "", nil)
}

// GetSystemLogs returns the last N lines from info.log or error.log.
// GET /dashboard/logs?type=info|error&lines=100
func (h *Handler) GetSystemLogs(c *gin.Context) {
	logType := c.DefaultQuery("type", "info")
	if logType != "info" && logType != "error" {
		logType = "info"
	}

	lines, err := strconv.Atoi(c.DefaultQuery("lines", "100"))
	if err != nil {
		lines = 100
	}
	if lines < 10 {
		lines = 10
	}
	if lines > 1000 {
		lines = 1000
	}

	logFile := filepath.Join("logs", fmt.Sprintf("%s.log", logType))
	if _, err := os.Stat(logFile); os.IsNotExist(err) {
		c.Error(apperrors.New(fmt.Sprintf("Log file not found: %s.log", logType), http.StatusNotFound, apperrors.ErrNotFound, err))
		return
	}

	file, err := os.Open(logFile)
	if err != nil {
		c.Error(apperrors.New("Failed to read log file", http.StatusInternalServerError, apperrors.ErrInternal, err))
		return
	}
	defer file.Close()

	var allLines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		allLines = append(allLines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		h.logger.Error("failed to scan log file", "error", err)
		response.Error(c, http.StatusInternalServerError, "Failed to read log file", nil)
		return
	}

	startIdx := len(allLines) - lines
	if startIdx < 0 {
		startIdx = 0
	}
	lastLines := allLines[startIdx:]

	response.Success(c, http.StatusOK, gin.H{
		"type":  logType,
		"lines": len(lastLines),
		"log":   lastLines,
	}, "", nil)
}

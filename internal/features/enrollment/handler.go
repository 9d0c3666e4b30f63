package enrollment

import (
	"errors"
	"net/http"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillbridge/marketplace-server-go/internal/features/course"
	"github.com/skillbridge/marketplace-server-go/internal/middleware"
	"github.com/skillbridge/marketplace-server-go/pkg/pagination"
	"github.com/skillbridge/marketplace-server-go/pkg/response"
	"github.com/skillbridge/marketplace-server-go/pkg/types"
)

// Handler processes enrollment and payment HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewHandler constructs an enrollment handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

// GetAccess reports the caller's access level for a course.
func (h *Handler) GetAccess(c *gin.Context) {
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

	status, err := ResolveAccess(h.db, actor, courseID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to resolve access", err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": status}, "", nil)
}

// SubmitClaim records a manual payment for a course.
func (h *Handler) SubmitClaim(c *gin.Context) {
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

	var req struct {
		TransactionID string `json:"transactionId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid payment payload", err)
		return
	}

	claim, err := SubmitClaim(h.db, actor, courseID, req.TransactionID)
	if err != nil {
		h.respondError(c, err, "failed to submit payment")
		return
	}

	response.Created(c, claim, "Payment submitted for review.")
}

// MyEnrollments returns the caller's enrolled courses.
func (h *Handler) MyEnrollments(c *gin.Context) {
	actor, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	courses, err := MyEnrollments(h.db, actor)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load enrollments", err)
		return
	}

	response.Success(c, http.StatusOK, courses, "", nil)
}

// ListClaims returns paginated payment claims for admin review, filtered by
// status (pending by default).
func (h *Handler) ListClaims(c *gin.Context) {
	params := pagination.Extract(c)

	status := types.PaymentStatus(c.DefaultQuery("status", string(types.PaymentStatusPending)))
	if !status.Valid() {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid status filter", nil)
		return
	}

	claims, total, err := ListByStatus(h.db, status, params)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list payment claims", err)
		return
	}

	response.Success(c, http.StatusOK, claims, "", pagination.MetadataFrom(total, params))
}

// Approve accepts a pending claim and enrolls the learner.
func (h *Handler) Approve(c *gin.Context) {
	claimID, err := uuid.Parse(c.Param("claimId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid claim id", err)
		return
	}

	claim, err := Approve(h.db, claimID)
	if err != nil {
		h.respondError(c, err, "failed to approve payment")
		return
	}

	response.Success(c, http.StatusOK, claim, "Payment approved.", nil)
}

// Reject declines a pending claim.
func (h *Handler) Reject(c *gin.Context) {
	claimID, err := uuid.Parse(c.Param("claimId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid claim id", err)
		return
	}

	claim, err := Reject(h.db, claimID)
	if err != nil {
		h.respondError(c, err, "failed to reject payment")
		return
	}

	response.Success(c, http.StatusOK, claim, "Payment rejected.", nil)
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrClaimNotFound):
		status = http.StatusNotFound
		message = "Payment claim not found."
	case errors.Is(err, course.ErrCourseNotFound):
		status = http.StatusNotFound
		message = "Course not found."
	case errors.Is(err, ErrTransactionIDRequired):
		status = http.StatusBadRequest
		message = "Transaction ID is required."
	case errors.Is(err, ErrDuplicateClaim):
		status = http.StatusConflict
		message = "A payment for this course is already submitted or approved."
	case errors.Is(err, ErrAlreadyEnrolled):
		status = http.StatusConflict
		message = "You are already enrolled in this course."
	case errors.Is(err, ErrInvalidTransition):
		status = http.StatusConflict
		message = "Payment claim has already been reviewed."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}

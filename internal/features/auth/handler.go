package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/skillbridge/marketplace-server-go/internal/features/user"
	"github.com/skillbridge/marketplace-server-go/pkg/config"
	"github.com/skillbridge/marketplace-server-go/pkg/response"
	"github.com/skillbridge/marketplace-server-go/pkg/types"
)

const (
	accessTokenExpiry  = 15 * time.Minute
	refreshTokenExpiry = 7 * 24 * time.Hour
)

// Handler processes authentication HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
	tokens TokenConfig
}

// NewHandler constructs an auth handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger, cfg *config.Config) *Handler {
	return &Handler{
		db:     db,
		logger: logger,
		tokens: TokenConfig{
			JWTSecret:          cfg.JWTSecret,
			JWTRefreshSecret:   cfg.JWTRefreshSecret,
			AccessTokenExpiry:  accessTokenExpiry,
			RefreshTokenExpiry: refreshTokenExpiry,
		},
	}
}

// Register creates a new student or teacher account.
func (h *Handler) Register(c *gin.Context) {
	var req struct {
		FullName string `json:"fullName" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
		Role     string `json:"role" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid register payload", err)
		return
	}

	result, err := Register(h.db, RegisterInput{
		FullName: strings.TrimSpace(req.FullName),
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
		Role:     types.Role(strings.ToLower(strings.TrimSpace(req.Role))),
	}, h.tokens)
	if err != nil {
		h.respondError(c, err, "failed to register")
		return
	}

	response.Created(c, result, "Account created.")
}

// Login authenticates a user and returns a token pair.
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid login payload", err)
		return
	}

	result, err := Login(h.db, LoginInput{
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
	}, h.tokens)
	if err != nil {
		h.respondError(c, err, "failed to login")
		return
	}

	response.Success(c, http.StatusOK, result, "", nil)
}

// Refresh rotates the token pair using a valid refresh token.
func (h *Handler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid refresh payload", err)
		return
	}

	result, err := Refresh(h.db, req.RefreshToken, h.tokens)
	if err != nil {
		h.respondError(c, err, "failed to refresh tokens")
		return
	}

	response.Success(c, http.StatusOK, result, "", nil)
}

// Logout ends the session by clearing the stored refresh token.
func (h *Handler) Logout(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "No token provided", nil)
		return
	}

	if err := Logout(h.db, token, h.tokens); err != nil {
		h.respondError(c, err, "failed to logout")
		return
	}

	response.Success(c, http.StatusOK, true, "Logged out.", nil)
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrMissingFields):
		status = http.StatusBadRequest
		message = "Required fields are missing."
	case errors.Is(err, ErrInvalidEmail):
		status = http.StatusBadRequest
		message = "Invalid email address."
	case errors.Is(err, ErrWeakPassword):
		status = http.StatusBadRequest
		message = "Password must be at least 8 characters."
	case errors.Is(err, ErrInvalidRole):
		status = http.StatusBadRequest
		message = "Role must be student or teacher."
	case errors.Is(err, ErrInvalidCredentials):
		status = http.StatusUnauthorized
		message = "Invalid email or password."
	case errors.Is(err, ErrInactiveAccount):
		status = http.StatusForbidden
		message = "Account is deactivated."
	case errors.Is(err, ErrInvalidToken):
		status = http.StatusUnauthorized
		message = "Invalid or expired token."
	case errors.Is(err, user.ErrEmailTaken):
		status = http.StatusConflict
		message = "Email is already registered."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}

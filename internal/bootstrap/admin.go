package bootstrap

import (
	"errors"
	"fmt"
	"strings"

	"log/slog"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/skillbridge/marketplace-server-go/internal/features/user"
	"github.com/skillbridge/marketplace-server-go/pkg/config"
	"github.com/skillbridge/marketplace-server-go/pkg/types"
)

// EnsureDefaultAdmin creates or synchronizes the default admin account. Admin
// accounts are never self-assignable through registration, so one must exist
// before the first moderation action.
func EnsureDefaultAdmin(db *gorm.DB, cfg *config.Config, logger *slog.Logger) error {
	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))

	var existing user.User
	err := db.Where("LOWER(email) = ?", email).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		_, createErr := user.Create(db, user.CreateInput{
			FullName: "Admin",
			Email:    email,
			Password: cfg.AdminPassword,
			Role:     types.RoleAdmin,
		})
		if createErr != nil {
			if isUndefinedTableError(createErr) {
				logger.Warn("default admin skipped - user_profiles table missing", slog.String("email", email))
				return nil
			}
			return fmt.Errorf("create admin: %w", createErr)
		}

		logger.Info("default admin created", slog.String("email", email))
		return nil

	case err != nil:
		if isUndefinedTableError(err) {
			logger.Warn("default admin skipped - user_profiles table missing", slog.String("email", email))
			return nil
		}
		return fmt.Errorf("get admin: %w", err)
	}

	updates := map[string]interface{}{}

	if existing.Role != types.RoleAdmin {
		updates["role"] = types.RoleAdmin
	}

	if !existing.Active {
		updates["is_active"] = true
	}

	if needsPasswordReset(existing.Password, cfg.AdminPassword) {
		hashedPassword, hashErr := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
		if hashErr != nil {
			return fmt.Errorf("hash admin password: %w", hashErr)
		}
		updates["password"] = string(hashedPassword)
	}

	if len(updates) == 0 {
		logger.Info("default admin already up to date", slog.String("email", email))
		return nil
	}

	if err := db.Model(&existing).Updates(updates).Error; err != nil {
		return fmt.Errorf("update admin: %w", err)
	}

	logger.Info("default admin synchronized", slog.String("email", email))
	return nil
}

func needsPasswordReset(hashedPassword, password string) bool {
	if hashedPassword == "" {
		return true
	}
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) != nil
}

func isUndefinedTableError(err error) bool {
	if err == nil {
		return false
	}

	message := err.Error()
	return strings.Contains(message, "relation \"user_profiles\" does not exist") ||
		strings.Contains(message, "no such table: user_profiles")
}

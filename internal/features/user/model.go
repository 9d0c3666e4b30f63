package user

import (
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/skillbridge/marketplace-server-go/pkg/pagination"
	"github.com/skillbridge/marketplace-server-go/pkg/types"
)

// User represents a marketplace user profile.
type User struct {
	types.BaseModel

	FullName        string         `gorm:"type:varchar(60);not null;column:full_name" json:"fullName"`
	Email           string         `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Password        string         `gorm:"type:varchar(255);not null" json:"-"`
	Role            types.Role     `gorm:"type:varchar(20);not null;default:'student';index" json:"role"`
	EnrolledCourses pq.StringArray `gorm:"type:uuid[];not null;default:'{}';column:enrolled_courses" json:"enrolledCourses"`
	RefreshToken    *string        `gorm:"type:text;column:refresh_token" json:"-"`
	Active          bool           `gorm:"type:boolean;not null;default:true;column:is_active" json:"isActive"`
}

// TableName overrides the default table name.
func (User) TableName() string { return "user_profiles" }

// IsEnrolled reports whether the course id is present in the user's enrollment set.
func (u *User) IsEnrolled(courseID uuid.UUID) bool {
	id := courseID.String()
	for _, enrolled := range u.EnrolledCourses {
		if strings.EqualFold(enrolled, id) {
			return true
		}
	}
	return false
}

// ComparePassword checks a plaintext password against the stored hash.
func (u *User) ComparePassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

// ListFilters defines user query filters.
type ListFilters struct {
	Keyword   string
	Roles     []types.Role
	ExcludeID *uuid.UUID
}

// CreateInput carries data for creating a new user.
type CreateInput struct {
	FullName string
	Email    string
	Password string
	Role     types.Role
}

// List queries users with filters and pagination.
func List(db *gorm.DB, filters ListFilters, params pagination.Params) ([]User, int64, error) {
	query := db.Model(&User{})

	if filters.Keyword != "" {
		keyword := "%" + strings.ToLower(filters.Keyword) + "%"
		query = query.Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?", keyword, keyword)
	}

	if len(filters.Roles) > 0 {
		query = query.Where("role IN ?", filters.Roles)
	}

	if filters.ExcludeID != nil {
		query = query.Where("id != ?", *filters.ExcludeID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []User
	if err := query.Order("created_at DESC").Offset(params.Skip).Limit(params.Limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// Get retrieves a user by ID.
func Get(db *gorm.DB, id uuid.UUID) (User, error) {
	var usr User
	if err := db.First(&usr, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return usr, ErrUserNotFound
		}
		return usr, err
	}
	return usr, nil
}

// GetByEmail retrieves a user by email (case-insensitive).
func GetByEmail(db *gorm.DB, email string) (User, error) {
	var usr User
	if err := db.First(&usr, "LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return usr, ErrUserNotFound
		}
		return usr, err
	}
	return usr, nil
}

// Create inserts a new user with a bcrypt-hashed password.
func Create(db *gorm.DB, input CreateInput) (User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	var count int64
	if err := db.Model(&User{}).Where("LOWER(email) = ?", email).Count(&count).Error; err != nil {
		return User{}, err
	}
	if count > 0 {
		return User{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	role := input.Role
	if role == "" {
		role = types.RoleStudent
	}

	usr := User{
		FullName:        strings.TrimSpace(input.FullName),
		Email:           email,
		Password:        string(hash),
		Role:            role,
		EnrolledCourses: pq.StringArray{},
		Active:          true,
	}

	if err := db.Create(&usr).Error; err != nil {
		return User{}, err
	}

	return usr, nil
}

// Delete removes a user.
func Delete(db *gorm.DB, id uuid.UUID) error {
	result := db.Delete(&User{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// AddEnrollment appends a course id to the user's enrollment set atomically.
// The append happens server-side so concurrent calls cannot duplicate the entry
// or lose each other's writes. Returns true when the course was newly added.
func AddEnrollment(db *gorm.DB, userID, courseID uuid.UUID) (bool, error) {
	result := db.Exec(
		`UPDATE user_profiles
		 SET enrolled_courses = array_append(enrolled_courses, ?::uuid), updated_at = NOW()
		 WHERE id = ? AND NOT (?::uuid = ANY(enrolled_courses))`,
		courseID, userID, courseID,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// RemoveEnrollment removes a course id from the user's enrollment set atomically.
func RemoveEnrollment(db *gorm.DB, userID, courseID uuid.UUID) error {
	result := db.Exec(
		`UPDATE user_profiles
		 SET enrolled_courses = array_remove(enrolled_courses, ?::uuid), updated_at = NOW()
		 WHERE id = ?`,
		courseID, userID,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ListEnrolledInCourse returns all users whose enrollment set contains the course.
func ListEnrolledInCourse(db *gorm.DB, courseID uuid.UUID) ([]User, error) {
	var users []User
	err := db.Where("?::uuid = ANY(enrolled_courses)", courseID).
		Order("full_name ASC").
		Find(&users).Error
	return users, err
}

// CountByRole returns the number of users holding the given role.
func CountByRole(db *gorm.DB, role types.Role) (int64, error) {
	var count int64
	err := db.Model(&User{}).Where("role = ?", role).Count(&count).Error
	return count, err
}

// CountEnrollments sums enrollment set sizes across all student profiles.
func CountEnrollments(db *gorm.DB) (int64, error) {
	var total int64
	err := db.Model(&User{}).
		Where("role = ?", types.RoleStudent).
		Select("COALESCE(SUM(cardinality(enrolled_courses)), 0)").
		Scan(&total).Error
	return total, err
}

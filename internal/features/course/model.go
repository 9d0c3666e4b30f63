package course

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/skillbridge/marketplace-server-go/pkg/pagination"
	"github.com/skillbridge/marketplace-server-go/pkg/types"
	"github.com/skillbridge/marketplace-server-go/pkg/validation"
)

// Course represents a published marketplace course.
type Course struct {
	types.BaseModel

	Title       string         `gorm:"type:varchar(150);not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Author      string         `gorm:"type:varchar(100);not null" json:"author"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index;column:user_id" json:"userId"`
	Label       types.Role     `gorm:"type:varchar(20);not null;default:'teacher'" json:"label"`
	Tags        pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"tags"`
	Price       int            `gorm:"type:int;not null;default:0" json:"price"`
	Duration    string         `gorm:"type:varchar(50);not null" json:"duration"`
}

// TableName overrides the default table name.
func (Course) TableName() string { return "courses" }

// ListFilters defines course query filters.
type ListFilters struct {
	Keyword string
	OwnerID *uuid.UUID
}

// CreateInput carries data for creating a new course.
type CreateInput struct {
	Title       string
	Description string
	Author      string
	UserID      uuid.UUID
	Label       types.Role
	Tags        []string
	Price       *int
	Duration    string
}

// UpdateInput captures mutable course fields.
type UpdateInput struct {
	Title        *string
	DescProvided bool
	Description  *string
	Author       *string
	Tags         []string
	TagsProvided bool
	Price        *int
	Duration     *string
}

// List retrieves paginated courses, keyword-matched across title, description and tags.
func List(db *gorm.DB, filters ListFilters, params pagination.Params) ([]Course, int64, error) {
	query := db.Model(&Course{})

	if filters.Keyword != "" {
		keyword := "%" + strings.ToLower(filters.Keyword) + "%"
		query = query.Where(
			"LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(array_to_string(tags, ' ')) LIKE ?",
			keyword, keyword, keyword,
		)
	}

	if filters.OwnerID != nil {
		query = query.Where("user_id = ?", *filters.OwnerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var courses []Course
	err := query.
		Order("created_at DESC").
		Offset(params.Skip).
		Limit(params.Limit).
		Find(&courses).Error

	return courses, total, err
}

// Get retrieves a course by ID.
func Get(db *gorm.DB, id uuid.UUID) (Course, error) {
	var course Course
	if err := db.First(&course, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return course, ErrCourseNotFound
		}
		return course, err
	}
	return course, nil
}

// Create validates and inserts a new course. All required fields are checked
// before any database write.
func Create(db *gorm.DB, input CreateInput) (Course, error) {
	if strings.TrimSpace(input.Title) == "" ||
		strings.TrimSpace(input.Author) == "" ||
		strings.TrimSpace(input.Duration) == "" ||
		len(input.Tags) == 0 ||
		input.Price == nil {
		return Course{}, ErrMissingFields
	}

	if *input.Price < 0 {
		return Course{}, ErrNegativePrice
	}

	tags, err := validation.NormalizeTags(input.Tags)
	if err != nil {
		return Course{}, fmt.Errorf("%w: %v", ErrInvalidTags, err)
	}

	label := input.Label
	if label == "" {
		label = types.RoleTeacher
	}

	course := Course{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Author:      strings.TrimSpace(input.Author),
		UserID:      input.UserID,
		Label:       label,
		Tags:        pq.StringArray(tags),
		Price:       *input.Price,
		Duration:    strings.TrimSpace(input.Duration),
	}

	if err := db.Create(&course).Error; err != nil {
		return Course{}, err
	}

	return course, nil
}

// Update modifies an existing course.
func Update(db *gorm.DB, id uuid.UUID, input UpdateInput) (Course, error) {
	course, err := Get(db, id)
	if err != nil {
		return course, err
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return course, ErrMissingFields
		}
		course.Title = strings.TrimSpace(*input.Title)
	}

	if input.DescProvided {
		if input.Description != nil {
			course.Description = strings.TrimSpace(*input.Description)
		} else {
			course.Description = ""
		}
	}

	if input.Author != nil {
		if strings.TrimSpace(*input.Author) == "" {
			return course, ErrMissingFields
		}
		course.Author = strings.TrimSpace(*input.Author)
	}

	if input.TagsProvided {
		if len(input.Tags) == 0 {
			return course, ErrMissingFields
		}
		tags, err := validation.NormalizeTags(input.Tags)
		if err != nil {
			return course, fmt.Errorf("%w: %v", ErrInvalidTags, err)
		}
		course.Tags = pq.StringArray(tags)
	}

	if input.Price != nil {
		if *input.Price < 0 {
			return course, ErrNegativePrice
		}
		course.Price = *input.Price
	}

	if input.Duration != nil {
		if strings.TrimSpace(*input.Duration) == "" {
			return course, ErrMissingFields
		}
		course.Duration = strings.TrimSpace(*input.Duration)
	}

	if err := db.Save(&course).Error; err != nil {
		return course, err
	}

	return course, nil
}

// DeleteCascade removes a course together with its lessons and payment claims in
// a single transaction, and clears the course from every learner's enrollment
// set. It returns the storage paths of the deleted lessons' videos so the
// caller can clean up the file store after the transaction commits.
func DeleteCascade(db *gorm.DB, id uuid.UUID) ([]string, error) {
	var videoPaths []string

	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := Get(tx, id); err != nil {
			return err
		}

		var paths []string
		if err := tx.Table("lessons").
			Where("course_id = ? AND video_path <> ''", id).
			Pluck("video_path", &paths).Error; err != nil {
			return err
		}

		if err := tx.Table("lessons").Where("course_id = ?", id).Delete(nil).Error; err != nil {
			return err
		}

		if err := tx.Table("payment_claims").Where("course_id = ?", id).Delete(nil).Error; err != nil {
			return err
		}

		if err := tx.Exec(
			`UPDATE user_profiles
			 SET enrolled_courses = array_remove(enrolled_courses, ?::uuid), updated_at = NOW()
			 WHERE ?::uuid = ANY(enrolled_courses)`,
			id, id,
		).Error; err != nil {
			return err
		}

		if err := tx.Delete(&Course{}, "id = ?", id).Error; err != nil {
			return err
		}

		videoPaths = paths
		return nil
	})
	if err != nil {
		return nil, err
	}

	return videoPaths, nil
}

package lesson

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillbridge/marketplace-server-go/pkg/types"
)

// Lesson represents a video lesson within a course. The video reference is
// immutable after creation; only the title may change.
type Lesson struct {
	types.BaseModel

	CourseID  uuid.UUID `gorm:"type:uuid;not null;index;column:course_id" json:"courseId"`
	Title     string    `gorm:"type:varchar(120);not null" json:"title"`
	VideoURL  string    `gorm:"type:text;not null;column:video_url" json:"videoUrl"`
	VideoPath string    `gorm:"type:text;not null;column:video_path" json:"-"`
}

// TableName overrides the default table name.
func (Lesson) TableName() string { return "lessons" }

// CreateInput carries data for creating a new lesson.
type CreateInput struct {
	CourseID  uuid.UUID
	Title     string
	VideoURL  string
	VideoPath string
}

func validateTitle(title string) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return ErrTitleRequired
	}
	if length := utf8.RuneCountInString(trimmed); length < 3 || length > 120 {
		return ErrTitleLength
	}
	return nil
}

// ListByCourse retrieves all lessons of a course in creation order.
func ListByCourse(db *gorm.DB, courseID uuid.UUID) ([]Lesson, error) {
	var lessons []Lesson
	err := db.Where("course_id = ?", courseID).
		Order("created_at ASC").
		Find(&lessons).Error
	return lessons, err
}

// Get retrieves a lesson by ID.
func Get(db *gorm.DB, id uuid.UUID) (Lesson, error) {
	var les Lesson
	if err := db.First(&les, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return les, ErrLessonNotFound
		}
		return les, err
	}
	return les, nil
}

// Create inserts a new lesson.
func Create(db *gorm.DB, input CreateInput) (Lesson, error) {
	if err := validateTitle(input.Title); err != nil {
		return Lesson{}, err
	}
	if input.VideoURL == "" || input.VideoPath == "" {
		return Lesson{}, ErrVideoRequired
	}

	les := Lesson{
		CourseID:  input.CourseID,
		Title:     strings.TrimSpace(input.Title),
		VideoURL:  input.VideoURL,
		VideoPath: input.VideoPath,
	}

	if err := db.Create(&les).Error; err != nil {
		return Lesson{}, err
	}

	return les, nil
}

// UpdateTitle renames a lesson. The video reference cannot be changed.
func UpdateTitle(db *gorm.DB, id uuid.UUID, title string) (Lesson, error) {
	les, err := Get(db, id)
	if err != nil {
		return les, err
	}

	if err := validateTitle(title); err != nil {
		return les, err
	}

	les.Title = strings.TrimSpace(title)
	if err := db.Save(&les).Error; err != nil {
		return les, err
	}

	return les, nil
}

// Delete removes a lesson.
func Delete(db *gorm.DB, id uuid.UUID) error {
	result := db.Delete(&Lesson{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLessonNotFound
	}
	return nil
}

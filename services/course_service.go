// services/course_service.go - Course Isolation Layer
package services

import (
	"errors"
	"time"

	"groupeval/models"

	"gorm.io/gorm"
)

// DefaultCourseName is assigned to the course auto-created on first use.
const DefaultCourseName = "默认课程"

// CourseService owns the "exactly one active course" invariant. Every
// activation funnels through one transaction that clears the flag on all
// rows and sets it on the target, so no other operation ever observes zero
// or two active courses.
type CourseService struct {
	db *gorm.DB
}

func NewCourseService(db *gorm.DB) *CourseService {
	return &CourseService{db: db}
}

// ResolveCourse returns the course an operation should be scoped to. With an
// explicit ID it looks that course up; otherwise it returns the active
// course, creating and activating a default one when the store is empty.
func (s *CourseService) ResolveCourse(explicitID *uint) (*models.Course, error) {
	if explicitID != nil {
		var course models.Course
		if err := s.db.First(&course, *explicitID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCourseNotFound
			}
			return nil, err
		}
		return &course, nil
	}

	var course models.Course
	err := s.db.Where("is_active = ?", true).First(&course).Error
	if err == nil {
		return &course, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// No active course. Either the store is empty (create a default) or an
	// older row lost its flag somehow; re-elect the lowest id either way.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Course
		findErr := tx.Order("id ASC").First(&existing).Error
		if findErr == nil {
			if err := tx.Model(&models.Course{}).Where("id <> ?", existing.ID).
				Update("is_active", false).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Course{}).Where("id = ?", existing.ID).
				Update("is_active", true).Error; err != nil {
				return err
			}
			existing.IsActive = true
			course = existing
			return nil
		}
		if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return findErr
		}

		course = models.Course{
			Name:        DefaultCourseName,
			Description: "系统自动创建的默认课程",
			IsActive:    true,
			CreatedAt:   time.Now(),
		}
		return tx.Create(&course).Error
	})
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// ActiveCourse returns the current active course without creating one.
func (s *CourseService) ActiveCourse() (*models.Course, error) {
	var course models.Course
	if err := s.db.Where("is_active = ?", true).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return &course, nil
}

// GetCourse looks a course up by id.
func (s *CourseService) GetCourse(id uint) (*models.Course, error) {
	var course models.Course
	if err := s.db.First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return &course, nil
}

// ListCourses returns all courses, oldest first.
func (s *CourseService) ListCourses() ([]models.Course, error) {
	var courses []models.Course
	err := s.db.Order("id ASC").Find(&courses).Error
	return courses, err
}

// CreateCourse creates a course. The first course ever created becomes
// active immediately; later ones start inactive until explicitly activated.
func (s *CourseService) CreateCourse(name, description string) (*models.Course, error) {
	if name == "" {
		return nil, ErrNameRequired
	}

	course := &models.Course{
		Name:        name,
		Description: description,
		CreatedAt:   time.Now(),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Course{}).Count(&count).Error; err != nil {
			return err
		}
		course.IsActive = count == 0

		if err := tx.Create(course).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateCourse
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return course, nil
}

// UpdateCourse patches name and description.
func (s *CourseService) UpdateCourse(id uint, name, description *string) (*models.Course, error) {
	course, err := s.GetCourse(id)
	if err != nil {
		return nil, err
	}

	if name != nil {
		if *name == "" {
			return nil, ErrNameRequired
		}
		course.Name = *name
	}
	if description != nil {
		course.Description = *description
	}

	if err := s.db.Save(course).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateCourse
		}
		return nil, err
	}
	return course, nil
}

// SetActiveCourse makes the given course the single active one.
func (s *CourseService) SetActiveCourse(id uint) (*models.Course, error) {
	var course models.Course
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&course, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCourseNotFound
			}
			return err
		}
		if err := tx.Model(&models.Course{}).Where("id <> ?", id).
			Update("is_active", false).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Course{}).Where("id = ?", id).
			Update("is_active", true).Error; err != nil {
			return err
		}
		course.IsActive = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// DeleteCourse removes a course and everything scoped to it. When the
// deleted course was active and others remain, the oldest survivor takes
// over the active flag in the same transaction.
func (s *CourseService) DeleteCourse(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var course models.Course
		if err := tx.First(&course, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCourseNotFound
			}
			return err
		}

		var groupIDs []uint
		if err := tx.Model(&models.Group{}).Where("course_id = ?", id).
			Pluck("id", &groupIDs).Error; err != nil {
			return err
		}

		if err := tx.Where("course_id = ?", id).Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		if len(groupIDs) > 0 {
			if err := tx.Where("group_id IN ?", groupIDs).Delete(&models.Member{}).Error; err != nil {
				return err
			}
			if err := tx.Where("group_id IN ?", groupIDs).Delete(&models.GroupPhoto{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("course_id = ?", id).Delete(&models.Group{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&models.Role{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&models.Voter{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&course).Error; err != nil {
			return err
		}

		if course.IsActive {
			var successor models.Course
			err := tx.Order("id ASC").First(&successor).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			return tx.Model(&models.Course{}).Where("id = ?", successor.ID).
				Update("is_active", true).Error
		}
		return nil
	})
}

// services/seed_service.go - Demo data seeding for a fresh course
package services

import (
	"fmt"
	"time"

	"groupeval/models"

	"gorm.io/gorm"
)

// SeedService populates a course with a starter set of roles, groups and
// voters so an event can be demoed right after setup. Seeding is idempotent:
// rows that already exist (matched by name or phone) are left alone.
type SeedService struct {
	db *gorm.DB
}

func NewSeedService(db *gorm.DB) *SeedService {
	return &SeedService{db: db}
}

// SeedResult reports how many rows each entity gained.
type SeedResult struct {
	Roles  int `json:"roles"`
	Groups int `json:"groups"`
	Voters int `json:"voters"`
}

var (
	seedRoleNames = []string{"组长", "副组长", "组员", "技术负责人", "产品经理"}

	seedVoters = []struct {
		Name   string
		Phone  string
		Weight int
	}{
		{"张老师", "13800000001", 10},
		{"李老师", "13800000002", 10},
		{"王同学", "13800000003", 1},
		{"刘同学", "13800000004", 1},
		{"陈同学", "13800000005", 1},
	}
)

// SeedCourse fills the course with the demo data set.
func (s *SeedService) SeedCourse(courseID uint) (*SeedResult, error) {
	result := &SeedResult{}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, name := range seedRoleNames {
			var count int64
			if err := tx.Model(&models.Role{}).
				Where("course_id = ? AND name = ?", courseID, name).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			role := models.Role{CourseID: courseID, Name: name, CreatedAt: time.Now()}
			if err := tx.Create(&role).Error; err != nil {
				return err
			}
			result.Roles++
		}

		for i := 1; i <= 6; i++ {
			name := fmt.Sprintf("第%d小组", i)
			var count int64
			if err := tx.Model(&models.Group{}).
				Where("course_id = ? AND name = ?", courseID, name).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			group := models.Group{
				CourseID:  courseID,
				Name:      name,
				Status:    models.GroupStatusOpen,
				CreatedAt: time.Now(),
			}
			group.SetPhotos(nil)
			if err := tx.Create(&group).Error; err != nil {
				return err
			}
			result.Groups++
		}

		for _, v := range seedVoters {
			var count int64
			if err := tx.Model(&models.Voter{}).
				Where("course_id = ? AND phone = ?", courseID, v.Phone).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			voter := models.Voter{
				CourseID:  courseID,
				Name:      v.Name,
				Phone:     v.Phone,
				Weight:    v.Weight,
				CreatedAt: time.Now(),
			}
			if err := tx.Create(&voter).Error; err != nil {
				return err
			}
			result.Voters++
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

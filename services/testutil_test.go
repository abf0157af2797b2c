package services

import (
	"fmt"
	"testing"
	"time"

	"groupeval/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a fresh in-memory database. The busy-timeout pragma
// keeps concurrent writers waiting instead of erroring, which mirrors how
// PostgreSQL behaves under the vote-submission race.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:svc_%s_%d?mode=memory&cache=shared&_pragma=busy_timeout(10000)",
		t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Course{},
		&models.Role{},
		&models.Group{},
		&models.Member{},
		&models.Voter{},
		&models.Vote{},
		&models.GroupPhoto{},
	); err != nil {
		t.Fatalf("migrate db: %v", err)
	}
	return db
}

func createTestCourse(t *testing.T, db *gorm.DB, name string, active bool) *models.Course {
	t.Helper()
	course := &models.Course{Name: name, IsActive: active, CreatedAt: time.Now()}
	if err := db.Create(course).Error; err != nil {
		t.Fatalf("create course %q: %v", name, err)
	}
	return course
}

func createTestGroup(t *testing.T, db *gorm.DB, courseID uint, name string) *models.Group {
	t.Helper()
	group := &models.Group{CourseID: courseID, Name: name, CreatedAt: time.Now()}
	group.SetPhotos(nil)
	if err := db.Create(group).Error; err != nil {
		t.Fatalf("create group %q: %v", name, err)
	}
	return group
}

func createTestVoter(t *testing.T, db *gorm.DB, courseID uint, name, phone string, weight int) *models.Voter {
	t.Helper()
	voter := &models.Voter{
		CourseID:  courseID,
		Name:      name,
		Phone:     phone,
		Weight:    weight,
		CreatedAt: time.Now(),
	}
	if err := db.Create(voter).Error; err != nil {
		t.Fatalf("create voter %q: %v", name, err)
	}
	return voter
}

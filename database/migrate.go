// database/migrate.go - Database Migration Runner
package database

import (
	"log"

	"groupeval/models"
)

// RunMigrations runs all database migrations
func RunMigrations() {
	db := GetDB()
	log.Println("🔄 Running database migrations...")

	if err := db.AutoMigrate(
		&models.Course{},
		&models.Role{},
		&models.Group{},
		&models.Member{},
		&models.Voter{},
		&models.Vote{},
		&models.GroupPhoto{},
	); err != nil {
		log.Fatalf("❌ Failed to run migrations: %v", err)
	}

	createIndexes()

	log.Println("✅ All migrations completed successfully")
}

// createIndexes creates indexes beyond what AutoMigrate derives from tags.
// The unique index on votes(group_id, voter_id) already exists via the model
// tag; it is the race-breaker for duplicate votes and must never be dropped.
func createIndexes() {
	db := GetDB()

	db.Exec("CREATE INDEX IF NOT EXISTS idx_groups_course ON groups(course_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_groups_status ON groups(status)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_members_group ON members(group_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_members_role ON members(role_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_votes_course ON votes(course_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_votes_group ON votes(group_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_votes_voter ON votes(voter_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_group_photos_group ON group_photos(group_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_courses_active ON courses(is_active)")
}

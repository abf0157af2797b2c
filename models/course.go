// models/course.go
package models

import "time"

// Course scopes every group, role, voter and vote. At most one course is
// active at a time; the active course is the one the public voting pages
// operate on.
type Course struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null;size:100;uniqueIndex"`
	Description string    `json:"description" gorm:"type:text"`
	IsActive    bool      `json:"is_active" gorm:"default:false;index"`
	CreatedAt   time.Time `json:"created_at"`
	Groups      []Group   `json:"groups,omitempty" gorm:"foreignKey:CourseID"`
	Roles       []Role    `json:"roles,omitempty" gorm:"foreignKey:CourseID"`
	Voters      []Voter   `json:"voters,omitempty" gorm:"foreignKey:CourseID"`
}

func (Course) TableName() string {
	return "courses"
}

// Role is a member position within a course (e.g. team lead, product manager).
type Role struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	CourseID  uint      `json:"course_id" gorm:"not null;uniqueIndex:idx_roles_course_name"`
	Name      string    `json:"name" gorm:"not null;size:50;uniqueIndex:idx_roles_course_name"`
	CreatedAt time.Time `json:"created_at"`
}

func (Role) TableName() string {
	return "roles"
}

// models/group.go
package models

import (
	"encoding/json"
	"time"
)

// Group status values. A locked group no longer accepts votes.
const (
	GroupStatusOpen   = 0
	GroupStatusLocked = 1
)

type Group struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CourseID  uint      `json:"course_id" gorm:"not null;index"`
	Course    *Course   `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	Name      string    `json:"name" gorm:"not null;size:100"`
	Logo      string    `json:"logo" gorm:"size:255"`
	Status    int       `json:"status" gorm:"default:0"`
	Photos    string    `json:"-" gorm:"type:text"` // JSON-encoded list of photo paths
	CreatedAt time.Time `json:"created_at"`

	Members     []Member     `json:"members,omitempty" gorm:"foreignKey:GroupID"`
	Votes       []Vote       `json:"votes,omitempty" gorm:"foreignKey:GroupID"`
	GroupPhotos []GroupPhoto `json:"group_photos,omitempty" gorm:"foreignKey:GroupID"`
}

func (Group) TableName() string {
	return "groups"
}

// IsLocked reports whether the group has stopped accepting votes.
func (g *Group) IsLocked() bool {
	return g.Status == GroupStatusLocked
}

// GetPhotos decodes the stored photo path list. A corrupt or empty column
// yields an empty list, never an error.
func (g *Group) GetPhotos() []string {
	if g.Photos == "" {
		return []string{}
	}
	var photos []string
	if err := json.Unmarshal([]byte(g.Photos), &photos); err != nil {
		return []string{}
	}
	return photos
}

// SetPhotos stores the photo path list as JSON text.
func (g *Group) SetPhotos(photos []string) {
	if photos == nil {
		photos = []string{}
	}
	data, err := json.Marshal(photos)
	if err != nil {
		return
	}
	g.Photos = string(data)
}

// Member belongs to a group and holds a role from the group's course.
type Member struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	GroupID   uint      `json:"group_id" gorm:"not null;index"`
	Group     *Group    `json:"group,omitempty" gorm:"foreignKey:GroupID"`
	Name      string    `json:"name" gorm:"not null;size:50"`
	Company   string    `json:"company" gorm:"size:100"`
	RoleID    uint      `json:"role_id" gorm:"not null"`
	Role      *Role     `json:"role,omitempty" gorm:"foreignKey:RoleID"`
	CreatedAt time.Time `json:"created_at"`
}

func (Member) TableName() string {
	return "members"
}

// GroupPhoto is one uploaded showcase photo for a group.
type GroupPhoto struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	GroupID      uint      `json:"group_id" gorm:"not null;index"`
	Filename     string    `json:"filename" gorm:"not null;size:255"`
	OriginalName string    `json:"original_name" gorm:"not null;size:255"`
	CreatedAt    time.Time `json:"created_at"`
}

func (GroupPhoto) TableName() string {
	return "group_photos"
}

// URL returns the public path the photo is served from.
func (p *GroupPhoto) URL() string {
	return "/uploads/" + p.Filename
}

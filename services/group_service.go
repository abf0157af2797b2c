// services/group_service.go - Group, Role, Member and GroupPhoto management
package services

import (
	"errors"
	"time"

	"groupeval/models"

	"gorm.io/gorm"
)

type GroupService struct {
	db *gorm.DB
}

func NewGroupService(db *gorm.DB) *GroupService {
	return &GroupService{db: db}
}

// ================== GROUPS ==================

// ListGroups returns all groups of a course, oldest first.
func (s *GroupService) ListGroups(courseID uint) ([]models.Group, error) {
	var groups []models.Group
	err := s.db.Where("course_id = ?", courseID).Order("id ASC").Find(&groups).Error
	return groups, err
}

// GetGroup looks a group up by id.
func (s *GroupService) GetGroup(id uint) (*models.Group, error) {
	var group models.Group
	if err := s.db.First(&group, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return &group, nil
}

// CreateGroup creates a group in the given course.
func (s *GroupService) CreateGroup(courseID uint, name, logo string, photos []string) (*models.Group, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	if err := s.courseExists(courseID); err != nil {
		return nil, err
	}

	group := &models.Group{
		CourseID:  courseID,
		Name:      name,
		Logo:      logo,
		Status:    models.GroupStatusOpen,
		CreatedAt: time.Now(),
	}
	group.SetPhotos(photos)

	if err := s.db.Create(group).Error; err != nil {
		return nil, err
	}
	return group, nil
}

// GroupPatch carries the updatable fields of a group.
type GroupPatch struct {
	Name   *string   `json:"name"`
	Logo   *string   `json:"logo"`
	Status *int      `json:"status"`
	Photos *[]string `json:"photos"`
}

// UpdateGroup patches a group.
func (s *GroupService) UpdateGroup(id uint, patch GroupPatch) (*models.Group, error) {
	group, err := s.GetGroup(id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		if *patch.Name == "" {
			return nil, ErrNameRequired
		}
		group.Name = *patch.Name
	}
	if patch.Logo != nil {
		group.Logo = *patch.Logo
	}
	if patch.Status != nil {
		group.Status = *patch.Status
	}
	if patch.Photos != nil {
		group.SetPhotos(*patch.Photos)
	}

	if err := s.db.Save(group).Error; err != nil {
		return nil, err
	}
	return group, nil
}

// DeleteGroup removes a group with its members, votes and photos.
func (s *GroupService) DeleteGroup(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var group models.Group
		if err := tx.First(&group, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGroupNotFound
			}
			return err
		}

		if err := tx.Where("group_id = ?", id).Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", id).Delete(&models.Member{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", id).Delete(&models.GroupPhoto{}).Error; err != nil {
			return err
		}
		return tx.Delete(&group).Error
	})
}

// LockGroup sets or clears the locked status that gates new votes.
func (s *GroupService) LockGroup(id uint, lock bool) (*models.Group, error) {
	group, err := s.GetGroup(id)
	if err != nil {
		return nil, err
	}

	status := models.GroupStatusOpen
	if lock {
		status = models.GroupStatusLocked
	}
	if err := s.db.Model(group).Update("status", status).Error; err != nil {
		return nil, err
	}
	group.Status = status
	return group, nil
}

// ================== ROLES ==================

// ListRoles returns a course's roles.
func (s *GroupService) ListRoles(courseID uint) ([]models.Role, error) {
	var roles []models.Role
	err := s.db.Where("course_id = ?", courseID).Order("id ASC").Find(&roles).Error
	return roles, err
}

// CreateRole creates a role in the course; names are unique per course.
func (s *GroupService) CreateRole(courseID uint, name string) (*models.Role, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	if err := s.courseExists(courseID); err != nil {
		return nil, err
	}

	role := &models.Role{CourseID: courseID, Name: name, CreatedAt: time.Now()}
	if err := s.db.Create(role).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateRole
		}
		return nil, err
	}
	return role, nil
}

// DeleteRole removes a role. Existing members keep their historical role id.
func (s *GroupService) DeleteRole(id uint) error {
	result := s.db.Delete(&models.Role{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRoleNotFound
	}
	return nil
}

// ================== MEMBERS ==================

// ListMembers returns a group's members with roles preloaded.
func (s *GroupService) ListMembers(groupID uint) ([]models.Member, error) {
	var members []models.Member
	err := s.db.Where("group_id = ?", groupID).
		Preload("Role").
		Order("id ASC").
		Find(&members).Error
	return members, err
}

// AddMember adds a member to a group. The role must belong to the same
// course as the group.
func (s *GroupService) AddMember(groupID uint, name, company string, roleID uint) (*models.Member, error) {
	if name == "" {
		return nil, ErrNameRequired
	}

	group, err := s.GetGroup(groupID)
	if err != nil {
		return nil, err
	}

	var role models.Role
	if err := s.db.First(&role, roleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}
	if role.CourseID != group.CourseID {
		return nil, ErrCourseMismatch
	}

	member := &models.Member{
		GroupID:   groupID,
		Name:      name,
		Company:   company,
		RoleID:    roleID,
		CreatedAt: time.Now(),
	}
	if err := s.db.Create(member).Error; err != nil {
		return nil, err
	}
	member.Role = &role
	return member, nil
}

// MemberPatch carries the updatable fields of a member.
type MemberPatch struct {
	Name    *string `json:"name"`
	Company *string `json:"company"`
	RoleID  *uint   `json:"role_id"`
}

// UpdateMember patches a member; a new role must still match the group's course.
func (s *GroupService) UpdateMember(id uint, patch MemberPatch) (*models.Member, error) {
	var member models.Member
	if err := s.db.First(&member, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	if patch.Name != nil {
		if *patch.Name == "" {
			return nil, ErrNameRequired
		}
		member.Name = *patch.Name
	}
	if patch.Company != nil {
		member.Company = *patch.Company
	}
	if patch.RoleID != nil {
		group, err := s.GetGroup(member.GroupID)
		if err != nil {
			return nil, err
		}
		var role models.Role
		if err := s.db.First(&role, *patch.RoleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrRoleNotFound
			}
			return nil, err
		}
		if role.CourseID != group.CourseID {
			return nil, ErrCourseMismatch
		}
		member.RoleID = *patch.RoleID
	}

	if err := s.db.Save(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// DeleteMember removes a member.
func (s *GroupService) DeleteMember(id uint) error {
	result := s.db.Delete(&models.Member{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	return nil
}

// ================== GROUP PHOTOS ==================

// ListPhotos returns a group's uploaded photos, newest first.
func (s *GroupService) ListPhotos(groupID uint) ([]models.GroupPhoto, error) {
	var photos []models.GroupPhoto
	err := s.db.Where("group_id = ?", groupID).Order("created_at DESC").Find(&photos).Error
	return photos, err
}

// AddPhoto records an uploaded photo for a group.
func (s *GroupService) AddPhoto(groupID uint, filename, originalName string) (*models.GroupPhoto, error) {
	if _, err := s.GetGroup(groupID); err != nil {
		return nil, err
	}

	photo := &models.GroupPhoto{
		GroupID:      groupID,
		Filename:     filename,
		OriginalName: originalName,
		CreatedAt:    time.Now(),
	}
	if err := s.db.Create(photo).Error; err != nil {
		return nil, err
	}
	return photo, nil
}

// GetPhoto looks a photo record up by id.
func (s *GroupService) GetPhoto(id uint) (*models.GroupPhoto, error) {
	var photo models.GroupPhoto
	if err := s.db.First(&photo, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPhotoNotFound
		}
		return nil, err
	}
	return &photo, nil
}

// DeletePhoto removes a photo record.
func (s *GroupService) DeletePhoto(id uint) error {
	result := s.db.Delete(&models.GroupPhoto{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPhotoNotFound
	}
	return nil
}

func (s *GroupService) courseExists(courseID uint) error {
	var count int64
	if err := s.db.Model(&models.Course{}).Where("id = ?", courseID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrCourseNotFound
	}
	return nil
}

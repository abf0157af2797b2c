// services/voter_service.go - Registered voter management
package services

import (
	"errors"
	"time"

	"groupeval/models"

	"gorm.io/gorm"
)

type VoterService struct {
	db *gorm.DB
}

func NewVoterService(db *gorm.DB) *VoterService {
	return &VoterService{db: db}
}

// ListVoters returns a course's voters, oldest first.
func (s *VoterService) ListVoters(courseID uint) ([]models.Voter, error) {
	var voters []models.Voter
	err := s.db.Where("course_id = ?", courseID).Order("id ASC").Find(&voters).Error
	return voters, err
}

// GetVoter looks a voter up by id.
func (s *VoterService) GetVoter(id uint) (*models.Voter, error) {
	var voter models.Voter
	if err := s.db.First(&voter, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVoterNotFound
		}
		return nil, err
	}
	return &voter, nil
}

// CreateVoter registers a voter in a course. Phone numbers are unique within
// the course; weight defaults to 1 and must stay positive.
func (s *VoterService) CreateVoter(courseID uint, name, phone string, weight int) (*models.Voter, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	if phone == "" {
		return nil, ErrPhoneRequired
	}
	if weight == 0 {
		weight = 1
	}
	if weight < 1 {
		return nil, ErrInvalidWeight
	}

	var count int64
	if err := s.db.Model(&models.Course{}).Where("id = ?", courseID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrCourseNotFound
	}

	voter := &models.Voter{
		CourseID:  courseID,
		Name:      name,
		Phone:     phone,
		Weight:    weight,
		CreatedAt: time.Now(),
	}
	if err := s.db.Create(voter).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateVoter
		}
		return nil, err
	}
	return voter, nil
}

// VoterPatch carries the updatable fields of a voter. Changing the weight
// affects future votes only; cast votes keep their snapshotted weight.
type VoterPatch struct {
	Name   *string `json:"name"`
	Phone  *string `json:"phone"`
	Weight *int    `json:"weight"`
}

// UpdateVoter patches a voter.
func (s *VoterService) UpdateVoter(id uint, patch VoterPatch) (*models.Voter, error) {
	voter, err := s.GetVoter(id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		if *patch.Name == "" {
			return nil, ErrNameRequired
		}
		voter.Name = *patch.Name
	}
	if patch.Phone != nil {
		if *patch.Phone == "" {
			return nil, ErrPhoneRequired
		}
		voter.Phone = *patch.Phone
	}
	if patch.Weight != nil {
		if *patch.Weight < 1 {
			return nil, ErrInvalidWeight
		}
		voter.Weight = *patch.Weight
	}

	if err := s.db.Save(voter).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateVoter
		}
		return nil, err
	}
	return voter, nil
}

// DeleteVoter removes a voter together with every vote the voter cast.
func (s *VoterService) DeleteVoter(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var voter models.Voter
		if err := tx.First(&voter, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVoterNotFound
			}
			return err
		}
		if err := tx.Where("voter_id = ?", id).Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		return tx.Delete(&voter).Error
	})
}

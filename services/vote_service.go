// services/vote_service.go - Voting Integrity Core and Aggregation Engine
package services

import (
	"errors"
	"sort"
	"time"

	"groupeval/models"

	"gorm.io/gorm"
)

// VoteService enforces the voting rules: one vote per (voter, group), votes
// only while the group is open, voter and group must share a course, and the
// voter's weight is snapshotted into the vote at cast time. The unique index
// on votes(group_id, voter_id) is the final race-breaker; every in-process
// check here is a courtesy that can lose a race and is re-validated by the
// insert itself.
type VoteService struct {
	db *gorm.DB
}

func NewVoteService(db *gorm.DB) *VoteService {
	return &VoteService{db: db}
}

// VerifiedVoter is the result of the pre-vote identity check.
type VerifiedVoter struct {
	VoterID uint   `json:"voter_id"`
	Name    string `json:"name"`
	Weight  int    `json:"weight"`
}

// VerifyVoter checks that (name, phone) identifies a voter in the group's
// course and that the voter can still vote for the group. Read-only: the
// client calls this before showing the voting UI, and SubmitVote repeats
// every check because a concurrent submission can still race past this one.
func (s *VoteService) VerifyVoter(name, phone string, groupID uint) (*VerifiedVoter, error) {
	var group models.Group
	if err := s.db.First(&group, groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}

	if group.IsLocked() {
		return nil, ErrGroupLocked
	}

	var voter models.Voter
	err := s.db.Where("name = ? AND phone = ? AND course_id = ?", name, phone, group.CourseID).
		First(&voter).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVoterVerifyFailed
		}
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.Vote{}).
		Where("group_id = ? AND voter_id = ?", groupID, voter.ID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadyVoted
	}

	return &VerifiedVoter{VoterID: voter.ID, Name: voter.Name, Weight: voter.Weight}, nil
}

// SubmitVote records a vote and returns the group's fresh stats. All
// preconditions are re-validated here; a duplicate-key failure from the
// unique index maps to ErrAlreadyVoted so two racing submissions resolve to
// exactly one stored vote and one conflict.
func (s *VoteService) SubmitVote(voterID, groupID uint, voteType int) (*models.VoteStats, error) {
	if voteType != models.VoteTypeLike && voteType != models.VoteTypeDislike {
		return nil, ErrInvalidVoteType
	}

	var group models.Group
	if err := s.db.First(&group, groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}

	var voter models.Voter
	if err := s.db.First(&voter, voterID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVoterNotFound
		}
		return nil, err
	}

	if voter.CourseID != group.CourseID {
		return nil, ErrCourseMismatch
	}
	if group.IsLocked() {
		return nil, ErrGroupLocked
	}

	var count int64
	if err := s.db.Model(&models.Vote{}).
		Where("group_id = ? AND voter_id = ?", groupID, voterID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadyVoted
	}

	vote := models.Vote{
		CourseID:   group.CourseID,
		GroupID:    groupID,
		VoterID:    voterID,
		VoteType:   voteType,
		VoteWeight: voter.Weight, // snapshot, never recomputed
		CreatedAt:  time.Now(),
	}
	if err := s.db.Create(&vote).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyVoted
		}
		return nil, err
	}

	return s.GroupStats(groupID)
}

// GroupStats recomputes the like/dislike/total score of a group from its
// vote rows. Never cached, so admin edits and deletes show up immediately.
func (s *VoteService) GroupStats(groupID uint) (*models.VoteStats, error) {
	type sums struct {
		Likes    int
		Dislikes int
	}
	var r sums
	err := s.db.Model(&models.Vote{}).
		Select("COALESCE(SUM(CASE WHEN vote_type = 1 THEN vote_weight ELSE 0 END), 0) AS likes, "+
			"COALESCE(SUM(CASE WHEN vote_type = -1 THEN vote_weight ELSE 0 END), 0) AS dislikes").
		Where("group_id = ?", groupID).
		Scan(&r).Error
	if err != nil {
		return nil, err
	}
	return &models.VoteStats{Likes: r.Likes, Dislikes: r.Dislikes, Total: r.Likes - r.Dislikes}, nil
}

// Ranking computes the leaderboard for a course: every group's stats sorted
// by total score descending. Groups are enumerated by id ascending and the
// sort is stable, so equal scores rank in insertion order.
func (s *VoteService) Ranking(courseID uint) ([]models.RankingEntry, error) {
	var groups []models.Group
	if err := s.db.Where("course_id = ?", courseID).Order("id ASC").Find(&groups).Error; err != nil {
		return nil, err
	}

	entries := make([]models.RankingEntry, 0, len(groups))
	for _, group := range groups {
		stats, err := s.GroupStats(group.ID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, models.RankingEntry{
			ID:         group.ID,
			Name:       group.Name,
			Logo:       group.Logo,
			Likes:      stats.Likes,
			Dislikes:   stats.Dislikes,
			TotalScore: stats.Total,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalScore > entries[j].TotalScore
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// ListVotes returns a course's votes, newest first, with voter names preloaded.
func (s *VoteService) ListVotes(courseID uint) ([]models.Vote, error) {
	var votes []models.Vote
	err := s.db.Where("course_id = ?", courseID).
		Preload("Voter").
		Order("created_at DESC").
		Find(&votes).Error
	return votes, err
}

// VotePatch carries the admin-editable fields of a vote.
type VotePatch struct {
	VoteType   *int `json:"vote_type"`
	VoteWeight *int `json:"vote_weight"`
}

// UpdateVote is an administrative correction; it bypasses the one-vote rule
// but still validates the vote type.
func (s *VoteService) UpdateVote(voteID uint, patch VotePatch) (*models.Vote, error) {
	var vote models.Vote
	if err := s.db.First(&vote, voteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVoteNotFound
		}
		return nil, err
	}

	if patch.VoteType != nil {
		if *patch.VoteType != models.VoteTypeLike && *patch.VoteType != models.VoteTypeDislike {
			return nil, ErrInvalidVoteType
		}
		vote.VoteType = *patch.VoteType
	}
	if patch.VoteWeight != nil {
		if *patch.VoteWeight < 1 {
			return nil, ErrInvalidWeight
		}
		vote.VoteWeight = *patch.VoteWeight
	}

	if err := s.db.Save(&vote).Error; err != nil {
		return nil, err
	}
	return &vote, nil
}

// DeleteVote removes a vote row. Administrative override; the voter may
// vote for the group again afterwards.
func (s *VoteService) DeleteVote(voteID uint) error {
	result := s.db.Delete(&models.Vote{}, voteID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVoteNotFound
	}
	return nil
}

// VoteUpdate is one entry of a batch correction.
type VoteUpdate struct {
	ID         uint `json:"id"`
	VoteType   *int `json:"vote_type"`
	VoteWeight *int `json:"vote_weight"`
}

// BatchUpdateVotes applies a sequence of corrections in one transaction.
// Updates referencing unknown vote ids are skipped rather than failing the
// batch; the returned count reflects only the votes actually changed.
func (s *VoteService) BatchUpdateVotes(updates []VoteUpdate) (int, error) {
	applied := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			var vote models.Vote
			if err := tx.First(&vote, u.ID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return err
			}

			if u.VoteType != nil {
				if *u.VoteType != models.VoteTypeLike && *u.VoteType != models.VoteTypeDislike {
					return ErrInvalidVoteType
				}
				vote.VoteType = *u.VoteType
			}
			if u.VoteWeight != nil {
				if *u.VoteWeight < 1 {
					return ErrInvalidWeight
				}
				vote.VoteWeight = *u.VoteWeight
			}

			if err := tx.Save(&vote).Error; err != nil {
				return err
			}
			applied++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return applied, nil
}

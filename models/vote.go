// models/vote.go
package models

import "time"

// Vote type values: a weighted like or dislike.
const (
	VoteTypeLike    = 1
	VoteTypeDislike = -1
)

// Voter is a registered evaluator within a course. Weight scales every vote
// the voter casts.
type Voter struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CourseID  uint      `json:"course_id" gorm:"not null;uniqueIndex:idx_voters_course_phone"`
	Course    *Course   `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	Name      string    `json:"name" gorm:"not null;size:50"`
	Phone     string    `json:"phone" gorm:"not null;size:20;uniqueIndex:idx_voters_course_phone"`
	Weight    int       `json:"weight" gorm:"default:1"`
	CreatedAt time.Time `json:"created_at"`
	Votes     []Vote    `json:"votes,omitempty" gorm:"foreignKey:VoterID"`
}

func (Voter) TableName() string {
	return "voters"
}

// Vote is one cast ballot. VoteWeight is a snapshot of the voter's weight at
// cast time and is never recomputed from the live Voter row. The unique
// (group_id, voter_id) index is the authoritative one-vote-per-group rule.
type Vote struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	CourseID   uint      `json:"course_id" gorm:"not null;index"`
	GroupID    uint      `json:"group_id" gorm:"not null;uniqueIndex:idx_votes_group_voter"`
	Group      *Group    `json:"group,omitempty" gorm:"foreignKey:GroupID"`
	VoterID    uint      `json:"voter_id" gorm:"not null;uniqueIndex:idx_votes_group_voter"`
	Voter      *Voter    `json:"voter,omitempty" gorm:"foreignKey:VoterID"`
	VoteType   int       `json:"vote_type" gorm:"not null"`
	VoteWeight int       `json:"vote_weight" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Vote) TableName() string {
	return "votes"
}

// VoteStats is the aggregated score of one group.
type VoteStats struct {
	Likes    int `json:"likes"`
	Dislikes int `json:"dislikes"`
	Total    int `json:"total"`
}

// RankingEntry is one row of the course leaderboard.
type RankingEntry struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Logo       string `json:"logo"`
	Likes      int    `json:"likes"`
	Dislikes   int    `json:"dislikes"`
	TotalScore int    `json:"total_score"`
	Rank       int    `json:"rank"`
}

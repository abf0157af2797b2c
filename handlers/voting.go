// handlers/voting.go - Public voting flow: verify, submit, stats, ranking
package handlers

import (
	"groupeval/models"

	"github.com/gofiber/fiber/v2"
)

// VerifyVoter checks a voter's identity against the group's course before
// the voting UI opens. Read-only; SubmitVote repeats every check.
// POST /api/verify-voter
func VerifyVoter(c *fiber.Ctx) error {
	var req struct {
		Name    string `json:"name"`
		Phone   string `json:"phone"`
		GroupID uint   `json:"group_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}
	if req.Name == "" || req.Phone == "" || req.GroupID == 0 {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "name, phone and group_id are required",
		})
	}

	voter, err := voteService.VerifyVoter(req.Name, req.Phone, req.GroupID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"voter_id": voter.VoterID,
		"name":     voter.Name,
		"weight":   voter.Weight,
	})
}

// SubmitVote records a weighted like or dislike, broadcasts the fresh stats
// to the group's room and returns them.
// POST /api/vote
func SubmitVote(c *fiber.Ctx) error {
	var req struct {
		VoterID  uint `json:"voter_id"`
		GroupID  uint `json:"group_id"`
		VoteType int  `json:"vote_type"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}
	if req.VoterID == 0 || req.GroupID == 0 {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "voter_id and group_id are required",
		})
	}

	stats, err := voteService.SubmitVote(req.VoterID, req.GroupID, req.VoteType)
	if err != nil {
		return errorResponse(c, err)
	}

	// Best-effort push to dashboards watching this group.
	BroadcastVoteUpdate(req.GroupID, fiber.Map{
		"group_id": req.GroupID,
		"stats":    stats,
	})

	return c.JSON(fiber.Map{
		"success": true,
		"message": "投票成功",
		"stats":   stats,
	})
}

// GetGroupStats returns a group's current aggregated score.
// GET /api/groups/:id/stats
func GetGroupStats(c *fiber.Ctx) error {
	groupID, err := idParam(c, "id")
	if err != nil {
		return errorResponse(c, err)
	}

	if _, err := groupService.GetGroup(groupID); err != nil {
		return errorResponse(c, err)
	}

	stats, err := voteService.GroupStats(groupID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(stats)
}

// GetRanking returns the course leaderboard, best total score first. Equal
// scores keep insertion order.
// GET /api/ranking?course_id=
func GetRanking(c *fiber.Ctx) error {
	course, err := scopedCourse(c)
	if err != nil {
		return errorResponse(c, err)
	}

	ranking, err := voteService.Ranking(course.ID)
	if err != nil {
		return errorResponse(c, err)
	}
	if ranking == nil {
		ranking = []models.RankingEntry{}
	}
	return c.JSON(ranking)
}

// handlers/votes.go - Administrative vote corrections
package handlers

import (
	"groupeval/services"

	"github.com/gofiber/fiber/v2"
)

// GetVotes lists the scoped course's votes, newest first.
// GET /api/votes?course_id=
func GetVotes(c *fiber.Ctx) error {
	course, err := scopedCourse(c)
	if err != nil {
		return errorResponse(c, err)
	}

	votes, err := voteService.ListVotes(course.ID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"votes":   votes,
		"count":   len(votes),
	})
}

// UpdateVote corrects a single vote. The one-vote rule does not apply here.
// PUT /api/votes/:id
func UpdateVote(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return errorResponse(c, err)
	}

	var req services.VotePatch
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	vote, err := voteService.UpdateVote(id, req)
	if err != nil {
		return errorResponse(c, err)
	}

	// Push corrected stats to dashboards watching the group.
	if stats, statsErr := voteService.GroupStats(vote.GroupID); statsErr == nil {
		BroadcastVoteUpdate(vote.GroupID, fiber.Map{
			"group_id": vote.GroupID,
			"stats":    stats,
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"vote":    vote,
	})
}

// DeleteVote removes a vote row; the voter may then vote again.
// DELETE /api/votes/:id
func DeleteVote(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return errorResponse(c, err)
	}

	if err := voteService.DeleteVote(id); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Vote deleted successfully",
	})
}

// BatchUpdateVotes applies a list of corrections in one transaction.
// Unknown vote ids are skipped; the response counts only applied changes.
// PUT /api/votes/batch
func BatchUpdateVotes(c *fiber.Ctx) error {
	var req struct {
		Updates []services.VoteUpdate `json:"updates"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}
	if len(req.Updates) == 0 {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "updates is required",
		})
	}

	applied, err := voteService.BatchUpdateVotes(req.Updates)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"updated": applied,
	})
}

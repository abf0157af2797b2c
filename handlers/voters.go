// handlers/voters.go - Voter management endpoints
package handlers

import (
	"groupeval/services"

	"github.com/gofiber/fiber/v2"
)

// GetVoters lists the scoped course's voters.
// GET /api/voters?course_id=
func GetVoters(c *fiber.Ctx) error {
	course, err := scopedCourse(c)
	if err != nil {
		return errorResponse(c, err)
	}

	voters, err := voterService.ListVoters(course.ID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(voters)
}

// CreateVoter registers a voter in the scoped course.
// POST /api/voters
func CreateVoter(c *fiber.Ctx) error {
	var req struct {
		Name     string `json:"name"`
		Phone    string `json:"phone"`
		Weight   int    `json:"weight"`
		CourseID *uint  `json:"course_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	course, err := courseService.ResolveCourse(req.CourseID)
	if err != nil {
		return errorResponse(c, err)
	}

	voter, err := voterService.CreateVoter(course.ID, req.Name, req.Phone, req.Weight)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(201).JSON(voter)
}

// UpdateVoter patches a voter. Weight changes only affect future votes;
// cast votes keep the weight snapshotted at vote time.
// PUT /api/voters/:id
func UpdateVoter(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return errorResponse(c, err)
	}

	var req services.VoterPatch
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	voter, err := voterService.UpdateVoter(id, req)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(voter)
}

// DeleteVoter removes a voter and every vote they cast.
// DELETE /api/voters/:id
func DeleteVoter(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return errorResponse(c, err)
	}

	if err := voterService.DeleteVoter(id); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Voter deleted successfully",
	})
}

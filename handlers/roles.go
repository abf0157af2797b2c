// handlers/roles.go - Role management endpoints
package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// GetRoles lists the scoped course's roles.
// GET /api/roles?course_id=
func GetRoles(c *fiber.Ctx) error {
	course, err := scopedCourse(c)
	if err != nil {
		return errorResponse(c, err)
	}

	roles, err := groupService.ListRoles(course.ID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(roles)
}

// CreateRole creates a role in the scoped course.
// POST /api/roles
func CreateRole(c *fiber.Ctx) error {
	var req struct {
		Name     string `json:"name"`
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

	role, err := groupService.CreateRole(course.ID, req.Name)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(201).JSON(role)
}

// DeleteRole removes a role.
// DELETE /api/roles/:id
func DeleteRole(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return errorResponse(c, err)
	}

	if err := groupService.DeleteRole(id); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Role deleted successfully",
	})
}

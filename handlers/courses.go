// handlers/courses.go - Course management endpoints
package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// GetActiveCourse returns the active course, creating the default one on a
// fresh install.
// GET /api/courses/active
func GetActiveCourse(c *fiber.Ctx) error {
	course, err := courseService.ResolveCourse(nil)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"course":  course,
	})
}

// GetCourses lists all courses.
// GET /api/courses
func GetCourses(c *fiber.Ctx) error {
	courses, err := courseService.ListCourses()
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"courses": courses,
		"count":   len(courses),
	})
}

// CreateCourse creates a course. The first course becomes active.
// POST /api/courses
func CreateCourse(c *fiber.Ctx) error {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	course, err := courseService.CreateCourse(req.Name, req.Description)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(201).JSON(fiber.Map{
		"success": true,
		"course":  course,
	})
}

// UpdateCourse patches a course's name and description.
// PUT /api/courses/:id
func UpdateCourse(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return errorResponse(c, err)
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	course, err := courseService.UpdateCourse(id, req.Name, req.Description)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"course":  course,
	})
}

// ActivateCourse makes the course the single active one.
// POST /api/courses/:id/activate
func ActivateCourse(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return errorResponse(c, err)
	}

	course, err := courseService.SetActiveCourse(id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"course":  course,
	})
}

// DeleteCourse removes a course and everything scoped to it; if it was
// active, the oldest remaining course takes over.
// DELETE /api/courses/:id
func DeleteCourse(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return errorResponse(c, err)
	}

	if err := courseService.DeleteCourse(id); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Course deleted successfully",
	})
}

// InitData seeds the active course with demo roles, groups and voters.
// POST /api/init-data
func InitData(c *fiber.Ctx) error {
	course, err := scopedCourse(c)
	if err != nil {
		return errorResponse(c, err)
	}

	result, err := seedService.SeedCourse(course.ID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "初始化数据成功",
		"created": result,
	})
}

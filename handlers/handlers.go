// handlers/handlers.go - Shared handler state and helpers
package handlers

import (
	"strconv"

	"groupeval/database"
	"groupeval/models"
	"groupeval/services"

	"github.com/gofiber/fiber/v2"
)

var (
	courseService *services.CourseService
	groupService  *services.GroupService
	voterService  *services.VoterService
	voteService   *services.VoteService
	seedService   *services.SeedService
)

// InitHandlers wires every handler to the shared database instance.
func InitHandlers() {
	db := database.GetDB()
	if db == nil {
		panic("Database not initialized before InitHandlers")
	}
	courseService = services.NewCourseService(db)
	groupService = services.NewGroupService(db)
	voterService = services.NewVoterService(db)
	voteService = services.NewVoteService(db)
	seedService = services.NewSeedService(db)
}

// errorResponse maps a service error to the HTTP taxonomy: not-found to
// 404, conflicts to 409, validation to 400, anything else to 500.
func errorResponse(c *fiber.Ctx, err error) error {
	if e, ok := err.(*fiber.Error); ok {
		return c.Status(e.Code).JSON(fiber.Map{
			"success": false,
			"error":   e.Message,
		})
	}

	status := fiber.StatusInternalServerError
	switch {
	case services.IsNotFound(err):
		status = fiber.StatusNotFound
	case services.IsConflict(err):
		status = fiber.StatusConflict
	case services.IsValidation(err):
		status = fiber.StatusBadRequest
	}

	message := err.Error()
	if status == fiber.StatusInternalServerError {
		message = "Internal server error"
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

// idParam parses the named route parameter as an id.
func idParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}

// scopedCourse resolves the course a request operates on: an explicit
// ?course_id= wins, otherwise the active course (auto-created when the
// store is empty).
func scopedCourse(c *fiber.Ctx) (*models.Course, error) {
	var explicit *uint
	if raw := c.Query("course_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid course_id")
		}
		v := uint(id)
		explicit = &v
	}
	return courseService.ResolveCourse(explicit)
}

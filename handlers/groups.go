// handlers/groups.go - Group, member and photo endpoints
package handlers

import (
	"log"
	"os"
	"path/filepath"

	"groupeval/models"
	"groupeval/services"

	"github.com/gofiber/fiber/v2"
)

// groupView is the public shape of a group, with decoded photos and live stats.
type groupView struct {
	*models.Group
	Photos    []string          `json:"photos"`
	VoteStats *models.VoteStats `json:"vote_stats"`
}

func newGroupView(group *models.Group) (*groupView, error) {
	stats, err := voteService.GroupStats(group.ID)
	if err != nil {
		return nil, err
	}
	return &groupView{Group: group, Photos: group.GetPhotos(), VoteStats: stats}, nil
}

// GetGroups lists the groups of the active (or explicitly selected) course.
// GET /api/groups?course_id=
func GetGroups(c *fiber.Ctx) error {
	course, err := scopedCourse(c)
	if err != nil {
		return errorResponse(c, err)
	}

	groups, err := groupService.ListGroups(course.ID)
	if err != nil {
		return errorResponse(c, err)
	}

	views := make([]*groupView, 0, len(groups))
	for i := range groups {
		view, err := newGroupView(&groups[i])
		if err != nil {
			return errorResponse(c, err)
		}
		views = append(views, view)
	}
	return c.JSON(views)
}

// GetGroup returns one group.
// GET /api/groups/:id
func GetGroup(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return errorResponse(c, err)
	}

	group, err := groupService.GetGroup(id)
	if err != nil {
		return errorResponse(c, err)
	}

	view, err := newGroupView(group)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(view)
}

// CreateGroup creates a group in the scoped course.
// POST /api/groups
func CreateGroup(c *fiber.Ctx) error {
	var req struct {
		Name     string   `json:"name"`
		Logo     string   `json:"logo"`
		Photos   []string `json:"photos"`
		CourseID *uint    `json:"course_id"`
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

	group, err := groupService.CreateGroup(course.ID, req.Name, req.Logo, req.Photos)
	if err != nil {
		return errorResponse(c, err)
	}

	view, err := newGroupView(group)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(201).JSON(view)
}

// UpdateGroup patches a group.
// PUT /api/groups/:id
func UpdateGroup(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return errorResponse(c, err)
	}

	var req struct {
		Name   *string   `json:"name"`
		Logo   *string   `json:"logo"`
		Status *int      `json:"status"`
		Photos *[]string `json:"photos"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	group, err := groupService.UpdateGroup(id, services.GroupPatch{
		Name:   req.Name,
		Logo:   req.Logo,
		Status: req.Status,
		Photos: req.Photos,
	})
	if err != nil {
		return errorResponse(c, err)
	}

	view, err := newGroupView(group)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(view)
}

// DeleteGroup removes a group and its members, votes and photos.
// DELETE /api/groups/:id
func DeleteGroup(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return errorResponse(c, err)
	}

	if err := groupService.DeleteGroup(id); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Group deleted successfully",
	})
}

// LockGroup locks or reopens voting for a group.
// POST /api/groups/:id/lock
func LockGroup(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return errorResponse(c, err)
	}

	req := struct {
		Lock bool `json:"lock"`
	}{Lock: true}
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	group, err := groupService.LockGroup(id, req.Lock)
	if err != nil {
		return errorResponse(c, err)
	}

	view, err := newGroupView(group)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(view)
}

// ================== MEMBERS ==================

// GetGroupMembers lists a group's members.
// GET /api/groups/:id/members
func GetGroupMembers(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return errorResponse(c, err)
	}

	if _, err := groupService.GetGroup(id); err != nil {
		return errorResponse(c, err)
	}

	members, err := groupService.ListMembers(id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(members)
}

// AddGroupMember adds a member to a group.
// POST /api/groups/:id/members
func AddGroupMember(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return errorResponse(c, err)
	}

	var req struct {
		Name    string `json:"name"`
		Company string `json:"company"`
		RoleID  uint   `json:"role_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	member, err := groupService.AddMember(id, req.Name, req.Company, req.RoleID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(201).JSON(member)
}

// UpdateMember patches a member.
// PUT /api/members/:id
func UpdateMember(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return errorResponse(c, err)
	}

	var req services.MemberPatch
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	member, err := groupService.UpdateMember(id, req)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(member)
}

// DeleteMember removes a member.
// DELETE /api/members/:id
func DeleteMember(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return errorResponse(c, err)
	}

	if err := groupService.DeleteMember(id); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Member deleted successfully",
	})
}

// ================== PHOTOS ==================

// GetGroupPhotos lists a group's uploaded photos.
// GET /api/groups/:id/photos
func GetGroupPhotos(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return errorResponse(c, err)
	}

	if _, err := groupService.GetGroup(id); err != nil {
		return errorResponse(c, err)
	}

	photos, err := groupService.ListPhotos(id)
	if err != nil {
		return errorResponse(c, err)
	}

	out := make([]fiber.Map, 0, len(photos))
	for i := range photos {
		out = append(out, fiber.Map{
			"id":            photos[i].ID,
			"group_id":      photos[i].GroupID,
			"filename":      photos[i].Filename,
			"original_name": photos[i].OriginalName,
			"url":           photos[i].URL(),
			"created_at":    photos[i].CreatedAt,
		})
	}
	return c.JSON(out)
}

// AddGroupPhoto attaches an already-uploaded file to a group.
// POST /api/groups/:id/photos
func AddGroupPhoto(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return errorResponse(c, err)
	}

	var req struct {
		Filename     string `json:"filename"`
		OriginalName string `json:"original_name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}
	if req.Filename == "" {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "filename is required",
		})
	}

	photo, err := groupService.AddPhoto(id, req.Filename, req.OriginalName)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(201).JSON(fiber.Map{
		"id":            photo.ID,
		"group_id":      photo.GroupID,
		"filename":      photo.Filename,
		"original_name": photo.OriginalName,
		"url":           photo.URL(),
		"created_at":    photo.CreatedAt,
	})
}

// DeleteGroupPhoto removes a photo record and best-effort unlinks the file.
// DELETE /api/photos/:id
func DeleteGroupPhoto(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return errorResponse(c, err)
	}

	photo, err := groupService.GetPhoto(id)
	if err != nil {
		return errorResponse(c, err)
	}

	if err := groupService.DeletePhoto(id); err != nil {
		return errorResponse(c, err)
	}

	path := filepath.Join(uploadDir(), photo.Filename)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("⚠️ Failed to remove photo file %s: %v", path, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Photo deleted successfully",
	})
}

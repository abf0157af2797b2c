package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"groupeval/database"
	"groupeval/handlers/admin"
	"groupeval/middleware"
	"groupeval/models"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestApp wires the handlers to a fresh in-memory database and returns
// a fiber app with the same route layout the server uses.
func setupTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	t.Setenv("JWT_SECRET", "test-secret-test-secret-test-secret!")
	t.Setenv("ADMIN_PASSWORD", "test-admin-password")
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	dsn := fmt.Sprintf("file:h_%s_%d?mode=memory&cache=shared&_pragma=busy_timeout(10000)",
		t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Course{},
		&models.Role{},
		&models.Group{},
		&models.Member{},
		&models.Voter{},
		&models.Vote{},
		&models.GroupPhoto{},
	); err != nil {
		t.Fatalf("migrate db: %v", err)
	}

	database.SetDB(db)
	InitHandlers()

	app := fiber.New()
	api := app.Group("/api")

	api.Post("/verify-voter", VerifyVoter)
	api.Post("/vote", SubmitVote)
	api.Get("/ranking", GetRanking)
	api.Get("/courses/active", GetActiveCourse)
	api.Get("/groups", GetGroups)
	api.Get("/groups/:id", GetGroup)
	api.Get("/groups/:id/stats", GetGroupStats)
	api.Get("/groups/:id/members", GetGroupMembers)
	api.Get("/roles", GetRoles)

	adminGroup := api.Group("/admin")
	adminGroup.Post("/login", admin.Login)
	adminGroup.Get("/verify", middleware.AdminAuthMiddleware, admin.VerifyToken)

	authed := api.Group("", middleware.AdminAuthMiddleware)
	authed.Get("/courses", GetCourses)
	authed.Post("/courses", CreateCourse)
	authed.Put("/courses/:id", UpdateCourse)
	authed.Delete("/courses/:id", DeleteCourse)
	authed.Post("/courses/:id/activate", ActivateCourse)
	authed.Post("/groups", CreateGroup)
	authed.Put("/groups/:id", UpdateGroup)
	authed.Delete("/groups/:id", DeleteGroup)
	authed.Post("/groups/:id/lock", LockGroup)
	authed.Post("/roles", CreateRole)
	authed.Delete("/roles/:id", DeleteRole)
	authed.Post("/groups/:id/members", AddGroupMember)
	authed.Put("/members/:id", UpdateMember)
	authed.Delete("/members/:id", DeleteMember)
	authed.Get("/voters", GetVoters)
	authed.Post("/voters", CreateVoter)
	authed.Put("/voters/:id", UpdateVoter)
	authed.Delete("/voters/:id", DeleteVoter)
	authed.Get("/votes", GetVotes)
	authed.Put("/votes/batch", BatchUpdateVotes)
	authed.Put("/votes/:id", UpdateVote)
	authed.Delete("/votes/:id", DeleteVote)
	authed.Post("/init-data", InitData)

	return app, db
}

// seedCourseData creates an active course with one open group and one voter.
func seedCourseData(t *testing.T, db *gorm.DB, weight int) (*models.Course, *models.Group, *models.Voter) {
	t.Helper()

	course := &models.Course{Name: "测试课程", IsActive: true, CreatedAt: time.Now()}
	if err := db.Create(course).Error; err != nil {
		t.Fatalf("create course: %v", err)
	}
	group := &models.Group{CourseID: course.ID, Name: "第1小组", CreatedAt: time.Now()}
	group.SetPhotos(nil)
	if err := db.Create(group).Error; err != nil {
		t.Fatalf("create group: %v", err)
	}
	voter := &models.Voter{
		CourseID:  course.ID,
		Name:      "张老师",
		Phone:     "13800000001",
		Weight:    weight,
		CreatedAt: time.Now(),
	}
	if err := db.Create(voter).Error; err != nil {
		t.Fatalf("create voter: %v", err)
	}
	return course, group, voter
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}, token string) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	resp.Body.Close()

	var decoded map[string]interface{}
	if len(raw) > 0 {
		// Array responses are wrapped for uniform access in tests.
		if raw[0] == '[' {
			var arr []interface{}
			if err := json.Unmarshal(raw, &arr); err != nil {
				t.Fatalf("decode array response %q: %v", raw, err)
			}
			decoded = map[string]interface{}{"items": arr}
		} else if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("decode response %q: %v", raw, err)
		}
	}
	return resp, decoded
}

// adminToken logs in with the test credentials and returns the bearer token.
func adminToken(t *testing.T, app *fiber.App) string {
	t.Helper()

	resp, body := doJSON(t, app, "POST", "/api/admin/login", map[string]string{
		"username": "admin",
		"password": "test-admin-password",
	}, "")
	if resp.StatusCode != 200 {
		t.Fatalf("admin login failed: %d %v", resp.StatusCode, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("no token in login response: %v", body)
	}
	return token
}

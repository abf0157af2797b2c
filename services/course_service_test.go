package services

import (
	"errors"
	"testing"

	"groupeval/models"
)

func countActiveCourses(t *testing.T, svc *CourseService) int64 {
	t.Helper()
	var count int64
	if err := svc.db.Model(&models.Course{}).Where("is_active = ?", true).Count(&count).Error; err != nil {
		t.Fatalf("count active courses: %v", err)
	}
	return count
}

func TestResolveCourseCreatesDefault(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCourseService(db)

	course, err := svc.ResolveCourse(nil)
	if err != nil {
		t.Fatalf("resolve course: %v", err)
	}
	if course.Name != DefaultCourseName {
		t.Fatalf("expected default course, got %q", course.Name)
	}
	if !course.IsActive {
		t.Fatalf("default course must be active")
	}

	// Resolving again returns the same course, no second default.
	again, err := svc.ResolveCourse(nil)
	if err != nil {
		t.Fatalf("resolve course: %v", err)
	}
	if again.ID != course.ID {
		t.Fatalf("expected course %d, got %d", course.ID, again.ID)
	}

	var total int64
	db.Model(&models.Course{}).Count(&total)
	if total != 1 {
		t.Fatalf("expected 1 course, got %d", total)
	}
}

func TestResolveCourseExplicitID(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCourseService(db)

	created, err := svc.CreateCourse("课程A", "")
	if err != nil {
		t.Fatalf("create course: %v", err)
	}

	course, err := svc.ResolveCourse(&created.ID)
	if err != nil {
		t.Fatalf("resolve explicit: %v", err)
	}
	if course.ID != created.ID {
		t.Fatalf("expected course %d, got %d", created.ID, course.ID)
	}

	missing := uint(9999)
	if _, err := svc.ResolveCourse(&missing); !errors.Is(err, ErrCourseNotFound) {
		t.Fatalf("expected ErrCourseNotFound, got %v", err)
	}
}

func TestCreateCourseFirstBecomesActive(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCourseService(db)

	first, err := svc.CreateCourse("课程A", "")
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	if !first.IsActive {
		t.Fatalf("first course must be active")
	}

	second, err := svc.CreateCourse("课程B", "")
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if second.IsActive {
		t.Fatalf("second course must start inactive")
	}

	if n := countActiveCourses(t, svc); n != 1 {
		t.Fatalf("expected exactly 1 active course, got %d", n)
	}
}

func TestCreateCourseDuplicateName(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCourseService(db)

	if _, err := svc.CreateCourse("课程A", ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.CreateCourse("课程A", ""); !errors.Is(err, ErrDuplicateCourse) {
		t.Fatalf("expected ErrDuplicateCourse, got %v", err)
	}
}

func TestSetActiveCourseExclusive(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCourseService(db)

	a, _ := svc.CreateCourse("课程A", "")
	b, _ := svc.CreateCourse("课程B", "")
	c, _ := svc.CreateCourse("课程C", "")

	for _, target := range []*models.Course{b, c, a, b} {
		activated, err := svc.SetActiveCourse(target.ID)
		if err != nil {
			t.Fatalf("activate %d: %v", target.ID, err)
		}
		if !activated.IsActive {
			t.Fatalf("activated course not flagged active")
		}
		if n := countActiveCourses(t, svc); n != 1 {
			t.Fatalf("after activating %d: expected 1 active course, got %d", target.ID, n)
		}

		active, err := svc.ActiveCourse()
		if err != nil {
			t.Fatalf("active course: %v", err)
		}
		if active.ID != target.ID {
			t.Fatalf("expected active course %d, got %d", target.ID, active.ID)
		}
	}

	if _, err := svc.SetActiveCourse(9999); !errors.Is(err, ErrCourseNotFound) {
		t.Fatalf("expected ErrCourseNotFound, got %v", err)
	}
}

func TestDeleteActiveCourseReelects(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCourseService(db)

	a, _ := svc.CreateCourse("课程A", "") // active
	b, _ := svc.CreateCourse("课程B", "")
	c, _ := svc.CreateCourse("课程C", "")

	if err := svc.DeleteCourse(a.ID); err != nil {
		t.Fatalf("delete active course: %v", err)
	}

	if n := countActiveCourses(t, svc); n != 1 {
		t.Fatalf("expected 1 active course after deletion, got %d", n)
	}
	active, err := svc.ActiveCourse()
	if err != nil {
		t.Fatalf("active course: %v", err)
	}
	if active.ID != b.ID {
		t.Fatalf("expected oldest survivor %d to be active, got %d", b.ID, active.ID)
	}

	// Deleting an inactive course leaves the active one alone.
	if err := svc.DeleteCourse(c.ID); err != nil {
		t.Fatalf("delete inactive course: %v", err)
	}
	active, _ = svc.ActiveCourse()
	if active.ID != b.ID {
		t.Fatalf("active course changed unexpectedly to %d", active.ID)
	}
}

func TestDeleteLastCourseLeavesEmptyStore(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCourseService(db)

	a, _ := svc.CreateCourse("课程A", "")
	if err := svc.DeleteCourse(a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := svc.ActiveCourse(); !errors.Is(err, ErrCourseNotFound) {
		t.Fatalf("expected ErrCourseNotFound, got %v", err)
	}
}

func TestDeleteCourseCascades(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCourseService(db)
	votes := NewVoteService(db)
	groups := NewGroupService(db)

	course, _ := svc.CreateCourse("课程A", "")
	group := createTestGroup(t, db, course.ID, "第1小组")
	voter := createTestVoter(t, db, course.ID, "张老师", "13800000001", 10)

	role, err := groups.CreateRole(course.ID, "组长")
	if err != nil {
		t.Fatalf("create role: %v", err)
	}
	if _, err := groups.AddMember(group.ID, "成员甲", "公司A", role.ID); err != nil {
		t.Fatalf("add member: %v", err)
	}
	if _, err := groups.AddPhoto(group.ID, "abc123_logo.png", "logo.png"); err != nil {
		t.Fatalf("add photo: %v", err)
	}
	if _, err := votes.SubmitVote(voter.ID, group.ID, models.VoteTypeLike); err != nil {
		t.Fatalf("vote: %v", err)
	}

	if err := svc.DeleteCourse(course.ID); err != nil {
		t.Fatalf("delete course: %v", err)
	}

	for name, model := range map[string]interface{}{
		"courses":      &models.Course{},
		"groups":       &models.Group{},
		"roles":        &models.Role{},
		"members":      &models.Member{},
		"voters":       &models.Voter{},
		"votes":        &models.Vote{},
		"group_photos": &models.GroupPhoto{},
	} {
		var count int64
		if err := db.Model(model).Count(&count).Error; err != nil {
			t.Fatalf("count %s: %v", name, err)
		}
		if count != 0 {
			t.Errorf("expected no %s rows after cascade, got %d", name, count)
		}
	}
}

func TestUpdateCourse(t *testing.T) {
	db := setupTestDB(t)
	svc := NewCourseService(db)

	course, _ := svc.CreateCourse("课程A", "old")
	name := "课程A改"
	desc := "new"
	updated, err := svc.UpdateCourse(course.ID, &name, &desc)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != name || updated.Description != desc {
		t.Fatalf("update not applied: %+v", updated)
	}

	empty := ""
	if _, err := svc.UpdateCourse(course.ID, &empty, nil); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
}

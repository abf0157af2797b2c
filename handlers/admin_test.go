package handlers

import (
	"net/http/httptest"
	"testing"
)

func TestAdminLogin(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, body := doJSON(t, app, "POST", "/api/admin/login", map[string]string{
		"username": "admin",
		"password": "test-admin-password",
	}, "")
	if resp.StatusCode != 200 {
		t.Fatalf("login: %d %v", resp.StatusCode, body)
	}
	if body["token"] == "" || body["username"] != "admin" {
		t.Fatalf("unexpected login response: %v", body)
	}

	resp, _ = doJSON(t, app, "POST", "/api/admin/login", map[string]string{
		"username": "admin",
		"password": "wrong",
	}, "")
	if resp.StatusCode != 401 {
		t.Fatalf("expected 401 for bad password, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, "POST", "/api/admin/login", map[string]string{
		"username": "admin",
	}, "")
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400 for missing password, got %d", resp.StatusCode)
	}
}

func TestAdminLoginBcryptHash(t *testing.T) {
	app, _ := setupTestApp(t)

	// A hash of some other password. It takes precedence over ADMIN_PASSWORD
	// when both are set.
	t.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$N9qo8uLOickgx2ZMRZoMye1VdLxHLOPN3rCxqJ7Rc9sy1m0kS8G5W")

	resp, _ := doJSON(t, app, "POST", "/api/admin/login", map[string]string{
		"username": "admin",
		"password": "test-admin-password",
	}, "")
	if resp.StatusCode != 401 {
		t.Fatalf("plain password must not pass once a hash is configured, got %d", resp.StatusCode)
	}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, _ := doJSON(t, app, "POST", "/api/groups", map[string]string{"name": "第7小组"}, "")
	if resp.StatusCode != 401 {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, "POST", "/api/groups", map[string]string{"name": "第7小组"}, "not-a-jwt")
	if resp.StatusCode != 401 {
		t.Fatalf("expected 401 with garbage token, got %d", resp.StatusCode)
	}

	token := adminToken(t, app)
	resp, body := doJSON(t, app, "POST", "/api/groups", map[string]string{"name": "第7小组"}, token)
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201 with valid token, got %d %v", resp.StatusCode, body)
	}
}

func TestAdminTokenViaQueryParam(t *testing.T) {
	app, _ := setupTestApp(t)
	token := adminToken(t, app)

	req := httptest.NewRequest("GET", "/api/admin/verify?token="+token, nil)
	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("verify via query token: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200 via query token, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest("GET", "/api/admin/verify", nil)
	resp, err = app.Test(req, 5000)
	if err != nil {
		t.Fatalf("verify without token: %v", err)
	}
	if resp.StatusCode != 401 {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}
}

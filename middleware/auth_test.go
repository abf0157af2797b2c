package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "middleware-test-secret-must-be-long!"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func adminClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"username": "admin",
		"is_admin": true,
		"exp":      time.Now().Add(time.Hour).Unix(),
		"iat":      time.Now().Unix(),
	}
}

func newAuthApp() *fiber.App {
	app := fiber.New()
	app.Get("/protected", AdminAuthMiddleware, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"username": c.Locals("username")})
	})
	return app
}

func request(t *testing.T, app *fiber.App, path, authHeader string) int {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	resp.Body.Close()
	return resp.StatusCode
}

func TestAdminAuthAcceptsHeaderAndQuery(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	app := newAuthApp()
	token := signToken(t, adminClaims())

	if code := request(t, app, "/protected", "Bearer "+token); code != 200 {
		t.Fatalf("header token rejected: %d", code)
	}
	if code := request(t, app, "/protected?token="+token, ""); code != 200 {
		t.Fatalf("query token rejected: %d", code)
	}
}

func TestAdminAuthRejections(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	app := newAuthApp()

	if code := request(t, app, "/protected", ""); code != 401 {
		t.Fatalf("missing token: expected 401, got %d", code)
	}
	if code := request(t, app, "/protected", "Bearer garbage"); code != 401 {
		t.Fatalf("malformed token: expected 401, got %d", code)
	}
	if code := request(t, app, "/protected", "Basic abc"); code != 401 {
		t.Fatalf("non-bearer scheme: expected 401, got %d", code)
	}

	expired := adminClaims()
	expired["exp"] = time.Now().Add(-time.Minute).Unix()
	if code := request(t, app, "/protected", "Bearer "+signToken(t, expired)); code != 401 {
		t.Fatalf("expired token: expected 401, got %d", code)
	}

	nonAdmin := adminClaims()
	nonAdmin["is_admin"] = false
	if code := request(t, app, "/protected", "Bearer "+signToken(t, nonAdmin)); code != 401 {
		t.Fatalf("non-admin token: expected 401, got %d", code)
	}

	// A token signed with a different secret never validates.
	other := jwt.NewWithClaims(jwt.SigningMethodHS256, adminClaims())
	forged, err := other.SignedString([]byte("some-other-secret-entirely-here!!"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if code := request(t, app, "/protected", "Bearer "+forged); code != 401 {
		t.Fatalf("forged token: expected 401, got %d", code)
	}
}

package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"gamereview/internal/handlers"
	"gamereview/internal/middleware"
	"gamereview/internal/models"
	"gamereview/internal/repositories"
	"gamereview/internal/services"
	"gamereview/pkg/kvstore"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupApp sets up a Fiber app for testing over an in-memory SQLite store.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	store, err := kvstore.NewGORMStore(db)
	require.NoError(t, err)

	authService := services.NewAuthService(
		repositories.NewKVUserRepository(store),
		repositories.NewKVSessionRepository(store),
		services.AuthConfig{JWTSecret: "test_jwt_secret"},
	)
	reviewService := services.NewReviewService(repositories.NewKVReviewRepository(store), nil)

	app := fiber.New()
	sessionMiddleware := middleware.ResolveSession(authService)
	apiV1 := app.Group("/api/v1")
	handlers.NewAuthHandler(authService).RegisterRoutes(apiV1, sessionMiddleware)
	handlers.NewReviewHandler(reviewService).RegisterRoutes(apiV1, sessionMiddleware)
	return app
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// do sends a JSON request and decodes the JSON response into out when non-nil.
func do(t *testing.T, app *fiber.App, method, path, token string, body interface{}, out interface{}) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func register(t *testing.T, app *fiber.App, email, password, name string) int {
	return do(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":           email,
		"password":        password,
		"confirmPassword": password,
		"name":            name,
	}, nil)
}

func login(t *testing.T, app *fiber.App, email, password string) (int, string) {
	var resp map[string]interface{}
	status := do(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	token, _ := resp["token"].(string)
	return status, token
}

func TestAuthRegisterAndLogin(t *testing.T) {
	app := setupApp(t)

	assert.Equal(t, http.StatusCreated, register(t, app, "a@b.com", "secret1", "Ann"))

	// Registration does not log in
	var check map[string]interface{}
	assert.Equal(t, http.StatusOK, do(t, app, http.MethodGet, "/api/v1/auth/session", "", nil, &check))
	assert.Equal(t, false, check["authenticated"])

	// Test Duplicate Registration
	assert.Equal(t, http.StatusConflict, register(t, app, "a@b.com", "secret2", "Other"))

	// Test wrong password
	status, token := login(t, app, "a@b.com", "wrong12")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Empty(t, token)
	do(t, app, http.MethodGet, "/api/v1/auth/session", "", nil, &check)
	assert.Equal(t, false, check["authenticated"])

	// Test Login
	status, token = login(t, app, "a@b.com", "secret1")
	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, token)

	do(t, app, http.MethodGet, "/api/v1/auth/session", "", nil, &check)
	assert.Equal(t, true, check["authenticated"])

	var me map[string]interface{}
	assert.Equal(t, http.StatusOK, do(t, app, http.MethodGet, "/api/v1/auth/me", token, nil, &me))
	assert.Equal(t, "Ann", me["displayName"])

	// Test Logout
	assert.Equal(t, http.StatusOK, do(t, app, http.MethodPost, "/api/v1/auth/logout", "", nil, nil))
	do(t, app, http.MethodGet, "/api/v1/auth/session", "", nil, &check)
	assert.Equal(t, false, check["authenticated"])
	assert.Equal(t, http.StatusUnauthorized, do(t, app, http.MethodGet, "/api/v1/auth/me", "", nil, nil))
}

func TestRegisterValidation(t *testing.T) {
	app := setupApp(t)

	var resp map[string]interface{}
	status := do(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":           "not-an-email",
		"password":        "123",
		"confirmPassword": "456",
	}, &resp)
	assert.Equal(t, http.StatusBadRequest, status)
	errs, ok := resp["errors"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")
	assert.Contains(t, errs, "confirmPassword")
}

func TestReviewEndpoints(t *testing.T) {
	app := setupApp(t)
	require.Equal(t, http.StatusCreated, register(t, app, "a@b.com", "secret1", "Ann"))
	status, token := login(t, app, "a@b.com", "secret1")
	require.Equal(t, http.StatusOK, status)

	// --- Test POST /reviews ---
	var created map[string]string
	status = do(t, app, http.MethodPost, "/api/v1/reviews", token, map[string]interface{}{
		"gameName":   "Chrono Trigger",
		"reviewText": "Great",
		"stars":      5,
	}, &created)
	assert.Equal(t, http.StatusCreated, status)
	id := created["id"]
	require.NotEmpty(t, id)

	// Unrated reviews are rejected
	status = do(t, app, http.MethodPost, "/api/v1/reviews", token, map[string]interface{}{
		"gameName":   "Chrono Trigger",
		"reviewText": "Great",
		"stars":      0,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	// --- Test GET /reviews ---
	var reviews []models.Review
	assert.Equal(t, http.StatusOK, do(t, app, http.MethodGet, "/api/v1/reviews", token, nil, &reviews))
	require.Len(t, reviews, 1)
	assert.Equal(t, 5, reviews[0].Stars)
	createdAt := reviews[0].CreatedAt

	// --- Test PUT /reviews/:id ---
	status = do(t, app, http.MethodPut, "/api/v1/reviews/"+id, token, map[string]interface{}{
		"gameName":   "Chrono Trigger",
		"reviewText": "Great",
		"stars":      4,
	}, nil)
	assert.Equal(t, http.StatusOK, status)

	var fetched models.Review
	assert.Equal(t, http.StatusOK, do(t, app, http.MethodGet, "/api/v1/reviews/"+id, token, nil, &fetched))
	assert.Equal(t, 4, fetched.Stars)
	assert.True(t, createdAt.Equal(fetched.CreatedAt))

	// --- Test DELETE /reviews/:id ---
	assert.Equal(t, http.StatusBadRequest, do(t, app, http.MethodDelete, "/api/v1/reviews/"+id, token, nil, nil))
	assert.Equal(t, http.StatusOK, do(t, app, http.MethodGet, "/api/v1/reviews/"+id, token, nil, nil))

	assert.Equal(t, http.StatusOK, do(t, app, http.MethodDelete, "/api/v1/reviews/"+id+"?confirm=true", token, nil, nil))
	assert.Equal(t, http.StatusNotFound, do(t, app, http.MethodGet, "/api/v1/reviews/"+id, token, nil, nil))

	reviews = nil
	do(t, app, http.MethodGet, "/api/v1/reviews", token, nil, &reviews)
	assert.Empty(t, reviews)
}

func TestReviewEndpointsUseDeviceSession(t *testing.T) {
	app := setupApp(t)
	require.Equal(t, http.StatusCreated, register(t, app, "a@b.com", "secret1", "Ann"))
	status, _ := login(t, app, "a@b.com", "secret1")
	require.Equal(t, http.StatusOK, status)

	// No bearer token: the persisted session scopes the request
	status = do(t, app, http.MethodPost, "/api/v1/reviews", "", map[string]interface{}{
		"gameName":   "Doom",
		"reviewText": "Fast",
		"stars":      4,
	}, nil)
	assert.Equal(t, http.StatusCreated, status)

	var reviews []models.Review
	do(t, app, http.MethodGet, "/api/v1/reviews", "", nil, &reviews)
	assert.Len(t, reviews, 1)

	// After logout the list is empty and writes are refused
	do(t, app, http.MethodPost, "/api/v1/auth/logout", "", nil, nil)
	reviews = nil
	assert.Equal(t, http.StatusOK, do(t, app, http.MethodGet, "/api/v1/reviews", "", nil, &reviews))
	assert.Empty(t, reviews)

	status = do(t, app, http.MethodPost, "/api/v1/reviews", "", map[string]interface{}{
		"gameName":   "Doom",
		"reviewText": "Fast",
		"stars":      4,
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestReviewsAreScopedPerUser(t *testing.T) {
	app := setupApp(t)
	require.Equal(t, http.StatusCreated, register(t, app, "ann@b.com", "secret1", "Ann"))
	require.Equal(t, http.StatusCreated, register(t, app, "bob@b.com", "secret2", "Bob"))

	_, annToken := login(t, app, "ann@b.com", "secret1")
	var created map[string]string
	do(t, app, http.MethodPost, "/api/v1/reviews", annToken, map[string]interface{}{
		"gameName":   "Tetris",
		"reviewText": "Classic",
		"stars":      5,
	}, &created)

	// Bob's login replaces Ann's session on this device
	_, bobToken := login(t, app, "bob@b.com", "secret2")
	var reviews []models.Review
	do(t, app, http.MethodGet, "/api/v1/reviews", bobToken, nil, &reviews)
	assert.Empty(t, reviews)
	assert.Equal(t, http.StatusNotFound, do(t, app, http.MethodGet, "/api/v1/reviews/"+created["id"], bobToken, nil, nil))
	assert.Equal(t, http.StatusUnauthorized, do(t, app, http.MethodGet, "/api/v1/reviews", annToken, nil, nil))

	_, annToken = login(t, app, "ann@b.com", "secret1")
	do(t, app, http.MethodGet, "/api/v1/reviews", annToken, nil, &reviews)
	assert.Len(t, reviews, 1)
}

func TestLogoutRevokesBearerToken(t *testing.T) {
	app := setupApp(t)
	require.Equal(t, http.StatusCreated, register(t, app, "a@b.com", "secret1", "Ann"))
	status, token := login(t, app, "a@b.com", "secret1")
	require.Equal(t, http.StatusOK, status)

	newReview := map[string]interface{}{
		"gameName":   "Chrono Trigger",
		"reviewText": "Great",
		"stars":      5,
	}
	require.Equal(t, http.StatusCreated, do(t, app, http.MethodPost, "/api/v1/reviews", token, newReview, nil))

	assert.Equal(t, http.StatusOK, do(t, app, http.MethodPost, "/api/v1/auth/logout", token, nil, nil))

	var check map[string]interface{}
	do(t, app, http.MethodGet, "/api/v1/auth/session", token, nil, &check)
	assert.Equal(t, false, check["authenticated"])

	assert.Equal(t, http.StatusUnauthorized, do(t, app, http.MethodGet, "/api/v1/reviews", token, nil, nil))
	assert.Equal(t, http.StatusUnauthorized, do(t, app, http.MethodPost, "/api/v1/reviews", token, newReview, nil))
	assert.Equal(t, http.StatusUnauthorized, do(t, app, http.MethodGet, "/api/v1/auth/me", token, nil, nil))

	// Logging back in shows the review that was created before logout
	_, token = login(t, app, "a@b.com", "secret1")
	var reviews []models.Review
	assert.Equal(t, http.StatusOK, do(t, app, http.MethodGet, "/api/v1/reviews", token, nil, &reviews))
	assert.Len(t, reviews, 1)
}

func TestAuthRoutesIgnoreStaleAuthorization(t *testing.T) {
	app := setupApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader([]byte(
		`{"email":"a@b.com","password":"secret1","confirmPassword":"secret1"}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer expired.or.garbage")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader([]byte(
		`{"email":"a@b.com","password":"secret1"}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer expired.or.garbage")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestInvalidBearerToken(t *testing.T) {
	app := setupApp(t)

	assert.Equal(t, http.StatusUnauthorized, do(t, app, http.MethodGet, "/api/v1/reviews", "garbage", nil, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reviews", nil)
	req.Header.Set("Authorization", "Token abc")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

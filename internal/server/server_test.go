package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"takopi/internal/config"
	"takopi/internal/database"
	"takopi/internal/filestore"
	"takopi/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret-key-for-handler-tests-only!!"

func testConfig(mode string) *config.Config {
	return &config.Config{
		JWTSecret:   testSecret,
		Port:        "8420",
		StorageMode: mode,
		Env:         "test",
	}
}

func setupTestApp(t *testing.T, mode string) *fiber.App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))

	var store *filestore.Store
	if mode == config.StorageModeLocal {
		store, err = filestore.Open(t.TempDir())
		require.NoError(t, err)
	}

	cfg := testConfig(mode)
	middleware.InitMiddleware(cfg)

	srv, err := NewServerWithDeps(cfg, db, store, nil)
	require.NoError(t, err)

	app := fiber.New()
	srv.SetupRoutes(app)
	return app
}

func mintToken(t *testing.T, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(time.Hour).Unix(),
		"iat": time.Now().Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
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
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func storageModes() []string {
	return []string{config.StorageModeDatabase, config.StorageModeLocal}
}

func TestToggleFollowEndpoint(t *testing.T) {
	for _, mode := range storageModes() {
		t.Run(mode, func(t *testing.T) {
			app := setupTestApp(t, mode)
			token := mintToken(t, "user-1")

			t.Run("requires auth", func(t *testing.T) {
				resp := doRequest(t, app, fiber.MethodPost, "/api/users/user-2/follow", "", nil)
				assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
			})

			t.Run("self follow is rejected", func(t *testing.T) {
				resp := doRequest(t, app, fiber.MethodPost, "/api/users/user-1/follow", token, nil)
				assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			})

			t.Run("toggles on and off", func(t *testing.T) {
				resp := doRequest(t, app, fiber.MethodPost, "/api/users/user-2/follow", token, nil)
				require.Equal(t, fiber.StatusOK, resp.StatusCode)
				body := decodeBody(t, resp)
				assert.Equal(t, true, body["is_following"])
				assert.Equal(t, float64(1), body["followers_count"])

				resp = doRequest(t, app, fiber.MethodPost, "/api/users/user-2/follow", token, nil)
				require.Equal(t, fiber.StatusOK, resp.StatusCode)
				body = decodeBody(t, resp)
				assert.Equal(t, false, body["is_following"])
				assert.Equal(t, float64(0), body["followers_count"])
			})

			t.Run("followers listing is public", func(t *testing.T) {
				resp := doRequest(t, app, fiber.MethodPost, "/api/users/user-2/follow", token, nil)
				require.Equal(t, fiber.StatusOK, resp.StatusCode)

				resp = doRequest(t, app, fiber.MethodGet, "/api/users/user-2/followers", "", nil)
				require.Equal(t, fiber.StatusOK, resp.StatusCode)
				body := decodeBody(t, resp)
				assert.Len(t, body["followers"], 1)
			})
		})
	}
}

func TestToggleLikeEndpoint(t *testing.T) {
	for _, mode := range storageModes() {
		t.Run(mode, func(t *testing.T) {
			app := setupTestApp(t, mode)

			t.Run("requires auth", func(t *testing.T) {
				resp := doRequest(t, app, fiber.MethodPost, "/api/content/content-1/like", "", nil)
				assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
			})

			t.Run("returns fresh count after each toggle", func(t *testing.T) {
				aliceToken := mintToken(t, "alice")
				bobToken := mintToken(t, "bob")

				resp := doRequest(t, app, fiber.MethodPost, "/api/content/content-1/like", aliceToken, nil)
				require.Equal(t, fiber.StatusOK, resp.StatusCode)
				body := decodeBody(t, resp)
				assert.Equal(t, true, body["liked"])
				assert.Equal(t, float64(1), body["likes_count"])

				resp = doRequest(t, app, fiber.MethodPost, "/api/content/content-1/like", bobToken, nil)
				require.Equal(t, fiber.StatusOK, resp.StatusCode)
				body = decodeBody(t, resp)
				assert.Equal(t, float64(2), body["likes_count"])

				resp = doRequest(t, app, fiber.MethodPost, "/api/content/content-1/like", aliceToken, nil)
				require.Equal(t, fiber.StatusOK, resp.StatusCode)
				body = decodeBody(t, resp)
				assert.Equal(t, false, body["liked"])
				assert.Equal(t, float64(1), body["likes_count"])
			})

			t.Run("count endpoint is public", func(t *testing.T) {
				resp := doRequest(t, app, fiber.MethodGet, "/api/content/content-1/likes", "", nil)
				require.Equal(t, fiber.StatusOK, resp.StatusCode)
				body := decodeBody(t, resp)
				assert.Equal(t, float64(1), body["likes_count"])
			})
		})
	}
}

func TestCollectionEndpoints(t *testing.T) {
	for _, mode := range storageModes() {
		t.Run(mode, func(t *testing.T) {
			app := setupTestApp(t, mode)
			ownerToken := mintToken(t, "owner")
			strangerToken := mintToken(t, "stranger")

			createResp := doRequest(t, app, fiber.MethodPost, "/api/collections", ownerToken, fiber.Map{
				"title":       "Favoritos",
				"description": "my picks",
				"is_public":   false,
			})
			require.Equal(t, fiber.StatusCreated, createResp.StatusCode)
			created := decodeBody(t, createResp)
			collectionID, _ := created["id"].(string)
			require.NotEmpty(t, collectionID)

			t.Run("empty title is rejected", func(t *testing.T) {
				resp := doRequest(t, app, fiber.MethodPost, "/api/collections", ownerToken, fiber.Map{
					"title": "   ",
				})
				assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			})

			t.Run("private collection hidden from strangers and anonymous", func(t *testing.T) {
				resp := doRequest(t, app, fiber.MethodGet, "/api/collections/"+collectionID, strangerToken, nil)
				assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

				resp = doRequest(t, app, fiber.MethodGet, "/api/collections/"+collectionID, "", nil)
				assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

				resp = doRequest(t, app, fiber.MethodGet, "/api/collections/"+collectionID, ownerToken, nil)
				assert.Equal(t, fiber.StatusOK, resp.StatusCode)
			})

			t.Run("duplicate item returns conflict", func(t *testing.T) {
				resp := doRequest(t, app, fiber.MethodPost,
					fmt.Sprintf("/api/collections/%s/items", collectionID), ownerToken,
					fiber.Map{"content_id": "content-42"})
				require.Equal(t, fiber.StatusCreated, resp.StatusCode)

				resp = doRequest(t, app, fiber.MethodPost,
					fmt.Sprintf("/api/collections/%s/items", collectionID), ownerToken,
					fiber.Map{"content_id": "content-42"})
				assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

				resp = doRequest(t, app, fiber.MethodGet,
					fmt.Sprintf("/api/collections/%s/items", collectionID), ownerToken, nil)
				require.Equal(t, fiber.StatusOK, resp.StatusCode)
				body := decodeBody(t, resp)
				assert.Len(t, body["items"], 1)
			})

			t.Run("non-owner update is forbidden", func(t *testing.T) {
				resp := doRequest(t, app, fiber.MethodPatch, "/api/collections/"+collectionID, strangerToken,
					fiber.Map{"title": "Hijacked"})
				assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
			})

			t.Run("non-owner delete is forbidden and collection survives", func(t *testing.T) {
				resp := doRequest(t, app, fiber.MethodDelete, "/api/collections/"+collectionID, strangerToken, nil)
				assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

				resp = doRequest(t, app, fiber.MethodGet, "/api/collections/"+collectionID, ownerToken, nil)
				assert.Equal(t, fiber.StatusOK, resp.StatusCode)
			})

			t.Run("item removal is idempotent", func(t *testing.T) {
				resp := doRequest(t, app, fiber.MethodDelete,
					fmt.Sprintf("/api/collections/%s/items/content-42", collectionID), ownerToken, nil)
				assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

				resp = doRequest(t, app, fiber.MethodDelete,
					fmt.Sprintf("/api/collections/%s/items/content-42", collectionID), ownerToken, nil)
				assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
			})

			t.Run("owner delete succeeds", func(t *testing.T) {
				resp := doRequest(t, app, fiber.MethodDelete, "/api/collections/"+collectionID, ownerToken, nil)
				assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

				resp = doRequest(t, app, fiber.MethodGet, "/api/collections/"+collectionID, ownerToken, nil)
				assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
			})

			t.Run("public listing only shows public collections", func(t *testing.T) {
				resp := doRequest(t, app, fiber.MethodPost, "/api/collections", ownerToken, fiber.Map{
					"title":     "Open shelf",
					"is_public": true,
				})
				require.Equal(t, fiber.StatusCreated, resp.StatusCode)
				resp = doRequest(t, app, fiber.MethodPost, "/api/collections", ownerToken, fiber.Map{
					"title": "Hidden shelf",
				})
				require.Equal(t, fiber.StatusCreated, resp.StatusCode)

				resp = doRequest(t, app, fiber.MethodGet, "/api/collections", "", nil)
				require.Equal(t, fiber.StatusOK, resp.StatusCode)
				body := decodeBody(t, resp)
				assert.Len(t, body["collections"], 1)
			})
		})
	}
}

func TestHealthEndpoints(t *testing.T) {
	app := setupTestApp(t, config.StorageModeDatabase)

	resp := doRequest(t, app, fiber.MethodGet, "/health/live", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doRequest(t, app, fiber.MethodGet, "/health/ready", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "healthy", body["status"])
}

func TestUnhandledErrorsRenderStandardBody(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))

	cfg := testConfig(config.StorageModeDatabase)
	middleware.InitMiddleware(cfg)

	srv, err := NewServerWithDeps(cfg, db, nil, nil)
	require.NoError(t, err)

	// The app Start serves must render errors escaping the handlers in the
	// standardized error body rather than fiber's plain-text default.
	app := srv.NewApp()
	app.Get("/boom", func(c *fiber.Ctx) error {
		return fmt.Errorf("handler blew up")
	})

	resp := doRequest(t, app, fiber.MethodGet, "/boom", "", nil)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Internal server error", body["error"])
	assert.Equal(t, "INTERNAL_ERROR", body["code"])
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"dakku/internal/config"
	"dakku/internal/database"
	"dakku/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

// stubObjectStore records uploads and removals in memory.
type stubObjectStore struct {
	mu        sync.Mutex
	uploads   map[string][]byte
	removed   []string
	removeErr error
}

func newStubObjectStore() *stubObjectStore {
	return &stubObjectStore{uploads: map[string][]byte{}}
}

func (s *stubObjectStore) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads[key] = data
	return s.PublicURL(key), nil
}

func (s *stubObjectStore) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.removeErr != nil {
		return s.removeErr
	}
	s.removed = append(s.removed, key)
	return nil
}

func (s *stubObjectStore) PublicURL(key string) string {
	return "https://cdn.test/post-images/" + key
}

func (s *stubObjectStore) KeyFromURL(rawURL string) (string, error) {
	return strings.TrimPrefix(rawURL, "https://cdn.test/post-images/"), nil
}

func (s *stubObjectStore) removedKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.removed...)
}

type testEnv struct {
	app   *fiber.App
	srv   *Server
	db    *gorm.DB
	store *stubObjectStore
}

func setupTestServer(t *testing.T) *testEnv {
	return setupTestServerWithRedis(t, nil)
}

func setupTestServerWithRedis(t *testing.T, redisClient *redis.Client) *testEnv {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))

	cfg := &config.Config{
		JWTSecret:       testSecret,
		Env:             "test",
		MaxUploadSizeMB: 10,
	}
	store := newStubObjectStore()
	srv := NewServerWithDeps(cfg, db, redisClient, store)

	app := fiber.New()
	srv.SetupRoutes(app)

	return &testEnv{app: app, srv: srv, db: db, store: store}
}

// createTestAccount inserts a user with a bcrypt-hashed password and a profile.
func createTestAccount(t *testing.T, db *gorm.DB, email, username, password string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{Email: email, Password: string(hash)}
	require.NoError(t, db.Create(user).Error)
	require.NoError(t, db.Create(&models.Profile{UserID: user.ID, Username: username}).Error)
	return user
}

func bearerFor(t *testing.T, env *testEnv, user *models.User) string {
	t.Helper()

	token, err := env.srv.generateToken(user.ID, "")
	require.NoError(t, err)
	return "Bearer " + token
}

func doJSON(t *testing.T, env *testEnv, method, path, auth string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	defer func() { _ = resp.Body.Close() }()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

// multipartPost builds a multipart request with title, content and image files.
func multipartPost(t *testing.T, method, path, auth, title, content string, files map[string][]byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("title", title))
	require.NoError(t, w.WriteField("content", content))
	for name, data := range files {
		fw, err := w.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	return req
}

// tinyPNG returns a valid 1x1 PNG.
func tinyPNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

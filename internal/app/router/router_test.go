package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"opinion_backend/internal/app/di"
	"opinion_backend/internal/app/router"
	"opinion_backend/internal/feature/auth/adapters"
	"opinion_backend/internal/feature/auth/usecase"
	jwtmw "opinion_backend/internal/platform/jwt"
	"opinion_backend/internal/platform/media"
)

type recordingMailer struct {
	mu   sync.Mutex
	last map[string]string
}

func (m *recordingMailer) Send(_ context.Context, _, to, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.last == nil {
		m.last = map[string]string{}
	}
	m.last[to] = token
	return nil
}

func (m *recordingMailer) tokenFor(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last[to]
}

type server struct {
	engine     *gin.Engine
	mailer     *recordingMailer
	adminToken string
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(adapters.Models()...))

	authCfg := usecase.DefaultConfig()
	authCfg.BcryptCost = bcrypt.MinCost
	admin := usecase.AdminConfig{
		Name: "Admin", Username: "admin", Email: "admin@local.test",
		Password: "Admin1234", Phone: "00000000",
	}
	mailer := &recordingMailer{}

	auth, err := di.NewAuth(db, nil, mailer, di.AuthConfig{
		Auth:  authCfg,
		Admin: admin,
		JWT:   jwtmw.Config{Secret: "test-secret", Issuer: "test", Expiration: time.Hour},
		Media: media.Config{Dir: t.TempDir(), BaseURL: "/media", Folder: "profiles", UploadDir: t.TempDir()},
	}, nil)
	require.NoError(t, err)

	seed, err := auth.Seeder.Run(context.Background())
	require.NoError(t, err)

	engine := router.NewRouter(router.Deps{
		Auth:     auth.AuthHandler,
		Users:    auth.UserHandler,
		Verifier: auth.Bearer,
		Profiles: auth.Profiles,
		Roles:    auth.Roles,
		Admin:    auth.AdminRole,
	})
	return &server{engine: engine, mailer: mailer, adminToken: seed.Token}
}

func (s *server) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &out)
	}
	return w.Code, out
}

func (s *server) registerAndLogin(t *testing.T, username string) (uint, string) {
	t.Helper()
	email := username + "@example.com"
	code, body := s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"name": "Test", "username": username, "email": email, "password": "password123",
	})
	require.Equal(t, http.StatusCreated, code, body)

	code, body = s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"emailOrUsername": username, "password": "password123",
	})
	require.Equal(t, http.StatusOK, code, body)
	user := body["user"].(map[string]any)
	return uint(user["id"].(float64)), body["token"].(string)
}

func TestRouter_Health(t *testing.T) {
	s := newServer(t)
	code, body := s.do(t, http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestRouter_RegisterVerifyAndProfile(t *testing.T) {
	s := newServer(t)
	id, token := s.registerAndLogin(t, "ana")

	code, body := s.do(t, http.MethodGet, "/api/v1/users/profile/me", token, nil)
	require.Equal(t, http.StatusOK, code)
	user := body["user"].(map[string]any)
	assert.Equal(t, "PENDING_VERIFICATION", user["state"])
	assert.Equal(t, "USER", user["role"])
	assert.Equal(t, "/media/default-avatar.png", user["profilePicture"])

	code, _ = s.do(t, http.MethodPost, "/api/v1/auth/verify-email", "", map[string]any{"token": s.mailer.tokenFor("ana@example.com")})
	require.Equal(t, http.StatusOK, code)

	code, body = s.do(t, http.MethodGet, "/api/v1/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "VERIFIED", body["user"].(map[string]any)["state"])

	code, body = s.do(t, http.MethodGet, "/api/v1/users/"+strconv.Itoa(int(id))+"/roles", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{"USER"}, body["roles"])
}

func TestRouter_RequiresBearer(t *testing.T) {
	s := newServer(t)
	code, _ := s.do(t, http.MethodGet, "/api/v1/users/profile/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRouter_AdminRoutes(t *testing.T) {
	s := newServer(t)
	id, userToken := s.registerAndLogin(t, "bob")
	path := "/api/v1/users/" + strconv.Itoa(int(id))

	code, _ := s.do(t, http.MethodPut, path+"/role", userToken, map[string]any{"roleName": "ADMIN"})
	assert.Equal(t, http.StatusForbidden, code, "non-admin must not assign roles")

	code, body := s.do(t, http.MethodPut, path+"/role", s.adminToken, map[string]any{"roleName": "admin_role"})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "ADMIN", body["user"].(map[string]any)["role"])

	code, body = s.do(t, http.MethodGet, "/api/v1/users/by-role/ADMIN", s.adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(2), body["total"])

	code, _ = s.do(t, http.MethodPut, path+"/role", s.adminToken, map[string]any{"roleName": "OWNER"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRouter_DeactivatedAccountIsLocked(t *testing.T) {
	s := newServer(t)
	id, userToken := s.registerAndLogin(t, "carl")
	path := "/api/v1/users/" + strconv.Itoa(int(id)) + "/active"

	code, _ := s.do(t, http.MethodPut, path, s.adminToken, map[string]any{"active": false})
	require.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodGet, "/api/v1/users/profile/me", userToken, nil)
	assert.Equal(t, http.StatusLocked, code, "existing token stops working")

	code, _ = s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{"emailOrUsername": "carl", "password": "password123"})
	assert.Equal(t, http.StatusLocked, code)

	code, _ = s.do(t, http.MethodPut, path, s.adminToken, map[string]any{"active": true})
	require.Equal(t, http.StatusOK, code)
	code, _ = s.do(t, http.MethodGet, "/api/v1/users/profile/me", userToken, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestRouter_PasswordReset(t *testing.T) {
	s := newServer(t)
	s.registerAndLogin(t, "dana")

	code, known := s.do(t, http.MethodPost, "/api/v1/auth/forgot-password", "", map[string]any{"email": "dana@example.com"})
	require.Equal(t, http.StatusOK, code)
	code, unknown := s.do(t, http.MethodPost, "/api/v1/auth/forgot-password", "", map[string]any{"email": "nobody@example.com"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, known, unknown)

	resetToken := s.mailer.tokenFor("dana@example.com")
	code, _ = s.do(t, http.MethodPost, "/api/v1/auth/reset-password", "", map[string]any{"token": resetToken, "newPassword": "brandnew123"})
	require.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodPost, "/api/v1/auth/reset-password", "", map[string]any{"token": resetToken, "newPassword": "another123"})
	assert.Equal(t, http.StatusNotFound, code, "reset token is single-use")

	code, _ = s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{"emailOrUsername": "dana@example.com", "password": "brandnew123"})
	assert.Equal(t, http.StatusOK, code)
}

package e2e

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"vidstream/internal/config"
	"vidstream/internal/database"
	"vidstream/internal/middleware"
	"vidstream/internal/modules/account"
	"vidstream/internal/modules/auth"
	"vidstream/internal/pkg/token"
	"vidstream/internal/repository"
	"vidstream/internal/upload"
)

type TestSuite struct {
	router *gin.Engine
	db     *gorm.DB
}

type TestResponse struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *ErrorDetail           `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Minimal valid PNG signature; enough for content sniffing.
var pngBytes = append([]byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}, make([]byte, 64)...)

func setupTestSuite(t *testing.T) *TestSuite {
	gin.SetMode(gin.TestMode)

	db, err := database.Connect(":memory:")
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, repository.AutoMigrate(db))

	cfg := &config.Config{
		AppEnv:             "test",
		AccessTokenSecret:  "e2e-access-secret",
		RefreshTokenSecret: "e2e-refresh-secret",
		AccessTokenTTL:     15 * time.Minute,
		RefreshTokenTTL:    24 * time.Hour,
		CookieSameSite:     "Lax",
		CookiePath:         "/api/v1/auth",
		UploadsDir:         t.TempDir(),
		StaticBase:         "/static/uploads",
	}

	userRepo := repository.NewUserRepository(db)
	tokens := token.NewManager(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	uploads := upload.NewStore(cfg.UploadsDir, cfg.StaticBase)

	authHandler := auth.NewHandler(auth.NewService(userRepo, tokens), uploads, cfg)
	accountHandler := account.NewHandler(account.NewService(userRepo), uploads)

	router := gin.New()
	router.Use(middleware.ErrorLogger())

	v1 := router.Group("/api/v1")
	{
		authHandler.RegisterPublicRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.JWTAuth(tokens))
		{
			authHandler.RegisterProtectedRoutes(protected)
			accountHandler.RegisterProtectedRoutes(protected)
		}
	}

	return &TestSuite{router: router, db: db}
}

func (s *TestSuite) postJSON(t *testing.T, path string, body any, accessToken string) (*httptest.ResponseRecorder, TestResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var parsed TestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	return w, parsed
}

func (s *TestSuite) register(t *testing.T, username, email, fullName, password string) (*httptest.ResponseRecorder, TestResponse) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("username", username))
	require.NoError(t, mw.WriteField("email", email))
	require.NoError(t, mw.WriteField("full_name", fullName))
	require.NoError(t, mw.WriteField("password", password))

	part, err := mw.CreateFormFile("avatar", "avatar.png")
	require.NoError(t, err)
	_, err = part.Write(pngBytes)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var parsed TestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	return w, parsed
}

func tokensFrom(t *testing.T, resp TestResponse) (access, refresh string) {
	t.Helper()
	tokens, ok := resp.Data["tokens"].(map[string]interface{})
	require.True(t, ok, "response has no tokens: %+v", resp)
	access, _ = tokens["access_token"].(string)
	refresh, _ = tokens["refresh_token"].(string)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	return access, refresh
}

func (s *TestSuite) storedRefreshToken(t *testing.T, username string) *string {
	t.Helper()
	var row struct{ RefreshToken *string }
	require.NoError(t, s.db.Table("users").Select("refresh_token").Where("username = ?", username).Scan(&row).Error)
	return row.RefreshToken
}

func TestSessionLifecycle(t *testing.T) {
	s := setupTestSuite(t)

	// Register u1.
	w, resp := s.register(t, "u1", "u1@example.com", "User One", "p1secret")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	user := resp.Data["user"].(map[string]interface{})
	assert.Equal(t, "u1", user["username"])
	_, hasHash := user["password_hash"]
	assert.False(t, hasHash, "password hash must never appear in responses")

	// Registration does not create a session.
	assert.Nil(t, s.storedRefreshToken(t, "u1"))

	// Login -> (AT1, RT1); the stored token equals the returned one.
	w, resp = s.postJSON(t, "/api/v1/auth/login", gin.H{"identifier": "u1", "password": "p1secret"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	at1, rt1 := tokensFrom(t, resp)
	stored := s.storedRefreshToken(t, "u1")
	require.NotNil(t, stored)
	assert.Equal(t, rt1, *stored)

	// Access token works on the protected surface.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+at1)
	me := httptest.NewRecorder()
	s.router.ServeHTTP(me, req)
	assert.Equal(t, http.StatusOK, me.Code)

	// Refresh(RT1) -> (AT2, RT2), RT2 != RT1.
	w, resp = s.postJSON(t, "/api/v1/auth/refresh", gin.H{"refresh_token": rt1}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	_, rt2 := tokensFrom(t, resp)
	assert.NotEqual(t, rt1, rt2)

	// Refresh(RT1) again -> reuse detected, session force-terminated.
	w, resp = s.postJSON(t, "/api/v1/auth/refresh", gin.H{"refresh_token": rt1}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_TOKEN", resp.Error.Code)
	assert.Nil(t, s.storedRefreshToken(t, "u1"))

	// RT2 no longer matches the (absent) stored state.
	w, _ = s.postJSON(t, "/api/v1/auth/refresh", gin.H{"refresh_token": rt2}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutIsIdempotent(t *testing.T) {
	s := setupTestSuite(t)

	_, _ = s.register(t, "u2", "u2@example.com", "User Two", "p2secret")
	_, resp := s.postJSON(t, "/api/v1/auth/login", gin.H{"identifier": "u2@example.com", "password": "p2secret"}, "")
	at, rt := tokensFrom(t, resp)

	w, _ := s.postJSON(t, "/api/v1/auth/logout", nil, at)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, s.storedRefreshToken(t, "u2"))

	// Second logout still succeeds.
	w, _ = s.postJSON(t, "/api/v1/auth/logout", nil, at)
	assert.Equal(t, http.StatusOK, w.Code)

	// The old refresh token is dead after logout.
	w, _ = s.postJSON(t, "/api/v1/auth/refresh", gin.H{"refresh_token": rt}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s := setupTestSuite(t)

	_, _ = s.register(t, "u3", "u3@example.com", "User Three", "p3secret")

	// Wrong password and unknown identifier produce the same response.
	w1, resp1 := s.postJSON(t, "/api/v1/auth/login", gin.H{"identifier": "u3", "password": "wrong"}, "")
	w2, resp2 := s.postJSON(t, "/api/v1/auth/login", gin.H{"identifier": "nobody", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, w1.Code)
	assert.Equal(t, http.StatusUnauthorized, w2.Code)
	assert.Equal(t, resp1.Error.Code, resp2.Error.Code)
	assert.Equal(t, resp1.Error.Message, resp2.Error.Message)
}

func TestDuplicateRegistrationConflicts(t *testing.T) {
	s := setupTestSuite(t)

	w, _ := s.register(t, "u4", "u4@example.com", "User Four", "p4secret")
	require.Equal(t, http.StatusCreated, w.Code)

	w, resp := s.register(t, "u4", "other@example.com", "Other", "p4secret")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "USER_EXISTS", resp.Error.Code)
}

func TestChangePasswordKeepsSession(t *testing.T) {
	s := setupTestSuite(t)

	_, _ = s.register(t, "u5", "u5@example.com", "User Five", "p5secret")
	_, resp := s.postJSON(t, "/api/v1/auth/login", gin.H{"identifier": "u5", "password": "p5secret"}, "")
	at, rt := tokensFrom(t, resp)

	w, _ := s.postJSON(t, "/api/v1/auth/change-password", gin.H{"old_password": "wrong", "new_password": "p5rotated"}, at)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.postJSON(t, "/api/v1/auth/change-password", gin.H{"old_password": "p5secret", "new_password": "p5rotated"}, at)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Old password no longer works, new one does.
	w, _ = s.postJSON(t, "/api/v1/auth/login", gin.H{"identifier": "u5", "password": "p5secret"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// The existing refresh token survived the password change.
	w, _ = s.postJSON(t, "/api/v1/auth/refresh", gin.H{"refresh_token": rt}, "")
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, resp = s.postJSON(t, "/api/v1/auth/login", gin.H{"identifier": "u5", "password": "p5rotated"}, "")
	assert.Equal(t, http.StatusOK, w.Code)
	tokensFrom(t, resp)
}

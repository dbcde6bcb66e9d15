package auth

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"vidstream/internal/config"
	"vidstream/internal/pkg/response"
	"vidstream/internal/upload"

	"github.com/gin-gonic/gin"
)

const refreshCookieName = "refresh_token"

// Handler manages all HTTP interactions for authentication.
type Handler struct {
	service *Service
	uploads *upload.Store
	cfg     *config.Config
}

func NewHandler(service *Service, uploads *upload.Store, cfg *config.Config) *Handler {
	return &Handler{service: service, uploads: uploads, cfg: cfg}
}

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	authGroup := protected.Group("/auth")
	{
		authGroup.POST("/logout", h.Logout)
		authGroup.POST("/change-password", h.ChangePassword)
	}
}

// Register creates an account from a multipart form: text fields plus a
// required avatar image and an optional cover image.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	avatarHeader, err := c.FormFile("avatar")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "AVATAR_REQUIRED", "Avatar image is required")
		return
	}

	avatarURL, err := h.uploads.SaveImage(avatarHeader)
	if err != nil {
		if errors.Is(err, upload.ErrInvalidMimeType) || errors.Is(err, upload.ErrFileTooLarge) || errors.Is(err, upload.ErrEmptyFile) {
			response.Error(c, http.StatusBadRequest, "INVALID_AVATAR", "Avatar image is not acceptable")
			return
		}
		response.Error(c, http.StatusInternalServerError, "UPLOAD_FAILED", "Failed to store avatar image")
		return
	}

	var coverURL string
	if coverHeader, err := c.FormFile("cover_image"); err == nil {
		coverURL, err = h.uploads.SaveImage(coverHeader)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "INVALID_COVER", "Cover image is not acceptable")
			return
		}
	}

	user, err := h.service.Register(c.Request.Context(), req, avatarURL, coverURL)
	if err != nil {
		if errors.Is(err, ErrUserAlreadyExists) {
			response.Error(c, http.StatusConflict, "USER_EXISTS", "Username or email is already registered")
			return
		}
		response.Error(c, http.StatusInternalServerError, "REGISTRATION_FAILED", "Failed to register user")
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"user": user})
}

// Login authenticates by username or email and returns an access token; the
// refresh token travels both in the body and as an HttpOnly cookie.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrInvalidCredentials) {
			// Same external message for unknown identifier and wrong
			// password; the distinction stays in the log line.
			log.Printf("auth login rejected: %v", err)
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Identifier or password is incorrect")
			return
		}
		response.Error(c, http.StatusInternalServerError, "LOGIN_FAILED", "Failed to login")
		return
	}

	h.setRefreshCookie(c, result.Tokens.RefreshToken, result.Tokens.RefreshExpiresAt)

	response.Success(c, http.StatusOK, gin.H{
		"user":   result.User,
		"tokens": result.Tokens,
	})
}

// Refresh rotates the session. The token is read from the cookie when
// present, from the JSON body otherwise.
func (h *Handler) Refresh(c *gin.Context) {
	raw := h.refreshTokenFrom(c)
	if raw == "" {
		response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Refresh token is missing")
		return
	}

	pair, err := h.service.Refresh(c.Request.Context(), raw)
	if err != nil {
		switch {
		case errors.Is(err, ErrRefreshTokenReused):
			// Session was force-terminated; drop the cookie as well.
			h.clearRefreshCookie(c)
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Refresh token is not valid")
		case errors.Is(err, ErrInvalidRefreshToken):
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Refresh token is not valid")
		default:
			response.Error(c, http.StatusInternalServerError, "REFRESH_FAILED", "Failed to refresh session")
		}
		return
	}

	h.setRefreshCookie(c, pair.RefreshToken, pair.RefreshExpiresAt)

	response.Success(c, http.StatusOK, gin.H{"tokens": pair})
}

func (h *Handler) Logout(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	if err := h.service.Logout(c.Request.Context(), userID); err != nil {
		response.Error(c, http.StatusInternalServerError, "LOGOUT_FAILED", "Failed to logout")
		return
	}

	h.clearRefreshCookie(c)
	response.Success(c, http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *Handler) ChangePassword(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), userID, req); err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Old password is incorrect")
		case errors.Is(err, ErrUserNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
		default:
			response.Error(c, http.StatusInternalServerError, "PASSWORD_CHANGE_FAILED", "Failed to change password")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Password changed"})
}

func (h *Handler) refreshTokenFrom(c *gin.Context) string {
	if cookie, err := c.Cookie(refreshCookieName); err == nil && cookie != "" {
		return cookie
	}
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return ""
	}
	return strings.TrimSpace(req.RefreshToken)
}

func (h *Handler) setRefreshCookie(c *gin.Context, tok string, expiresAt time.Time) {
	c.SetSameSite(sameSiteFrom(h.cfg.CookieSameSite))
	maxAge := int(time.Until(expiresAt).Seconds())
	c.SetCookie(refreshCookieName, tok, maxAge, h.cfg.CookiePath, "", h.cfg.CookieSecure, true)
}

func (h *Handler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(sameSiteFrom(h.cfg.CookieSameSite))
	c.SetCookie(refreshCookieName, "", -1, h.cfg.CookiePath, "", h.cfg.CookieSecure, true)
}

func sameSiteFrom(v string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

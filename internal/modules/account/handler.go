package account

import (
	"context"
	"errors"
	"net/http"

	"vidstream/internal/domain"

	"vidstream/internal/pkg/response"
	"vidstream/internal/upload"

	"github.com/gin-gonic/gin"
)

// Handler manages the profile HTTP surface.
type Handler struct {
	service *Service
	uploads *upload.Store
}

func NewHandler(service *Service, uploads *upload.Store) *Handler {
	return &Handler{service: service, uploads: uploads}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	userGroup := protected.Group("/users")
	{
		userGroup.GET("/me", h.GetMe)
		userGroup.PATCH("/me", h.UpdateProfile)
		userGroup.PATCH("/me/avatar", h.UpdateAvatar)
		userGroup.PATCH("/me/cover", h.UpdateCover)
	}
}

func (h *Handler) GetMe(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	user, err := h.service.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "PROFILE_FAILED", "Failed to load profile")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "PROFILE_FAILED", "Failed to update profile")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}

func (h *Handler) UpdateAvatar(c *gin.Context) {
	h.updateImage(c, "avatar", h.service.UpdateAvatar)
}

func (h *Handler) UpdateCover(c *gin.Context) {
	h.updateImage(c, "cover_image", h.service.UpdateCover)
}

func (h *Handler) updateImage(c *gin.Context, field string, apply func(ctx context.Context, userID int64, url string) (*domain.User, error)) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	fileHeader, err := c.FormFile(field)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "FILE_REQUIRED", "Image file is required")
		return
	}

	url, err := h.uploads.SaveImage(fileHeader)
	if err != nil {
		if errors.Is(err, upload.ErrInvalidMimeType) || errors.Is(err, upload.ErrFileTooLarge) || errors.Is(err, upload.ErrEmptyFile) {
			response.Error(c, http.StatusBadRequest, "INVALID_FILE", "Image is not acceptable")
			return
		}
		response.Error(c, http.StatusInternalServerError, "UPLOAD_FAILED", "Failed to store image")
		return
	}

	user, err := apply(c.Request.Context(), userID, url)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "PROFILE_FAILED", "Failed to update profile")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}

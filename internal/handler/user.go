package handler

import (
	"errors"
	"net/http"
	"strings"

	"instashare/internal/httputil"
	"instashare/internal/model"
	"instashare/internal/service"
	"instashare/internal/transport/http/middleware"
)

// UserHandler groups profile-related HTTP endpoints.
type UserHandler struct {
	userService  *service.UserService
	mediaService *service.MediaService
}

func NewUserHandler(userService *service.UserService, mediaService *service.MediaService) *UserHandler {
	return &UserHandler{
		userService:  userService,
		mediaService: mediaService,
	}
}

// GetProfile returns a user's public profile with post and story thumbnails.
// GET /users/{userID}
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r, "userID")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	profile, err := h.userService.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		httputil.WriteInternalError(w, "Failed to load profile")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, profile)
}

// UpdateMyProfile handles multipart profile updates: an optional bio field
// and an optional profile_pic file. Omitted fields keep their value.
// PUT /me/profile
func (h *UserHandler) UpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	maxFormSize := int64(model.MaxAvatarBytes) + 1024*1024
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			httputil.WriteBadRequest(w, "Content-Type must be multipart/form-data")
			return
		}
		if strings.Contains(err.Error(), "request body too large") {
			httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Profile picture exceeds 5MB limit")
			return
		}
		httputil.WriteBadRequest(w, "Invalid form data")
		return
	}

	var req model.UpdateProfileRequest

	if values, ok := r.MultipartForm.Value["bio"]; ok && len(values) > 0 {
		bio := values[0]
		req.Bio = &bio
	}

	file, header, err := r.FormFile("profile_pic")
	if err == nil {
		defer file.Close()
		upload, uploadErr := h.mediaService.UploadAvatar(r.Context(), file, header)
		if uploadErr != nil {
			writeUploadError(w, uploadErr)
			return
		}
		req.ProfilePicURL = &upload.URL
	} else if err != http.ErrMissingFile {
		httputil.WriteBadRequest(w, "Invalid profile picture upload")
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		httputil.WriteInternalError(w, "Failed to update profile")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, user)
}

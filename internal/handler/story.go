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

// StoryHandler groups story-related HTTP endpoints.
type StoryHandler struct {
	storyService *service.StoryService
	mediaService *service.MediaService
}

func NewStoryHandler(storyService *service.StoryService, mediaService *service.MediaService) *StoryHandler {
	return &StoryHandler{
		storyService: storyService,
		mediaService: mediaService,
	}
}

// List returns all currently active stories.
// GET /stories
func (h *StoryHandler) List(w http.ResponseWriter, r *http.Request) {
	stories, err := h.storyService.ListActive(r.Context())
	if err != nil {
		httputil.WriteInternalError(w, "Failed to load stories")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.StoryListResponse{Stories: stories})
}

// Create handles multipart story creation: a single image file. The story
// becomes invisible 24 hours after this request.
// POST /stories
func (h *StoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	maxFormSize := int64(model.MaxImageSizeBytes) + 1024*1024
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			httputil.WriteBadRequest(w, "Content-Type must be multipart/form-data")
			return
		}
		if strings.Contains(err.Error(), "request body too large") {
			httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Image exceeds 10MB limit")
			return
		}
		httputil.WriteBadRequest(w, "Invalid form data")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		httputil.WriteBadRequest(w, "Image file is required")
		return
	}
	defer file.Close()

	upload, err := h.mediaService.UploadStoryImage(r.Context(), file, header)
	if err != nil {
		writeUploadError(w, err)
		return
	}

	story, err := h.storyService.Create(r.Context(), userID, upload.URL)
	if err != nil {
		httputil.WriteInternalError(w, "Failed to create story")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, story)
}

package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"instashare/internal/httputil"
	"instashare/internal/model"
	"instashare/internal/service"
	"instashare/internal/transport/http/middleware"
)

// PostHandler groups post-related HTTP endpoints.
type PostHandler struct {
	postService  *service.PostService
	mediaService *service.MediaService
}

func NewPostHandler(postService *service.PostService, mediaService *service.MediaService) *PostHandler {
	return &PostHandler{
		postService:  postService,
		mediaService: mediaService,
	}
}

// List returns all posts with authors and comments embedded. When the caller
// sent a valid token, each post also carries their like state.
// GET /posts
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	var viewerID *int64
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		viewerID = &id
	}

	posts, err := h.postService.List(r.Context(), viewerID)
	if err != nil {
		httputil.WriteInternalError(w, "Failed to load posts")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.PostListResponse{Posts: posts})
}

// Create handles multipart post creation: an image file plus an optional
// caption field.
// POST /posts
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	maxFormSize := int64(model.MaxImageSizeBytes) + 1024*1024 // allow form overhead
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

	caption := r.FormValue("caption")
	if len(caption) > model.MaxPostCaptionLength {
		httputil.WriteBadRequest(w, "Caption is too long")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		httputil.WriteBadRequest(w, "Image file is required")
		return
	}
	defer file.Close()

	upload, err := h.mediaService.UploadPostImage(r.Context(), file, header)
	if err != nil {
		writeUploadError(w, err)
		return
	}

	post, err := h.postService.Create(r.Context(), userID, model.CreatePostRequest{
		ImageURL: upload.URL,
		Caption:  caption,
	})
	if err != nil {
		httputil.WriteInternalError(w, "Failed to create post")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, post)
}

// ToggleLike flips the caller's like on a post and returns the resolved
// state with the post's current like count.
// POST /posts/{postID}/like
func (h *PostHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	postID, err := parseIDParam(r, "postID")
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	result, err := h.postService.ToggleLike(r.Context(), postID, userID)
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			httputil.WriteNotFound(w, "Post not found")
			return
		}
		httputil.WriteInternalError(w, "Failed to toggle like")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// parseIDParam parses a numeric chi URL parameter.
func parseIDParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// writeUploadError maps media validation errors onto the error envelope.
func writeUploadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrFileTooLarge):
		httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "File exceeds the size limit")
	case errors.Is(err, model.ErrInvalidImageType):
		httputil.WriteBadRequestWithCode(w, model.CodeInvalidImageType, "Unsupported image type. Allowed: jpeg, png, gif, webp")
	default:
		httputil.WriteInternalError(w, "Failed to upload image")
	}
}

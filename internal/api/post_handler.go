package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/quill-api/internal/api/shared"
	"github.com/phrazzld/quill-api/internal/domain"
	"github.com/phrazzld/quill-api/internal/platform/logger"
	"github.com/phrazzld/quill-api/internal/service"
)

// PostHandler handles post-related HTTP requests. Every route except
// GetStatistics expects the bearer middleware to have placed the caller in
// the request context.
type PostHandler struct {
	postService service.PostService
	logger      *slog.Logger
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postService service.PostService, logger *slog.Logger) *PostHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for PostHandler")
	}

	return &PostHandler{
		postService: postService,
		logger:      logger.With(slog.String("component", "post_handler")),
	}
}

// caller returns the authenticated client or writes a 401.
func (h *PostHandler) caller(w http.ResponseWriter, r *http.Request) (*domain.Client, bool) {
	client, ok := getClientFromContext(r)
	if !ok {
		logger.FromContextOrDefault(r.Context(), h.logger).Warn("client not found in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return nil, false
	}
	return client, true
}

// CreatePost handles POST /posts/ requests.
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	client, ok := h.caller(w, r)
	if !ok {
		return
	}

	var req PostRequest
	if err := decodeRequest(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	post, err := h.postService.CreatePost(r.Context(), client.ID, req.Title, req.Content)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create post")
		return
	}

	log.Debug("post created", slog.String("post_id", post.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, postToResponse(post))
}

// ListPosts handles GET /posts/list requests.
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	client, ok := h.caller(w, r)
	if !ok {
		return
	}

	offset, limit, err := getPagination(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	posts, err := h.postService.ListPosts(r.Context(), client.ID, offset, limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list posts")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, postsToResponse(posts))
}

// GetPost handles GET /posts/?id= requests.
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	client, ok := h.caller(w, r)
	if !ok {
		return
	}

	postID, err := getQueryUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	post, err := h.postService.GetPost(r.Context(), client.ID, postID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve post")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, postToResponse(post))
}

// SearchPosts handles POST /posts/search requests. The search fields can
// only narrow the caller's own posts.
func (h *PostHandler) SearchPosts(w http.ResponseWriter, r *http.Request) {
	client, ok := h.caller(w, r)
	if !ok {
		return
	}

	offset, limit, err := getPagination(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req SearchPostsRequest
	if err := decodeRequest(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	posts, err := h.postService.SearchPosts(r.Context(), client.ID, req.Query(), offset, limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to search posts")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, postsToResponse(posts))
}

// UpdatePost handles PUT /posts/?id= requests.
func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	client, ok := h.caller(w, r)
	if !ok {
		return
	}

	postID, err := getQueryUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req PostRequest
	if err := decodeRequest(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	post, err := h.postService.UpdatePost(r.Context(), client.ID, postID, req.Title, req.Content)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update post")
		return
	}

	log.Debug("post updated", slog.String("post_id", post.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, postToResponse(post))
}

// DeletePost handles DELETE /posts/?id= requests. The body is the bare
// status code.
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	client, ok := h.caller(w, r)
	if !ok {
		return
	}

	postID, err := getQueryUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.postService.DeletePost(r.Context(), client.ID, postID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete post")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, http.StatusCreated)
}

// GetStatistics handles GET /posts/statistics/?user_id= requests. It is
// guarded by the master key, not by a bearer credential.
func (h *PostHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	clientID, err := getQueryUUID(r, "user_id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	average, err := h.postService.AveragePostCount(r.Context(), clientID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute statistics")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, StatisticsResponse{Average: average})
}

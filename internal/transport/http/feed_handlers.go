package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/studysphere/studysphere-server/internal/store"
)

// FeedHandlers provides HTTP handlers for the shared status feed.
type FeedHandlers struct {
	store store.Store
	log   *zerolog.Logger
}

// NewFeedHandlers creates a new feed handlers instance.
func NewFeedHandlers(st store.Store, logger *zerolog.Logger) *FeedHandlers {
	return &FeedHandlers{
		store: st,
		log:   logger,
	}
}

// PostRequest represents the create post request body.
type PostRequest struct {
	Text string `json:"text" binding:"required"`
}

// PostResponse represents a feed post in API responses.
type PostResponse struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

// CommentRequest represents the create comment request body.
type CommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// CommentResponse represents a comment in API responses.
type CommentResponse struct {
	ID        int64  `json:"id"`
	PostID    int64  `json:"post_id"`
	UserID    int64  `json:"user_id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

func postToResponse(p *store.Post) PostResponse {
	return PostResponse{
		ID:        p.ID,
		UserID:    p.UserID,
		Text:      p.Text,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}

func commentToResponse(c *store.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		PostID:    c.PostID,
		UserID:    c.UserID,
		Text:      c.Text,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}

// CreatePost publishes a status update.
// POST /api/posts
func (h *FeedHandlers) CreatePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	post, err := h.store.CreatePost(c.Request.Context(), &store.Post{
		UserID: userID,
		Text:   req.Text,
	})
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("failed to create post")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusCreated, postToResponse(post))
}

// ListPosts lists all feed posts, oldest first.
// GET /api/posts
func (h *FeedHandlers) ListPosts(c *gin.Context) {
	posts, err := h.store.ListPosts(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list posts")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		response = append(response, postToResponse(p))
	}
	c.JSON(http.StatusOK, response)
}

// DeletePost removes the caller's own post.
// DELETE /api/posts/:id
func (h *FeedHandlers) DeletePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}
	postID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	post, err := h.store.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "post not found"})
			return
		}
		h.log.Error().Err(err).Int64("post_id", postID).Msg("failed to load post")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	if post.UserID != userID {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "not authorized"})
		return
	}

	if err := h.store.DeletePost(ctx, postID); err != nil {
		h.log.Error().Err(err).Int64("post_id", postID).Msg("failed to delete post")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateComment replies to a post.
// POST /api/posts/:id/comments
func (h *FeedHandlers) CreateComment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}
	postID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	ctx := c.Request.Context()

	if _, err := h.store.GetPost(ctx, postID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "post not found"})
			return
		}
		h.log.Error().Err(err).Int64("post_id", postID).Msg("failed to load post")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	comment, err := h.store.CreateComment(ctx, &store.Comment{
		PostID: postID,
		UserID: userID,
		Text:   req.Text,
	})
	if err != nil {
		h.log.Error().Err(err).Int64("post_id", postID).Msg("failed to create comment")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusCreated, commentToResponse(comment))
}

// ListComments lists a post's comments, oldest first.
// GET /api/posts/:id/comments
func (h *FeedHandlers) ListComments(c *gin.Context) {
	postID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	comments, err := h.store.ListComments(c.Request.Context(), postID)
	if err != nil {
		h.log.Error().Err(err).Int64("post_id", postID).Msg("failed to list comments")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]CommentResponse, 0, len(comments))
	for _, cm := range comments {
		response = append(response, commentToResponse(cm))
	}
	c.JSON(http.StatusOK, response)
}

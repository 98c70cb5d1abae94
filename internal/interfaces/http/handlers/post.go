// internal/interfaces/http/handlers/post.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/thangka-store-backend/internal/domain/post"
	"github.com/your-org/thangka-store-backend/internal/interfaces/http/middleware"
)

// PostHandler handles blog endpoints
type PostHandler struct {
	postService *post.Service
}

// NewPostHandler creates a new post handler
func NewPostHandler(postService *post.Service) *PostHandler {
	return &PostHandler{
		postService: postService,
	}
}

// GetPosts handles GET /posts
func (h *PostHandler) GetPosts(c *gin.Context) {
	posts, err := h.postService.GetPublishedPosts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": posts,
	})
}

// GetMyPosts handles GET /posts/mine
func (h *PostHandler) GetMyPosts(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	posts, err := h.postService.GetUserPosts(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": posts,
	})
}

// GetPost handles GET /posts/:id
func (h *PostHandler) GetPost(c *gin.Context) {
	postID, ok := parseIDParam(c)
	if !ok {
		return
	}

	p, err := h.postService.GetPost(c.Request.Context(), postID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": p,
	})
}

// CreatePost handles POST /posts
func (h *PostHandler) CreatePost(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req post.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	p, err := h.postService.CreatePost(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Post created successfully",
		"data":    p,
	})
}

// UpdatePost handles PUT /posts/:id
func (h *PostHandler) UpdatePost(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	postID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req post.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	p, err := h.postService.UpdatePost(c.Request.Context(), postID, userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Post updated successfully",
		"data":    p,
	})
}

// DeletePost handles DELETE /posts/:id
func (h *PostHandler) DeletePost(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	postID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.postService.DeletePost(c.Request.Context(), postID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Post deleted successfully",
	})
}

// ToggleLike handles PUT /posts/:id/like
func (h *PostHandler) ToggleLike(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	postID, ok := parseIDParam(c)
	if !ok {
		return
	}

	likes, err := h.postService.ToggleLike(c.Request.Context(), postID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": likes,
	})
}

// AddComment handles POST /posts/:id/comments
func (h *PostHandler) AddComment(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	postID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req post.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	comment, err := h.postService.AddComment(c.Request.Context(), postID, userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Comment added successfully",
		"data":    comment,
	})
}

// DeleteComment handles DELETE /posts/:id/comments/:commentID
func (h *PostHandler) DeleteComment(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	postID, ok := parseIDParam(c)
	if !ok {
		return
	}

	commentID, err := strconv.ParseUint(c.Param("commentID"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid ID",
		})
		return
	}

	if err := h.postService.DeleteComment(c.Request.Context(), postID, uint(commentID), userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Comment deleted successfully",
	})
}

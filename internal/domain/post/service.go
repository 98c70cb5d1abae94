// internal/domain/post/service.go
package post

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/your-org/thangka-store-backend/internal/domain/user"
	"github.com/your-org/thangka-store-backend/internal/pkg/apperr"
	"gorm.io/gorm"
)

// Service handles blog business logic
type Service struct {
	db *gorm.DB
}

// NewService creates a new post service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreatePostRequest represents post creation data
type CreatePostRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Content     string `json:"content" binding:"required"`
	Tags        string `json:"tags"`
	ImageURL    string `json:"image_url"`
	IsPublished bool   `json:"is_published"`
}

// UpdatePostRequest represents post update data; nil fields are left unchanged
type UpdatePostRequest struct {
	Title       *string `json:"title,omitempty"`
	Content     *string `json:"content,omitempty"`
	Tags        *string `json:"tags,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
	IsPublished *bool   `json:"is_published,omitempty"`
}

// AddCommentRequest represents comment submission data
type AddCommentRequest struct {
	Text string `json:"text" binding:"required,max=1000"`
}

// CreatePost creates a post on the author's behalf. Posts start as drafts
// unless the request publishes them immediately.
func (s *Service) CreatePost(ctx context.Context, authorID uint, req *CreatePostRequest) (*Post, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, apperr.Validation("title", "is required")
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, apperr.Validation("content", "is required")
	}

	authorName, err := s.lookupAuthorName(ctx, authorID)
	if err != nil {
		return nil, err
	}

	p := Post{
		AuthorID:    authorID,
		AuthorName:  authorName,
		Title:       strings.TrimSpace(req.Title),
		Content:     req.Content,
		Tags:        req.Tags,
		ImageURL:    req.ImageURL,
		IsPublished: req.IsPublished,
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return &p, nil
}

// GetPublishedPosts retrieves all published posts, newest first
func (s *Service) GetPublishedPosts(ctx context.Context) ([]Post, error) {
	var posts []Post
	err := s.db.WithContext(ctx).
		Preload("Likes").
		Where("is_published = ?", true).
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve posts: %w", err)
	}
	return posts, nil
}

// GetUserPosts retrieves every post by the given author, drafts included,
// newest first
func (s *Service) GetUserPosts(ctx context.Context, authorID uint) ([]Post, error) {
	var posts []Post
	err := s.db.WithContext(ctx).
		Preload("Likes").
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve posts: %w", err)
	}
	return posts, nil
}

// GetPost retrieves a single post with its likes and comments
func (s *Service) GetPost(ctx context.Context, id uint) (*Post, error) {
	var p Post
	err := s.db.WithContext(ctx).
		Preload("Likes").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		First(&p, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve post: %w", err)
	}
	return &p, nil
}

// UpdatePost applies a partial update to a post the user owns
func (s *Service) UpdatePost(ctx context.Context, id, userID uint, req *UpdatePostRequest) (*Post, error) {
	p, err := s.loadOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, apperr.Validation("title", "is required")
		}
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		if strings.TrimSpace(*req.Content) == "" {
			return nil, apperr.Validation("content", "is required")
		}
		updates["content"] = *req.Content
	}
	if req.Tags != nil {
		updates["tags"] = *req.Tags
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.IsPublished != nil {
		updates["is_published"] = *req.IsPublished
	}

	if len(updates) == 0 {
		return p, nil
	}
	if err := s.db.WithContext(ctx).Model(p).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}
	return s.GetPost(ctx, id)
}

// DeletePost removes a post the user owns, along with its likes and comments
func (s *Service) DeletePost(ctx context.Context, id, userID uint) error {
	p, err := s.loadOwned(ctx, id, userID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", p.ID).Delete(&PostLike{}).Error; err != nil {
			return fmt.Errorf("failed to delete post likes: %w", err)
		}
		if err := tx.Where("post_id = ?", p.ID).Delete(&PostComment{}).Error; err != nil {
			return fmt.Errorf("failed to delete post comments: %w", err)
		}
		if err := tx.Delete(p).Error; err != nil {
			return fmt.Errorf("failed to delete post: %w", err)
		}
		return nil
	})
}

// ToggleLike likes the post on the user's behalf, or removes the user's
// like when one already exists. Returns the post's likes after the toggle.
func (s *Service) ToggleLike(ctx context.Context, postID, userID uint) ([]PostLike, error) {
	var likes []PostLike

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check post: %w", err)
		}
		if count == 0 {
			return apperr.ErrNotFound
		}

		var existing PostLike
		err := tx.Where("post_id = ? AND user_id = ?", postID, userID).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return fmt.Errorf("failed to remove like: %w", err)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			like := PostLike{PostID: postID, UserID: userID}
			if err := tx.Create(&like).Error; err != nil {
				return fmt.Errorf("failed to add like: %w", err)
			}
		default:
			return fmt.Errorf("failed to check like: %w", err)
		}

		return tx.Where("post_id = ?", postID).Order("created_at DESC").Find(&likes).Error
	})
	if err != nil {
		return nil, err
	}
	return likes, nil
}

// AddComment records a user's comment on a post, snapshotting their name
func (s *Service) AddComment(ctx context.Context, postID, userID uint, req *AddCommentRequest) (*PostComment, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, apperr.Validation("text", "is required")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check post: %w", err)
	}
	if count == 0 {
		return nil, apperr.ErrNotFound
	}

	authorName, err := s.lookupAuthorName(ctx, userID)
	if err != nil {
		return nil, err
	}

	comment := PostComment{
		PostID:     postID,
		UserID:     userID,
		AuthorName: authorName,
		Text:       strings.TrimSpace(req.Text),
	}
	if err := s.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return &comment, nil
}

// DeleteComment removes a comment the user wrote
func (s *Service) DeleteComment(ctx context.Context, postID, commentID, userID uint) error {
	var comment PostComment
	err := s.db.WithContext(ctx).
		Where("id = ? AND post_id = ?", commentID, postID).
		First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrNotFound
		}
		return fmt.Errorf("failed to load comment: %w", err)
	}

	if comment.UserID != userID {
		return fmt.Errorf("comment %d: %w", commentID, apperr.ErrForbidden)
	}

	if err := s.db.WithContext(ctx).Delete(&comment).Error; err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}

// loadOwned fetches a post and verifies ownership
func (s *Service) loadOwned(ctx context.Context, id, userID uint) (*Post, error) {
	var p Post
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load post: %w", err)
	}
	if p.AuthorID != userID {
		return nil, fmt.Errorf("post %d: %w", id, apperr.ErrForbidden)
	}
	return &p, nil
}

func (s *Service) lookupAuthorName(ctx context.Context, userID uint) (string, error) {
	var u user.User
	if err := s.db.WithContext(ctx).First(&u, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperr.ErrNotFound
		}
		return "", fmt.Errorf("failed to load author: %w", err)
	}
	return u.GetDisplayName(), nil
}

// internal/domain/post/entity.go
package post

import (
	"time"
)

// Post represents a blog entry on the storefront. The author's name is
// snapshotted at creation so posts render without a user lookup.
type Post struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	AuthorID   uint   `gorm:"not null;index" json:"author_id"`
	AuthorName string `gorm:"size:200" json:"author_name"`

	Title    string `gorm:"not null;size:200" json:"title"`
	Content  string `gorm:"type:text;not null" json:"content"`
	Tags     string `gorm:"size:500" json:"tags"` // Comma-separated tags
	ImageURL string `gorm:"size:500" json:"image_url,omitempty"`

	// No column default: drafts are created with the zero value and must
	// be stored as such.
	IsPublished bool `gorm:"not null;index" json:"is_published"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Likes    []PostLike    `gorm:"foreignKey:PostID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"likes,omitempty"`
	Comments []PostComment `gorm:"foreignKey:PostID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"comments,omitempty"`
}

// PostLike records a single user's like of a post.
// A user may like a post at most once.
type PostLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_likes_user" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_post_likes_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// PostComment represents a comment on a post. The commenter's name is a
// snapshot, like the post author's.
type PostComment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PostID     uint      `gorm:"not null;index" json:"post_id"`
	UserID     uint      `gorm:"not null" json:"user_id"`
	AuthorName string    `gorm:"size:200" json:"author_name"`
	Text       string    `gorm:"not null;size:1000" json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName overrides
func (Post) TableName() string        { return "posts" }
func (PostLike) TableName() string    { return "post_likes" }
func (PostComment) TableName() string { return "post_comments" }

// IsLikedBy reports whether the given user has liked the post
func (p *Post) IsLikedBy(userID uint) bool {
	for i := range p.Likes {
		if p.Likes[i].UserID == userID {
			return true
		}
	}
	return false
}

// LikeCount returns the number of likes on the post
func (p *Post) LikeCount() int {
	return len(p.Likes)
}

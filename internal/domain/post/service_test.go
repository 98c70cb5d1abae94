package post

import (
	"context"
	"errors"
	"testing"

	"github.com/your-org/thangka-store-backend/internal/domain/user"
	"github.com/your-org/thangka-store-backend/internal/pkg/apperr"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&user.User{},
		&Post{},
		&PostLike{},
		&PostComment{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func seedUser(t *testing.T, db *gorm.DB, firstName, lastName string) *user.User {
	t.Helper()

	u := &user.User{
		Email:     firstName + "@example.com",
		Password:  "x",
		FirstName: firstName,
		LastName:  lastName,
		IsActive:  true,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return u
}

func createTestPost(t *testing.T, svc *Service, authorID uint, title string, published bool) *Post {
	t.Helper()

	p, err := svc.CreatePost(context.Background(), authorID, &CreatePostRequest{
		Title:       title,
		Content:     "some content",
		IsPublished: published,
	})
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	return p
}

func TestCreatePost(t *testing.T) {
	ctx := context.Background()

	t.Run("snapshots the author name and defaults to draft", func(t *testing.T) {
		db := setupTestDB(t)
		svc := NewService(db)
		author := seedUser(t, db, "Pema", "Sherpa")

		p, err := svc.CreatePost(ctx, author.ID, &CreatePostRequest{
			Title:   "  Caring for a thangka  ",
			Content: "Keep it out of direct sunlight.",
			Tags:    "care,preservation",
		})
		if err != nil {
			t.Fatalf("CreatePost failed: %v", err)
		}

		if p.Title != "Caring for a thangka" {
			t.Errorf("expected trimmed title, got %q", p.Title)
		}
		if p.AuthorName != "Pema Sherpa" {
			t.Errorf("expected author name snapshot, got %q", p.AuthorName)
		}
		if p.IsPublished {
			t.Error("expected new post to be a draft")
		}

		// Draft flag persisted, not swallowed on insert
		var reloaded Post
		if err := db.First(&reloaded, p.ID).Error; err != nil {
			t.Fatalf("failed to reload post: %v", err)
		}
		if reloaded.IsPublished {
			t.Error("expected draft stored as draft")
		}
	})

	t.Run("rejects blank title and content", func(t *testing.T) {
		db := setupTestDB(t)
		svc := NewService(db)
		author := seedUser(t, db, "Pema", "Sherpa")

		if _, err := svc.CreatePost(ctx, author.ID, &CreatePostRequest{Title: "  ", Content: "x"}); !apperr.IsValidation(err) {
			t.Errorf("expected validation error for blank title, got %v", err)
		}
		if _, err := svc.CreatePost(ctx, author.ID, &CreatePostRequest{Title: "x", Content: "  "}); !apperr.IsValidation(err) {
			t.Errorf("expected validation error for blank content, got %v", err)
		}
	})

	t.Run("unknown author", func(t *testing.T) {
		db := setupTestDB(t)
		svc := NewService(db)

		_, err := svc.CreatePost(ctx, 99, &CreatePostRequest{Title: "x", Content: "x"})
		if !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestPostListings(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := NewService(db)
	author := seedUser(t, db, "Pema", "Sherpa")
	other := seedUser(t, db, "Tenzin", "Norbu")

	createTestPost(t, svc, author.ID, "Published piece", true)
	createTestPost(t, svc, author.ID, "Draft piece", false)
	createTestPost(t, svc, other.ID, "Another voice", true)

	t.Run("public listing only shows published posts", func(t *testing.T) {
		posts, err := svc.GetPublishedPosts(ctx)
		if err != nil {
			t.Fatalf("GetPublishedPosts failed: %v", err)
		}
		if len(posts) != 2 {
			t.Fatalf("expected 2 published posts, got %d", len(posts))
		}
		for _, p := range posts {
			if !p.IsPublished {
				t.Errorf("draft %q leaked into the public listing", p.Title)
			}
		}
	})

	t.Run("author listing includes drafts", func(t *testing.T) {
		posts, err := svc.GetUserPosts(ctx, author.ID)
		if err != nil {
			t.Fatalf("GetUserPosts failed: %v", err)
		}
		if len(posts) != 2 {
			t.Fatalf("expected 2 posts for author, got %d", len(posts))
		}
	})
}

func TestUpdatePost(t *testing.T) {
	ctx := context.Background()

	t.Run("owner can publish a draft", func(t *testing.T) {
		db := setupTestDB(t)
		svc := NewService(db)
		author := seedUser(t, db, "Pema", "Sherpa")
		p := createTestPost(t, svc, author.ID, "Draft", false)

		published := true
		updated, err := svc.UpdatePost(ctx, p.ID, author.ID, &UpdatePostRequest{IsPublished: &published})
		if err != nil {
			t.Fatalf("UpdatePost failed: %v", err)
		}
		if !updated.IsPublished {
			t.Error("expected post published")
		}
		if updated.Title != "Draft" {
			t.Errorf("expected untouched title, got %q", updated.Title)
		}
	})

	t.Run("non-owner is rejected", func(t *testing.T) {
		db := setupTestDB(t)
		svc := NewService(db)
		author := seedUser(t, db, "Pema", "Sherpa")
		intruder := seedUser(t, db, "Tenzin", "Norbu")
		p := createTestPost(t, svc, author.ID, "Mine", true)

		title := "Taken over"
		_, err := svc.UpdatePost(ctx, p.ID, intruder.ID, &UpdatePostRequest{Title: &title})
		if !errors.Is(err, apperr.ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
	})
}

func TestDeletePost(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := NewService(db)
	author := seedUser(t, db, "Pema", "Sherpa")
	other := seedUser(t, db, "Tenzin", "Norbu")
	p := createTestPost(t, svc, author.ID, "Ephemeral", true)

	if _, err := svc.ToggleLike(ctx, p.ID, other.ID); err != nil {
		t.Fatalf("ToggleLike failed: %v", err)
	}
	if _, err := svc.AddComment(ctx, p.ID, other.ID, &AddCommentRequest{Text: "lovely"}); err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}

	if err := svc.DeletePost(ctx, p.ID, other.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner, got %v", err)
	}

	if err := svc.DeletePost(ctx, p.ID, author.ID); err != nil {
		t.Fatalf("DeletePost failed: %v", err)
	}

	if _, err := svc.GetPost(ctx, p.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	// Likes and comments go with the post
	var likes, comments int64
	db.Model(&PostLike{}).Count(&likes)
	db.Model(&PostComment{}).Count(&comments)
	if likes != 0 || comments != 0 {
		t.Errorf("expected likes and comments removed, found %d likes %d comments", likes, comments)
	}
}

func TestToggleLike(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := NewService(db)
	author := seedUser(t, db, "Pema", "Sherpa")
	reader := seedUser(t, db, "Tenzin", "Norbu")
	p := createTestPost(t, svc, author.ID, "Likeable", true)

	likes, err := svc.ToggleLike(ctx, p.ID, reader.ID)
	if err != nil {
		t.Fatalf("ToggleLike failed: %v", err)
	}
	if len(likes) != 1 || likes[0].UserID != reader.ID {
		t.Fatalf("expected one like from reader, got %+v", likes)
	}

	// Second toggle removes the like
	likes, err = svc.ToggleLike(ctx, p.ID, reader.ID)
	if err != nil {
		t.Fatalf("ToggleLike failed: %v", err)
	}
	if len(likes) != 0 {
		t.Errorf("expected like removed, got %+v", likes)
	}

	if _, err := svc.ToggleLike(ctx, 99, reader.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown post, got %v", err)
	}
}

func TestComments(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := NewService(db)
	author := seedUser(t, db, "Pema", "Sherpa")
	reader := seedUser(t, db, "Tenzin", "Norbu")
	p := createTestPost(t, svc, author.ID, "Discussable", true)

	comment, err := svc.AddComment(ctx, p.ID, reader.ID, &AddCommentRequest{Text: " What pigments are used? "})
	if err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}
	if comment.Text != "What pigments are used?" {
		t.Errorf("expected trimmed text, got %q", comment.Text)
	}
	if comment.AuthorName != "Tenzin Norbu" {
		t.Errorf("expected commenter name snapshot, got %q", comment.AuthorName)
	}

	t.Run("only the commenter may delete", func(t *testing.T) {
		err := svc.DeleteComment(ctx, p.ID, comment.ID, author.ID)
		if !errors.Is(err, apperr.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}

		if err := svc.DeleteComment(ctx, p.ID, comment.ID, reader.ID); err != nil {
			t.Fatalf("DeleteComment failed: %v", err)
		}
		if err := svc.DeleteComment(ctx, p.ID, comment.ID, reader.ID); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("expected ErrNotFound for deleted comment, got %v", err)
		}
	})

	t.Run("unknown post", func(t *testing.T) {
		_, err := svc.AddComment(ctx, 99, reader.ID, &AddCommentRequest{Text: "hello"})
		if !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

package repository

import (
	"context"

	"quillpost/internal/domain"
)

// PostRepository exposes persistence operations for blog posts.
// Reads populate Post.Author.
type PostRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, post *domain.Post) (int64, error)
	// Update overwrites everything except the publication date.
	Update(ctx context.Context, post *domain.Post) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*domain.Post, error)
	List(ctx context.Context) ([]domain.Post, error)
	ListByAuthor(ctx context.Context, authorID int64) ([]domain.Post, error)
}

// CommentRepository manages comments. Reads populate Comment.Commenter.
type CommentRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, comment *domain.Comment) (int64, error)
	ListByPost(ctx context.Context, postID int64) ([]domain.Comment, error)
	List(ctx context.Context) ([]domain.Comment, error)
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"quillpost/internal/domain"
	"quillpost/internal/repository"
)

const createCommentsTable = `
CREATE TABLE IF NOT EXISTS comments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	blog_id INTEGER NOT NULL,
	commenter_id INTEGER NOT NULL,
	content TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	FOREIGN KEY(blog_id) REFERENCES blog_posts(id) ON DELETE CASCADE,
	FOREIGN KEY(commenter_id) REFERENCES users(id)
);
CREATE INDEX IF NOT EXISTS idx_comments_blog_id ON comments(blog_id);
`

const selectComment = `
SELECT c.id, c.blog_id, c.commenter_id, c.content, c.created_at,
	u.id, u.name, u.email, u.created_at
FROM comments c
JOIN users u ON u.id = c.commenter_id`

type CommentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) repository.CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createCommentsTable); err != nil {
		return fmt.Errorf("create comments table: %w", err)
	}
	return nil
}

func (r *CommentRepository) Create(ctx context.Context, comment *domain.Comment) (int64, error) {
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}

	res, err := r.db.ExecContext(ctx, `
INSERT INTO comments (blog_id, commenter_id, content, created_at)
VALUES (?, ?, ?, ?)`,
		comment.PostID,
		comment.CommenterID,
		comment.Content,
		comment.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert comment: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("comment last insert id: %w", err)
	}
	comment.ID = id
	return id, nil
}

func (r *CommentRepository) ListByPost(ctx context.Context, postID int64) ([]domain.Comment, error) {
	return r.query(ctx, selectComment+` WHERE c.blog_id = ? ORDER BY c.id ASC`, postID)
}

func (r *CommentRepository) List(ctx context.Context) ([]domain.Comment, error) {
	return r.query(ctx, selectComment+` ORDER BY c.id ASC`)
}

func (r *CommentRepository) query(ctx context.Context, query string, args ...any) ([]domain.Comment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		var (
			comment   domain.Comment
			commenter domain.User
		)
		if err := rows.Scan(
			&comment.ID,
			&comment.PostID,
			&comment.CommenterID,
			&comment.Content,
			&comment.CreatedAt,
			&commenter.ID,
			&commenter.Name,
			&commenter.Email,
			&commenter.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comment.Commenter = &commenter
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

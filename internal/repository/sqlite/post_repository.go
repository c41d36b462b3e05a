package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"quillpost/internal/domain"
	"quillpost/internal/repository"
)

const createPostsTable = `
CREATE TABLE IF NOT EXISTS blog_posts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	author_id INTEGER NOT NULL,
	title VARCHAR(250) NOT NULL UNIQUE,
	subtitle VARCHAR(250) NOT NULL,
	date VARCHAR(250) NOT NULL,
	body TEXT NOT NULL,
	img_url VARCHAR(250) NOT NULL,
	FOREIGN KEY(author_id) REFERENCES users(id)
);
CREATE INDEX IF NOT EXISTS idx_blog_posts_author_id ON blog_posts(author_id);
`

const selectPost = `
SELECT p.id, p.author_id, p.title, p.subtitle, p.date, p.body, p.img_url,
	u.id, u.name, u.email, u.created_at
FROM blog_posts p
JOIN users u ON u.id = p.author_id`

type PostRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) repository.PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createPostsTable); err != nil {
		return fmt.Errorf("create blog_posts table: %w", err)
	}
	return nil
}

func (r *PostRepository) Create(ctx context.Context, post *domain.Post) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
INSERT INTO blog_posts (author_id, title, subtitle, date, body, img_url)
VALUES (?, ?, ?, ?, ?, ?)`,
		post.AuthorID,
		post.Title,
		post.Subtitle,
		post.Date,
		post.Body,
		post.ImgURL,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("insert post %q: %w", post.Title, repository.ErrDuplicate)
		}
		return 0, fmt.Errorf("insert post: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("post last insert id: %w", err)
	}
	post.ID = id
	return id, nil
}

func (r *PostRepository) Update(ctx context.Context, post *domain.Post) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE blog_posts
SET author_id=?, title=?, subtitle=?, body=?, img_url=?
WHERE id=?`,
		post.AuthorID,
		post.Title,
		post.Subtitle,
		post.Body,
		post.ImgURL,
		post.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update post %d: %w", post.ID, repository.ErrDuplicate)
		}
		return fmt.Errorf("update post: %w", err)
	}
	return checkAffected(res, fmt.Sprintf("update post %d", post.ID))
}

// Delete removes the post; its comments go with it through ON DELETE CASCADE.
func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM blog_posts WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return checkAffected(res, fmt.Sprintf("delete post %d", id))
}

func (r *PostRepository) Get(ctx context.Context, id int64) (*domain.Post, error) {
	post, err := scanPost(r.db.QueryRowContext(ctx, selectPost+` WHERE p.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("post %d: %w", id, repository.ErrNotFound)
		}
		return nil, err
	}
	return post, nil
}

func (r *PostRepository) List(ctx context.Context) ([]domain.Post, error) {
	return r.query(ctx, selectPost+` ORDER BY p.id ASC`)
}

func (r *PostRepository) ListByAuthor(ctx context.Context, authorID int64) ([]domain.Post, error) {
	return r.query(ctx, selectPost+` WHERE p.author_id = ? ORDER BY p.id ASC`, authorID)
}

func (r *PostRepository) query(ctx context.Context, query string, args ...any) ([]domain.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	return posts, rows.Err()
}

func scanPost(row scanner) (*domain.Post, error) {
	var (
		post   domain.Post
		author domain.User
	)
	if err := row.Scan(
		&post.ID,
		&post.AuthorID,
		&post.Title,
		&post.Subtitle,
		&post.Date,
		&post.Body,
		&post.ImgURL,
		&author.ID,
		&author.Name,
		&author.Email,
		&author.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan post: %w", err)
	}
	post.Author = &author
	return &post, nil
}

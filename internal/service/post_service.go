package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"quillpost/internal/domain"
	"quillpost/internal/repository"
)

var (
	// ErrPostNotFound is returned when a post id does not exist.
	ErrPostNotFound = errors.New("post not found")
	// ErrTitleTaken is returned when a post title is already used by another post.
	ErrTitleTaken = errors.New("post title already exists")
	// ErrInvalidPost indicates a required post field is blank.
	ErrInvalidPost = errors.New("invalid post")
)

// PostInput carries the editable fields of a post.
type PostInput struct {
	Title    string
	Subtitle string
	ImgURL   string
	Body     string
}

func (in PostInput) normalize() (PostInput, error) {
	out := PostInput{
		Title:    strings.TrimSpace(in.Title),
		Subtitle: strings.TrimSpace(in.Subtitle),
		ImgURL:   strings.TrimSpace(in.ImgURL),
		Body:     in.Body,
	}
	if out.Title == "" || out.Subtitle == "" || out.ImgURL == "" || strings.TrimSpace(out.Body) == "" {
		return out, ErrInvalidPost
	}
	return out, nil
}

// PostService coordinates post level operations backed by repositories.
type PostService interface {
	List(ctx context.Context) ([]domain.Post, error)
	Get(ctx context.Context, id int64) (*domain.Post, error)
	Create(ctx context.Context, author *domain.User, in PostInput) (*domain.Post, error)
	Update(ctx context.Context, id int64, author *domain.User, in PostInput) (*domain.Post, error)
	Delete(ctx context.Context, id int64) error
}

type postService struct {
	posts repository.PostRepository
	now   func() time.Time
	log   logrus.FieldLogger
}

func NewPostService(posts repository.PostRepository, now func() time.Time, log logrus.FieldLogger) PostService {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &postService{
		posts: posts,
		now:   now,
		log:   log,
	}
}

func (s *postService) List(ctx context.Context) ([]domain.Post, error) {
	return s.posts.List(ctx)
}

func (s *postService) Get(ctx context.Context, id int64) (*domain.Post, error) {
	post, err := s.posts.Get(ctx, id)
	if err != nil {
		return nil, mapPostErr(err)
	}
	return post, nil
}

func (s *postService) Create(ctx context.Context, author *domain.User, in PostInput) (*domain.Post, error) {
	if author == nil {
		return nil, ErrForbidden
	}
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	post := &domain.Post{
		AuthorID: author.ID,
		Title:    in.Title,
		Subtitle: in.Subtitle,
		Date:     s.now().Format(domain.PostDateLayout),
		Body:     in.Body,
		ImgURL:   in.ImgURL,
	}
	if _, err := s.posts.Create(ctx, post); err != nil {
		return nil, mapPostErr(err)
	}

	s.log.WithFields(logrus.Fields{"post_id": post.ID, "title": post.Title}).Info("post created")
	post.Author = author
	return post, nil
}

func (s *postService) Update(ctx context.Context, id int64, author *domain.User, in PostInput) (*domain.Post, error) {
	if author == nil {
		return nil, ErrForbidden
	}
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	post, err := s.posts.Get(ctx, id)
	if err != nil {
		return nil, mapPostErr(err)
	}
	post.Title = in.Title
	post.Subtitle = in.Subtitle
	post.ImgURL = in.ImgURL
	post.Body = in.Body
	post.AuthorID = author.ID
	post.Author = author

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, mapPostErr(err)
	}

	s.log.WithField("post_id", post.ID).Info("post updated")
	return post, nil
}

func (s *postService) Delete(ctx context.Context, id int64) error {
	if err := s.posts.Delete(ctx, id); err != nil {
		return mapPostErr(err)
	}
	s.log.WithField("post_id", id).Info("post deleted")
	return nil
}

func mapPostErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrPostNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return ErrTitleTaken
	default:
		return fmt.Errorf("post store: %w", err)
	}
}

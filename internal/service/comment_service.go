package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"quillpost/internal/domain"
	"quillpost/internal/repository"
)

// ErrEmptyComment is returned for blank comment submissions.
var ErrEmptyComment = errors.New("comment is empty")

// CommentService handles reader comments on posts.
type CommentService interface {
	Create(ctx context.Context, commenter *domain.User, postID int64, content string) (*domain.Comment, error)
	ListForPost(ctx context.Context, postID int64) ([]domain.Comment, error)
}

type commentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	log      logrus.FieldLogger
}

func NewCommentService(comments repository.CommentRepository, posts repository.PostRepository, log logrus.FieldLogger) CommentService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &commentService{
		comments: comments,
		posts:    posts,
		log:      log,
	}
}

func (s *commentService) Create(ctx context.Context, commenter *domain.User, postID int64, content string) (*domain.Comment, error) {
	if commenter == nil {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyComment
	}
	if _, err := s.posts.Get(ctx, postID); err != nil {
		return nil, mapPostErr(err)
	}

	comment := &domain.Comment{
		PostID:      postID,
		CommenterID: commenter.ID,
		Content:     content,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"post_id": postID, "user_id": commenter.ID}).Info("comment added")
	comment.Commenter = commenter
	return comment, nil
}

func (s *commentService) ListForPost(ctx context.Context, postID int64) ([]domain.Comment, error) {
	return s.comments.ListByPost(ctx, postID)
}

package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quillpost/internal/domain"
	"quillpost/internal/repository"
)

func newTestRepos(t *testing.T) *Repositories {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "blog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repos := NewRepositories(db)
	require.NoError(t, repos.Init(context.Background()))
	return repos
}

func createUser(t *testing.T, repos *Repositories, name, email string) *domain.User {
	t.Helper()
	user := &domain.User{Name: name, Email: email, PasswordHash: "hash"}
	_, err := repos.Users.Create(context.Background(), user)
	require.NoError(t, err)
	return user
}

func createPost(t *testing.T, repos *Repositories, authorID int64, title string) *domain.Post {
	t.Helper()
	post := &domain.Post{
		AuthorID: authorID,
		Title:    title,
		Subtitle: "sub",
		Date:     "October 14, 2026",
		Body:     "<p>body</p>",
		ImgURL:   "https://example.com/a.png",
	}
	_, err := repos.Posts.Create(context.Background(), post)
	require.NoError(t, err)
	return post
}

func TestInitIsIdempotent(t *testing.T) {
	repos := newTestRepos(t)
	require.NoError(t, repos.Init(context.Background()))
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	owner := createUser(t, repos, "Zed", "zed@example.com")
	assert.Equal(t, domain.OwnerID, owner.ID)
	createUser(t, repos, "Amy", "amy@example.com")

	got, err := repos.Users.GetByEmail(ctx, "zed@example.com")
	require.NoError(t, err)
	assert.Equal(t, owner.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.False(t, got.CreatedAt.IsZero())

	_, err = repos.Users.GetByID(ctx, 99)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repos.Users.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	users, err := repos.Users.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Amy", users[0].Name)
	assert.Equal(t, "Zed", users[1].Name)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	createUser(t, repos, "First", "same@example.com")

	_, err := repos.Users.Create(ctx, &domain.User{Name: "Second", Email: "same@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	users, err := repos.Users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestPostRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	owner := createUser(t, repos, "Owner", "owner@example.com")
	other := createUser(t, repos, "Other", "other@example.com")

	first := createPost(t, repos, owner.ID, "First")
	createPost(t, repos, owner.ID, "Second")

	got, err := repos.Posts.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "First", got.Title)
	require.NotNil(t, got.Author)
	assert.Equal(t, "Owner", got.Author.Name)

	posts, err := repos.Posts.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "First", posts[0].Title)
	assert.Equal(t, "Second", posts[1].Title)

	got.Title = "First, revised"
	got.AuthorID = other.ID
	got.Date = "January 01, 1999"
	require.NoError(t, repos.Posts.Update(ctx, got))

	updated, err := repos.Posts.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "First, revised", updated.Title)
	assert.Equal(t, other.ID, updated.AuthorID)
	assert.Equal(t, "October 14, 2026", updated.Date, "date is never rewritten")

	byOther, err := repos.Posts.ListByAuthor(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, byOther, 1)

	require.NoError(t, repos.Posts.Delete(ctx, first.ID))
	_, err = repos.Posts.Get(ctx, first.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, repos.Posts.Delete(ctx, first.ID), repository.ErrNotFound)
	assert.ErrorIs(t, repos.Posts.Update(ctx, &domain.Post{ID: 404, AuthorID: owner.ID, Title: "x"}), repository.ErrNotFound)
}

func TestPostRepository_DuplicateTitle(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	owner := createUser(t, repos, "Owner", "owner@example.com")
	createPost(t, repos, owner.ID, "Hello")
	second := createPost(t, repos, owner.ID, "World")

	_, err := repos.Posts.Create(ctx, &domain.Post{AuthorID: owner.ID, Title: "Hello", Subtitle: "s", Date: "d", Body: "b", ImgURL: "u"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	second.Title = "Hello"
	assert.ErrorIs(t, repos.Posts.Update(ctx, second), repository.ErrDuplicate)

	posts, err := repos.Posts.List(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, 2)
}

func TestCommentRepository_ScopedToPostAndCascades(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	owner := createUser(t, repos, "Owner", "owner@example.com")
	reader := createUser(t, repos, "Reader", "reader@example.com")
	a := createPost(t, repos, owner.ID, "A")
	b := createPost(t, repos, owner.ID, "B")

	for _, c := range []domain.Comment{
		{PostID: a.ID, CommenterID: reader.ID, Content: "on a"},
		{PostID: b.ID, CommenterID: owner.ID, Content: "on b"},
		{PostID: a.ID, CommenterID: owner.ID, Content: "again on a"},
	} {
		c := c
		_, err := repos.Comments.Create(ctx, &c)
		require.NoError(t, err)
	}

	onA, err := repos.Comments.ListByPost(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, onA, 2)
	assert.Equal(t, "on a", onA[0].Content)
	assert.Equal(t, "Reader", onA[0].Commenter.Name)

	all, err := repos.Comments.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, repos.Posts.Delete(ctx, a.ID))
	all, err = repos.Comments.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, b.ID, all[0].PostID)
}

func TestCommentRepository_RejectsUnknownPost(t *testing.T) {
	repos := newTestRepos(t)
	reader := createUser(t, repos, "Reader", "reader@example.com")

	_, err := repos.Comments.Create(context.Background(), &domain.Comment{PostID: 77, CommenterID: reader.ID, Content: "x"})
	assert.Error(t, err)
}

func TestSessionRepository(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	user := createUser(t, repos, "Reader", "reader@example.com")
	now := time.Now().UTC()

	live := &domain.Session{Token: "live", UserID: user.ID, ExpiresAt: now.Add(time.Hour)}
	stale := &domain.Session{Token: "stale", UserID: user.ID, ExpiresAt: now.Add(-time.Hour)}
	require.NoError(t, repos.Sessions.Create(ctx, live))
	require.NoError(t, repos.Sessions.Create(ctx, stale))
	assert.ErrorIs(t, repos.Sessions.Create(ctx, live), repository.ErrDuplicate)

	got, err := repos.Sessions.Get(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.UserID)
	assert.False(t, got.Expired(now))

	n, err := repos.Sessions.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, err = repos.Sessions.Get(ctx, "stale")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, repos.Sessions.Delete(ctx, "live"))
	assert.ErrorIs(t, repos.Sessions.Delete(ctx, "live"), repository.ErrNotFound)
}

package service

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"quillpost/internal/domain"
	"quillpost/internal/repository"
)

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Init(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) (int64, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *mockUserRepository) List(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]domain.User)
	return users, args.Error(1)
}

func quietLogger() logrus.FieldLogger {
	logger, _ := test.NewNullLogger()
	return logger
}

func fastHasher() *PasswordHasher {
	return &PasswordHasher{Iterations: 1000, SaltLength: 8}
}

func TestUserService_Register_Success(t *testing.T) {
	repo := new(mockUserRepository)
	svc := NewUserService(repo, fastHasher(), quietLogger())
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "amy@example.com").Return(nil, repository.ErrNotFound).Once()
	repo.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.Name == "Amy" && u.Email == "amy@example.com" &&
			u.PasswordHash != "twelve chars!" && fastHasher().Verify(u.PasswordHash, "twelve chars!")
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.User).ID = 1
	}).Return(int64(1), nil).Once()

	user, err := svc.Register(ctx, "  Amy ", "amy@example.com", "twelve chars!")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "Amy", user.Name)
	assert.Empty(t, user.PasswordHash, "hash must not leave the service")
	repo.AssertExpectations(t)
}

func TestUserService_Register_EmailTaken(t *testing.T) {
	repo := new(mockUserRepository)
	svc := NewUserService(repo, fastHasher(), quietLogger())
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "amy@example.com").Return(&domain.User{ID: 3}, nil).Once()

	_, err := svc.Register(ctx, "Amy", "amy@example.com", "twelve chars!")
	assert.ErrorIs(t, err, ErrEmailTaken)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserService_Register_RaceMapsToEmailTaken(t *testing.T) {
	repo := new(mockUserRepository)
	svc := NewUserService(repo, fastHasher(), quietLogger())
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "amy@example.com").Return(nil, repository.ErrNotFound).Once()
	repo.On("Create", ctx, mock.Anything).Return(int64(0), repository.ErrDuplicate).Once()

	_, err := svc.Register(ctx, "Amy", "amy@example.com", "twelve chars!")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUserService_Register_ShortPassword(t *testing.T) {
	repo := new(mockUserRepository)
	svc := NewUserService(repo, fastHasher(), quietLogger())

	_, err := svc.Register(context.Background(), "Amy", "amy@example.com", "eleven char")
	assert.ErrorIs(t, err, ErrInvalidRegistration)
	repo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestUserService_Authenticate(t *testing.T) {
	h := fastHasher()
	hash, err := h.Hash("twelve chars!")
	require.NoError(t, err)
	stored := &domain.User{ID: 2, Name: "Amy", Email: "amy@example.com", PasswordHash: hash}

	repo := new(mockUserRepository)
	svc := NewUserService(repo, h, quietLogger())
	ctx := context.Background()
	repo.On("GetByEmail", ctx, "amy@example.com").Return(stored, nil)
	repo.On("GetByEmail", ctx, "ghost@example.com").Return(nil, repository.ErrNotFound)

	user, err := svc.Authenticate(ctx, "amy@example.com", "twelve chars!")
	require.NoError(t, err)
	assert.Equal(t, int64(2), user.ID)
	assert.Empty(t, user.PasswordHash)

	_, wrongPassword := svc.Authenticate(ctx, "amy@example.com", "twelve chars?")
	_, unknownEmail := svc.Authenticate(ctx, "ghost@example.com", "twelve chars!")
	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestUserService_Authenticate_UnknownEmailStillHashes(t *testing.T) {
	repo := new(mockUserRepository)
	h := fastHasher()
	svc := NewUserService(repo, h, quietLogger()).(*userService)
	ctx := context.Background()
	repo.On("GetByEmail", ctx, "ghost@example.com").Return(nil, repository.ErrNotFound)

	assert.Empty(t, svc.dummy)
	_, err := svc.Authenticate(ctx, "ghost@example.com", "twelve chars!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	iterations, _, _, err := parseHash(svc.dummy)
	require.NoError(t, err, "unknown email must be checked against a real hash")
	assert.Equal(t, h.Iterations, iterations)
	assert.False(t, h.Verify(svc.dummy, "twelve chars!"))

	first := svc.dummy
	_, _ = svc.Authenticate(ctx, "ghost@example.com", "twelve chars!")
	assert.Equal(t, first, svc.dummy)
}

func TestRequireOwner(t *testing.T) {
	assert.ErrorIs(t, RequireOwner(Anonymous), ErrForbidden)
	assert.ErrorIs(t, RequireOwner(Identity{User: &domain.User{ID: 2}}), ErrForbidden)
	assert.NoError(t, RequireOwner(Identity{User: &domain.User{ID: domain.OwnerID}}))
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"quillpost/internal/domain"
	"quillpost/internal/repository"
)

// MinPasswordLength is enforced for registration and login.
const MinPasswordLength = 12

var (
	// ErrInvalidCredentials covers both unknown emails and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken is returned when registering with an email that already has an account.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidRegistration indicates missing or too short registration fields.
	ErrInvalidRegistration = errors.New("invalid registration")
)

// UserService describes user lifecycle operations.
type UserService interface {
	Register(ctx context.Context, name, email, password string) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

type userService struct {
	users  repository.UserRepository
	hasher *PasswordHasher
	log    logrus.FieldLogger

	dummyOnce sync.Once
	dummy     string
}

func NewUserService(users repository.UserRepository, hasher *PasswordHasher, log logrus.FieldLogger) UserService {
	if hasher == nil {
		hasher = NewPasswordHasher()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &userService{
		users:  users,
		hasher: hasher,
		log:    log,
	}
}

func (s *userService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	logCtx := s.log.WithField("email", email)

	if name == "" || email == "" {
		return nil, fmt.Errorf("%w: name and email are required", ErrInvalidRegistration)
	}
	if len(password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidRegistration, MinPasswordLength)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		logCtx.Warn("registration rejected: email already registered")
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			logCtx.Warn("registration rejected: concurrent registration with same email")
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	logCtx.WithField("user_id", user.ID).Info("user registered")
	return sanitizeUser(user), nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	logCtx := s.log.WithField("email", email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// pay the same hashing cost as a real account
			s.hasher.Verify(s.dummyHash(), password)
			logCtx.Info("login failed: unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(user.PasswordHash, password) {
		logCtx.WithField("user_id", user.ID).Info("login failed: wrong password")
		return nil, ErrInvalidCredentials
	}

	return sanitizeUser(user), nil
}

// dummyHash is a hash of a random password made with the configured cost.
func (s *userService) dummyHash() string {
	s.dummyOnce.Do(func() {
		secret, err := randomSalt(32)
		if err != nil {
			return
		}
		if h, err := s.hasher.Hash(secret); err == nil {
			s.dummy = h
		}
	})
	return s.dummy
}

func (s *userService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

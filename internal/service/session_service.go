package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"quillpost/internal/domain"
	"quillpost/internal/repository"
)

const sessionIssuer = "quillpost"

// DefaultSessionTTL applies when no TTL is configured.
const DefaultSessionTTL = 7 * 24 * time.Hour

// ErrInvalidSession is returned for tampered, expired or revoked session tokens.
var ErrInvalidSession = errors.New("invalid session")

// SessionService issues and resolves login sessions. The cookie value is a
// signed token naming a server-side session row, so logout revokes it.
type SessionService interface {
	Create(ctx context.Context, user *domain.User) (token string, expiresAt time.Time, err error)
	Resolve(ctx context.Context, token string) (*domain.User, error)
	Destroy(ctx context.Context, token string) error
	Cleanup(ctx context.Context) (int64, error)
}

type sessionService struct {
	sessions repository.SessionRepository
	users    repository.UserRepository
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
	log      logrus.FieldLogger
}

// SessionOptions configures NewSessionService.
type SessionOptions struct {
	Secret string
	TTL    time.Duration
	Now    func() time.Time
	Logger logrus.FieldLogger
}

func NewSessionService(sessions repository.SessionRepository, users repository.UserRepository, opts SessionOptions) (SessionService, error) {
	secret := strings.TrimSpace(opts.Secret)
	if secret == "" {
		return nil, fmt.Errorf("session secret is required")
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultSessionTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &sessionService{
		sessions: sessions,
		users:    users,
		secret:   []byte(secret),
		ttl:      opts.TTL,
		now:      opts.Now,
		log:      opts.Logger,
	}, nil
}

func (s *sessionService) Create(ctx context.Context, user *domain.User) (string, time.Time, error) {
	if user == nil || user.ID == 0 {
		return "", time.Time{}, fmt.Errorf("create session: user is required")
	}

	now := s.now().UTC().Truncate(time.Second)
	session := &domain.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", time.Time{}, fmt.Errorf("store session: %w", err)
	}

	claims := jwt.RegisteredClaims{
		Issuer:    sessionIssuer,
		Subject:   strconv.FormatInt(user.ID, 10),
		ID:        session.Token,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}

	s.log.WithField("user_id", user.ID).Debug("session created")
	return signed, session.ExpiresAt, nil
}

func (s *sessionService) Resolve(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.parse(token, true)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.Get(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}
	if session.Expired(s.now()) || strconv.FormatInt(session.UserID, 10) != claims.Subject {
		return nil, ErrInvalidSession
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}
	return sanitizeUser(user), nil
}

// Destroy revokes the session behind token. Unknown, tampered or already
// revoked tokens are not an error.
func (s *sessionService) Destroy(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	claims, err := s.parse(token, false)
	if err != nil {
		return nil
	}
	if err := s.sessions.Delete(ctx, claims.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *sessionService) Cleanup(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx, s.now())
}

func (s *sessionService) parse(token string, validateClaims bool) (*jwt.RegisteredClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if validateClaims {
		opts = append(opts, jwt.WithIssuer(sessionIssuer), jwt.WithExpirationRequired())
	} else {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil || claims.ID == "" {
		return nil, ErrInvalidSession
	}
	return &claims, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"tracker/internal/core"
	"tracker/internal/log"
	"tracker/internal/store"
)

var (
	// ErrInvalidCredentials matches every login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = &credentialError{"user not found"}
	ErrInvalidPassword    = &credentialError{"invalid password"}
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidToken       = errors.New("invalid token")
)

type credentialError struct{ msg string }

func (e *credentialError) Error() string { return e.msg }

func (e *credentialError) Is(target error) bool { return target == ErrInvalidCredentials }

// Claims identify the user behind a token.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type AuthService struct {
	users  store.UserStore
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	logger *log.Logger
}

func NewAuthService(users store.UserStore, secret string, ttl time.Duration, logger *log.Logger) *AuthService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &AuthService{
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
		logger: logger.WithComponent(log.ComponentAuth),
	}
}

func (s *AuthService) Register(ctx context.Context, username, password string) (core.User, error) {
	username = strings.TrimSpace(username)
	if err := core.ValidateCredentials(username, password); err != nil {
		return core.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return core.User{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.CreateUser(ctx, core.User{Username: username, PasswordHash: string(hash)})
	if errors.Is(err, store.ErrConflict) {
		return core.User{}, ErrUsernameTaken
	}
	if err != nil {
		return core.User{}, fmt.Errorf("create user: %w", err)
	}

	s.logger.InfoContext(ctx, "User registered", log.FieldUsername, u.Username)
	return u, nil
}

// Login checks the password and issues a signed token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.logger.WarnContext(ctx, "Login rejected", log.FieldUsername, u.Username, log.FieldErrorType, log.ErrorTypeAuth)
		return "", ErrInvalidPassword
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	s.logger.InfoContext(ctx, "User logged in", log.FieldUsername, u.Username)
	return signed, nil
}

// ParseToken verifies the signature and expiry of a token.
func (s *AuthService) ParseToken(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

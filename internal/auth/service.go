// Package auth registers users, checks their passwords and issues the
// session tokens that identify the signed-in user to the status watcher.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/bradykim7/menza/internal/models"
	"github.com/bradykim7/menza/internal/storage"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 6

// Account errors
var (
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrInvalidUsername    = errors.New("username must not be empty")
)

// UserRepository is the user storage the service needs
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, uid string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	SetDiscordID(ctx context.Context, uid, discordID string) error
	Delete(ctx context.Context, uid string) error
}

// Service handles registration, login and account removal
type Service struct {
	users  UserRepository
	tokens *TokenService
	log    *zap.Logger
}

// NewService creates a new auth service
func NewService(users UserRepository, tokens *TokenService, log *zap.Logger) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		log:    log.Named("auth-service"),
	}
}

// Register creates a new student account
func (s *Service) Register(ctx context.Context, email, password, username string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)

	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if username == "" {
		return nil, ErrInvalidUsername
	}
	if len(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}

	taken, err := s.users.UsernameExists(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		Username:     username,
		Role:         models.RoleStudent,
		Favorites:    []string{},
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info("User registered", zap.String("uid", user.UID), zap.String("username", username))
	return user, nil
}

// Login checks the credentials and returns the user with a fresh session token
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", time.Time{}, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	s.log.Info("User logged in", zap.String("uid", user.UID))
	return user, token, expiresAt, nil
}

// LinkDiscord attaches a Discord account to the user so notifications can reach it
func (s *Service) LinkDiscord(ctx context.Context, uid, discordID string) error {
	if err := s.users.SetDiscordID(ctx, uid, discordID); err != nil {
		return fmt.Errorf("failed to link Discord account: %w", err)
	}
	return nil
}

// DeleteAccount removes the user document
func (s *Service) DeleteAccount(ctx context.Context, uid string) error {
	if err := s.users.Delete(ctx, uid); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	s.log.Info("Account deleted", zap.String("uid", uid))
	return nil
}

// UserFromToken validates token and loads its user
func (s *Service) UserFromToken(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, claims.Subject)
}

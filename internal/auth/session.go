package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

// Session resolves the user signed in on this device
type Session interface {
	CurrentUserID(ctx context.Context) (uid string, ok bool, err error)
}

// TokenSession reads the session token from a fixed value or a file on every call,
// so signing in or out takes effect without restarting the watcher
type TokenSession struct {
	tokens *TokenService
	token  string
	file   string
	log    *zap.Logger
}

// NewTokenSession creates a session. token takes precedence over file.
func NewTokenSession(tokens *TokenService, token, file string, log *zap.Logger) *TokenSession {
	return &TokenSession{
		tokens: tokens,
		token:  strings.TrimSpace(token),
		file:   file,
		log:    log.Named("session"),
	}
}

// CurrentUserID returns the UID of the signed-in user. A missing, expired or
// invalid token means nobody is signed in.
func (s *TokenSession) CurrentUserID(_ context.Context) (string, bool, error) {
	token, err := s.readToken()
	if err != nil {
		return "", false, err
	}
	if token == "" {
		return "", false, nil
	}

	claims, err := s.tokens.Validate(token)
	if err != nil {
		s.log.Warn("Ignoring session token", zap.Error(err))
		return "", false, nil
	}
	return claims.Subject, true, nil
}

func (s *TokenSession) readToken() (string, error) {
	if s.token != "" || s.file == "" {
		return s.token, nil
	}

	data, err := os.ReadFile(s.file)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

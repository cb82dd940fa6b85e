// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/carterperez-dev/templates/catalog-backend/internal/core"
)

var (
	// ErrInvalidCredentials is returned for an unknown username and for a
	// wrong password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameExists     = errors.New("username already exists")
	ErrUsernameTooLong    = fmt.Errorf(
		"username must be at most %d characters: %w",
		MaxUsernameLen,
		core.ErrInvalidInput,
	)
)

const MaxUsernameLen = 150

// Service is the credential store: it owns password hashing and never hands
// a plaintext password to the repository.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Register(
	ctx context.Context,
	username, password string,
) (*User, error) {
	return s.CreateWithRole(ctx, username, password, RoleUser)
}

func (s *Service) CreateWithRole(
	ctx context.Context,
	username, password, role string,
) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf(
			"register: username and password required: %w",
			core.ErrInvalidInput,
		)
	}

	if utf8.RuneCountInString(username) > MaxUsernameLen {
		return nil, fmt.Errorf("register: %w", ErrUsernameTooLong)
	}

	if !ValidRole(role) {
		return nil, fmt.Errorf(
			"register: invalid role %q: %w",
			role,
			core.ErrInvalidInput,
		)
	}

	passwordHash, err := core.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrUsernameExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

func (s *Service) Verify(
	ctx context.Context,
	username, password string,
) (*User, error) {
	user, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = core.VerifyPasswordTimingSafe(password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(
		password,
		&user.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		if err := s.repo.UpdatePassword(ctx, user.ID, newHash); err != nil {
			slog.WarnContext(ctx, "password rehash failed",
				"username", user.Username,
				"error", err,
			)
		} else {
			user.PasswordHash = newHash
		}
	}

	return user, nil
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"fmt"

	"github.com/carterperez-dev/templates/catalog-backend/internal/user"
)

// CredentialStore is satisfied by *user.Service.
type CredentialStore interface {
	Register(ctx context.Context, username, password string) (*user.User, error)
	Verify(ctx context.Context, username, password string) (*user.User, error)
}

type Service struct {
	credentials CredentialStore
	issuer      *TokenIssuer
}

func NewService(credentials CredentialStore, issuer *TokenIssuer) *Service {
	return &Service{
		credentials: credentials,
		issuer:      issuer,
	}
}

func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*RegisterResponse, error) {
	created, err := s.credentials.Register(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	return &RegisterResponse{
		Status: "created",
		User:   user.ToUserResponse(created),
	}, nil
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*LoginResponse, error) {
	verified, err := s.credentials.Verify(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	issued, err := s.issuer.Issue(verified.Username, verified.Role)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	return &LoginResponse{
		AccessToken: issued.Token,
		TokenType:   "Bearer",
		ExpiresIn:   int(issued.ExpiresIn.Seconds()),
		ExpiresAt:   issued.ExpiresAt,
		User:        user.ToUserResponse(verified),
	}, nil
}

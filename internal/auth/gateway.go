package auth

import (
	"context"

	"github.com/marte1309/PinkBlueberrySalon/internal/domain"
)

// Gateway is the identity provider. Failures are *apierr.Error values.
type Gateway interface {
	Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error)
	Register(ctx context.Context, reg domain.Registration) (*domain.AuthResult, error)
	Logout(ctx context.Context, token string) error
	Refresh(ctx context.Context, refreshToken string) (*domain.AuthResult, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

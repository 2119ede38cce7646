package services

import (
	"context"

	"github.com/opentally/bookkeeping_app/internal/dto"
)

// TokenSvcFacade issues access tokens for authenticated users.
type TokenSvcFacade interface {
	// Login authenticates the credentials and returns a signed JWT.
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	portssvc "github.com/opentally/bookkeeping_app/internal/core/ports/services"
	"github.com/opentally/bookkeeping_app/internal/dto"
	"github.com/opentally/bookkeeping_app/internal/middleware"
	"github.com/opentally/bookkeeping_app/internal/utils"
	"github.com/opentally/bookkeeping_app/pkg/config"
)

// tokenService exchanges credentials for signed access tokens.
type tokenService struct {
	authenticator portssvc.UserAuthenticatorSvc
	cfg           *config.Config
}

// NewTokenService creates a new token service.
func NewTokenService(authenticator portssvc.UserAuthenticatorSvc, cfg *config.Config) portssvc.TokenSvcFacade {
	return &tokenService{authenticator: authenticator, cfg: cfg}
}

var _ portssvc.TokenSvcFacade = (*tokenService)(nil)

// Login implements portssvc.TokenSvcFacade.
func (s *tokenService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, err := s.authenticator.Authenticate(ctx, req.Name, req.Password)
	if err != nil {
		logger.Warn("Login failed", slog.String("name", req.Name))
		return nil, err
	}

	token, err := utils.GenerateJWT(user.UserID, s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer)
	if err != nil {
		logger.Error("Failed to sign token", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	logger.Info("User logged in", slog.String("user_id", user.UserID))
	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(s.cfg.JWTExpiryDuration),
		User:      dto.ToUserResponse(user),
	}, nil
}

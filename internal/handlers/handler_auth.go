package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	portssvc "github.com/opentally/bookkeeping_app/internal/core/ports/services"
	"github.com/opentally/bookkeeping_app/internal/dto"
	"github.com/opentally/bookkeeping_app/internal/middleware"
	"github.com/opentally/bookkeeping_app/pkg/config"
)

// authHandler handles authentication requests.
type authHandler struct {
	tokenService portssvc.TokenSvcFacade
}

func newAuthHandler(tokenService portssvc.TokenSvcFacade) *authHandler {
	return &authHandler{
		tokenService: tokenService,
	}
}

// registerAuthRoutes sets up the public authentication routes. Login carries
// its own tighter rate limit on top of the global one.
func registerAuthRoutes(r *gin.Engine, cfg *config.Config, tokenService portssvc.TokenSvcFacade) {
	h := newAuthHandler(tokenService)

	// 5 login attempts per minute per IP
	rate, _ := limiter.NewRateFromFormatted("5-M")
	loginLimiter := limiter.New(memory.NewStore(), rate)

	auth := r.Group("/api/v1/auth")
	{
		auth.POST("/login", middleware.RateLimit(loginLimiter), h.login)
	}
}

// login godoc
// @Summary User login
// @Description Authenticates a user and returns a JWT token.
// @Tags auth
// @Accept  json
// @Produce  json
// @Param   credentials body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 403 {object} map[string]string "Invalid credentials"
// @Router /auth/login [post]
func (h *authHandler) login(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	loginReq := dto.LoginRequest{}
	if err := c.ShouldBindJSON(&loginReq); err != nil {
		logger.Warn("Failed to bind JSON for login", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	resp, err := h.tokenService.Login(c.Request.Context(), loginReq)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to log in")
		return
	}

	c.JSON(http.StatusOK, resp)
}

package api

import (
	"accounts/internal/auth"
	"accounts/internal/config"
	"accounts/internal/entity"
	"accounts/internal/model"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const requestTimeout = 5 * time.Second

// HTTPHandler HTTP 请求处理器
type HTTPHandler struct {
	cfg          config.Config
	repo         model.Repository
	tokenManager *auth.TokenManager
	hasher       *auth.Hasher
}

// NewHTTPHandler 创建 HTTP 处理器实例
func NewHTTPHandler(cfg config.Config, repo model.Repository) (*HTTPHandler, error) {
	tokenManager, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTExpirationDays)
	if err != nil {
		return nil, err
	}

	return &HTTPHandler{
		cfg:          cfg,
		repo:         repo,
		tokenManager: tokenManager,
		hasher:       auth.NewHasher(cfg.BcryptCost),
	}, nil
}

// setTokenCookie attaches the session token as an HttpOnly cookie; the
// Secure flag follows the environment.
func (h *HTTPHandler) setTokenCookie(c *gin.Context, token string) {
	maxAge := int(h.tokenManager.TTL() / time.Second)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.TokenCookieName, token, maxAge, "/", "", h.cfg.IsProduction(), true)
}

// clearTokenCookie expires the token cookie on the client.
func (h *HTTPHandler) clearTokenCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.TokenCookieName, "", -1, "/", "", h.cfg.IsProduction(), true)
}

func makeUserSummary(user *entity.DbUser) entity.UserSummary {
	if user == nil {
		return entity.UserSummary{}
	}
	return entity.UserSummary{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		Active:    user.Active,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

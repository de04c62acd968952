package api

import (
	"accounts/internal/entity"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SignupInfo 提示 /auth/signup 仅接受 POST。
func (h *HTTPHandler) SignupInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "use POST /auth/signup to register a new account",
	})
}

func (h *HTTPHandler) Signup(c *gin.Context) {
	var req entity.AuthSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}

	if req.Password != req.PasswordConfirm {
		BadRequest(c, ErrCodePasswordMismatch, "passwords do not match")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if _, err := h.repo.GetUserByEmail(ctx, email, true); err == nil {
		BadRequest(c, ErrCodeEmailExists, "email already registered")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		logrus.WithError(err).Error("failed to check email during signup")
		InternalError(c, "failed to register user")
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		logrus.WithError(err).Error("failed to hash password")
		InternalError(c, "failed to register user")
		return
	}

	// Role is always forced to the base role on self-service signup.
	user := &entity.DbUser{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         entity.UserRoleUser,
		Active:       true,
	}

	if err := h.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			BadRequest(c, ErrCodeEmailExists, "email already registered")
			return
		}
		logrus.WithError(err).Error("failed to create user")
		InternalError(c, "failed to register user")
		return
	}

	h.sendToken(c, http.StatusCreated, user)
}

func (h *HTTPHandler) Login(c *gin.Context) {
	var req entity.AuthLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	user, err := h.repo.GetUserByEmail(ctx, email, false)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logrus.WithError(err).Error("failed to load user during login")
			InternalError(c, "failed to log in")
			return
		}
		logrus.WithField("email", email).Warn("login attempt for unknown email")
		ErrorResponse(c, http.StatusUnauthorized, ErrCodeInvalidCredentials, invalidCredentialsMessage)
		return
	}

	if !h.hasher.Verify(user.PasswordHash, req.Password) {
		logrus.WithField("email", email).Warn("password verification failed")
		ErrorResponse(c, http.StatusUnauthorized, ErrCodeInvalidCredentials, invalidCredentialsMessage)
		return
	}

	h.sendToken(c, http.StatusOK, user)
}

// Logout 清除令牌 Cookie。服务端无会话状态，调用永远成功。
func (h *HTTPHandler) Logout(c *gin.Context) {
	h.clearTokenCookie(c)
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// sendToken issues a fresh token for the user, sets the cookie and writes
// the auth response. The password hash never reaches the payload.
func (h *HTTPHandler) sendToken(c *gin.Context, status int, user *entity.DbUser) {
	token, expiresAt, err := h.tokenManager.Issue(user.ID)
	if err != nil {
		logrus.WithError(err).Error("failed to generate token")
		InternalError(c, "failed to create session")
		return
	}

	h.setTokenCookie(c, token)
	c.JSON(status, entity.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      makeUserSummary(user),
	})
}

package api

import (
	"accounts/internal/entity"
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// passwordChangeBackdate keeps a freshly issued token valid against the
// password-change cutoff even when both land in the same second.
const passwordChangeBackdate = time.Second

// Me 返回当前登录用户的资料。
func (h *HTTPHandler) Me(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	dbUser, err := h.repo.GetUserByID(ctx, user.ID, false)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to load user profile")
		InternalError(c, "failed to load profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": makeUserSummary(dbUser)})
}

// UpdateMe 更新当前用户的姓名或邮箱。密码相关字段一律拒绝。
func (h *HTTPHandler) UpdateMe(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	var raw map[string]any
	if err := c.ShouldBindBodyWith(&raw, binding.JSON); err != nil {
		BindError(c, err)
		return
	}
	for _, field := range []string{"password", "passwordConfirm", "currentPassword", "newPassword"} {
		if _, ok := raw[field]; ok {
			ErrorResponseWithDetails(c, http.StatusBadRequest, ErrCodeFieldNotAllowed,
				"this route is not for password updates, use /users/update-password", gin.H{"field": field})
			return
		}
	}
	if _, ok := raw["role"]; ok {
		ErrorResponseWithDetails(c, http.StatusBadRequest, ErrCodeFieldNotAllowed,
			"role cannot be changed through this route", gin.H{"field": "role"})
		return
	}

	var req entity.UpdateMeRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		BindError(c, err)
		return
	}

	updates := make(entity.UserUpdates)
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*req.Email))
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if len(updates) > 0 {
		if err := h.repo.UpdateUser(ctx, user.ID, updates); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				BadRequest(c, ErrCodeEmailExists, "email already registered")
				return
			}
			logrus.WithError(err).WithField("user_id", user.ID).Error("failed to update profile")
			InternalError(c, "failed to update profile")
			return
		}
	}

	updated, err := h.repo.GetUserByID(ctx, user.ID, false)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to reload profile")
		InternalError(c, "failed to load updated profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": makeUserSummary(updated)})
}

// UpdatePassword 校验当前密码后更新哈希，并签发新令牌保持会话有效。
func (h *HTTPHandler) UpdatePassword(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	var req entity.UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}

	if req.NewPassword != req.NewPasswordConfirm {
		BadRequest(c, ErrCodePasswordMismatch, "passwords do not match")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	dbUser, err := h.repo.GetUserByID(ctx, user.ID, false)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to load user for password update")
		InternalError(c, "failed to update password")
		return
	}

	if !h.hasher.Verify(dbUser.PasswordHash, req.CurrentPassword) {
		ErrorResponse(c, http.StatusUnauthorized, ErrCodeInvalidCredentials, "current password is incorrect")
		return
	}

	hash, err := h.hasher.Hash(req.NewPassword)
	if err != nil {
		logrus.WithError(err).Error("failed to hash new password")
		InternalError(c, "failed to update password")
		return
	}

	// Back-date the change so the token issued below stays valid.
	changedAt := time.Now().UTC().Add(-passwordChangeBackdate)
	if err := h.repo.UpdatePassword(ctx, user.ID, hash, changedAt); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to persist new password")
		InternalError(c, "failed to update password")
		return
	}

	token, expiresAt, err := h.tokenManager.Issue(user.ID)
	if err != nil {
		logrus.WithError(err).Error("failed to generate token after password update")
		InternalError(c, "failed to create session")
		return
	}

	h.setTokenCookie(c, token)
	c.JSON(http.StatusOK, entity.TokenResponse{Token: token, ExpiresAt: expiresAt})
}

// DeleteMe 软删除当前用户（active=false）。
func (h *HTTPHandler) DeleteMe(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.repo.SetUserActive(ctx, user.ID, false); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to deactivate user")
		InternalError(c, "failed to delete account")
		return
	}

	h.clearTokenCookie(c)
	c.Status(http.StatusNoContent)
}

// ListUsers 管理员分页查询用户。
func (h *HTTPHandler) ListUsers(c *gin.Context) {
	var query entity.UserQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		BadRequest(c, ErrCodeInvalidRequest, "invalid query parameters")
		return
	}
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.PageSize <= 0 {
		query.PageSize = 20
	}
	if query.PageSize > 100 {
		query.PageSize = 100
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	users, meta, err := h.repo.ListUsers(ctx, &query)
	if err != nil {
		logrus.WithError(err).Error("failed to list users")
		InternalError(c, "failed to load users")
		return
	}

	response := entity.UserListResponse{
		Users: make([]entity.UserSummary, 0, len(users)),
		Meta:  meta,
	}
	for idx := range users {
		response.Users = append(response.Users, makeUserSummary(&users[idx]))
	}

	c.JSON(http.StatusOK, response)
}

// CreateUser 管理员创建用户，可直接指定角色。
func (h *HTTPHandler) CreateUser(c *gin.Context) {
	var req entity.UserCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}

	if req.Password != req.PasswordConfirm {
		BadRequest(c, ErrCodePasswordMismatch, "passwords do not match")
		return
	}

	role := entity.UserRoleUser
	if trimmed := strings.ToLower(strings.TrimSpace(req.Role)); trimmed != "" {
		if !entity.ValidRole(trimmed) {
			BadRequest(c, ErrCodeInvalidRequest, "invalid role")
			return
		}
		role = trimmed
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		logrus.WithError(err).Error("failed to hash password for new user")
		InternalError(c, "failed to create user")
		return
	}

	user := &entity.DbUser{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			BadRequest(c, ErrCodeEmailExists, "email already registered")
			return
		}
		logrus.WithError(err).Error("failed to create user")
		InternalError(c, "failed to create user")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": makeUserSummary(user)})
}

// GetUser 管理员按 ID 查询用户，含已停用账户。
func (h *HTTPHandler) GetUser(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	dbUser, err := h.repo.GetUserByID(ctx, id, true)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, ErrCodeUserNotFound, "user not found")
			return
		}
		logrus.WithError(err).WithField("user_id", id).Error("failed to load user")
		InternalError(c, "failed to load user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": makeUserSummary(dbUser)})
}

// UpdateUser 管理员更新任意用户字段。
func (h *HTTPHandler) UpdateUser(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}

	var req entity.UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	dbUser, err := h.repo.GetUserByID(ctx, id, true)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, ErrCodeUserNotFound, "user not found")
			return
		}
		logrus.WithError(err).Error("failed to load user for update")
		InternalError(c, "failed to update user")
		return
	}

	updates := make(entity.UserUpdates)

	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Role != nil {
		role := strings.ToLower(strings.TrimSpace(*req.Role))
		if !entity.ValidRole(role) {
			BadRequest(c, ErrCodeInvalidRequest, "invalid role")
			return
		}
		updates["role"] = role
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}

	if req.Password != nil {
		hash, err := h.hasher.Hash(*req.Password)
		if err != nil {
			logrus.WithError(err).Error("failed to hash password for update")
			InternalError(c, "failed to update user")
			return
		}
		if err := h.repo.UpdatePassword(ctx, dbUser.ID, hash, time.Now().UTC().Add(-passwordChangeBackdate)); err != nil {
			logrus.WithError(err).Error("failed to persist new password")
			InternalError(c, "failed to update user")
			return
		}
	}

	if len(updates) > 0 {
		if err := h.repo.UpdateUser(ctx, dbUser.ID, updates); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				BadRequest(c, ErrCodeEmailExists, "email already registered")
				return
			}
			logrus.WithError(err).Error("failed to update user")
			InternalError(c, "failed to update user")
			return
		}
	}

	updated, err := h.repo.GetUserByID(ctx, dbUser.ID, true)
	if err != nil {
		logrus.WithError(err).Error("failed to reload user after update")
		InternalError(c, "failed to load updated user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": makeUserSummary(updated)})
}

// DeleteUser 管理员按 ID 硬删除用户。不允许删除自己。
func (h *HTTPHandler) DeleteUser(c *gin.Context) {
	requestUser := CurrentUser(c)
	id, ok := parseUserID(c)
	if !ok {
		return
	}

	if requestUser != nil && requestUser.ID == id {
		BadRequest(c, ErrCodeCannotDeleteSelf, "cannot delete current user")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.repo.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, ErrCodeUserNotFound, "user not found")
			return
		}
		logrus.WithError(err).WithField("user_id", id).Error("failed to delete user")
		InternalError(c, "failed to delete user")
		return
	}

	c.Status(http.StatusNoContent)
}

func parseUserID(c *gin.Context) (uint, bool) {
	idValue := strings.TrimSpace(c.Param("id"))
	id, err := strconv.ParseUint(idValue, 10, 64)
	if err != nil || id == 0 {
		BadRequest(c, ErrCodeInvalidRequest, "invalid user id")
		return 0, false
	}
	return uint(id), true
}

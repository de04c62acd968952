package entity

import "time"

// AuthSignupRequest 用户注册请求
type AuthSignupRequest struct {
	Name            string `json:"name" binding:"required,min=3,max=50"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=6"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required"`
}

// AuthLoginRequest 用户登录请求
type AuthLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdatePasswordRequest 修改密码请求
type UpdatePasswordRequest struct {
	CurrentPassword    string `json:"currentPassword" binding:"required"`
	NewPassword        string `json:"newPassword" binding:"required,min=6"`
	NewPasswordConfirm string `json:"newPasswordConfirm" binding:"required"`
}

// UpdateMeRequest 更新个人资料请求。角色、密码等字段不可经由本请求修改。
type UpdateMeRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=3,max=50"`
	Email *string `json:"email" binding:"omitempty,email"`
}

// UserCreateRequest 管理员创建用户请求
type UserCreateRequest struct {
	Name            string `json:"name" binding:"required,min=3,max=50"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=6"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required"`
	Role            string `json:"role"`
}

// UserUpdateRequest 管理员更新用户请求
type UserUpdateRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=3,max=50"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=6"`
	Role     *string `json:"role"`
	Active   *bool   `json:"active"`
}

// UserSummary 对外返回的用户信息，永不携带密码哈希。
type UserSummary struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuthResponse 认证成功响应
type AuthResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      UserSummary `json:"user"`
}

// TokenResponse 仅返回新令牌的响应
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserQuery 用户列表查询参数
type UserQuery struct {
	Page            int64  `form:"page"`
	PageSize        int64  `form:"page_size"`
	Role            string `form:"role"`
	Keyword         string `form:"keyword"`
	IncludeInactive bool   `form:"include_inactive"`
}

// Meta 分页元信息
type Meta struct {
	Total     int64 `json:"total"`
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	TotalPage int   `json:"total_page"`
}

// UserListResponse 用户列表响应
type UserListResponse struct {
	Users []UserSummary `json:"users"`
	Meta  *Meta         `json:"meta"`
}

// UserUpdates maps column names to new values for partial updates.
type UserUpdates = map[string]interface{}

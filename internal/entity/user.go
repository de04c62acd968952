package entity

import "time"

const (
	UserRoleAdmin = "admin"
	UserRoleUser  = "user"
)

// ValidRole reports whether role is one of the known role values.
func ValidRole(role string) bool {
	return role == UserRoleAdmin || role == UserRoleUser
}

// DbUser 表示持久化的用户账户。
type DbUser struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name         string `gorm:"column:name;type:varchar(50);not null" json:"name"`
	Email        string `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`

	// PasswordChangedAt is nil until the first password change; tokens
	// issued before it are rejected by the auth middleware.
	PasswordChangedAt *time.Time `gorm:"column:password_changed_at" json:"-"`

	Role   string `gorm:"column:role;type:varchar(50);index;not null" json:"role"`
	Active bool   `gorm:"column:active;not null;default:true" json:"active"`
}

// TableName 指定表名。
func (DbUser) TableName() string {
	return "users"
}

// PasswordChangedAfter reports whether the password was changed after the
// given token issue time. Comparison is at second granularity because JWT
// timestamps carry no sub-second precision.
func (u *DbUser) PasswordChangedAfter(issuedAt time.Time) bool {
	if u == nil || u.PasswordChangedAt == nil {
		return false
	}
	return issuedAt.Unix() < u.PasswordChangedAt.Unix()
}

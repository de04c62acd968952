package model

import (
	"accounts/internal/entity"
	"context"
	"time"
)

// Repository 定义数据库操作接口。
//
// Lookups exclude inactive (soft-deleted) records unless includeInactive is
// set; the filter is an explicit parameter so callers always see the scope
// they query under.
type Repository interface {
	CreateUser(ctx context.Context, user *entity.DbUser) error
	GetUserByEmail(ctx context.Context, email string, includeInactive bool) (*entity.DbUser, error)
	GetUserByID(ctx context.Context, id uint, includeInactive bool) (*entity.DbUser, error)
	ListUsers(ctx context.Context, params *entity.UserQuery) ([]entity.DbUser, *entity.Meta, error)
	UpdateUser(ctx context.Context, id uint, updates entity.UserUpdates) error
	UpdatePassword(ctx context.Context, id uint, newHash string, changedAt time.Time) error
	SetUserActive(ctx context.Context, id uint, active bool) error
	DeleteUser(ctx context.Context, id uint) error
	CountUsers(ctx context.Context) (int64, error)
}

package api

import (
	"accounts/internal/auth"
	"accounts/internal/config"
	"accounts/internal/entity"
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeRepo is an in-memory Repository for handler tests.
type fakeRepo struct {
	mu     sync.Mutex
	users  map[uint]*entity.DbUser
	nextID uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[uint]*entity.DbUser), nextID: 1}
}

func (f *fakeRepo) CreateUser(ctx context.Context, user *entity.DbUser) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	email := strings.ToLower(strings.TrimSpace(user.Email))
	for _, existing := range f.users {
		if existing.Email == email {
			return gorm.ErrDuplicatedKey
		}
	}
	user.ID = f.nextID
	f.nextID++
	user.Email = email
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeRepo) GetUserByEmail(ctx context.Context, email string, includeInactive bool) (*entity.DbUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	needle := strings.ToLower(strings.TrimSpace(email))
	for _, user := range f.users {
		if user.Email == needle {
			if !includeInactive && !user.Active {
				continue
			}
			clone := *user
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) GetUserByID(ctx context.Context, id uint, includeInactive bool) (*entity.DbUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok || (!includeInactive && !user.Active) {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *user
	return &clone, nil
}

func (f *fakeRepo) ListUsers(ctx context.Context, params *entity.UserQuery) ([]entity.DbUser, *entity.Meta, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.DbUser
	for _, user := range f.users {
		if params == nil || !params.IncludeInactive {
			if !user.Active {
				continue
			}
		}
		if params != nil && params.Role != "" && user.Role != params.Role {
			continue
		}
		out = append(out, *user)
	}
	meta := &entity.Meta{Total: int64(len(out)), Page: 1, PageSize: 20, TotalPage: 1}
	return out, meta, nil
}

func (f *fakeRepo) UpdateUser(ctx context.Context, id uint, updates entity.UserUpdates) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if email, ok := updates["email"].(string); ok {
		for _, existing := range f.users {
			if existing.ID != id && existing.Email == email {
				return gorm.ErrDuplicatedKey
			}
		}
		user.Email = email
	}
	if name, ok := updates["name"].(string); ok {
		user.Name = name
	}
	if role, ok := updates["role"].(string); ok {
		user.Role = role
	}
	if active, ok := updates["active"].(bool); ok {
		user.Active = active
	}
	user.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeRepo) UpdatePassword(ctx context.Context, id uint, newHash string, changedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.PasswordHash = newHash
	user.PasswordChangedAt = &changedAt
	user.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeRepo) SetUserActive(ctx context.Context, id uint, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.Active = active
	return nil
}

func (f *fakeRepo) DeleteUser(ctx context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeRepo) CountUsers(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.users)), nil
}

// setChangedAt overwrites a user's password change time directly.
func (f *fakeRepo) setChangedAt(id uint, at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.users[id]; ok {
		user.PasswordChangedAt = &at
	}
}

func testConfig() config.Config {
	return config.Config{
		JWTSecret:         "test-secret",
		JWTIssuer:         "accounts-test",
		JWTExpirationDays: 1,
		BcryptCost:        auth.MinBcryptCost,
		TokenCookieName:   "jwt",
		Environment:       "test",
	}
}

func newTestHandler(t *testing.T) (*HTTPHandler, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	handler, err := NewHTTPHandler(testConfig(), repo)
	require.NoError(t, err)
	return handler, repo
}

// newTestRouter mirrors the route table from cmd/server.
func newTestRouter(h *HTTPHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	authGroup := r.Group("/auth")
	authGroup.GET("/signup", h.SignupInfo)
	authGroup.POST("/signup", h.Signup)
	authGroup.POST("/login", h.Login)
	authGroup.GET("/logout", h.Logout)

	users := r.Group("/users")
	users.Use(h.AuthMiddleware())
	users.GET("/me", h.Me)
	users.PATCH("/update-me", h.UpdateMe)
	users.PATCH("/update-password", h.UpdatePassword)
	users.DELETE("/delete-me", h.DeleteMe)

	admin := users.Group("")
	admin.Use(h.RequireRoles("admin"))
	admin.GET("", h.ListUsers)
	admin.POST("", h.CreateUser)
	admin.GET("/:id", h.GetUser)
	admin.PATCH("/:id", h.UpdateUser)
	admin.DELETE("/:id", h.DeleteUser)

	return r
}

// createUser inserts a user with a real bcrypt hash and returns it.
func createUser(t *testing.T, h *HTTPHandler, repo *fakeRepo, name, email, password, role string) *entity.DbUser {
	t.Helper()
	hash, err := h.hasher.Hash(password)
	require.NoError(t, err)
	user := &entity.DbUser{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return user
}

func issueToken(t *testing.T, h *HTTPHandler, userID uint) string {
	t.Helper()
	token, _, err := h.tokenManager.Issue(userID)
	require.NoError(t, err)
	return token
}

func doJSON(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
